package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/kdduha/audioflow/internal/media"
	"github.com/kdduha/audioflow/internal/models"
	"github.com/kdduha/audioflow/internal/pipeline"
)

type diagramRunner interface {
	Run(ctx context.Context, file models.MediaFile, notify func(models.Status)) (*models.DiagramResult, error)
}

type DiagramHandler struct {
	runner         diagramRunner
	maxUploadBytes int64
}

func NewDiagramHandler(runner diagramRunner, maxUploadBytes int64) *DiagramHandler {
	return &DiagramHandler{
		runner:         runner,
		maxUploadBytes: maxUploadBytes,
	}
}

// Convert godoc
// @Summary Convert a recording into a diagram
// @Description Runs the whole pipeline synchronously. Send the recording as multipart field "file" or as base64 in JSON.
// @Tags diagrams
// @Accept json,mpfd
// @Produce json
// @Param request body models.ConvertRequest false "Recording as base64"
// @Param file formData file false "Recording"
// @Success 200 {object} models.ConvertResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 415 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/v1/diagrams [post]
func (h *DiagramHandler) Convert(w http.ResponseWriter, r *http.Request) {
	file, rerr := h.readFile(w, r)
	if rerr != nil {
		writeError(w, rerr.status, rerr.kind, rerr.err.Error())
		return
	}

	result, err := h.runner.Run(r.Context(), file, nil)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ConvertResponse{
		Summary:  result.Summary,
		XML:      result.XML,
		FileName: result.FileName,
	})
}

// requestError is a rejected request body, before any pipeline work.
type requestError struct {
	status int
	kind   string
	err    error
}

func (h *DiagramHandler) readFile(w http.ResponseWriter, r *http.Request) (models.MediaFile, *requestError) {
	if isMultipart(r) {
		file, err := readUpload(w, r, h.maxUploadBytes)
		if err != nil {
			return models.MediaFile{}, &requestError{status: uploadStatus(err), err: err}
		}
		return file, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	var req models.ConvertRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		return models.MediaFile{}, &requestError{status: uploadStatus(err), err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := req.Validate(); err != nil {
		return models.MediaFile{}, &requestError{status: http.StatusBadRequest, err: fmt.Errorf("request validation failed: %w", err)}
	}

	data, err := media.Decode(models.MediaPayload{Data: req.FileBase64, MIMEType: req.MIMEType})
	if err != nil {
		return models.MediaFile{}, &requestError{
			status: http.StatusUnprocessableEntity,
			kind:   string(pipeline.KindEncoding),
			err:    err,
		}
	}
	return media.FromBytes(req.FileName, req.MIMEType, data), nil
}
