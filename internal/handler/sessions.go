package handler

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/kdduha/audioflow/internal/diagram"
	"github.com/kdduha/audioflow/internal/export"
	"github.com/kdduha/audioflow/internal/models"
	"github.com/rs/zerolog"
)

const heartbeatInterval = 15 * time.Second

type sessionManager interface {
	Create(ctx context.Context) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Upload(ctx context.Context, id string, file models.MediaFile) error
	Reset(ctx context.Context, id string) (*models.Session, error)
	Subscribe(ctx context.Context, id string) (<-chan models.StateEvent, func(), error)
}

type SessionHandler struct {
	manager        sessionManager
	maxUploadBytes int64
	logger         zerolog.Logger
}

func NewSessionHandler(manager sessionManager, maxUploadBytes int64, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		manager:        manager,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Create godoc
// @Summary Create a session
// @Description Creates a session in the idle state.
// @Tags sessions
// @Produce json
// @Success 201 {object} models.SessionResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Create(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSessionResponse(s))
}

// Get godoc
// @Summary Get session state
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.SessionResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSessionResponse(s))
}

// Upload godoc
// @Summary Upload a recording
// @Description Starts processing in the background. Progress is reported by the events stream.
// @Tags sessions
// @Accept mpfd
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "Audio or video recording"
// @Success 202 {object} models.SessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 415 {object} models.ErrorResponse
// @Router /api/v1/sessions/{id}/upload [post]
func (h *SessionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.manager.Get(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}

	file, err := readUpload(w, r, h.maxUploadBytes)
	if err != nil {
		writeError(w, uploadStatus(err), "", err.Error())
		return
	}

	if err := h.manager.Upload(r.Context(), id, file); err != nil {
		writeFailure(w, err)
		return
	}

	s, err := h.manager.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, models.NewSessionResponse(s))
}

// Events godoc
// @Summary Stream session state
// @Description Sends the current state, then every transition, as "state" events.
// @Tags sessions
// @Produce text/event-stream
// @Param id path string true "Session ID"
// @Success 200 {object} models.StateEvent "Stream of states (SSE)"
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/sessions/{id}/events [get]
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	events, cancel, err := h.manager.Subscribe(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	defer cancel()

	s, err := h.manager.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher := http.NewResponseController(w)
	send := func(evt models.StateEvent) bool {
		data, err := sonic.Marshal(evt)
		if err != nil {
			fmt.Fprintf(w, "event: error\ndata: marshal error %v\n\n", err)
			flusher.Flush()
			return false
		}
		fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
		return flusher.Flush() == nil
	}

	if !send(models.StateEvent{SessionID: s.ID, Status: s.State.Status, Message: s.State.Message}) {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-events:
			if !ok || !send(evt) {
				return
			}
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			if err := flusher.Flush(); err != nil {
				return
			}
		}
	}
}

// Download godoc
// @Summary Download the diagram
// @Description Returns the draw.io document of a completed session.
// @Tags sessions
// @Produce xml
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/v1/sessions/{id}/download [get]
func (h *SessionHandler) Download(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}
	attachment(w, diagram.ContentType, result.FileName)
	_, _ = w.Write([]byte(result.XML))
}

// SummaryDocx godoc
// @Summary Download the summary
// @Description Returns the summary of a completed session as a Word document.
// @Tags sessions
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/v1/sessions/{id}/summary.docx [get]
func (h *SessionHandler) SummaryDocx(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}

	data, err := export.SummaryDocxBytes(result.FileName, result.Summary)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to render summary document")
		writeError(w, http.StatusInternalServerError, "", "failed to render summary document")
		return
	}
	attachment(w, export.ContentType, export.FileName(result.FileName))
	_, _ = w.Write(data)
}

// Reset godoc
// @Summary Reset a session
// @Description Discards the result and returns to idle. Refused while a run is in flight.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.SessionResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/v1/sessions/{id}/reset [post]
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewSessionResponse(s))
}

func (h *SessionHandler) result(w http.ResponseWriter, r *http.Request) (*models.DiagramResult, bool) {
	s, err := h.manager.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return nil, false
	}
	if s.State.Status != models.StatusCompleted || s.Result == nil {
		writeError(w, http.StatusConflict, "conflict", fmt.Sprintf("session is %s, no diagram to download", s.State.Status))
		return nil, false
	}
	return s.Result, true
}

func attachment(w http.ResponseWriter, contentType, fileName string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	w.WriteHeader(http.StatusOK)
}
