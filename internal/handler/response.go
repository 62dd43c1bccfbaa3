package handler

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/kdduha/audioflow/internal/models"
	"github.com/kdduha/audioflow/internal/pipeline"
	"github.com/kdduha/audioflow/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError works like http.Error but with a JSON body.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Del("Content-Length")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	writeJSON(w, status, models.ErrorResponse{Kind: kind, Message: message})
}

// writeFailure maps pipeline and session errors to a status code.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	case errors.Is(err, session.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
		return
	}

	kind := pipeline.KindOf(err)
	writeError(w, statusForKind(kind), string(kind), pipeline.MessageOf(err))
}

func statusForKind(kind pipeline.Kind) int {
	switch kind {
	case pipeline.KindInvalidInput:
		return http.StatusUnsupportedMediaType
	case pipeline.KindEncoding:
		return http.StatusUnprocessableEntity
	case pipeline.KindModelUnavailable, pipeline.KindEmptyResponse, pipeline.KindUnparseableResponse:
		return http.StatusBadGateway
	case pipeline.KindCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
