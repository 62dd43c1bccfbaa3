// Package generation sends a recording and the drawing instructions to the
// model and returns whatever text comes back.
package generation

import (
	"context"
	"errors"

	"github.com/kdduha/audioflow/internal/models"
)

var (
	ErrModelUnavailable = errors.New("model unavailable")
	ErrEmptyResponse    = errors.New("model returned no text")
)

// Generator issues exactly one request per call. It never retries.
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (string, error)
}
