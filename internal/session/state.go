// Package session keeps the processing state shown to each user and runs
// uploads in the background.
package session

import (
	"errors"
	"fmt"

	"github.com/kdduha/audioflow/internal/models"
)

var ErrInvalidTransition = errors.New("invalid state transition")

var transitions = map[models.Status][]models.Status{
	models.StatusIdle:       {models.StatusUploading, models.StatusError},
	models.StatusUploading:  {models.StatusAnalyzing, models.StatusError},
	models.StatusAnalyzing:  {models.StatusGenerating, models.StatusError},
	models.StatusGenerating: {models.StatusCompleted, models.StatusError},
	models.StatusCompleted:  {models.StatusIdle},
	models.StatusError:      {models.StatusUploading, models.StatusError, models.StatusIdle},
}

// CanTransition reports whether a session may move from one status to
// another. Staying in the same in-flight status is allowed so that a
// repeated notification is harmless.
func CanTransition(from, to models.Status) bool {
	if from == to && from.InFlight() {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns the state after moving to status. Only the error
// status carries a message.
func Transition(state models.ProcessingState, to models.Status, message string) (models.ProcessingState, error) {
	if !CanTransition(state.Status, to) {
		return state, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, state.Status, to)
	}
	next := models.ProcessingState{Status: to}
	if to == models.StatusError {
		next.Message = message
	}
	return next, nil
}

// AcceptsFile reports whether a new recording may be uploaded.
func AcceptsFile(s models.Status) bool {
	return s == models.StatusIdle || s == models.StatusError
}

// CanReset reports whether the session may go back to idle.
func CanReset(s models.Status) bool {
	return !s.InFlight()
}
