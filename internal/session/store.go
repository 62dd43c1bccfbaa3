package session

import (
	"context"
	"errors"

	"github.com/kdduha/audioflow/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Store keeps sessions until they are reset or expire. Implementations return
// copies; callers write changes back with Save or Update.
type Store interface {
	Save(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	// Update loads the session, applies fn and stores the result as one atomic
	// step, even across processes sharing the store. An error from fn aborts
	// the update and is returned as is. fn may be called more than once.
	Update(ctx context.Context, id string, fn func(s *models.Session) error) (*models.Session, error)
}

// Broker delivers state events to subscribers of a session.
type Broker interface {
	Publish(ctx context.Context, evt models.StateEvent) error
	// Subscribe is ready to receive when it returns. cancel ends the
	// subscription and closes the channel.
	Subscribe(ctx context.Context, sessionID string) (events <-chan models.StateEvent, cancel func(), err error)
}
