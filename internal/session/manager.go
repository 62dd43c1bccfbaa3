package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kdduha/audioflow/internal/metrics"
	"github.com/kdduha/audioflow/internal/models"
	"github.com/kdduha/audioflow/internal/pipeline"
	"github.com/rs/zerolog"
)

// ErrConflict is returned when the session's status does not allow the
// requested operation, such as a second upload while a run is in flight.
var ErrConflict = errors.New("operation not allowed in the current session state")

// Runner is satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, file models.MediaFile, notify func(models.Status)) (*models.DiagramResult, error)
}

// Manager owns every state change of every session. Each change is a single
// Store.Update, so two managers sharing a store never both accept one upload.
type Manager struct {
	store  Store
	broker Broker
	runner Runner
	logger zerolog.Logger

	runs sync.WaitGroup

	NewID func() string
	Now   func() time.Time
}

type Option func(*Manager)

// WithBroker replaces the in-process event fan-out, for example with a
// RedisBroker shared by every replica.
func WithBroker(b Broker) Option {
	return func(m *Manager) {
		m.broker = b
	}
}

func NewManager(store Store, runner Runner, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		runner: runner,
		logger: logger.With().Str("component", "session").Logger(),
		NewID:  uuid.NewString,
		Now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.broker == nil {
		m.broker = NewLocalBroker(m.logger)
	}
	return m
}

func (m *Manager) Create(ctx context.Context) (*models.Session, error) {
	s := &models.Session{
		ID:        m.NewID(),
		State:     models.ProcessingState{Status: models.StatusIdle},
		UpdatedAt: m.Now().UTC(),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.logger.Debug().Str("session_id", s.ID).Msg("session created")
	return s, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*models.Session, error) {
	return m.store.Get(ctx, id)
}

// Upload validates file and starts a background run. The run is detached
// from ctx: once accepted it finishes or fails on its own. An unsupported
// file moves the session to error and returns the *pipeline.Error.
func (m *Manager) Upload(ctx context.Context, id string, file models.MediaFile) error {
	inputErr := pipeline.CheckInput(file)
	to, message := models.StatusUploading, ""
	if inputErr != nil {
		to, message = models.StatusError, pipeline.MessageOf(inputErr)
	}

	var changed bool
	s, err := m.store.Update(ctx, id, func(s *models.Session) error {
		changed = false
		if !AcceptsFile(s.State.Status) {
			return fmt.Errorf("%w: session is %s", ErrConflict, s.State.Status)
		}
		// Previous results are dropped as soon as a new file is accepted.
		var err error
		changed, err = m.apply(s, to, message, nil)
		return err
	})
	if err != nil {
		return err
	}
	m.notify(ctx, s, changed)
	if inputErr != nil {
		return inputErr
	}

	runCtx := context.WithoutCancel(ctx)
	m.runs.Add(1)
	metrics.RunStarted()
	go func() {
		defer m.runs.Done()
		defer metrics.RunFinished()
		m.run(runCtx, id, file)
	}()
	return nil
}

func (m *Manager) run(ctx context.Context, id string, file models.MediaFile) {
	log := m.logger.With().Str("session_id", id).Logger()

	result, err := m.runner.Run(ctx, file, func(status models.Status) {
		if err := m.advance(ctx, id, status, "", nil); err != nil {
			log.Warn().Err(err).Str("status", string(status)).Msg("state update dropped")
		}
	})
	if err != nil {
		if err := m.advance(ctx, id, models.StatusError, pipeline.MessageOf(err), nil); err != nil {
			log.Warn().Err(err).Msg("failed to record run error")
		}
		return
	}
	if err := m.advance(ctx, id, models.StatusCompleted, "", result); err != nil {
		log.Warn().Err(err).Msg("failed to record run result")
	}
}

// Reset discards the result and returns the session to idle. It is refused
// while a run is in flight.
func (m *Manager) Reset(ctx context.Context, id string) (*models.Session, error) {
	var changed bool
	s, err := m.store.Update(ctx, id, func(s *models.Session) error {
		changed = false
		if !CanReset(s.State.Status) {
			return fmt.Errorf("%w: session is %s", ErrConflict, s.State.Status)
		}
		if s.State.Status == models.StatusIdle {
			return nil
		}
		var err error
		changed, err = m.apply(s, models.StatusIdle, "", nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	m.notify(ctx, s, changed)
	return s, nil
}

func (m *Manager) advance(ctx context.Context, id string, to models.Status, message string, result *models.DiagramResult) error {
	var changed bool
	s, err := m.store.Update(ctx, id, func(s *models.Session) error {
		var err error
		changed, err = m.apply(s, to, message, result)
		return err
	})
	if err != nil {
		return err
	}
	m.notify(ctx, s, changed)
	return nil
}

// apply moves s to status in place. Repeating an in-flight status is a no-op
// and reports false. Every status but completed clears the result.
func (m *Manager) apply(s *models.Session, to models.Status, message string, result *models.DiagramResult) (bool, error) {
	if s.State.Status == to && to.InFlight() {
		return false, nil
	}
	next, err := Transition(s.State, to, message)
	if err != nil {
		return false, err
	}

	s.State = next
	s.Result = nil
	if to == models.StatusCompleted {
		s.Result = result
	}
	s.UpdatedAt = m.Now().UTC()
	return true, nil
}

// notify tells subscribers about a stored transition.
func (m *Manager) notify(ctx context.Context, s *models.Session, changed bool) {
	if !changed {
		return
	}
	m.logger.Debug().Str("session_id", s.ID).Str("status", string(s.State.Status)).Msg("session state changed")

	evt := models.StateEvent{SessionID: s.ID, Status: s.State.Status, Message: s.State.Message}
	if err := m.broker.Publish(ctx, evt); err != nil {
		m.logger.Warn().Err(err).Str("session_id", s.ID).Msg("failed to publish state event")
	}
}

// Subscribe returns a channel of state changes for one session and a func
// that ends the subscription. Events are dropped for subscribers that fall
// behind.
func (m *Manager) Subscribe(ctx context.Context, id string) (<-chan models.StateEvent, func(), error) {
	return m.broker.Subscribe(ctx, id)
}

// Wait blocks until every background run has finished or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.runs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
