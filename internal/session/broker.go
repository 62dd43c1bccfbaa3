package session

import (
	"context"
	"sync"

	"github.com/kdduha/audioflow/internal/models"
	"github.com/rs/zerolog"
)

const subscriberBuffer = 16

// LocalBroker fans events out to subscribers in this process.
type LocalBroker struct {
	mu     sync.Mutex
	subs   map[string]map[chan models.StateEvent]struct{}
	logger zerolog.Logger
}

func NewLocalBroker(logger zerolog.Logger) *LocalBroker {
	return &LocalBroker{
		subs:   make(map[string]map[chan models.StateEvent]struct{}),
		logger: logger,
	}
}

// Publish never blocks: events are dropped for subscribers that fall behind.
func (b *LocalBroker) Publish(_ context.Context, evt models.StateEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[evt.SessionID] {
		select {
		case ch <- evt:
		default:
			b.logger.Warn().Str("session_id", evt.SessionID).Msg("subscriber is slow, event dropped")
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(_ context.Context, id string) (<-chan models.StateEvent, func(), error) {
	ch := make(chan models.StateEvent, subscriberBuffer)

	b.mu.Lock()
	if b.subs[id] == nil {
		b.subs[id] = make(map[chan models.StateEvent]struct{})
	}
	b.subs[id][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[id], ch)
			if len(b.subs[id]) == 0 {
				delete(b.subs, id)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

func (b *LocalBroker) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
