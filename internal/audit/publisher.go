package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tokengate/internal/platform/middleware"
	"tokengate/pkg/domain"
)

// Publisher captures structured notification records. It is append-only and
// uses the storage layer for persistence so tests can swap sinks easily.
// Emission never fails the triggering ledger operation.
type Publisher struct {
	store  Store
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

// processEvents runs in a goroutine and persists events from the channel.
func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil {
			if p.logger != nil {
				p.logger.Error("failed to persist notification",
					"error", err,
					"action", event.Action,
					"account", event.Account.Short(),
				)
			}
		}
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit records an event. In async mode the send is non-blocking; the event is
// dropped (and logged) when the buffer is full to keep the ledger hot path
// free of side-channel stalls.
func (p *Publisher) Emit(ctx context.Context, base Event) {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	if base.RequestID == "" {
		base.RequestID = middleware.GetRequestID(ctx)
	}
	if p.async {
		select {
		case p.events <- base:
		default:
			if p.logger != nil {
				p.logger.Warn("notification buffer full, event dropped",
					"action", base.Action,
					"account", base.Account.Short(),
				)
			}
		}
		return
	}
	if err := p.store.Append(ctx, base); err != nil && p.logger != nil {
		p.logger.Error("failed to persist notification",
			"error", err,
			"action", base.Action,
			"account", base.Account.Short(),
		)
	}
}

func (p *Publisher) List(ctx context.Context, account domain.Address) ([]Event, error) {
	return p.store.ListByAccount(ctx, account)
}
