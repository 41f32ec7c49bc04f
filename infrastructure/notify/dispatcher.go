package notify

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"backoffice/domain/shared"
	"backoffice/pkg/logger"
	"backoffice/pkg/metrics"

	"go.uber.org/zap"
)

// Sink delivers one encoded event to an external system.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event string, body []byte) error
}

const DefaultDispatchTimeout = 5 * time.Second

// Dispatcher is the in-process fan-out. Sinks are fixed at construction.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	log     *zap.Logger

	// mu orders wg.Add in Publish against the final Wait in Close.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		log:     logger.Named("notify"),
	}
}

// Sinks returns the registered sink names.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, len(d.sinks))
	for i, s := range d.sinks {
		names[i] = s.Name()
	}
	return names
}

// Publish returns immediately. Deliveries outlive the caller's context
// but are bounded by the dispatch timeout.
func (d *Dispatcher) Publish(ctx context.Context, events ...shared.DomainEvent) {
	if len(d.sinks) == 0 {
		return
	}
	base := context.WithoutCancel(ctx)
	log := logger.Ctx(ctx, d.log)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		log.Warn("Dispatcher closed, dropping events", zap.Int("events", len(events)))
		return
	}

	for _, event := range events {
		env, body, err := Encode(event)
		if err != nil {
			log.Error("Dropping invalid event", zap.Error(err))
			continue
		}
		for _, sink := range d.sinks {
			d.wg.Add(1)
			go d.deliver(base, log, sink, env, body)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, log *zap.Logger, sink Sink, env Envelope, body []byte) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			metrics.ObserveDelivery(sink.Name(), metrics.OutcomeFailure)
			log.Error("Sink panicked",
				zap.String("sink", sink.Name()),
				zap.String("event", env.Event),
				zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := sink.Deliver(ctx, env.Event, body)
	switch {
	case err == nil:
		metrics.ObserveDelivery(sink.Name(), metrics.OutcomeSuccess)
	case errors.Is(err, context.DeadlineExceeded):
		metrics.ObserveDelivery(sink.Name(), metrics.OutcomeTimeout)
		log.Warn("Event delivery timed out",
			zap.String("sink", sink.Name()),
			zap.String("event", env.Event),
			zap.String("event_id", env.ID),
			zap.Duration("timeout", d.timeout))
	default:
		metrics.ObserveDelivery(sink.Name(), metrics.OutcomeFailure)
		log.Error("Event delivery failed",
			zap.String("sink", sink.Name()),
			zap.String("event", env.Event),
			zap.String("event_id", env.ID),
			zap.String("aggregate_id", env.AggregateID),
			zap.Error(err))
	}
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting events, waits for in-flight deliveries and closes
// sinks that hold connections. Publish after Close is a no-op.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
	var errs []error
	for _, s := range d.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

var _ shared.Notifier = (*Dispatcher)(nil)
