package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

// DispatchFailure is reported on the dispatcher's error channel.
type DispatchFailure struct {
	Kind string
	To   string
	Err  error
}

// Dispatcher sends notifications in the background, each with its own timeout.
// A failed send is logged and counted; it never reaches the caller that queued it.
type Dispatcher struct {
	notifier domain.Notifier
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	errs   chan DispatchFailure

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(n domain.Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		notifier: n,
		timeout:  timeout,
		ctx:      ctx,
		cancel:   cancel,
		errs:     make(chan DispatchFailure, 64),
	}
}

// Errors exposes send failures for observers. Reports are dropped when nobody drains it.
func (d *Dispatcher) Errors() <-chan DispatchFailure { return d.errs }

// Dispatch queues n and returns immediately.
func (d *Dispatcher) Dispatch(kind string, n domain.Notification) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		log.Warn().Str("kind", kind).Str("to", n.To).Msg("dispatcher closed; notification dropped")
		observability.ObserveNotification(kind, "dropped")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
		defer cancel()

		err := d.notifier.Send(ctx, n)
		switch {
		case err == nil:
			observability.ObserveNotification(kind, "sent")
			log.Debug().Str("kind", kind).Str("to", n.To).Msg("notification sent")
			return
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			observability.ObserveNotification(kind, "timeout")
		default:
			observability.ObserveNotification(kind, "failed")
		}
		log.Error().Err(err).Str("kind", kind).Str("to", n.To).Msg("notification failed")
		select {
		case d.errs <- DispatchFailure{Kind: kind, To: n.To, Err: err}:
		default:
		}
	}()
}

// Shutdown stops accepting work and waits for in-flight sends. When ctx ends
// first, outstanding sends are cancelled and ctx.Err() is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
