package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pinobite/storefront/internal/config"
	"github.com/pinobite/storefront/internal/types"
)

// Dispatcher queues events and delivers the rendered emails from a single
// background worker. Delivery failures are retried and then logged; they
// never reach the code that published the event.
type Dispatcher struct {
	mailer      types.Mailer
	logger      *slog.Logger
	queue       chan Event
	maxAttempts int
	backoff     time.Duration
	sendTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	started bool
}

func NewDispatcher(mailer types.Mailer, cfg config.MailConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 256
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		mailer:      mailer,
		logger:      logger.With("component", "notify"),
		queue:       make(chan Event, size),
		maxAttempts: attempts,
		backoff:     cfg.RetryBackoff,
		sendTimeout: timeout,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the delivery worker. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	d.wg.Add(1)
	go d.worker()
}

// Publish enqueues the event. When the queue is full the event is dropped
// and logged rather than blocking the request.
func (d *Dispatcher) Publish(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("dispatcher closed, dropping event", "event", fmt.Sprintf("%T", event), "to", event.Recipient())
		return
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Error("notification queue full, dropping event", "event", fmt.Sprintf("%T", event), "to", event.Recipient())
	}
}

// Close stops accepting events and waits for the queue to drain. If ctx
// expires first, in-flight retries are abandoned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	started := d.started
	d.mu.Unlock()

	if !started {
		d.cancel()
		return nil
	}

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
		return fmt.Errorf("notification queue not drained: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for event := range d.queue {
		if d.ctx.Err() != nil {
			d.logger.Warn("dropping event after shutdown deadline", "event", fmt.Sprintf("%T", event), "to", event.Recipient())
			continue
		}
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event Event) {
	msg, err := Render(event)
	if err != nil {
		d.logger.Error("failed to render notification", "event", fmt.Sprintf("%T", event), "error", err)
		return
	}
	if msg.To == "" {
		d.logger.Warn("notification has no recipient", "event", fmt.Sprintf("%T", event))
		return
	}

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(d.ctx, d.sendTimeout)
		err = d.mailer.Send(ctx, msg)
		cancel()

		if err == nil {
			d.logger.Info("email sent", "to", msg.To, "subject", msg.Subject, "attempt", attempt)
			return
		}

		d.logger.Warn("email send failed", "to", msg.To, "subject", msg.Subject, "attempt", attempt, "error", err)
		if attempt == d.maxAttempts {
			break
		}

		select {
		case <-time.After(d.backoff * time.Duration(attempt)):
		case <-d.ctx.Done():
			d.logger.Error("email abandoned at shutdown", "to", msg.To, "subject", msg.Subject)
			return
		}
	}

	d.logger.Error("email delivery failed", "to", msg.To, "subject", msg.Subject, "attempts", d.maxAttempts, "error", err)
}
