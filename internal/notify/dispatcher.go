package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher delivers messages in the background through a single worker.
// Delivery failures are logged and never reach the caller.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Message
	done   chan struct{}
	once   sync.Once
}

// NewDispatcher starts the worker. queueSize bounds pending messages; when
// full, Dispatch drops the message.
func NewDispatcher(sender Sender, queueSize int, timeout time.Duration, logger zerolog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		sender:  sender,
		timeout: timeout,
		logger:  logger,
		queue:   make(chan Message, queueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch queues msg and returns immediately. It reports whether the
// message was accepted.
func (d *Dispatcher) Dispatch(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn().Str("to", msg.To).Msg("notifier closed, dropping mail")
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Warn().Str("to", msg.To).Msg("notifier queue full, dropping mail")
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error().Err(err).Str("to", msg.To).Str("template", msg.Template).Msg("mail delivery failed")
		return
	}
	d.logger.Debug().Str("to", msg.To).Str("template", msg.Template).Msg("mail delivered")
}

// Close stops accepting messages and waits until queued ones are delivered
// or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
