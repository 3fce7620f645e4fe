package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	defaultQueueSize     = 64
	defaultNotifyTimeout = 10 * time.Second
)

// Dispatcher delivers events to a Notifier on its own goroutine so that
// slow sinks never hold up a poll.
type Dispatcher struct {
	notifier Notifier
	logger   *zap.Logger
	timeout  time.Duration

	queue chan Event
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	dropped atomic.Int64

	closeOnce sync.Once
	closeErr  error
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithQueueSize sets how many events may wait for delivery.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Event, n)
		}
	}
}

// WithTimeout bounds each delivery.
func WithTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// WithDispatchLogger sets the logger for delivery failures.
func WithDispatchLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher starts a dispatcher for n.
func NewDispatcher(n Notifier, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier: n,
		logger:   zap.NewNop(),
		timeout:  defaultNotifyTimeout,
		queue:    make(chan Event, defaultQueueSize),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("notify")

	go d.run()
	return d
}

// Send queues ev. It never blocks: when the queue is full the event is
// dropped and false is returned.
func (d *Dispatcher) Send(ev Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	select {
	case d.queue <- ev:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("Notification queue full, dropping alert event",
			zap.String("alert_id", ev.ID),
			zap.String("kind", string(ev.Kind)))
		return false
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.notifier.Notify(ctx, ev); err != nil {
			d.logger.Error("Failed to deliver alert event",
				zap.String("alert_id", ev.ID),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
		}
		cancel()
	}
}

// Close delivers the queued events, then closes the notifier. It waits at
// most until ctx is done; the notifier is closed either way and events
// still queued at that point are lost.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return d.closeNotifier()
	case <-ctx.Done():
		return errors.Join(ctx.Err(), d.closeNotifier())
	}
}

func (d *Dispatcher) closeNotifier() error {
	d.closeOnce.Do(func() { d.closeErr = d.notifier.Close() })
	return d.closeErr
}
