package mail

import (
	"errors"
	"strings"
	"sync"

	"github.com/nuber-eats/nuber/pkg/logger"
	"github.com/nuber-eats/nuber/pkg/metrics"
)

var (
	// ErrQueueFull is returned by Enqueue when every worker is busy and the
	// queue is at capacity.
	ErrQueueFull = errors.New("mail: queue is full")

	// ErrClosed is returned by Enqueue after Close.
	ErrClosed = errors.New("mail: dispatcher is closed")
)

// Dispatcher sends messages on a bounded pool of workers. Enqueue never
// blocks the caller.
type Dispatcher struct {
	sender Sender
	jobs   chan *Message
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts workers goroutines sending through sender.
func NewDispatcher(sender Sender, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	d := &Dispatcher{
		sender: sender,
		jobs:   make(chan *Message, workers*16),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue schedules m for delivery.
func (d *Dispatcher) Enqueue(m *Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.jobs <- m:
		return nil
	default:
		metrics.MailsSent.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for queued ones to be sent.
// It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for m := range d.jobs {
		d.deliver(m)
	}
}

func (d *Dispatcher) deliver(m *Message) {
	defer func() {
		if r := recover(); r != nil {
			metrics.MailsSent.WithLabelValues("failed").Inc()
			logger.Error("mail: sender panicked", "panic", r)
		}
	}()

	if err := d.sender.Send(m); err != nil {
		metrics.MailsSent.WithLabelValues("failed").Inc()
		logger.Error("mail: send failed", "to", strings.Join(m.to, ","), "subject", m.subject, "error", err)
		return
	}
	metrics.MailsSent.WithLabelValues("sent").Inc()
}
