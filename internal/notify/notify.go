// Package notify delivers appointment notifications on a best-effort
// basis. Failures are logged and never reach the booking path.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	TemplateAppointmentCreated   = "appointment_created"
	TemplateAppointmentCancelled = "appointment_cancelled"
	TemplateAppointmentStatus    = "appointment_status_changed"
	TemplateAppointmentCompleted = "appointment_completed"
)

type Recipient struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Message struct {
	ID         string         `json:"id"`
	Template   string         `json:"template"`
	Recipients []Recipient    `json:"recipients"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"created_at"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher queues messages for a background worker; the caller never
// waits for delivery and never sees its outcome.
type Dispatcher struct {
	sender  Sender
	logger  *slog.Logger
	timeout time.Duration
	queue   chan Message
	done    chan struct{}

	// mu guards closed; sends hold it shared so Close cannot close the
	// queue under them.
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		sender:  sender,
		logger:  logger,
		timeout: 5 * time.Second,
		queue:   make(chan Message, 256),
		done:    make(chan struct{}),
	}
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.sender.Send(ctx, msg)
		cancel()
		if err != nil {
			d.logger.Warn("notification failed",
				"template", msg.Template,
				"message_id", msg.ID,
				"err", err,
			)
		}
	}
}

func (d *Dispatcher) Notify(msg Message) {
	if d == nil {
		return
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("notification dispatcher closed, dropping message", "template", msg.Template)
		return
	}
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("notification queue full, dropping message", "template", msg.Template)
	}
}

// Close drains queued messages and stops the worker. Later calls to
// Notify are dropped; Close is safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

// LogSender only records the message. It is the fallback when no
// broker is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	s.Logger.InfoContext(ctx, "notification",
		"template", msg.Template,
		"message_id", msg.ID,
		"recipients", len(msg.Recipients),
	)
	return nil
}
