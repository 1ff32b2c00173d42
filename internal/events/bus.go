package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"feedesk/pkg/logger"
)

type Topic string

const (
	TopicPaymentProcessed Topic = "payment.processed"
	TopicSessionExpired   Topic = "session.expired"
	TopicNotification     Topic = "notification"
)

// Level is the severity of a user-facing notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Event struct {
	Topic      Topic       `json:"topic"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Notification is the payload of TopicNotification events.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// PaymentProcessed is the payload of TopicPaymentProcessed events.
type PaymentProcessed struct {
	SubmissionID   string `json:"submission_id"`
	StudentID      int64  `json:"student_id"`
	AcademicYearID int64  `json:"academic_year_id"`
	TotalAmount    string `json:"total_amount"`
	LineCount      int    `json:"line_count"`
}

// SessionExpired is the payload of TopicSessionExpired events.
type SessionExpired struct {
	Subject string `json:"subject,omitempty"`
	Reason  string `json:"reason"`
}

type Handler func(ctx context.Context, e Event)

// Bus decouples producers of application events from their consumers.
type Bus interface {
	Publish(ctx context.Context, e Event)
	Subscribe(topic Topic, h Handler) (unsubscribe func())
}

// MemoryBus delivers events synchronously to the subscribers of a topic.
type MemoryBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[Topic]map[int]Handler
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[Topic]map[int]Handler)}
}

func (b *MemoryBus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[topic], id)
	}
}

func (b *MemoryBus) Publish(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[e.Topic]))
	for _, h := range b.handlers[e.Topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.deliver(ctx, h, e)
	}
}

func (b *MemoryBus) deliver(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().WithFields(map[string]interface{}{
				"topic": e.Topic,
				"panic": fmt.Sprint(r),
			}).Error("Event handler panicked")
		}
	}()
	h(ctx, e)
}

// Notify publishes a user-facing notification.
func Notify(ctx context.Context, bus Bus, level Level, message string) {
	if bus == nil {
		return
	}
	bus.Publish(ctx, Event{
		Topic:   TopicNotification,
		Payload: Notification{Level: level, Message: message},
	})
}
