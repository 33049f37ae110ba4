package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/rfq-portal/internal/application/dispatcher"
	"github.com/garyjia/rfq-portal/internal/domain/entity"
	"github.com/garyjia/rfq-portal/internal/domain/event"
)

// EventNotifier publishes notices as notice.raised events
type EventNotifier struct {
	events dispatcher.Dispatcher
	logger Logger
}

// NewEventNotifier creates a notifier backed by the dispatcher
func NewEventNotifier(events dispatcher.Dispatcher, logger Logger) *EventNotifier {
	return &EventNotifier{events: events, logger: logger}
}

// Notify dispatches the notice. Dispatch failures are logged, never returned.
func (n *EventNotifier) Notify(ctx context.Context, notice entity.Notice) {
	evt := event.NewEvent(event.TypeNoticeRaised, map[string]interface{}{
		event.KeyKind:        notice.Kind,
		event.KeyTitle:       notice.Title,
		event.KeyDescription: notice.Description,
	})
	if notice.ID != "" {
		evt.CorrelationID = notice.ID
	}
	if !notice.CreatedAt.IsZero() {
		evt.Timestamp = notice.CreatedAt
	}
	if err := n.events.Dispatch(ctx, evt); err != nil {
		n.logger.Error("Failed to dispatch notice", "title", notice.Title, "error", err)
	}
}

// NoticeFromEvent rebuilds a notice from a notice.raised event
func NoticeFromEvent(evt *event.Event) entity.Notice {
	id := evt.CorrelationID
	if id == "" {
		id = uuid.NewString()
	}
	return entity.Notice{
		ID:          id,
		Kind:        evt.GetPayloadString(event.KeyKind),
		Title:       evt.GetPayloadString(event.KeyTitle),
		Description: evt.GetPayloadString(event.KeyDescription),
		CreatedAt:   evt.Timestamp,
	}
}

// NoticeFeed buffers the most recent notices until the presentation layer drains them
type NoticeFeed struct {
	mu       sync.Mutex
	capacity int
	notices  []entity.Notice
	dropped  int
}

// NewNoticeFeed creates a feed keeping at most capacity notices
func NewNoticeFeed(capacity int) *NoticeFeed {
	if capacity <= 0 {
		capacity = 50
	}
	return &NoticeFeed{capacity: capacity}
}

// Attach subscribes the feed to notice events
func (f *NoticeFeed) Attach(events dispatcher.Dispatcher) {
	events.Subscribe(event.TypeNoticeRaised, "notice-feed", f.Handle)
}

// Handle records a notice.raised event
func (f *NoticeFeed) Handle(_ context.Context, evt *event.Event) error {
	f.Push(NoticeFromEvent(evt))
	return nil
}

// Push appends a notice, evicting the oldest when full
func (f *NoticeFeed) Push(n entity.Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	f.notices = append(f.notices, n)
	if over := len(f.notices) - f.capacity; over > 0 {
		f.notices = append([]entity.Notice(nil), f.notices[over:]...)
		f.dropped += over
	}
}

// Pending returns buffered notices without removing them
func (f *NoticeFeed) Pending() []entity.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.Notice{}, f.notices...)
}

// Drain returns and removes all buffered notices
func (f *NoticeFeed) Drain() []entity.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.notices
	f.notices = nil
	if out == nil {
		out = []entity.Notice{}
	}
	return out
}

// Dropped reports how many notices were evicted unread
func (f *NoticeFeed) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// LogSubscriber writes load outcome events to the logger
func LogSubscriber(logger Logger) dispatcher.Handler {
	return func(_ context.Context, evt *event.Event) error {
		kv := []interface{}{"event_type", evt.Type, "event_id", evt.ID}
		for k, v := range evt.Payload {
			kv = append(kv, k, v)
		}
		if evt.Type == event.TypeLoadFailed {
			logger.Error("Portal event", kv...)
		} else {
			logger.Info("Portal event", kv...)
		}
		return nil
	}
}
