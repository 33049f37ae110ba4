package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/rfq-portal/internal/application/dispatcher"
	"github.com/garyjia/rfq-portal/internal/domain/entity"
	"github.com/garyjia/rfq-portal/internal/domain/event"
)

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(msg string, keysAndValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Error(msg string, keysAndValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func TestNoticeFeed_PushAndDrain(t *testing.T) {
	feed := NewNoticeFeed(3)

	for i := 0; i < 5; i++ {
		feed.Push(entity.Notice{Title: fmt.Sprintf("n%d", i)})
	}

	pending := feed.Pending()
	require.Len(t, pending, 3)
	assert.Equal(t, "n2", pending[0].Title)
	assert.Equal(t, "n4", pending[2].Title)
	assert.False(t, pending[0].CreatedAt.IsZero())
	assert.Equal(t, 2, feed.Dropped())

	drained := feed.Drain()
	assert.Len(t, drained, 3)

	empty := feed.Drain()
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestNoticeFeed_DefaultCapacity(t *testing.T) {
	feed := NewNoticeFeed(0)
	for i := 0; i < 60; i++ {
		feed.Push(entity.Notice{Title: "x"})
	}
	assert.Len(t, feed.Pending(), 50)
	assert.Equal(t, 10, feed.Dropped())
}

func TestEventNotifier_RoundTrip(t *testing.T) {
	events := dispatcher.NewDispatcher()
	feed := NewNoticeFeed(10)
	feed.Attach(events)

	notifier := NewEventNotifier(events, &mockLogger{})
	created := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	notifier.Notify(context.Background(), entity.Notice{
		ID:          "notice-1",
		Kind:        entity.NoticeKindWarning,
		Title:       "No suppliers found",
		Description: "The server returned no supplier data.",
		CreatedAt:   created,
	})

	got := feed.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "notice-1", got[0].ID)
	assert.Equal(t, entity.NoticeKindWarning, got[0].Kind)
	assert.Equal(t, "No suppliers found", got[0].Title)
	assert.Equal(t, "The server returned no supplier data.", got[0].Description)
	assert.True(t, created.Equal(got[0].CreatedAt))
}

func TestEventNotifier_LogsDispatchFailure(t *testing.T) {
	events := dispatcher.NewDispatcher()
	events.Subscribe(event.TypeNoticeRaised, "broken", func(ctx context.Context, evt *event.Event) error {
		return fmt.Errorf("sink unavailable")
	})
	logger := &recordingLogger{}

	NewEventNotifier(events, logger).Notify(context.Background(), entity.Notice{Title: "t"})

	assert.Equal(t, []string{"Failed to dispatch notice"}, logger.errors)
}

func TestNoticeFromEvent_GeneratesID(t *testing.T) {
	evt := event.NewEvent(event.TypeNoticeRaised, map[string]interface{}{
		event.KeyKind:  entity.NoticeKindError,
		event.KeyTitle: "Failed to fetch quotations",
	})

	n := NoticeFromEvent(evt)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, entity.NoticeKindError, n.Kind)
	assert.Equal(t, "", n.Description)
}

func TestPortalService_NoticesReachFeed(t *testing.T) {
	events := dispatcher.NewDispatcher()
	feed := NewNoticeFeed(10)
	feed.Attach(events)

	data := routedData(supplierRows(), func(where string) ([]entity.Record, error) {
		return nil, fmt.Errorf("timeout")
	})
	svc := NewPortalService(data, NewEventNotifier(events, &mockLogger{}), events, testClassifier(), nil, DefaultPortalConfig(), &mockLogger{})

	svc.LoadSuppliers(context.Background())
	_, _ = svc.SelectSupplierByID(context.Background(), "42")

	got := feed.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "Failed to fetch quotations", got[0].Title)
	assert.Equal(t, "timeout", got[0].Description)
}

func TestLogSubscriber(t *testing.T) {
	logger := &recordingLogger{}
	h := LogSubscriber(logger)

	require.NoError(t, h(context.Background(), event.NewEvent(event.TypeSuppliersLoaded, map[string]interface{}{event.KeyCount: 2})))
	require.NoError(t, h(context.Background(), event.NewEvent(event.TypeLoadFailed, map[string]interface{}{event.KeyError: "boom"})))

	assert.Equal(t, []string{"Portal event"}, logger.infos)
	assert.Equal(t, []string{"Portal event"}, logger.errors)
}
