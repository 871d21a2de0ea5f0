package services

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/feedback-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestFeedHubFanOut(t *testing.T) {
	hub := NewFeedHub(nil, zaptest.NewLogger(t))
	a, unsubA := hub.Subscribe()
	defer unsubA()
	b, unsubB := hub.Subscribe()
	defer unsubB()

	rec := models.Feedback{ID: "x", Name: "A"}
	hub.Publish(context.Background(), FeedEvent{Type: EventFeedbackCreated, Feedback: &rec})

	for _, ch := range []<-chan FeedEvent{a, b} {
		select {
		case ev := <-ch:
			assert.Equal(t, EventFeedbackCreated, ev.Type)
			require.NotNil(t, ev.Feedback)
			assert.Equal(t, "x", ev.Feedback.ID)
			assert.False(t, ev.Timestamp.IsZero())
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestFeedHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewFeedHub(nil, zaptest.NewLogger(t))
	ch, unsub := hub.Subscribe()
	assert.Equal(t, 1, hub.Subscribers())

	unsub()
	unsub()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers())

	hub.Publish(context.Background(), FeedEvent{Type: EventFeedbackDeleted, ID: "x"})
}

func TestFeedHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewFeedHub(nil, zaptest.NewLogger(t))
	ch, unsub := hub.Subscribe()
	defer unsub()

	done := make(chan struct{})
	go func() {
		for range subscriberBuffer * 3 {
			hub.Publish(context.Background(), FeedEvent{Type: EventFeedbackUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestFeedHubRunWithoutRedisStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewFeedHub(nil, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
