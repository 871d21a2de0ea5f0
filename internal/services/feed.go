package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/AnshRaj112/feedback-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	EventFeedbackCreated = "feedback.created"
	EventFeedbackUpdated = "feedback.updated"
	EventFeedbackDeleted = "feedback.deleted"

	feedChannel      = "feedback:events"
	subscriberBuffer = 16
	maxFeedBackoff   = 30 * time.Second
)

// FeedEvent is the payload sent to live feed subscribers.
type FeedEvent struct {
	Type      string           `json:"type"`
	Feedback  *models.Feedback `json:"feedback,omitempty"`
	ID        string           `json:"id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// FeedHub fans feedback events out to local subscribers. With a Redis client
// events travel through pub/sub so every instance sees every write.
type FeedHub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]chan FeedEvent

	redis  *redis.Client
	logger *zap.Logger
}

// NewFeedHub creates a hub. client may be nil for single-instance fan-out.
func NewFeedHub(client *redis.Client, logger *zap.Logger) *FeedHub {
	return &FeedHub{
		subscribers: make(map[uuid.UUID]chan FeedEvent),
		redis:       client,
		logger:      logger,
	}
}

// Subscribe registers a subscriber. The returned func unsubscribes and closes the channel.
func (h *FeedHub) Subscribe() (<-chan FeedEvent, func()) {
	id := uuid.New()
	ch := make(chan FeedEvent, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			close(ch)
			h.mu.Unlock()
		})
	}
}

// Subscribers reports the number of live subscribers.
func (h *FeedHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish delivers an event, via Redis when configured.
func (h *FeedHub) Publish(ctx context.Context, event FeedEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if h.redis != nil {
		data, err := json.Marshal(event)
		if err == nil {
			err = h.redis.Publish(ctx, feedChannel, data).Err()
		}
		if err == nil {
			return
		}
		h.logger.Warn("feed publish via redis failed, delivering locally", zap.Error(err))
	}
	h.fanOut(event)
}

// fanOut never blocks: a subscriber with a full buffer misses the event.
func (h *FeedHub) fanOut(event FeedEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			h.logger.Debug("feed subscriber is slow, dropping event", zap.String("subscriber", id.String()))
		}
	}
}

// Run relays Redis pub/sub messages to local subscribers until ctx is done.
// Without Redis it just waits for ctx.
func (h *FeedHub) Run(ctx context.Context) error {
	if h.redis == nil {
		<-ctx.Done()
		return nil
	}

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}

		err := h.relay(ctx)
		if ctx.Err() != nil {
			return nil
		}
		h.logger.Warn("feed subscriber error", zap.Error(err), zap.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxFeedBackoff)
	}
}

func (h *FeedHub) relay(ctx context.Context) error {
	pubsub := h.redis.Subscribe(ctx, feedChannel)
	defer pubsub.Close()

	h.logger.Info("✅ Feed Redis subscriber started", zap.String("channel", feedChannel))
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return err
		}

		var event FeedEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			h.logger.Warn("failed to unmarshal feed event", zap.Error(err))
			continue
		}
		h.fanOut(event)
	}
}
