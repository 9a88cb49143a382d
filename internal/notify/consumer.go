package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pickleradar/internal/data/repository"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Consumer is the background worker that drains the notification queues.
// Check-in events fan out to the user's friends; push messages go straight
// to the delivery log. A real push provider would slot in where deliver is
// called.
type Consumer struct {
	url     string
	friends repository.FriendRepository
	log     *zap.Logger
}

func NewConsumer(url string, friends repository.FriendRepository, log *zap.Logger) *Consumer {
	return &Consumer{
		url:     url,
		friends: friends,
		log:     log.With(zap.String("component", "notify-consumer")),
	}
}

// Run consumes all notification queues until ctx is cancelled. Each queue
// gets its own reconnect loop with capped exponential backoff.
func (c *Consumer) Run(ctx context.Context) {
	go c.consumeLoop(ctx, QueueCheckInCreated, c.handleCheckInCreated)
	go c.consumeLoop(ctx, QueueCheckInRemoved, c.handleCheckInRemoved)
	go c.consumeLoop(ctx, QueuePush, c.handlePush)
}

func (c *Consumer) consumeLoop(ctx context.Context, queue string, handler func(context.Context, []byte) error) {
	backoff := time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		err := c.consume(ctx, queue, handler)
		if err != nil && ctx.Err() == nil {
			c.log.Warn("Consumer disconnected, retrying",
				zap.Error(err),
				zap.String("queue", queue),
				zap.Duration("backoff", backoff),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if backoff < 30*time.Second {
			backoff *= 2
		} else {
			backoff = 30 * time.Second
		}
	}
}

func (c *Consumer) consume(ctx context.Context, queue string, handler func(context.Context, []byte) error) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("Set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s: %w", queue, err)
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handler(ctx, d.Body); err != nil {
				c.log.Error("Handle message failed",
					zap.Error(err),
					zap.String("queue", queue),
				)
				// Reject without requeue to avoid tight redelivery loops.
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleCheckInCreated(ctx context.Context, body []byte) error {
	var event CheckInCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal check-in event: %w", err)
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return fmt.Errorf("invalid user ID in event: %w", err)
	}

	friendIDs, err := c.friends.ListFriendIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve friends for fan-out: %w", err)
	}

	message := fmt.Sprintf("%s checked in at %s (%s, %d min)",
		event.DisplayName, event.CourtName, event.SkillLevel, event.DurationMinutes)

	for _, friendID := range friendIDs {
		c.deliver(friendID.String(), message)
	}

	return nil
}

func (c *Consumer) handleCheckInRemoved(ctx context.Context, body []byte) error {
	var event CheckInRemovedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("unmarshal check-out event: %w", err)
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return fmt.Errorf("invalid user ID in event: %w", err)
	}

	friendIDs, err := c.friends.ListFriendIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve friends for fan-out: %w", err)
	}

	message := fmt.Sprintf("%s checked out of %s", event.DisplayName, event.CourtName)

	for _, friendID := range friendIDs {
		c.deliver(friendID.String(), message)
	}

	return nil
}

func (c *Consumer) handlePush(ctx context.Context, body []byte) error {
	var msg PushMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal push message: %w", err)
	}

	c.deliver(msg.UserID, msg.Message)
	return nil
}

func (c *Consumer) deliver(userID, message string) {
	c.log.Info("Notification delivered",
		zap.String("user_id", userID),
		zap.String("message", message),
	)
}
