package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AMQPDispatcher publishes notification events to RabbitMQ. Reminders are
// in-process timers keyed by opaque handles; when one fires it publishes a
// push message like any other notification.
type AMQPDispatcher struct {
	url string
	log *zap.Logger

	mu     sync.Mutex
	timers map[string]reminderTimer
}

type reminderTimer struct {
	timer  *time.Timer
	userID string
}

func NewAMQPDispatcher(url string, log *zap.Logger) *AMQPDispatcher {
	return &AMQPDispatcher{
		url:    url,
		log:    log.With(zap.String("component", "dispatcher")),
		timers: make(map[string]reminderTimer),
	}
}

// publish opens a short-lived connection, declares the durable queue and
// publishes a persistent JSON message. Errors are logged and returned so
// callers can choose to ignore them.
func (d *AMQPDispatcher) publish(ctx context.Context, queue string, payload any) error {
	conn, err := amqp.Dial(d.url)
	if err != nil {
		d.log.Error("AMQP dial failed", zap.Error(err), zap.String("queue", queue))
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		d.log.Error("AMQP channel open failed", zap.Error(err), zap.String("queue", queue))
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		d.log.Error("AMQP queue declare failed", zap.Error(err), zap.String("queue", queue))
		return fmt.Errorf("amqp queue declare %s: %w", queue, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		d.log.Error("AMQP publish failed", zap.Error(err), zap.String("queue", queue))
		return fmt.Errorf("amqp publish %s: %w", queue, err)
	}

	return nil
}

func (d *AMQPDispatcher) ScheduleReminder(ctx context.Context, userID, message string, fireAt time.Time) (string, error) {
	handle := uuid.NewString()

	delay := time.Until(fireAt)
	if delay < 0 {
		delay = 0
	}

	timer := time.AfterFunc(delay, func() {
		d.mu.Lock()
		delete(d.timers, handle)
		d.mu.Unlock()

		pubCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()

		if err := d.publish(pubCtx, QueuePush, PushMessage{UserID: userID, Message: message}); err != nil {
			d.log.Warn("Reminder delivery failed",
				zap.Error(err),
				zap.String("handle", handle),
			)
		}
	})

	d.mu.Lock()
	d.timers[handle] = reminderTimer{timer: timer, userID: userID}
	d.mu.Unlock()

	d.log.Debug("Reminder scheduled",
		zap.String("handle", handle),
		zap.Time("fire_at", fireAt),
	)

	return handle, nil
}

func (d *AMQPDispatcher) CancelReminder(ctx context.Context, handle string) error {
	d.mu.Lock()
	entry, ok := d.timers[handle]
	if ok {
		delete(d.timers, handle)
	}
	d.mu.Unlock()

	// Unknown handles are fine: the reminder may have already fired.
	if ok {
		entry.timer.Stop()
		d.log.Debug("Reminder cancelled", zap.String("handle", handle))
	}

	return nil
}

func (d *AMQPDispatcher) SendImmediate(ctx context.Context, msg PushMessage) error {
	return d.publish(ctx, QueuePush, msg)
}

func (d *AMQPDispatcher) NotifyFriendsOfCheckIn(ctx context.Context, event CheckInCreatedEvent) error {
	return d.publish(ctx, QueueCheckInCreated, event)
}

func (d *AMQPDispatcher) NotifyFriendsOfCheckOut(ctx context.Context, event CheckInRemovedEvent) error {
	return d.publish(ctx, QueueCheckInRemoved, event)
}

// Close stops all pending reminder timers.
func (d *AMQPDispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for handle, entry := range d.timers {
		entry.timer.Stop()
		delete(d.timers, handle)
	}
}
