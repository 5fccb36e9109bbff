// Package mail publishes outbound email events to the message broker. The
// identity flows never talk SMTP directly: they enqueue an event and the
// queue consumer delivers it, so a slow mail server cannot stall a request
// beyond the publish itself.
package mail

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/feastly/food-ordering-backend/internal/queue"
)

// QueueSender publishes EmailEvents to the durable email.outbound queue.
// A failed publish is returned to the caller, which decides whether it is
// fatal (OTP codes) or merely logged (welcome mail).
type QueueSender struct {
	URL string
}

// NewQueueSender resolves the broker URL from RABBITMQ_URL / AMQP_URL with a
// local default, matching how the consumer connects.
func NewQueueSender() *QueueSender {
	return &QueueSender{URL: q.BrokerURL()}
}

// SendOtp enqueues a verification-code email.
func (s *QueueSender) SendOtp(ctx context.Context, email, code, displayName string) error {
	return s.publish(ctx, q.EmailEvent{
		Kind:        q.EmailKindOtp,
		To:          email,
		DisplayName: displayName,
		OtpCode:     code,
		EnqueuedAt:  time.Now().UTC().Format(time.RFC3339),
	})
}

// SendWelcome enqueues a post-verification welcome email.
func (s *QueueSender) SendWelcome(ctx context.Context, email, displayName string) error {
	return s.publish(ctx, q.EmailEvent{
		Kind:        q.EmailKindWelcome,
		To:          email,
		DisplayName: displayName,
		EnqueuedAt:  time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *QueueSender) publish(ctx context.Context, ev q.EmailEvent) error {
	url := s.URL
	if url == "" {
		url = q.BrokerURL()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		log.Printf("mail: broker dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("mail: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so queued mail survives broker restarts.
	if _, err := ch.QueueDeclare(q.EmailQueueName, true, false, false, false, nil); err != nil {
		log.Printf("mail: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("mail: marshal event failed: %v", err)
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.EmailQueueName, false, false, pub); err != nil {
		log.Printf("mail: publish failed: %v", err)
		return err
	}
	return nil
}
