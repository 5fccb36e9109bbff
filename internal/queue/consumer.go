package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the consumer's mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// StartEmailConsumer connects to the broker, declares the durable
// email.outbound queue and delivers each event over SMTP. It runs a
// reconnect loop with backoff and never returns under normal operation;
// undeliverable messages are rejected without requeue so a bad payload
// cannot spin the consumer.
func StartEmailConsumer(smtp SMTPConfig) error {
	url := BrokerURL()
	dialer := gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("email-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, dialer, smtp.From); err != nil {
			log.Printf("email-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, dialer *gomail.Dialer, from string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("email-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(EmailQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(EmailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, dialer, from); err != nil {
			log.Printf("email-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, dialer *gomail.Dialer, from string) error {
	var ev EmailEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	subject, html, err := RenderEmail(ev)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", ev.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", ev.To, err)
	}
	log.Printf("email-consumer: sent kind=%s to=%s", ev.Kind, ev.To)
	return nil
}

// RenderEmail maps an event to a subject line and HTML body.
func RenderEmail(ev EmailEvent) (subject, html string, err error) {
	name := ev.DisplayName
	if name == "" {
		name = "there"
	}
	switch ev.Kind {
	case EmailKindOtp:
		subject = "Verify Your Account"
		html = fmt.Sprintf(`
			<h2>Hi %s,</h2>
			<p>Your verification code is:</p>
			<h1>%s</h1>
			<p>The code expires shortly. If you did not request it, you can ignore this email.</p>
		`, name, ev.OtpCode)
	case EmailKindWelcome:
		subject = "Your Account Is Verified!"
		html = fmt.Sprintf(`
			<h2>Welcome, %s!</h2>
			<p>Your email address has been verified and your account is ready to use.</p>
			<p>Happy ordering!</p>
		`, name)
	default:
		return "", "", fmt.Errorf("unknown email kind %q", ev.Kind)
	}
	return subject, html, nil
}
