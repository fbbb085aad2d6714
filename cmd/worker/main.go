package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/pmihaylov/user-management-api/config"
	"github.com/pmihaylov/user-management-api/pkg/events"
	"github.com/pmihaylov/user-management-api/pkg/helpers"
	"github.com/pmihaylov/user-management-api/pkg/mailer"
)

// Consumes the user-events queue: sends the welcome email on registration and
// logs the rest as an audit trail.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	var mg *mailer.Mailgun
	if cfg.MailSendEnabled && cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" && cfg.MailgunSender != "" {
		mg = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		logger.Info("mail sending disabled; welcome emails will be logged only")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQEventQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEventQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	logger.Infof("worker consuming queue %q", cfg.RabbitMQEventQueue)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			logger.Info("worker shutting down")
			return
		case d, ok := <-msgs:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			handle(d, mg, logger)
		}
	}
}

func handle(d amqp.Delivery, mg *mailer.Mailgun, logger *logrus.Logger) {
	var ev events.UserEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		logger.Warnf("dropping malformed event: %v", err)
		_ = d.Nack(false, false)
		return
	}

	logger.Infof("event %s for %s", ev.Type, ev.Email)

	if ev.Type == events.UserRegistered && mg != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := mg.SendWelcome(ctx, ev.Email, ev.FirstName)
		cancel()
		if err != nil {
			logger.Warnf("welcome email to %s failed: %v", ev.Email, err)
			// requeue once; the broker redelivers
			_ = d.Nack(false, !d.Redelivered)
			return
		}
	}
	_ = d.Ack(false)
}
