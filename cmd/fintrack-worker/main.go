package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/mail"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting fintrack-worker")

	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	// Initialize the mailer. Without SMTP settings it only logs, which
	// keeps the worker usable in development.
	mailer := mail.New(mail.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUser,
		Password:  cfg.SMTPPass,
		From:      cfg.MailFrom,
		ClientURL: cfg.ClientURL,
	}, logger)
	if !mailer.Configured() {
		logger.Info("SMTP disabled - notifications will be logged only")
	}

	// Initialize AMQP client for consuming notifications
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := amqpClient.ConsumeNotifications(ctx, func(n *amqp.Notification) error {
			switch n.Kind {
			case amqp.KindWelcome:
				return mailer.SendWelcome(n.Email, n.Name)
			case amqp.KindPasswordReset:
				return mailer.SendPasswordReset(n.Email, n.Token)
			default:
				// Unknown kinds are dropped, not requeued forever.
				logger.Warn("Unknown notification kind, dropping", "kind", n.Kind)
				return nil
			}
		}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Notification consumption failed", log.FieldError, err)
			cancel()
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give the in-flight delivery a moment to ack before closing
	time.Sleep(1 * time.Second)
	logger.Info("Worker shutdown complete")
}
