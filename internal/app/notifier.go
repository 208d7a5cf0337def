package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/merchkit/storefront/internal/dal/mailer"
	"github.com/merchkit/storefront/internal/dal/rabbitmq"
	"github.com/merchkit/storefront/internal/dal/redis"
	markerrepo "github.com/merchkit/storefront/internal/dal/repositories/marker/redis"
	"github.com/merchkit/storefront/internal/otel"
	"github.com/merchkit/storefront/internal/service/services/notifysvc"
	"github.com/merchkit/storefront/internal/transport/consumer"
)

// NotifierApp represents the email notification consumer application.
type NotifierApp struct {
	notifySvc      *notifysvc.NotifyService
	consumerTransp *consumer.Consumer
	rabbitMqClient *rabbitmq.Client
	redisClient    *redis.Client
	otelController *otel.OtelController
}

// MustNewNotifierApp creates a new notifier application.
func MustNewNotifierApp() *NotifierApp {
	otelController := otel.MustInitOtel()
	rabbitMqClient := rabbitmq.MustNewClient()
	redisClient := redis.MustNewClient()

	markerTTL := time.Duration(viper.GetInt("notifier.marker_ttl_hours")) * time.Hour
	markerRepository := markerrepo.NewMarkerRepository(redisClient, markerTTL)

	notifySvc := notifysvc.MustNewNotifyService(
		notifysvc.WithMarkerRepository(markerRepository),
		notifysvc.WithEmailSender(mailer.MustNewMailer()),
	)

	consumerTransp := consumer.NewConsumer(rabbitMqClient, notifySvc)

	return &NotifierApp{
		notifySvc:      notifySvc,
		consumerTransp: consumerTransp,
		rabbitMqClient: rabbitMqClient,
		redisClient:    redisClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *NotifierApp) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting consumer")
		if err := a.consumerTransp.Run(ctx); err != nil {
			slog.Error("Consumer error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	if err := a.consumerTransp.Shutdown(); err != nil {
		slog.Error("Consumer shutdown error", "error", err)
	} else {
		slog.Info("Consumer stopped gracefully")
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	if err := a.redisClient.Close(); err != nil {
		slog.Error("Redis connection close error", "error", err)
	} else {
		slog.Info("Redis connection closed gracefully")
	}

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}

	slog.Info("Application shutdown complete")
}
