package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/merchkit/storefront/internal/dal/postgres"
	"github.com/merchkit/storefront/internal/dal/rabbitmq"
	changelogrepo "github.com/merchkit/storefront/internal/dal/repositories/changelog/postgres"
	"github.com/merchkit/storefront/internal/otel"
	"github.com/merchkit/storefront/internal/service/services/catalogsvc"
	"github.com/merchkit/storefront/internal/service/services/ordersvc"
	httptransport "github.com/merchkit/storefront/internal/transport/http"
	dispatchworker "github.com/merchkit/storefront/internal/worker/dispatch"
)

// App represents the storefront API application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	dispatchWorker *dispatchworker.Worker
	postgresClient *postgres.Client
	rabbitMqClient *rabbitmq.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new storefront application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()

	exchange := viper.GetString("rabbitmq.exchange")
	if exchange == "" {
		exchange = "order-events"
	}
	if err := rabbitMqClient.DeclareFanoutExchange(exchange); err != nil {
		panic(err)
	}

	// Downstream consumer queues are declared up front so no event published
	// before the consumers start is lost.
	for _, queueKey := range []string{"rabbitmq.notifier_queue", "rabbitmq.analytics_queue"} {
		queueName := viper.GetString(queueKey)
		if queueName == "" {
			continue
		}
		queue, err := rabbitMqClient.DeclareQueue(rabbitmq.DeclareQueueConfig{
			Name:    queueName,
			Durable: true,
		})
		if err != nil {
			panic(err)
		}
		if err := rabbitMqClient.BindQueue(queue.Name, exchange); err != nil {
			panic(err)
		}
	}

	catalog := catalogsvc.MustNewCatalog()

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithCatalog(catalog),
	)

	changeLogRepo := changelogrepo.NewChangeLogRepository(postgresClient.Pool())
	dispatchWorker := dispatchworker.NewWorker(changeLogRepo, rabbitMqClient)

	transport := httptransport.NewHTTPTransport(orderSvc, catalog)
	transport.RegisterRoutes()

	return &App{
		orderSvc:       orderSvc,
		transport:      transport,
		dispatchWorker: dispatchWorker,
		postgresClient: postgresClient,
		rabbitMqClient: rabbitMqClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting dispatch worker")
		a.dispatchWorker.Start(ctx)
	}()

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	a.dispatchWorker.Stop()
	slog.Info("Dispatch worker stopped gracefully")

	if err := a.transport.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}

	slog.Info("Application shutdown complete")
}
