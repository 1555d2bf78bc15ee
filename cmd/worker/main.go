package main

import (
	"context"
	"log/slog"
	"os"

	"parish/config"
	"parish/internal/delivery"
	"parish/internal/delivery/worker"
	"parish/internal/delivery/worker/handler"
	logs "parish/internal/infra/log"
	"parish/internal/infra/mail"
	"parish/internal/infra/persistence/postgres"
	"parish/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewIntegrationRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			mail.NewDispatcher,
			impl.NewPrayerNotifier,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
