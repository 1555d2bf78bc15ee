package main

import (
	"context"
	"log/slog"
	"os"

	"parish/config"
	"parish/internal/delivery"
	"parish/internal/delivery/http"
	"parish/internal/delivery/http/middleware"
	"parish/internal/delivery/http/router/handler"
	"parish/internal/domain/service"
	"parish/internal/infra/auth"
	logs "parish/internal/infra/log"
	"parish/internal/infra/mail"
	"parish/internal/infra/oauth"
	"parish/internal/infra/payment"
	"parish/internal/infra/persistence/postgres"
	"parish/internal/infra/pubsub"
	"parish/internal/infra/qrcode"
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
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
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
			postgres.NewDonationRepository,
			postgres.NewPrayerRepository,
			postgres.NewIntegrationRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			payment.NewRegistry,
			oauth.NewRegistry,
			newStateStore,
			mail.NewDispatcher,
			pubsub.NewEventPublisher,
			newQRCodeService,
		),
	)
}

// newStateStore creates the in-memory OAuth state store
func newStateStore() service.StateStore {
	return oauth.NewMemoryStateStore()
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewDonationService,
			impl.NewOAuthService,
			impl.NewUserService,
			impl.NewPrayerService,
			impl.NewPrayerNotifier,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewDonationHandler,
			handler.NewWebhookHandler,
			handler.NewOAuthHandler,
			handler.NewPrayerHandler,
			handler.NewUserHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
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
