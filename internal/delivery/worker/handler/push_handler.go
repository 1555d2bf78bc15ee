// Package handler contains the Pub/Sub push handler for the worker.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"parish/config"
	deliverycontext "parish/internal/delivery/context"
	"parish/internal/domain/constants"
	"parish/internal/domain/service"
	"parish/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// PushHandler handles Pub/Sub push messages carrying prayer events.
type PushHandler struct {
	verifyPushAuth bool
	logger         *slog.Logger
	notifier       usecase.PrayerNotifier
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config   *config.Config
	Logger   *slog.Logger
	Notifier usecase.PrayerNotifier
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Only Google-delivered pushes outside develop carry a verifiable token
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	return &PushHandler{
		verifyPushAuth: verifyPushAuth,
		logger:         params.Logger,
		notifier:       params.Notifier,
	}
}

// HandlePush handles incoming Pub/Sub push messages
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event service.PrayerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse prayer event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Propagate request_id for distributed tracing
	requestID := h.extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing prayer event",
		slog.String("prayer_id", event.PrayerID),
		slog.String("subject", event.Subject),
	)

	if err := h.notifier.NotifyPrayer(ctx, &event); err != nil {
		reqLogger.Error("[Worker] Failed to notify prayer team",
			slog.String("prayer_id", event.PrayerID),
			slog.Any("error", err),
		)
		// 503 makes Pub/Sub redeliver; email transports fail transiently
		return c.NoContent(http.StatusServiceUnavailable)
	}

	reqLogger.Info("[Worker] Prayer event processed successfully",
		slog.String("prayer_id", event.PrayerID),
	)

	return c.NoContent(http.StatusOK)
}

// extractRequestID extracts request_id from message attributes, event, or generates a new one
func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *service.PrayerEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	if event.RequestID != "" {
		return event.RequestID
	}

	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// The audience is the URL of this push endpoint
	scheme := "https"
	if req.TLS == nil {
		scheme = "http" // For local development
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	ctx := req.Context()
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
