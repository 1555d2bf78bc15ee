package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"parish/config"
	"parish/internal/domain/entity"
	"parish/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	flutterwaveLabel          = "Flutterwave"
	flutterwaveDefaultBaseURL = "https://api.flutterwave.com"
)

// FlutterwaveGateway initiates payments through the Flutterwave v3 API.
// Amounts are sent as decimal strings in major units.
type FlutterwaveGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewFlutterwaveGateway creates a Flutterwave gateway from configuration.
func NewFlutterwaveGateway(cfg config.GatewayConfig) *FlutterwaveGateway {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = flutterwaveDefaultBaseURL
	}

	return &FlutterwaveGateway{
		secretKey: cfg.SecretKey,
		baseURL:   baseURL,
		client:    newHTTPClient(),
	}
}

// Name returns the payment method this gateway serves.
func (g *FlutterwaveGateway) Name() entity.PaymentMethod {
	return entity.PaymentMethodFlutterwave
}

// Initialize starts a Flutterwave payment and returns the hosted link.
func (g *FlutterwaveGateway) Initialize(ctx context.Context, req *service.InitiationRequest) (*service.InitiationResult, error) {
	payload := map[string]any{
		"tx_ref":       req.Reference,
		"amount":       req.Amount.String(),
		"currency":     req.Currency,
		"redirect_url": req.CallbackURL,
		"customer": map[string]any{
			"email": req.Email,
		},
		"payment_options": "card",
		"customizations": map[string]any{
			"title": "Donation",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v3/payments", bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(flutterwaveLabel, err)
	}

	decoded, gwErr := decodeResponse(flutterwaveLabel, resp)
	if gwErr != nil {
		return nil, gwErr
	}

	data := nestedMap(decoded, "data")
	link := nestedString(data, "link")
	if link == "" {
		return nil, service.NewBadPayloadError(flutterwaveLabel, errors.New("payment link missing from response"))
	}

	return &service.InitiationResult{
		AuthorizationURL: link,
		TransactionID:    nestedNumberOrString(data, "id"),
		Raw:              decoded,
	}, nil
}
