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
	"github.com/shopspring/decimal"
)

const (
	paystackLabel          = "Paystack"
	paystackDefaultBaseURL = "https://api.paystack.co"
)

// PaystackGateway initiates transactions through the Paystack API.
// Amounts are sent in kobo (NGN minor units).
type PaystackGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewPaystackGateway creates a Paystack gateway from configuration.
func NewPaystackGateway(cfg config.GatewayConfig) *PaystackGateway {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = paystackDefaultBaseURL
	}

	return &PaystackGateway{
		secretKey: cfg.SecretKey,
		baseURL:   baseURL,
		client:    newHTTPClient(),
	}
}

// Name returns the payment method this gateway serves.
func (g *PaystackGateway) Name() entity.PaymentMethod {
	return entity.PaymentMethodPaystack
}

// Initialize starts a Paystack transaction and returns the hosted checkout URL.
func (g *PaystackGateway) Initialize(ctx context.Context, req *service.InitiationRequest) (*service.InitiationResult, error) {
	payload := map[string]any{
		"email":        req.Email,
		"amount":       req.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency":     req.Currency,
		"reference":    req.Reference,
		"callback_url": req.CallbackURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(paystackLabel, err)
	}

	decoded, gwErr := decodeResponse(paystackLabel, resp)
	if gwErr != nil {
		return nil, gwErr
	}

	data := nestedMap(decoded, "data")
	authURL := nestedString(data, "authorization_url")
	if authURL == "" {
		return nil, service.NewBadPayloadError(paystackLabel, errors.New("authorization_url missing from response"))
	}

	return &service.InitiationResult{
		AuthorizationURL: authURL,
		TransactionID:    nestedString(data, "reference"),
		Raw:              decoded,
	}, nil
}
