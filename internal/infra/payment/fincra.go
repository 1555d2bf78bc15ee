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
	fincraLabel          = "Fincra"
	fincraDefaultBaseURL = "https://api.fincra.com"
)

// FincraGateway initiates checkouts through the Fincra API.
// Amounts are sent as decimal strings and the payer name is required.
type FincraGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewFincraGateway creates a Fincra gateway from configuration.
func NewFincraGateway(cfg config.GatewayConfig) *FincraGateway {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fincraDefaultBaseURL
	}

	return &FincraGateway{
		secretKey: cfg.SecretKey,
		baseURL:   baseURL,
		client:    newHTTPClient(),
	}
}

// Name returns the payment method this gateway serves.
func (g *FincraGateway) Name() entity.PaymentMethod {
	return entity.PaymentMethodFincra
}

// Initialize starts a Fincra checkout and returns the hosted payment link.
func (g *FincraGateway) Initialize(ctx context.Context, req *service.InitiationRequest) (*service.InitiationResult, error) {
	payload := map[string]any{
		"amount":      req.Amount.StringFixed(2),
		"currency":    req.Currency,
		"reference":   req.Reference,
		"redirectUrl": req.CallbackURL,
		"paymentType": "card",
		"country":     req.Customer.Country,
		"customer": map[string]any{
			"firstName": req.Customer.FirstName,
			"lastName":  req.Customer.LastName,
			"email":     req.Email,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/checkout/payments", bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(fincraLabel, err)
	}

	decoded, gwErr := decodeResponse(fincraLabel, resp)
	if gwErr != nil {
		return nil, gwErr
	}

	data := nestedMap(decoded, "data")
	checkoutURL := nestedString(data, "checkoutUrl")
	if checkoutURL == "" {
		return nil, service.NewBadPayloadError(fincraLabel, errors.New("checkoutUrl missing from response"))
	}

	return &service.InitiationResult{
		AuthorizationURL: checkoutURL,
		TransactionID:    nestedString(data, "transactionReference"),
		Raw:              decoded,
	}, nil
}
