package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"parish/config"
	"parish/internal/domain/entity"
	"parish/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	stripeLabel          = "Stripe"
	stripeDefaultBaseURL = "https://api.stripe.com"
)

// zeroDecimalCurrencies are charged in whole units on Stripe.
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// twoDecimalCurrencies are the supported currencies charged in hundredths.
var twoDecimalCurrencies = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "NGN": {}, "GHS": {}, "KES": {},
	"ZAR": {}, "CAD": {}, "AUD": {}, "NZD": {}, "INR": {}, "BRL": {},
	"MXN": {}, "SEK": {}, "NOK": {}, "DKK": {}, "CHF": {}, "PLN": {},
	"CZK": {}, "SGD": {}, "HKD": {}, "PHP": {}, "THB": {}, "MYR": {},
	"IDR": {}, "AED": {}, "SAR": {}, "EGP": {}, "ILS": {}, "TRY": {},
	"CNY": {}, "COP": {}, "ARS": {}, "PEN": {}, "TZS": {}, "XCD": {},
}

// IsSupportedCurrency reports whether the currency has a known Stripe
// minor-unit encoding. Unknown currencies are rejected up front instead of
// assuming a multiplier.
func IsSupportedCurrency(currency string) bool {
	code := strings.ToUpper(currency)
	if _, ok := zeroDecimalCurrencies[code]; ok {
		return true
	}
	_, ok := twoDecimalCurrencies[code]

	return ok
}

// MinorUnits converts a major-unit amount to the Stripe unit_amount for the
// currency.
func MinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	code := strings.ToUpper(currency)
	if _, ok := zeroDecimalCurrencies[code]; ok {
		return amount.IntPart(), nil
	}
	if _, ok := twoDecimalCurrencies[code]; ok {
		return amount.Mul(decimal.NewFromInt(100)).IntPart(), nil
	}

	return 0, errors.Errorf("unsupported currency %q", currency)
}

// StripeGateway creates Stripe Checkout sessions. Stripe's API takes
// form-encoded bodies rather than JSON.
type StripeGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewStripeGateway creates a Stripe gateway from configuration.
func NewStripeGateway(cfg config.GatewayConfig) *StripeGateway {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = stripeDefaultBaseURL
	}

	return &StripeGateway{
		secretKey: cfg.SecretKey,
		baseURL:   baseURL,
		client:    newHTTPClient(),
	}
}

// Name returns the payment method this gateway serves.
func (g *StripeGateway) Name() entity.PaymentMethod {
	return entity.PaymentMethodStripe
}

// Initialize creates a Checkout session and returns its hosted URL.
func (g *StripeGateway) Initialize(ctx context.Context, req *service.InitiationRequest) (*service.InitiationResult, error) {
	unitAmount, err := MinorUnits(req.Amount, req.Currency)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", req.Reference)
	form.Set("customer_email", req.Email)
	form.Set("success_url", fmt.Sprintf("%s?status=successful&reference=%s", req.CallbackURL, req.Reference))
	form.Set("cancel_url", fmt.Sprintf("%s?status=cancelled&reference=%s", req.CallbackURL, req.Reference))
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(unitAmount, 10))
	form.Set("line_items[0][price_data][product_data][name]", "Donation")
	form.Set("line_items[0][quantity]", "1")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(stripeLabel, err)
	}

	decoded, gwErr := decodeResponse(stripeLabel, resp)
	if gwErr != nil {
		return nil, gwErr
	}

	checkoutURL := nestedString(decoded, "url")
	if checkoutURL == "" {
		return nil, service.NewBadPayloadError(stripeLabel, errors.New("checkout url missing from response"))
	}

	return &service.InitiationResult{
		AuthorizationURL: checkoutURL,
		TransactionID:    nestedString(decoded, "id"),
		Raw:              decoded,
	}, nil
}
