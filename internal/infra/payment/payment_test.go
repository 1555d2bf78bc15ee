package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"parish/internal/domain/entity"
	"parish/internal/domain/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInitiationRequest(amount string, currency string) *service.InitiationRequest {
	return &service.InitiationRequest{
		Amount:      decimal.RequireFromString(amount),
		Currency:    currency,
		Email:       "donor@example.com",
		Reference:   "ref-123",
		CallbackURL: "https://parish.example.com/payment/callback",
	}
}

func TestPaystackInitialize_SendsKoboAmount(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref-123"}}`))
	}))
	defer srv.Close()

	g := &PaystackGateway{secretKey: "sk_test", baseURL: srv.URL, client: srv.Client()}

	result, err := g.Initialize(context.Background(), newInitiationRequest("50.00", "NGN"))
	require.NoError(t, err)

	assert.Equal(t, "/transaction/initialize", gotPath)
	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, float64(5000), gotBody["amount"])
	assert.Equal(t, "NGN", gotBody["currency"])
	assert.Equal(t, "ref-123", gotBody["reference"])
	assert.Equal(t, "https://checkout.paystack.com/abc", result.AuthorizationURL)
	assert.Equal(t, "ref-123", result.TransactionID)
}

func TestPaystackInitialize_Non200Response(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()

	g := &PaystackGateway{secretKey: "sk_test", baseURL: srv.URL, client: srv.Client()}

	_, err := g.Initialize(context.Background(), newInitiationRequest("50.00", "NGN"))
	require.Error(t, err)

	var gwErr *service.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, service.GatewayErrorHTTPStatus, gwErr.Kind)
	assert.Equal(t, "Non-200 response (400)", gwErr.FailureMessage())
}

func TestPaystackInitialize_Accepts2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://checkout.paystack.com/abc","reference":"ref-123"}}`))
	}))
	defer srv.Close()

	g := &PaystackGateway{secretKey: "sk_test", baseURL: srv.URL, client: srv.Client()}

	result, err := g.Initialize(context.Background(), newInitiationRequest("50.00", "NGN"))
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", result.AuthorizationURL)
}

func TestPaystackInitialize_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	g := &PaystackGateway{secretKey: "sk_test", baseURL: srv.URL, client: srv.Client()}

	_, err := g.Initialize(context.Background(), newInitiationRequest("50.00", "NGN"))

	var gwErr *service.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, service.GatewayErrorBadPayload, gwErr.Kind)
}

func TestPaystackInitialize_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := &PaystackGateway{secretKey: "sk_test", baseURL: srv.URL, client: newHTTPClient()}

	_, err := g.Initialize(context.Background(), newInitiationRequest("50.00", "NGN"))

	var gwErr *service.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, service.GatewayErrorTransport, gwErr.Kind)
	assert.True(t, strings.HasPrefix(gwErr.FailureMessage(), "Request to Paystack failed: "))
}

func TestFincraInitialize_SendsStringAmountAndCustomer(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/payments", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		_, _ = w.Write([]byte(`{"success":true,"data":{"checkoutUrl":"https://checkout.fincra.com/xyz","transactionReference":"txn_1"}}`))
	}))
	defer srv.Close()

	g := &FincraGateway{secretKey: "fk_test", baseURL: srv.URL, client: srv.Client()}

	req := newInitiationRequest("40.00", "NGN")
	req.Customer = service.Customer{FirstName: "Ada", LastName: "Obi", Country: "NG"}

	result, err := g.Initialize(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "40.00", gotBody["amount"])
	assert.Equal(t, "NG", gotBody["country"])
	assert.Equal(t, "card", gotBody["paymentType"])

	customer, ok := gotBody["customer"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada", customer["firstName"])
	assert.Equal(t, "Obi", customer["lastName"])
	assert.Equal(t, "donor@example.com", customer["email"])

	assert.Equal(t, "https://checkout.fincra.com/xyz", result.AuthorizationURL)
	assert.Equal(t, "txn_1", result.TransactionID)
}

func TestFincraInitialize_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	g := &FincraGateway{
		secretKey: "fk_test",
		baseURL:   srv.URL,
		client:    &http.Client{Timeout: 50 * time.Millisecond},
	}

	_, err := g.Initialize(context.Background(), newInitiationRequest("40.00", "NGN"))

	var gwErr *service.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, service.GatewayErrorTimeout, gwErr.Kind)
	assert.Equal(t, "Request to Fincra initialize endpoint timed out.", gwErr.FailureMessage())
}

func TestStripeInitialize_FormEncodedMinorUnits(t *testing.T) {
	var gotContentType string
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/pay/cs_test_1"}`))
	}))
	defer srv.Close()

	g := &StripeGateway{secretKey: "sk_test", baseURL: srv.URL, client: srv.Client()}

	result, err := g.Initialize(context.Background(), newInitiationRequest("40.00", "USD"))
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, []string{"payment"}, gotForm["mode"])
	assert.Equal(t, []string{"usd"}, gotForm["line_items[0][price_data][currency]"])
	assert.Equal(t, []string{"4000"}, gotForm["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, []string{"ref-123"}, gotForm["client_reference_id"])

	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_1", result.AuthorizationURL)
	assert.Equal(t, "cs_test_1", result.TransactionID)
}

func TestStripeMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     int64
		wantErr  bool
	}{
		{name: "two decimal currency", amount: "40.00", currency: "USD", want: 4000},
		{name: "zero decimal currency", amount: "500", currency: "JPY", want: 500},
		{name: "lowercase input", amount: "12.50", currency: "eur", want: 1250},
		{name: "unknown currency", amount: "40.00", currency: "XYZ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MinorUnits(decimal.RequireFromString(tt.amount), tt.currency)
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, IsSupportedCurrency(tt.currency))

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsSupportedCurrency(tt.currency))
		})
	}
}

func TestFlutterwaveInitialize_SendsDecimalAmount(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/payments", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		_, _ = w.Write([]byte(`{"status":"success","data":{"link":"https://checkout.flutterwave.com/v3/hosted/pay/abc","id":284621}}`))
	}))
	defer srv.Close()

	g := &FlutterwaveGateway{secretKey: "fw_test", baseURL: srv.URL, client: srv.Client()}

	result, err := g.Initialize(context.Background(), newInitiationRequest("40.5", "NGN"))
	require.NoError(t, err)

	assert.Equal(t, "40.5", gotBody["amount"])
	assert.Equal(t, "ref-123", gotBody["tx_ref"])
	assert.Equal(t, "card", gotBody["payment_options"])
	assert.Equal(t, "https://checkout.flutterwave.com/v3/hosted/pay/abc", result.AuthorizationURL)
	assert.Equal(t, "284621", result.TransactionID)
}

func TestRegistryLookup_OnlyConfiguredGateways(t *testing.T) {
	registry := &Registry{gateways: map[entity.PaymentMethod]service.PaymentGateway{
		entity.PaymentMethodPaystack: &PaystackGateway{},
	}}

	_, ok := registry.Lookup(entity.PaymentMethodPaystack)
	assert.True(t, ok)

	_, ok = registry.Lookup(entity.PaymentMethodStripe)
	assert.False(t, ok)
}
