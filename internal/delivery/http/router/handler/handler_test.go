package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"parish/config"
	"parish/internal/delivery/http/middleware"
	"parish/internal/delivery/http/validator"
	"parish/internal/domain/entity"
	domainerrors "parish/internal/domain/errors"
	"parish/internal/domain/service"
	"parish/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test Stubs ---

type stubDonationUsecase struct {
	initiateOut *usecase.InitiateDonationOutput
	initiateErr error
	webhookIn   *usecase.WebhookInput
	webhookErr  error
	callbackOut *usecase.CallbackOutput
	callbackErr error
	recent      []*entity.Donation
}

func (s *stubDonationUsecase) Initiate(_ context.Context, _ usecase.InitiateDonationInput) (*usecase.InitiateDonationOutput, error) {
	return s.initiateOut, s.initiateErr
}

func (s *stubDonationUsecase) HandleWebhook(_ context.Context, input usecase.WebhookInput) error {
	s.webhookIn = &input

	return s.webhookErr
}

func (s *stubDonationUsecase) HandleCallback(_ context.Context, _ usecase.CallbackInput) (*usecase.CallbackOutput, error) {
	return s.callbackOut, s.callbackErr
}

func (s *stubDonationUsecase) RecentDonations(_ context.Context, _ int) ([]*entity.Donation, error) {
	return s.recent, nil
}

type stubPrayerUsecase struct {
	out *usecase.SubmitPrayerOutput
	err error
}

func (s *stubPrayerUsecase) SubmitPrayer(_ context.Context, _ usecase.SubmitPrayerInput) (*usecase.SubmitPrayerOutput, error) {
	return s.out, s.err
}

type stubUserUsecase struct {
	out *usecase.AuthOutput
	err error
}

func (s *stubUserUsecase) Register(_ context.Context, _ usecase.RegisterInput) (*usecase.AuthOutput, error) {
	return s.out, s.err
}

func (s *stubUserUsecase) Login(_ context.Context, _ usecase.LoginInput) (*usecase.AuthOutput, error) {
	return s.out, s.err
}

func (s *stubUserUsecase) Refresh(_ context.Context, _ string) (*usecase.AuthOutput, error) {
	return s.out, s.err
}

func (s *stubUserUsecase) Logout(_ context.Context, _ string) error {
	return s.err
}

type stubOAuthUsecase struct {
	startOut    *usecase.StartLoginOutput
	startErr    error
	completeOut *usecase.CompleteLoginOutput
	completeErr error
}

func (s *stubOAuthUsecase) StartLogin(_ context.Context, _, _ string) (*usecase.StartLoginOutput, error) {
	return s.startOut, s.startErr
}

func (s *stubOAuthUsecase) CompleteLogin(_ context.Context, _ usecase.CompleteLoginInput) (*usecase.CompleteLoginOutput, error) {
	return s.completeOut, s.completeErr
}

type stubQRService struct {
	png []byte
	err error
}

func (s *stubQRService) GenerateLinkQR(_ string) ([]byte, error) {
	return s.png, s.err
}

type stubTokenService struct {
	claims *service.TokenClaims
	err    error
}

func (s *stubTokenService) GenerateTokens(userID uuid.UUID, isAdmin bool) (*service.TokenPair, error) {
	return &service.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (s *stubTokenService) ValidateAccessToken(_ string) (*service.TokenClaims, error) {
	return s.claims, s.err
}

func (s *stubTokenService) HashToken(token string) string { return token }

func (s *stubTokenService) RefreshTokenDuration() time.Duration { return time.Hour }

// --- Harness ---

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(slog.Default()).HandleHTTPError

	return e
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func newHandlerTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.HTTP.BaseURL = "https://parish.example.com"

	return cfg
}

// --- Donation Handler ---

func TestDonationHandler_Process(t *testing.T) {
	uc := &stubDonationUsecase{
		initiateOut: &usecase.InitiateDonationOutput{
			RedirectURL: "https://checkout.paystack.com/abc",
			Reference:   "ref-1",
		},
	}
	e := newTestEcho()
	e.POST("/donate/process", NewDonationHandler(uc, &stubQRService{}, newHandlerTestConfig()).Process)

	rec := doJSON(e, http.MethodPost, "/donate/process",
		`{"email":"donor@example.com","amount":"50.00","currency":"NGN","payment_method":"paystack"}`)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://checkout.paystack.com/abc", rec.Header().Get(echo.HeaderLocation))
}

func TestDonationHandler_Process_BadAmountRedirectsBack(t *testing.T) {
	e := newTestEcho()
	e.POST("/donate/process", NewDonationHandler(&stubDonationUsecase{}, &stubQRService{}, newHandlerTestConfig()).Process)

	rec := doJSON(e, http.MethodPost, "/donate/process",
		`{"email":"donor@example.com","amount":"fifty","currency":"NGN","payment_method":"paystack"}`)

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get(echo.HeaderLocation)
	assert.Contains(t, location, "/donate?")
	assert.Contains(t, location, "status=error")
}

func TestDonationHandler_Process_UsecaseErrorRedirectsBack(t *testing.T) {
	uc := &stubDonationUsecase{
		initiateErr: domainerrors.ErrPaymentUnavailable.WithDetails("stripe is not configured"),
	}
	e := newTestEcho()
	e.POST("/donate/process", NewDonationHandler(uc, &stubQRService{}, newHandlerTestConfig()).Process)

	rec := doJSON(e, http.MethodPost, "/donate/process",
		`{"email":"donor@example.com","amount":"50","currency":"USD","payment_method":"stripe"}`)

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get(echo.HeaderLocation)
	assert.Contains(t, location, "/donate?")
	assert.Contains(t, location, "status=error")
	assert.Contains(t, location, "message=stripe+is+not+configured")
}

func TestDonationHandler_Callback_RedirectsWithFlash(t *testing.T) {
	uc := &stubDonationUsecase{
		callbackOut: &usecase.CallbackOutput{Succeeded: true, Message: "Thank you! Your donation is being confirmed."},
	}
	e := newTestEcho()
	e.GET("/payment/callback", NewDonationHandler(uc, &stubQRService{}, newHandlerTestConfig()).Callback)

	rec := doJSON(e, http.MethodGet, "/payment/callback?reference=ref-1&status=successful", "")

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get(echo.HeaderLocation)
	assert.Contains(t, location, "/donate?")
	assert.Contains(t, location, "status=success")
}

func TestDonationHandler_Callback_UnknownReferenceRedirectsToError(t *testing.T) {
	uc := &stubDonationUsecase{callbackErr: domainerrors.ErrDonationNotFound}
	e := newTestEcho()
	e.GET("/payment/callback", NewDonationHandler(uc, &stubQRService{}, newHandlerTestConfig()).Callback)

	rec := doJSON(e, http.MethodGet, "/payment/callback?reference=missing", "")

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "status=error")
}

func TestDonationHandler_Recent_MasksEmails(t *testing.T) {
	uc := &stubDonationUsecase{
		recent: []*entity.Donation{
			{Email: "donor@example.com", Amount: decimal.NewFromInt(50), Currency: "NGN"},
		},
	}
	e := newTestEcho()
	e.GET("/donations/recent", NewDonationHandler(uc, &stubQRService{}, newHandlerTestConfig()).Recent)

	rec := doJSON(e, http.MethodGet, "/donations/recent", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "d***@example.com", item["donor"])
	assert.Equal(t, "50.00", item["amount"])
}

func TestDonationHandler_LinkQR(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47}
	e := newTestEcho()
	e.GET("/donate/qr", NewDonationHandler(&stubDonationUsecase{}, &stubQRService{png: png}, newHandlerTestConfig()).LinkQR)

	rec := doJSON(e, http.MethodGet, "/donate/qr", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***@example.com", maskEmail("ada@example.com"))
	assert.Equal(t, "***@example.com", maskEmail("a@example.com"))
	assert.Equal(t, "***not-an-email", maskEmail("not-an-email"))
}

// --- Webhook Handler ---

func newWebhookEcho(uc usecase.DonationUsecase) *echo.Echo {
	e := newTestEcho()
	e.POST("/webhooks/fincra", NewWebhookHandler(uc, slog.Default()).HandleFincra)

	return e
}

func doWebhook(e *echo.Echo, body string, signed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/fincra", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signed {
		req.Header.Set("x-fincra-signature", "sig")
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func TestWebhookHandler_MissingSignatureRejected(t *testing.T) {
	e := newWebhookEcho(&stubDonationUsecase{})

	rec := doWebhook(e, `{"transactionId":"fc-9","status":"successful","reference":"ref-1"}`, false)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	errInfo := body["error"].(map[string]any)
	assert.Equal(t, "WEBHOOK_UNAUTHORIZED", errInfo["code"])
}

func TestWebhookHandler_SuccessfulCharge(t *testing.T) {
	uc := &stubDonationUsecase{}
	e := newWebhookEcho(uc)

	// Status matching is case-insensitive.
	rec := doWebhook(e, `{"transactionId":"fc-9","status":"Successful","reference":"ref-1"}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.webhookIn)
	assert.Equal(t, "ref-1", uc.webhookIn.Reference)
	assert.Equal(t, "fc-9", uc.webhookIn.TransactionID)
	assert.True(t, uc.webhookIn.Succeeded)
	assert.Empty(t, uc.webhookIn.FailureReason)
}

func TestWebhookHandler_FailedChargeCarriesReason(t *testing.T) {
	uc := &stubDonationUsecase{}
	e := newWebhookEcho(uc)

	rec := doWebhook(e, `{"transactionId":"fc-9","status":"failed","reference":"ref-1","failureReason":"Card declined"}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.webhookIn)
	assert.False(t, uc.webhookIn.Succeeded)
	assert.Equal(t, "Card declined", uc.webhookIn.FailureReason)
}

func TestWebhookHandler_MissingFieldsRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing transaction id", body: `{"status":"successful","reference":"ref-1"}`},
		{name: "missing status", body: `{"transactionId":"fc-9","reference":"ref-1"}`},
		{name: "missing reference", body: `{"transactionId":"fc-9","status":"successful"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubDonationUsecase{}
			e := newWebhookEcho(uc)

			rec := doWebhook(e, tt.body, true)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, uc.webhookIn)
		})
	}
}

// --- Prayer Handler ---

func TestPrayerHandler_Submit(t *testing.T) {
	prayer := &entity.PrayerRequest{ID: uuid.New(), CreatedAt: time.Now()}
	e := newTestEcho()
	e.POST("/prayers", NewPrayerHandler(&stubPrayerUsecase{out: &usecase.SubmitPrayerOutput{Prayer: prayer}}).Submit)

	rec := doJSON(e, http.MethodPost, "/prayers",
		`{"name":"Ada Obi","email":"ada@example.com","subject":"Travel mercies","body":"Please pray."}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, prayer.ID.String(), data["id"])
}

func TestPrayerHandler_Submit_MissingFields(t *testing.T) {
	e := newTestEcho()
	e.POST("/prayers", NewPrayerHandler(&stubPrayerUsecase{}).Submit)

	rec := doJSON(e, http.MethodPost, "/prayers", `{"name":"Ada Obi"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- User Handler ---

func newAuthOutput() *usecase.AuthOutput {
	return &usecase.AuthOutput{
		User: &entity.User{
			ID:       uuid.New(),
			Username: "ada",
			Email:    "ada@example.com",
		},
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}
}

func TestUserHandler_Register(t *testing.T) {
	e := newTestEcho()
	e.POST("/auth/register", NewUserHandler(&stubUserUsecase{out: newAuthOutput()}).Register)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"username":"ada","email":"ada@example.com","password":"long-enough-password"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "access-token", data["access_token"])
}

func TestUserHandler_Register_ValidationRejectsShortPassword(t *testing.T) {
	e := newTestEcho()
	e.POST("/auth/register", NewUserHandler(&stubUserUsecase{out: newAuthOutput()}).Register)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"username":"ada","email":"ada@example.com","password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	e.POST("/auth/login", NewUserHandler(&stubUserUsecase{err: domainerrors.ErrInvalidCredentials}).Login)

	rec := doJSON(e, http.MethodPost, "/auth/login",
		`{"email":"ada@example.com","password":"wrong-password"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	errInfo := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_CREDENTIALS", errInfo["code"])
}

// --- OAuth Handler ---

func TestOAuthHandler_Start_Redirects(t *testing.T) {
	uc := &stubOAuthUsecase{startOut: &usecase.StartLoginOutput{RedirectURL: "https://accounts.google.com/o/oauth2/v2/auth?state=s"}}
	e := newTestEcho()
	e.GET("/login/:provider/start", NewOAuthHandler(uc).Start)

	rec := doJSON(e, http.MethodGet, "/login/google/start", "")

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "accounts.google.com")
}

func TestOAuthHandler_Callback(t *testing.T) {
	uc := &stubOAuthUsecase{
		completeOut: &usecase.CompleteLoginOutput{
			User:   &entity.User{ID: uuid.New(), Username: "ada", Email: "ada@example.com"},
			Tokens: &service.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
			Next:   "/donate",
		},
	}
	e := newTestEcho()
	e.GET("/oauth/:provider/callback", NewOAuthHandler(uc).Callback)

	rec := doJSON(e, http.MethodGet, "/oauth/google/callback?state=s&code=c", "")

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/donate", rec.Header().Get(echo.HeaderLocation))

	cookies := map[string]*http.Cookie{}
	for _, cookie := range rec.Result().Cookies() {
		cookies[cookie.Name] = cookie
	}

	access, ok := cookies["access_token"]
	require.True(t, ok)
	assert.Equal(t, "access", access.Value)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)

	refresh, ok := cookies["refresh_token"]
	require.True(t, ok)
	assert.Equal(t, "refresh", refresh.Value)
	assert.Equal(t, "/auth", refresh.Path)
	assert.True(t, refresh.HttpOnly)
}

func TestOAuthHandler_Callback_ProviderErrorRedirectsToLogin(t *testing.T) {
	e := newTestEcho()
	e.GET("/oauth/:provider/callback", NewOAuthHandler(&stubOAuthUsecase{}).Callback)

	rec := doJSON(e, http.MethodGet, "/oauth/google/callback?error=access_denied", "")

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "/login?")
}

func TestOAuthHandler_Callback_StateMismatchRedirectsToLogin(t *testing.T) {
	uc := &stubOAuthUsecase{completeErr: domainerrors.ErrOAuthStateMismatch}
	e := newTestEcho()
	e.GET("/oauth/:provider/callback", NewOAuthHandler(uc).Callback)

	rec := doJSON(e, http.MethodGet, "/oauth/google/callback?state=bad&code=c", "")

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "/login?")
	assert.Empty(t, rec.Result().Cookies())
}

func TestOAuthHandler_Callback_MissingCodeRedirectsToLogin(t *testing.T) {
	e := newTestEcho()
	e.GET("/oauth/:provider/callback", NewOAuthHandler(&stubOAuthUsecase{}).Callback)

	rec := doJSON(e, http.MethodGet, "/oauth/google/callback?state=s", "")

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "/login?")
}

// --- Auth Middleware ---

func TestAuthMiddleware(t *testing.T) {
	adminClaims := &service.TokenClaims{UserID: uuid.New(), IsAdmin: true}
	memberClaims := &service.TokenClaims{UserID: uuid.New(), IsAdmin: false}

	tests := []struct {
		name       string
		authHeader string
		claims     *service.TokenClaims
		wantCode   int
	}{
		{"admin allowed", "Bearer token", adminClaims, http.StatusOK},
		{"member forbidden", "Bearer token", memberClaims, http.StatusForbidden},
		{"missing header", "", nil, http.StatusUnauthorized},
		{"not a bearer token", "Basic abc", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenSvc := &stubTokenService{claims: tt.claims}
			if tt.claims == nil {
				tokenSvc.err = domainerrors.ErrInvalidCredentials
			}

			authMw := middleware.NewAuthMiddleware(tokenSvc)
			e := newTestEcho()
			group := e.Group("/admin", authMw.Authenticate, authMw.RequireAdmin)
			group.GET("/donations", func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin/donations", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	e := newTestEcho()
	e.GET("/health", HealthCheck)

	rec := doJSON(e, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
}
