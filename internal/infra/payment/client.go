// Package payment implements the payment gateway adapters and their registry.
// Every adapter speaks to its provider over HTTP with a bounded timeout and
// reports failures as *service.GatewayError.
package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"parish/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// classifyRequestError maps a transport-level failure to a GatewayError,
// distinguishing timeouts from other network errors.
func classifyRequestError(providerLabel string, err error) *service.GatewayError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return service.NewTimeoutError(providerLabel)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.NewTimeoutError(providerLabel)
	}

	return service.NewTransportError(providerLabel, err)
}

// decodeResponse reads and decodes a provider response. Non-2xx statuses and
// undecodable bodies become typed gateway errors.
func decodeResponse(providerLabel string, resp *http.Response) (map[string]any, *service.GatewayError) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, service.NewTransportError(providerLabel, err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, service.NewHTTPStatusError(providerLabel, resp.StatusCode, string(body))
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, service.NewBadPayloadError(providerLabel, err)
	}

	return decoded, nil
}

// nestedMap returns decoded[key] as an object, or nil.
func nestedMap(decoded map[string]any, key string) map[string]any {
	child, _ := decoded[key].(map[string]any)

	return child
}

// nestedString returns m[key] as a string, or empty.
func nestedString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)

	return s
}

// nestedNumberOrString renders m[key] as a string whether the provider sends
// a JSON number or a string identifier.
func nestedNumberOrString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}

	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
