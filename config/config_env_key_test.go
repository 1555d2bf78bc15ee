package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"payments": map[string]any{
			"paystack": map[string]any{
				"secretKey": "",
			},
		},
		"oauth": map[string]any{
			"google": map[string]any{
				"clientId": "",
			},
		},
		"secretKey": map[string]any{
			"access": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "PAYMENTS_PAYSTACK_SECRETKEY", want: "payments.paystack.secretKey"},
		{envKey: "OAUTH_GOOGLE_CLIENTID", want: "oauth.google.clientId"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
