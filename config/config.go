package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port"`
		// BaseURL is the externally visible origin used to build payment
		// callback and OAuth redirect URLs.
		BaseURL            string `json:"baseUrl" yaml:"baseUrl"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Access  string `json:"access" yaml:"access"`
		Refresh string `json:"refresh" yaml:"refresh"`
	} `json:"secretKey" yaml:"secretKey"`

	// Payments holds per-provider gateway credentials. A provider with an
	// empty secret key is treated as not configured.
	Payments *PaymentsConfig `json:"payments" yaml:"payments"`

	// OAuth holds per-provider federated sign-in credentials. A provider
	// with an empty client ID is treated as not enabled.
	OAuth *OAuthConfig `json:"oauth" yaml:"oauth"`

	// Mail configures the built-in fallback SMTP transport and sender.
	Mail *MailConfig `json:"mail" yaml:"mail"`

	// Prayer configures the intercessory notification recipients.
	Prayer *PrayerConfig `json:"prayer" yaml:"prayer"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	// QRCode configuration for donation link QR codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`

	// PubSub configuration for event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

// PaymentsConfig groups the payment gateway credentials.
type PaymentsConfig struct {
	Paystack    GatewayConfig `json:"paystack" yaml:"paystack"`
	Fincra      GatewayConfig `json:"fincra" yaml:"fincra"`
	Stripe      GatewayConfig `json:"stripe" yaml:"stripe"`
	Flutterwave GatewayConfig `json:"flutterwave" yaml:"flutterwave"`
}

// GatewayConfig holds one payment provider's credentials. BaseURL is only
// overridden in tests and development.
type GatewayConfig struct {
	SecretKey string `json:"secretKey" yaml:"secretKey"`
	BaseURL   string `json:"baseUrl" yaml:"baseUrl"`
}

// IsConfigured reports whether the gateway has credentials.
func (g GatewayConfig) IsConfigured() bool {
	return strings.TrimSpace(g.SecretKey) != ""
}

// OAuthConfig groups the federated sign-in provider credentials.
type OAuthConfig struct {
	Google   OAuthProviderConfig `json:"google" yaml:"google"`
	Facebook OAuthProviderConfig `json:"facebook" yaml:"facebook"`
	Apple    OAuthProviderConfig `json:"apple" yaml:"apple"`
}

// OAuthProviderConfig holds one sign-in provider's credentials.
type OAuthProviderConfig struct {
	ClientID     string `json:"clientId" yaml:"clientId"`
	ClientSecret string `json:"clientSecret" yaml:"clientSecret"`
}

// IsConfigured reports whether the provider has credentials.
func (o OAuthProviderConfig) IsConfigured() bool {
	return strings.TrimSpace(o.ClientID) != ""
}

// MailConfig defines the built-in SMTP fallback transport and default sender.
type MailConfig struct {
	DefaultSender string `json:"defaultSender" yaml:"defaultSender"`
	SMTP          struct {
		Host     string `json:"host" yaml:"host"`
		Port     int    `json:"port" yaml:"port"`
		Username string `json:"username" yaml:"username"`
		Password string `json:"password" yaml:"password"`
		UseTLS   bool   `json:"useTls" yaml:"useTls"`
	} `json:"smtp" yaml:"smtp"`
}

// PrayerConfig defines the prayer notification pipeline settings.
type PrayerConfig struct {
	// Recipients are the intercessory team addresses notified on submission.
	Recipients []string `json:"recipients" yaml:"recipients"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost int `json:"bcryptCost" yaml:"bcryptCost"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: PAYMENTS_PAYSTACK_SECRETKEY -> payments.paystack.secretKey
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	cfg.Postgres.Replicas = buildReplicasFromEnv()

	return cfg, nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
// Example: POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, POSTGRES_REPLICAS_0_USERNAME, POSTGRES_REPLICAS_0_PASSWORD
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			// No more replicas or incomplete configuration.
			break
		}

		replica := postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		}

		replicas = append(replicas, replica)
	}

	return replicas
}
