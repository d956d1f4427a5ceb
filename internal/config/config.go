package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/transport-ledger/service-transport/internal/common/database"
	"github.com/transport-ledger/service-transport/internal/domain/transport"
	"github.com/transport-ledger/service-transport/internal/events"
	"github.com/transport-ledger/service-transport/internal/geo"
)

// EnvPrefix prefixes every environment variable read by the service.
const EnvPrefix = "TRANSPORT"

// KafkaConfig holds event publishing settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// ServiceConfig holds all configuration for the transport service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	DBConfig     database.PostgresConfig
	KafkaConfig  KafkaConfig
	GeoConfig    geo.ProviderConfig
	AmountPolicy transport.AmountPolicy
	DraftTTL     time.Duration
	CORSOrigins  []string
}

// IsDevelopment reports whether the service runs in development mode.
func (c *ServiceConfig) IsDevelopment() bool { return c.AppEnv == "development" }

// Load reads configuration from a .env file, if present, and the environment.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":5000")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "transport")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DATABASE_URL", "")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", events.TopicTransportEvents)

	v.SetDefault("GEO_PROVIDER", geo.ProviderOSM)
	v.SetDefault("GEO_NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEO_OSRM_URL", "https://router.project-osrm.org")
	v.SetDefault("GEO_MAPMYINDIA_URL", "https://apis.mapmyindia.com/advancedmaps/v1")
	v.SetDefault("GEO_MAPMYINDIA_KEY", "")
	v.SetDefault("GEO_USER_AGENT", "transport-app")
	v.SetDefault("GEO_TIMEOUT", geo.DefaultTimeout.String())

	v.SetDefault("AMOUNT_POLICY", string(transport.AmountManual))
	v.SetDefault("DRAFT_TTL", "30m")
	v.SetDefault("CORS_ORIGINS", "*")
	return v
}

// FromViper builds a ServiceConfig from an already populated viper instance.
func FromViper(v *viper.Viper) (*ServiceConfig, error) {
	policy, err := transport.ParseAmountPolicy(v.GetString("AMOUNT_POLICY"))
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(v.GetString("GEO_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEO_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("GEO_TIMEOUT must be positive, got %s", timeout)
	}

	draftTTL, err := time.ParseDuration(v.GetString("DRAFT_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid DRAFT_TTL: %w", err)
	}
	if draftTTL <= 0 {
		return nil, fmt.Errorf("DRAFT_TTL must be positive, got %s", draftTTL)
	}

	provider := strings.ToLower(v.GetString("GEO_PROVIDER"))
	switch provider {
	case geo.ProviderOSM:
	case geo.ProviderMapMyIndia:
		if v.GetString("GEO_MAPMYINDIA_KEY") == "" {
			return nil, fmt.Errorf("GEO_MAPMYINDIA_KEY is required for the %s provider", provider)
		}
	default:
		return nil, fmt.Errorf("unknown GEO_PROVIDER: %s", provider)
	}

	port := v.GetString("SERVICE_PORT")
	if port != "" && !strings.Contains(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			URL:      v.GetString("DATABASE_URL"),
		},
		KafkaConfig: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		GeoConfig: geo.ProviderConfig{
			Provider:      provider,
			NominatimURL:  v.GetString("GEO_NOMINATIM_URL"),
			OSRMURL:       v.GetString("GEO_OSRM_URL"),
			MapMyIndiaURL: v.GetString("GEO_MAPMYINDIA_URL"),
			MapMyIndiaKey: v.GetString("GEO_MAPMYINDIA_KEY"),
			UserAgent:     v.GetString("GEO_USER_AGENT"),
			Timeout:       timeout,
		},
		AmountPolicy: policy,
		DraftTTL:     draftTTL,
		CORSOrigins:  splitList(v.GetString("CORS_ORIGINS")),
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
