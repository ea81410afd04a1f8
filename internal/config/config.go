package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string   `mapstructure:"PORT"`
	Env          string   `mapstructure:"ENV"`
	DatabaseURL  string   `mapstructure:"DATABASE_URL"`
	DBMaxConns   int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns   int32    `mapstructure:"DB_MIN_CONNS"`
	RedisAddr    string   `mapstructure:"REDIS_ADDR"`
	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string   `mapstructure:"KAFKA_TOPIC"`
	JWTSecret    string   `mapstructure:"JWT_SECRET"`
	CORSOrigins  []string `mapstructure:"CORS_ORIGINS"`

	// Pharmacy checkout settings. These mirror the per-till deployment
	// configuration the checkout gate and dialogs read.
	RequirePrescriptionValidation bool `mapstructure:"REQUIRE_PRESCRIPTION_VALIDATION"`
	RequirePharmacistApproval     bool `mapstructure:"REQUIRE_PHARMACIST_APPROVAL"`
	BlockExpiredProducts          bool `mapstructure:"BLOCK_EXPIRED_PRODUCTS"`
	WarnNearExpiry                bool `mapstructure:"WARN_NEAR_EXPIRY"`
	NearExpiryDays                int  `mapstructure:"NEAR_EXPIRY_DAYS"`
	StaffRolesEnabled             bool `mapstructure:"STAFF_ROLES_ENABLED"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("KAFKA_TOPIC", "pharmacy.pos.events")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("REQUIRE_PRESCRIPTION_VALIDATION", true)
	v.SetDefault("REQUIRE_PHARMACIST_APPROVAL", true)
	v.SetDefault("BLOCK_EXPIRED_PRODUCTS", true)
	v.SetDefault("WARN_NEAR_EXPIRY", true)
	v.SetDefault("NEAR_EXPIRY_DAYS", 90)
	v.SetDefault("STAFF_ROLES_ENABLED", true)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"REDIS_ADDR", "KAFKA_BROKERS", "KAFKA_TOPIC", "JWT_SECRET", "CORS_ORIGINS",
		"REQUIRE_PRESCRIPTION_VALIDATION", "REQUIRE_PHARMACIST_APPROVAL",
		"BLOCK_EXPIRED_PRODUCTS", "WARN_NEAR_EXPIRY",
		"NEAR_EXPIRY_DAYS", "STAFF_ROLES_ENABLED",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	if cfg.KafkaBrokers == nil {
		if brokers := v.GetString("KAFKA_BROKERS"); brokers != "" {
			cfg.KafkaBrokers = strings.Split(brokers, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active, all requests get admin access.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret is required so that real authentication is enforced.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV is not development")
	}
	if c.NearExpiryDays < 0 {
		return fmt.Errorf("NEAR_EXPIRY_DAYS must not be negative, got %d", c.NearExpiryDays)
	}
	return nil
}

// Checkout returns the subset of settings the checkout gate depends on.
func (c *Config) Checkout() CheckoutSettings {
	return CheckoutSettings{
		RequirePrescriptionValidation: c.RequirePrescriptionValidation,
		RequirePharmacistApproval:     c.RequirePharmacistApproval,
		BlockExpiredProducts:          c.BlockExpiredProducts,
		StaffRolesEnabled:             c.StaffRolesEnabled,
	}
}

// CheckoutSettings is the read-only view of deployment flags consumed by the
// pre-payment validation workflow.
type CheckoutSettings struct {
	RequirePrescriptionValidation bool
	RequirePharmacistApproval     bool
	BlockExpiredProducts          bool
	StaffRolesEnabled             bool
}
