// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full configuration surface of the storefront.
//
// XenditSecretKey and CallbackToken are allowed to be empty at boot: the
// affected endpoints answer with a configuration error per request instead of
// refusing to start, so the catalog and status endpoints stay up while the
// payment integration is being provisioned.
type Config struct {
	Addr         string
	DatabasePath string

	XenditSecretKey string
	CallbackToken   string

	ShippingCost    int64
	InvoiceExpiry   time.Duration
	ProviderTimeout time.Duration
	RedirectBaseURL string

	RedisAddr string
}

func Load() (Config, error) {
	cfg := Config{
		Addr:            ":" + getEnv("PORT", "8080"),
		DatabasePath:    getEnv("DATABASE_PATH", "./data/storefront.db"),
		XenditSecretKey: strings.TrimSpace(os.Getenv("XENDIT_SECRET_KEY")),
		CallbackToken:   strings.TrimSpace(os.Getenv("XENDIT_CALLBACK_TOKEN")),
		RedirectBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
	}

	var err error
	if cfg.ShippingCost, err = envInt64("SHIPPING_COST", 25000); err != nil {
		return Config{}, err
	}
	if cfg.InvoiceExpiry, err = envDuration("INVOICE_EXPIRY", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ProviderTimeout, err = envDuration("PROVIDER_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.ShippingCost < 0 {
		return Config{}, fmt.Errorf("config: SHIPPING_COST must not be negative")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
