package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StorageMemory   = "memory"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                 string
	HTTPAddr            string
	StorageDriver       string
	MongoURI            string
	MongoDB             string
	PostgresDSN         string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	KafkaBrokers        []string
	KafkaTopicPrefix    string
	KafkaGroupID        string
	PaymentsTopic       string
	IdempotencyTTL      time.Duration
	OutboxPollInterval  time.Duration
	RetryBackoff        []time.Duration
	OfferExpiryInterval time.Duration
	OfferValidity       time.Duration
	DefaultCurrency     string
	CommissionRate      decimal.Decimal
	Settlement          SettlementConfig
}

// SettlementConfig holds the tunable thresholds of the settlement policy.
type SettlementConfig struct {
	MinimumAdvanceDays      int
	CancellationMinimumDays int
	DepositPercent          int
	FinalPaymentLeadDays    int
	MaxInstallments         int
	AutoConfirm             bool
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		StorageDriver:    strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "eventmarket"),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "eventmarket"),
		PaymentsTopic:    getEnv("PAYMENTS_TOPIC", "payments.confirmed.v1"),
		DefaultCurrency:  strings.ToUpper(getEnv("DEFAULT_CURRENCY", "AOA")),
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	var err error
	if cfg.RedisDB, err = parseIntEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 168*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.OfferExpiryInterval, err = parseDurationEnv("OFFER_EXPIRY_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.OfferValidity, err = parseDurationEnv("OFFER_DEFAULT_VALIDITY", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CommissionRate, err = parseDecimalEnv("COMMISSION_RATE", decimal.RequireFromString("0.10")); err != nil {
		return Config{}, err
	}

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	s := &cfg.Settlement
	if s.MinimumAdvanceDays, err = parseIntEnv("MIN_ADVANCE_DAYS", 1); err != nil {
		return Config{}, err
	}
	if s.CancellationMinimumDays, err = parseIntEnv("CANCELLATION_MIN_DAYS", 1); err != nil {
		return Config{}, err
	}
	if s.DepositPercent, err = parseIntEnv("DEPOSIT_PERCENT", 30); err != nil {
		return Config{}, err
	}
	if s.FinalPaymentLeadDays, err = parseIntEnv("FINAL_PAYMENT_LEAD_DAYS", 7); err != nil {
		return Config{}, err
	}
	if s.MaxInstallments, err = parseIntEnv("MAX_INSTALLMENTS", 10); err != nil {
		return Config{}, err
	}
	if s.AutoConfirm, err = parseBoolEnv("AUTO_CONFIRM", false); err != nil {
		return Config{}, err
	}

	switch cfg.StorageDriver {
	case StorageMemory:
	case StorageMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required for STORAGE_DRIVER=mongo")
		}
	case StoragePostgres:
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("POSTGRES_DSN is required for STORAGE_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if len(cfg.DefaultCurrency) != 3 {
		return Config{}, fmt.Errorf("invalid DEFAULT_CURRENCY %q", cfg.DefaultCurrency)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parseDecimalEnv(key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s decimal: %w", key, err)
	}
	return d, nil
}
