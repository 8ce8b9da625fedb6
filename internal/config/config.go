package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go-commerce-core/pkg/database"

	"github.com/MonkyMars/gecho"
	"gorm.io/gorm/logger"
)

type StockPolicy string

const (
	// StockReserve decrements product quantity inside the order transaction.
	StockReserve StockPolicy = "reserve"
	// StockCheck only verifies quantity; concurrent orders may oversell.
	StockCheck StockPolicy = "check"
)

type PaymentPolicy string

const (
	PaymentLenient PaymentPolicy = "lenient"
	PaymentStrict  PaymentPolicy = "strict"
)

type Config struct {
	AppName     string
	Environment string
	Port        string
	JWTSecret   []byte
	RateLimit   string

	Database database.Config
	Cache    CacheConfig
	Orders   OrderConfig
}

type CacheConfig struct {
	Driver        string // none, memory, redis
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type OrderConfig struct {
	NumberPrefix        string
	CancelledStatusCode string
	StockPolicy         StockPolicy
	PaymentPolicy       PaymentPolicy
}

var (
	instance *Config
	once     sync.Once
)

// Get loads the configuration from the environment once.
func Get() *Config {
	once.Do(func() {
		instance = Load()
	})
	return instance
}

// Load reads the environment without caching. Callers should load .env
// through godotenv beforehand.
func Load() *Config {
	env := getEnvAsString("APP_ENV", "development")
	dbLogLevel := logger.Warn
	if env != "production" {
		dbLogLevel = logger.Info
	}

	return &Config{
		AppName:     getEnvAsString("APP_NAME", "Commerce Core"),
		Environment: env,
		Port:        getEnvAsString("PORT", "3000"),
		JWTSecret:   []byte(getEnvAsString("JWT_SECRET", "change-me-in-production")),
		RateLimit:   getEnvAsString("RATE_LIMIT", "120-M"),
		Database: database.Config{
			URL:          getEnvAsString("DATABASE_URL", ""),
			Host:         getEnvAsString("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnvAsString("DB_USER", "postgres"),
			Password:     getEnvAsString("DB_PASSWORD", "postgres"),
			Name:         getEnvAsString("DB_NAME", "commerce"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxLifetime:  time.Hour,
			LogLevel:     dbLogLevel,
		},
		Cache: CacheConfig{
			Driver:        getEnvAsString("RULE_CACHE", "memory"),
			TTL:           getEnvAsSeconds("RULE_CACHE_TTL", 60*time.Second),
			RedisAddr:     getEnvAsString("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnvAsString("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
		},
		Orders: OrderConfig{
			NumberPrefix:        getEnvAsString("ORDER_NUMBER_PREFIX", "ORD"),
			CancelledStatusCode: getEnvAsString("CANCELLED_STATUS_CODE", "cancelled"),
			StockPolicy:         StockPolicy(getEnvAsString("STOCK_POLICY", string(StockReserve))),
			PaymentPolicy:       PaymentPolicy(getEnvAsString("PAYMENT_POLICY", string(PaymentLenient))),
		},
	}
}

// Validate rejects policy and cache settings outside their known values.
func (c *Config) Validate() error {
	switch c.Orders.StockPolicy {
	case StockReserve, StockCheck:
	default:
		return fmt.Errorf("STOCK_POLICY: unknown value %q (want %q or %q)", c.Orders.StockPolicy, StockReserve, StockCheck)
	}
	switch c.Orders.PaymentPolicy {
	case PaymentLenient, PaymentStrict:
	default:
		return fmt.Errorf("PAYMENT_POLICY: unknown value %q (want %q or %q)", c.Orders.PaymentPolicy, PaymentLenient, PaymentStrict)
	}
	switch c.Cache.Driver {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("RULE_CACHE: unknown value %q (want none, memory or redis)", c.Cache.Driver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NewLogger builds the application logger; production logs at info level.
func (c *Config) NewLogger() *gecho.Logger {
	level := "debug"
	if c.IsProduction() {
		level = "info"
	}
	return gecho.NewLogger(gecho.NewConfig(gecho.WithShowCaller(!c.IsProduction()), gecho.WithLogLevel(gecho.ParseLogLevel(level))))
}

func getEnvAsString(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(strings.TrimSpace(valueStr)); err == nil {
			return value
		}
	}
	return defaultVal
}

func getEnvAsSeconds(key string, defaultVal time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(strings.TrimSpace(valueStr)); err == nil {
			return time.Duration(value) * time.Second
		}
	}
	return defaultVal
}
