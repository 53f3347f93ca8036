package config

import (
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	HTTPPort    string `envconfig:"HTTP_PORT"    default:":8080"`
	GrpcPort    string `envconfig:"GRPC_PORT"    default:":50051"`
	LogLevel    string `envconfig:"LOG_LEVEL"    default:"info"`

	DBMaxOpenConns     int           `envconfig:"DB_MAX_OPEN_CONNS"     default:"25"`
	DBMaxIdleConns     int           `envconfig:"DB_MAX_IDLE_CONNS"     default:"5"`
	DBConnMaxLifetime  time.Duration `envconfig:"DB_CONN_MAX_LIFETIME"  default:"30m"`
	DBStatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT"  default:"5s"`

	// Catalog cache is disabled when RedisAddr is empty.
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB"          default:"0"`
	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`

	PaymentDeclinedCards []string      `envconfig:"PAYMENT_DECLINED_CARDS" default:"4000000000000002"`
	ShutdownTimeout      time.Duration `envconfig:"SHUTDOWN_TIMEOUT"       default:"10s"`
}

var (
	config Config
	once   sync.Once
	errCfg error
)

// LoadConfig reads .env (if present) and the environment once per process.
func LoadConfig(logger *logrus.Logger) (*Config, error) {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		if errCfg = envconfig.Process("", &config); errCfg != nil {
			logger.Errorf("Failed to process configuration from environment variables: %v", errCfg)
			return
		}

		logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s, StatementTimeout=%s",
			config.HTTPPort, config.GrpcPort, config.LogLevel, config.DBStatementTimeout)
		if config.RedisAddr != "" {
			logger.Infof("Configuration loaded: catalog cache at %s (ttl %s)", config.RedisAddr, config.CatalogCacheTTL)
		}
	})
	if errCfg != nil {
		return nil, errCfg
	}
	return &config, nil
}
