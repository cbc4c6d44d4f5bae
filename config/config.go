// Package config loads server settings from flags, the environment and an
// optional .env file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/arkantrust/payment-api/backend/store"
)

// Config holds everything the server needs to start.
type Config struct {
	Port            string
	Store           store.Config
	LogLevel        logrus.Level
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Keys double as environment variable names.
const (
	KeyPort            = "PORT"
	KeyStoreDriver     = "STORE_DRIVER"
	KeyDBPath          = "DB_PATH"
	KeyDatabaseURL     = "DATABASE_URL"
	KeyRedisAddr       = "REDIS_ADDR"
	KeyLogLevel        = "LOG_LEVEL"
	KeyLogFormat       = "LOG_FORMAT"
	KeyShutdownTimeout = "SHUTDOWN_TIMEOUT"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"port":             KeyPort,
	"store":            KeyStoreDriver,
	"db-path":          KeyDBPath,
	"database-url":     KeyDatabaseURL,
	"redis-addr":       KeyRedisAddr,
	"log-level":        KeyLogLevel,
	"log-format":       KeyLogFormat,
	"shutdown-timeout": KeyShutdownTimeout,
}

// RegisterFlags adds the server flags to fs. Flags left unset fall back to the
// environment and then to defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("port", "8080", "HTTP listen port")
	fs.String("store", store.DriverBolt, "store driver: bolt, postgres or redis")
	fs.String("db-path", "payments.db", "BoltDB file path (bolt driver)")
	fs.String("database-url", "", "PostgreSQL connection string (postgres driver)")
	fs.String("redis-addr", "localhost:6379", "Redis address (redis driver)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-format", "json", "log format: json or text")
	fs.Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
}

// Load reads envFile (if it exists) into the process environment and resolves
// every setting. fs may be nil; if given, it must have been set up with
// RegisterFlags.
func Load(fs *pflag.FlagSet, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyStoreDriver, store.DriverBolt)
	v.SetDefault(KeyDBPath, "payments.db")
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	level, err := logrus.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}

	cfg := Config{
		Port: v.GetString(KeyPort),
		Store: store.Config{
			Driver:      strings.ToLower(v.GetString(KeyStoreDriver)),
			BoltPath:    v.GetString(KeyDBPath),
			DatabaseURL: v.GetString(KeyDatabaseURL),
			RedisAddr:   v.GetString(KeyRedisAddr),
		},
		LogLevel:        level,
		LogFormat:       strings.ToLower(v.GetString(KeyLogFormat)),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case store.DriverBolt:
		if c.Store.BoltPath == "" {
			return fmt.Errorf("%s must be set for the bolt driver", KeyDBPath)
		}
	case store.DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("%s must be set for the postgres driver", KeyDatabaseURL)
		}
	case store.DriverRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("%s must be set for the redis driver", KeyRedisAddr)
		}
	default:
		return fmt.Errorf("%s: unknown driver %q", KeyStoreDriver, c.Store.Driver)
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("%s: unknown format %q", KeyLogFormat, c.LogFormat)
	}
	if c.Port == "" {
		return fmt.Errorf("%s must not be empty", KeyPort)
	}
	return nil
}

// NewLogger builds the process logger described by c.
func (c Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
