package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/arkantrust/payment-api/backend/config"
	"github.com/arkantrust/payment-api/backend/store"
)

// clearEnv blanks every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.KeyPort, config.KeyStoreDriver, config.KeyDBPath, config.KeyDatabaseURL,
		config.KeyRedisAddr, config.KeyLogLevel, config.KeyLogFormat, config.KeyShutdownTimeout,
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return fs
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.Store.Driver != store.DriverBolt || cfg.Store.BoltPath != "payments.db" {
		t.Errorf("unexpected store config %+v", cfg.Store)
	}
	if cfg.LogLevel != logrus.InfoLevel || cfg.LogFormat != "json" {
		t.Errorf("unexpected log config %v/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.KeyPort, "9090")
	t.Setenv(config.KeyDBPath, "/tmp/other.db")
	t.Setenv(config.KeyLogLevel, "debug")
	t.Setenv(config.KeyShutdownTimeout, "3s")

	cfg, err := config.Load(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.Store.BoltPath != "/tmp/other.db" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.LogLevel != logrus.DebugLevel {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.KeyPort, "9090")

	cfg, err := config.Load(flags(t, "--port", "7070", "--log-format", "text"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("expected flag port 7070, got %q", cfg.Port)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("expected text format, got %q", cfg.LogFormat)
	}
}

func TestLoadUnsetFlagsDoNotOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.KeyPort, "9090")

	cfg, err := config.Load(flags(t), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected env port 9090, got %q", cfg.Port)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STORE_DRIVER=redis\nREDIS_ADDR=cache:6379\n"), 0600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv(config.KeyStoreDriver)
		os.Unsetenv(config.KeyRedisAddr)
	})

	cfg, err := config.Load(nil, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != store.DriverRedis || cfg.Store.RedisAddr != "cache:6379" {
		t.Errorf("env file not applied: %+v", cfg.Store)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)
	if _, err := config.Load(nil, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored, got %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{config.KeyStoreDriver: "mongo"}},
		{"postgres without url", map[string]string{config.KeyStoreDriver: "postgres"}},
		{"bad log level", map[string]string{config.KeyLogLevel: "loud"}},
		{"bad log format", map[string]string{config.KeyLogFormat: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(nil, ""); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := config.Config{LogLevel: logrus.WarnLevel, LogFormat: "text"}
	log := cfg.NewLogger()
	if log.GetLevel() != logrus.WarnLevel {
		t.Errorf("expected warn level, got %v", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("expected text formatter, got %T", log.Formatter)
	}
}
