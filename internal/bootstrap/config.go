package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/target/citation-poller/config"
)

// InitLogger installs the process logger. Development mode logs at debug level
// with source locations.
func InitLogger(isDev bool) *slog.Logger {
	logger := slog.New(newLogHandler(os.Stdout, isDev))
	slog.SetDefault(logger)
	return logger
}

func newLogHandler(w io.Writer, isDev bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if isDev {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	return slog.NewJSONHandler(w, opts)
}

// LoadConfig reads dotenv files into the environment and parses AppConfig from it.
// With no files it tries ./.env; missing files are skipped.
func LoadConfig(files ...string) (config.AppConfig, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.AppConfig{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAs[config.AppConfig]()
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// ValidateServiceConfig reports every reason the configured services cannot start.
func ValidateServiceConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("service config is required")
	}
	if _, err := cfg.GetEnabledServices(); err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}

	var problems []error
	if cfg.Provider.APIKey == "" {
		problems = append(problems, errors.New("PROVIDER_API_KEY is required"))
	}
	if u, perr := url.Parse(cfg.Provider.BaseURL); perr != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		problems = append(problems, fmt.Errorf("PROVIDER_BASE_URL %q must be an absolute http(s) URL", cfg.Provider.BaseURL))
	}
	return errors.Join(problems...)
}

// GetEnabledServices lists enabled service names in their canonical order.
// An unparsable SERVICES value yields an empty list; ValidateServiceConfig reports it.
func GetEnabledServices(cfg *config.AppConfig) []string {
	enabled := []string{}
	if cfg == nil {
		return enabled
	}
	for _, mode := range config.ValidServiceModes() {
		if cfg.Runs(mode) {
			enabled = append(enabled, string(mode))
		}
	}
	return enabled
}
