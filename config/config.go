// Package config loads the poller's settings from the environment with caarlos0/env.
// Each concern lives in its own file and owns a Sanitize method that clamps values
// into a range the rest of the program can rely on.
package config

import (
	"os"
	"strings"
)

// AppConfig is the root configuration. Nested structs carry their own env prefixes:
//
//	DB_*, REDIS_*          database.go
//	HTTP_*                 http.go
//	SERVICES, SCHEDULER_*  services.go
//	PROVIDER_*             provider.go
//	POLL_*, BROADCAST_*    poll.go
//	OBSERVABILITY_*        observability.go
type AppConfig struct {
	// IsDev turns on debug logging. NODE_ENV=development|dev also enables it.
	IsDev bool `env:"DEV" envDefault:"false"`

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	HTTP     HTTPConfig

	// Services is a comma-separated list of ServiceMode values to run in this process.
	Services  string `env:"SERVICES" envDefault:"http"`
	Scheduler SchedulerConfig

	Provider  ProviderConfig  `envPrefix:"PROVIDER_"`
	Poll      PollConfig      `envPrefix:"POLL_"`
	Broadcast BroadcastConfig `envPrefix:"BROADCAST_"`

	Observability ObservabilityConfig
}

// Sanitize clamps every section. Call it once after env.Parse.
func (c *AppConfig) Sanitize() {
	for _, s := range []interface{ Sanitize() }{
		&c.HTTP, &c.Scheduler, &c.Provider, &c.Poll, &c.Broadcast, &c.Observability,
	} {
		s.Sanitize()
	}

	if !c.IsDev {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("NODE_ENV"))) {
		case "development", "dev":
			c.IsDev = true
		}
	}
}

// GetEnabledServices parses Services.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// Runs reports whether mode is enabled. An unparsable Services value enables nothing.
func (c *AppConfig) Runs(mode ServiceMode) bool {
	enabled, err := c.GetEnabledServices()
	return err == nil && enabled[mode]
}
