package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ServiceMode names a component the process can run.
type ServiceMode string

const (
	// ServiceModeHTTP serves the invocation endpoint and the trigger admin API.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeScheduler fires due recurring triggers.
	ServiceModeScheduler ServiceMode = "scheduler"
)

// ValidServiceModes lists every mode in startup order.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeScheduler}
}

// ParseServices parses a comma-separated mode list. Blank entries are skipped;
// an unknown name or an empty result is an error.
func ParseServices(raw string) (map[ServiceMode]bool, error) {
	if strings.TrimSpace(raw) == "" {
		return map[ServiceMode]bool{}, errors.New("at least one service must be specified")
	}

	valid := ValidServiceModes()
	enabled := make(map[ServiceMode]bool, len(valid))
	for name := range strings.SplitSeq(raw, ",") {
		mode := ServiceMode(strings.TrimSpace(name))
		switch {
		case mode == "":
			continue
		case !slices.Contains(valid, mode):
			return nil, fmt.Errorf("invalid service name: %q (valid options: %s)", mode, joinModes(valid))
		}
		enabled[mode] = true
	}

	if len(enabled) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}
	return enabled, nil
}

func joinModes(modes []ServiceMode) string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// SchedulerConfig tunes the trigger scheduler loop.
type SchedulerConfig struct {
	// BatchSize caps the due triggers claimed per tick.
	BatchSize int `env:"SCHEDULER_BATCH_SIZE" envDefault:"25"`
	// Concurrency caps poll cycles running at once within a tick. Never above BatchSize.
	Concurrency int `env:"SCHEDULER_CONCURRENCY" envDefault:"4"`
	// Interval between ticks, at least 100ms.
	Interval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"1s"`
}

// Sanitize clamps the scheduler settings.
func (s *SchedulerConfig) Sanitize() {
	s.BatchSize = max(s.BatchSize, 1)
	s.Concurrency = min(max(s.Concurrency, 1), s.BatchSize)
	s.Interval = max(s.Interval, 100*time.Millisecond)
}
