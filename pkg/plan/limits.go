package plan

import (
	"fmt"
	"time"
)

// Limits holds the per-tier resource budgets applied to every governed request.
type Limits struct {
	// MaxRequestsPerWindow is the request ceiling within one rate window.
	MaxRequestsPerWindow int

	// WindowDuration is the length of the fixed rate window.
	WindowDuration time.Duration

	// QueryTimeout bounds a single data-store operation.
	QueryTimeout time.Duration

	// APITimeout bounds the overall request.
	APITimeout time.Duration

	// WorkerTaskTimeout bounds a single plugin call.
	WorkerTaskTimeout time.Duration
}

// limitsYAML mirrors Limits with Go duration strings ("60s", "1m30s").
type limitsYAML struct {
	MaxRequestsPerWindow int    `yaml:"max_requests_per_window"`
	WindowDuration       string `yaml:"window_duration"`
	QueryTimeout         string `yaml:"query_timeout"`
	APITimeout           string `yaml:"api_timeout"`
	WorkerTaskTimeout    string `yaml:"worker_task_timeout"`
}

// UnmarshalYAML decodes durations from strings accepted by time.ParseDuration.
func (l *Limits) UnmarshalYAML(unmarshal func(any) error) error {
	var raw limitsYAML
	if err := unmarshal(&raw); err != nil {
		return err
	}

	parse := func(field, s string) (time.Duration, error) {
		if s == "" {
			return 0, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidLimits, field, err)
		}
		return d, nil
	}

	var err error
	l.MaxRequestsPerWindow = raw.MaxRequestsPerWindow
	if l.WindowDuration, err = parse("window_duration", raw.WindowDuration); err != nil {
		return err
	}
	if l.QueryTimeout, err = parse("query_timeout", raw.QueryTimeout); err != nil {
		return err
	}
	if l.APITimeout, err = parse("api_timeout", raw.APITimeout); err != nil {
		return err
	}
	if l.WorkerTaskTimeout, err = parse("worker_task_timeout", raw.WorkerTaskTimeout); err != nil {
		return err
	}
	return nil
}

// Validate checks that every budget is positive.
func (l Limits) Validate() error {
	if l.MaxRequestsPerWindow <= 0 {
		return fmt.Errorf("%w: max_requests_per_window must be positive", ErrInvalidLimits)
	}
	if l.WindowDuration <= 0 {
		return fmt.Errorf("%w: window_duration must be positive", ErrInvalidLimits)
	}
	if l.QueryTimeout <= 0 || l.APITimeout <= 0 || l.WorkerTaskTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidLimits)
	}
	return nil
}

// DefaultLimits returns the built-in limits table covering every known tier.
func DefaultLimits() map[Tier]Limits {
	return map[Tier]Limits{
		TierFree: {
			MaxRequestsPerWindow: 60,
			WindowDuration:       time.Minute,
			QueryTimeout:         5 * time.Second,
			APITimeout:           15 * time.Second,
			WorkerTaskTimeout:    2 * time.Second,
		},
		TierPro: {
			MaxRequestsPerWindow: 600,
			WindowDuration:       time.Minute,
			QueryTimeout:         10 * time.Second,
			APITimeout:           30 * time.Second,
			WorkerTaskTimeout:    5 * time.Second,
		},
		TierEnterprise: {
			MaxRequestsPerWindow: 6000,
			WindowDuration:       time.Minute,
			QueryTimeout:         30 * time.Second,
			APITimeout:           60 * time.Second,
			WorkerTaskTimeout:    10 * time.Second,
		},
	}
}
