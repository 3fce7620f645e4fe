package monitor

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultRefreshInterval = 10 * time.Second
	DefaultAlertDuration   = 120 * time.Second
	DefaultAlertThreshold  = 10.0
)

// Config holds the window and alert parameters of a Monitor.
type Config struct {
	// RefreshInterval is the short (display) window length.
	RefreshInterval time.Duration `json:"refresh_interval"`
	// AlertDuration is the long (alerting) window length.
	AlertDuration time.Duration `json:"alert_duration"`
	// AlertThreshold is the average requests per second over AlertDuration
	// above which an alert fires.
	AlertThreshold float64 `json:"alert_threshold"`
}

// DefaultConfig returns the standard monitor parameters.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: DefaultRefreshInterval,
		AlertDuration:   DefaultAlertDuration,
		AlertThreshold:  DefaultAlertThreshold,
	}
}

// Validate reports every invalid field as a *ConfigError.
func (c Config) Validate() error {
	var problems []FieldError
	if c.RefreshInterval <= 0 {
		problems = append(problems, FieldError{Field: "refresh_interval", Reason: fmt.Sprintf("must be positive, got %s", c.RefreshInterval)})
	}
	if c.AlertDuration <= 0 {
		problems = append(problems, FieldError{Field: "alert_duration", Reason: fmt.Sprintf("must be positive, got %s", c.AlertDuration)})
	}
	if c.AlertThreshold <= 0 {
		problems = append(problems, FieldError{Field: "alert_threshold", Reason: fmt.Sprintf("must be positive, got %g", c.AlertThreshold)})
	}
	if len(problems) > 0 {
		return &ConfigError{Fields: problems}
	}
	return nil
}

// FieldError describes one invalid configuration field.
type FieldError struct {
	Field  string
	Reason string
}

// ConfigError is returned for invalid startup parameters. It is the only
// error that prevents a monitor from being created.
type ConfigError struct {
	Fields []FieldError
}

func (e *ConfigError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Reason
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}
