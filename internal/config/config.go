// Package config loads logmon settings from defaults, an optional config
// file, LOGMON_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/SmitUplenchwar2687/logmon/internal/monitor"
)

// EnvPrefix is prepended to every environment variable, with dots in keys
// replaced by underscores: LOGMON_ALERT_THRESHOLD, LOGMON_NOTIFY_NATS_URL.
const EnvPrefix = "LOGMON"

// Config is the full set of options for a logmon session.
type Config struct {
	File            string        `mapstructure:"file" validate:"required"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"gt=0"`
	PollInterval    time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	AlertDuration   time.Duration `mapstructure:"alert_duration" validate:"gt=0"`
	AlertThreshold  float64       `mapstructure:"alert_threshold" validate:"gt=0"`
	Record          string        `mapstructure:"record"`

	Log       LogConfig       `mapstructure:"log"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

// LogConfig controls logmon's own diagnostics log.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	File  string `mapstructure:"file"`
}

// DashboardConfig enables the web dashboard when Addr is set.
type DashboardConfig struct {
	Addr string `mapstructure:"addr"`
}

// NotifyConfig lists the alert sinks. A sink with an empty address is off.
type NotifyConfig struct {
	Webhook WebhookConfig `mapstructure:"webhook"`
	Redis   RedisConfig   `mapstructure:"redis"`
	NATS    NATSConfig    `mapstructure:"nats"`
}

type WebhookConfig struct {
	URL     string        `mapstructure:"url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Retries int           `mapstructure:"retries" validate:"gte=0"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Channel  string `mapstructure:"channel" validate:"required_with=Addr"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject" validate:"required_with=URL"`
}

// Default returns a Config with the standard settings.
func Default() Config {
	mc := monitor.DefaultConfig()
	return Config{
		File:            "/var/log/access.log",
		RefreshInterval: mc.RefreshInterval,
		PollInterval:    time.Second,
		AlertDuration:   mc.AlertDuration,
		AlertThreshold:  mc.AlertThreshold,
		Log: LogConfig{
			Level: "info",
		},
		Notify: NotifyConfig{
			Webhook: WebhookConfig{Timeout: 5 * time.Second, Retries: 2},
			Redis:   RedisConfig{Channel: "logmon:alerts"},
			NATS:    NATSConfig{Subject: "logmon.alerts"},
		},
	}
}

// Monitor returns the monitor parameters carried by c.
func (c Config) Monitor() monitor.Config {
	return monitor.Config{
		RefreshInterval: c.RefreshInterval,
		AlertDuration:   c.AlertDuration,
		AlertThreshold:  c.AlertThreshold,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks c and reports problems as a *monitor.ConfigError whose
// field names are the dotted config keys.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	cfgErr := &monitor.ConfigError{}
	for _, fe := range verrs {
		cfgErr.Fields = append(cfgErr.Fields, monitor.FieldError{
			Field:  fieldKey(fe.Namespace()),
			Reason: reason(fe),
		})
	}
	return cfgErr
}

// fieldKey drops the struct name from a validator namespace.
func fieldKey(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "is required when " + strings.ToLower(fe.Param()) + " is set"
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must not be negative, got %v", fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("must be a URL, got %q", fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"file-path":       "file",
	"refresh-rate":    "refresh_interval",
	"poll-interval":   "poll_interval",
	"alert-duration":  "alert_duration",
	"alert-threshold": "alert_threshold",
	"record":          "record",
	"log-level":       "log.level",
	"log-file":        "log.file",
	"addr":            "dashboard.addr",
	"webhook-url":     "notify.webhook.url",
	"redis-addr":      "notify.redis.addr",
	"redis-channel":   "notify.redis.channel",
	"nats-url":        "notify.nats.url",
	"nats-subject":    "notify.nats.subject",
}

// RegisterFlags adds the monitoring flags to fs. Flag defaults mirror
// Default; Load only honours flags that were set explicitly.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP("file-path", "f", d.File, "access log to monitor")
	fs.VarP(newDurationValue(d.RefreshInterval), "refresh-rate", "r", "stats window and display refresh interval (seconds, or a duration like 10s)")
	fs.Var(newDurationValue(d.PollInterval), "poll-interval", "how often the log file is checked for new lines (seconds, or a duration like 500ms)")
	fs.VarP(newDurationValue(d.AlertDuration), "alert-duration", "d", "window over which the alert averages traffic (seconds, or a duration like 2m)")
	fs.Float64P("alert-threshold", "t", d.AlertThreshold, "average requests per second that raises an alert")
	fs.String("log-level", d.Log.Level, "diagnostics log level (debug, info, warn, error)")
	fs.String("log-file", d.Log.File, "write diagnostics to this file instead of stderr")
}

// RegisterOutputFlags adds the dashboard, notifier and recording flags.
func RegisterOutputFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("addr", d.Dashboard.Addr, "serve the web dashboard on this address")
	fs.String("record", d.Record, "export alert history as JSON to this file on exit")
	fs.String("webhook-url", d.Notify.Webhook.URL, "POST alert events to this URL")
	fs.String("redis-addr", d.Notify.Redis.Addr, "publish alert events to this Redis server")
	fs.String("redis-channel", d.Notify.Redis.Channel, "Redis channel for alert events")
	fs.String("nats-url", d.Notify.NATS.URL, "publish alert events to this NATS server")
	fs.String("nats-subject", d.Notify.NATS.Subject, "NATS subject for alert events")
}

// Load builds a Config with precedence flag > env > file > default. path
// may be empty; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("file", d.File)
	v.SetDefault("refresh_interval", d.RefreshInterval)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("alert_duration", d.AlertDuration)
	v.SetDefault("alert_threshold", d.AlertThreshold)
	v.SetDefault("record", d.Record)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("dashboard.addr", d.Dashboard.Addr)
	v.SetDefault("notify.webhook.url", d.Notify.Webhook.URL)
	v.SetDefault("notify.webhook.timeout", d.Notify.Webhook.Timeout)
	v.SetDefault("notify.webhook.retries", d.Notify.Webhook.Retries)
	v.SetDefault("notify.redis.addr", d.Notify.Redis.Addr)
	v.SetDefault("notify.redis.password", d.Notify.Redis.Password)
	v.SetDefault("notify.redis.db", d.Notify.Redis.DB)
	v.SetDefault("notify.redis.channel", d.Notify.Redis.Channel)
	v.SetDefault("notify.nats.url", d.Notify.NATS.URL)
	v.SetDefault("notify.nats.subject", d.Notify.NATS.Subject)
}

const example = `# logmon configuration. Every key can also be set through an environment
# variable such as LOGMON_ALERT_THRESHOLD or LOGMON_NOTIFY_NATS_URL.
file: /var/log/access.log
refresh_interval: 10s
poll_interval: 1s
alert_duration: 2m
alert_threshold: 10
record: ""

log:
  level: info
  file: ""

dashboard:
  addr: ""        # e.g. ":8080"

notify:
  webhook:
    url: ""
    timeout: 5s
    retries: 2
  redis:
    addr: ""      # e.g. "localhost:6379"
    password: ""
    db: 0
    channel: logmon:alerts
  nats:
    url: ""       # e.g. "nats://localhost:4222"
    subject: logmon.alerts
`

// WriteExample writes an example YAML config file to path.
func WriteExample(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	return os.WriteFile(path, []byte(example), 0o644)
}
