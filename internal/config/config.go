// Package config loads the settings of the coordinator command.
//
// Values are resolved in order of precedence: command-line flags, COORDINATOR_*
// environment variables, the YAML config file, then the defaults declared in the
// struct tags of Config.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"

	"github.com/ygrebnov/coordinator"
)

const (
	Namespace = "config"

	// EnvPrefix prefixes the environment variables overriding config keys,
	// e.g. COORDINATOR_WORKERS or COORDINATOR_DRAIN_TIMEOUT.
	EnvPrefix = "COORDINATOR"
)

var (
	ErrInvalid = errors.New(Namespace + ": invalid configuration")
	ErrLoad    = errors.New(Namespace + ": cannot load configuration")
)

// Config is the configuration of a simulation run.
type Config struct {
	Workers        int           `mapstructure:"workers" yaml:"workers" default:"5"`
	Tasks          int           `mapstructure:"tasks" yaml:"tasks" default:"20"`
	MinCost        uint          `mapstructure:"min_cost" yaml:"min_cost" default:"1"`
	MaxCost        uint          `mapstructure:"max_cost" yaml:"max_cost" default:"5"`
	CostUnit       time.Duration `mapstructure:"cost_unit" yaml:"cost_unit" default:"100ms"`
	Seed           uint64        `mapstructure:"seed" yaml:"seed" default:"0"` // 0: random
	FailureRate    float64       `mapstructure:"failure_rate" yaml:"failure_rate" default:"0"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval" default:"1s"`
	QueueCapacity  int           `mapstructure:"queue_capacity" yaml:"queue_capacity" default:"0"`
	ShutdownPolicy string        `mapstructure:"shutdown_policy" yaml:"shutdown_policy" default:"drain"`
	DrainTimeout   time.Duration `mapstructure:"drain_timeout" yaml:"drain_timeout" default:"30s"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level" default:"info"`
	LogFormat      string        `mapstructure:"log_format" yaml:"log_format" default:"console"`
	MetricsAddr    string        `mapstructure:"metrics_addr" yaml:"metrics_addr" default:""`
}

// Default returns a Config holding the tag defaults.
func Default() Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		// tags are static, a failure here is a programming error
		panic(err)
	}
	return c
}

// keys lists every config key with its flag usage, in display order.
var keys = []struct{ name, usage string }{
	{"workers", "number of workers"},
	{"tasks", "number of tasks to generate"},
	{"min_cost", "minimum task cost"},
	{"max_cost", "maximum task cost"},
	{"cost_unit", "duration of one cost unit"},
	{"seed", "random seed for task costs (0 picks one)"},
	{"failure_rate", "probability in [0,1] that a task fails"},
	{"poll_interval", "how often idle workers re-check their stop flag"},
	{"queue_capacity", "queue bound, 0 for unbounded"},
	{"shutdown_policy", "drain or abandon"},
	{"drain_timeout", "how long shutdown waits for the queue to drain"},
	{"log_level", "debug, info, warn or error"},
	{"log_format", "console or json"},
	{"metrics_addr", "serve Prometheus metrics on this address (empty disables)"},
}

// flagName converts a config key to its flag name.
func flagName(key string) string { return strings.ReplaceAll(key, "_", "-") }

// RegisterFlags adds one flag per config key to fs, defaulting to the tag defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	values := d.values()
	for _, k := range keys {
		switch v := values[k.name].(type) {
		case int:
			fs.Int(flagName(k.name), v, k.usage)
		case uint:
			fs.Uint(flagName(k.name), v, k.usage)
		case uint64:
			fs.Uint64(flagName(k.name), v, k.usage)
		case float64:
			fs.Float64(flagName(k.name), v, k.usage)
		case time.Duration:
			fs.Duration(flagName(k.name), v, k.usage)
		case string:
			fs.String(flagName(k.name), v, k.usage)
		}
	}
}

func (c Config) values() map[string]any {
	return map[string]any{
		"workers":         c.Workers,
		"tasks":           c.Tasks,
		"min_cost":        c.MinCost,
		"max_cost":        c.MaxCost,
		"cost_unit":       c.CostUnit,
		"seed":            c.Seed,
		"failure_rate":    c.FailureRate,
		"poll_interval":   c.PollInterval,
		"queue_capacity":  c.QueueCapacity,
		"shutdown_policy": c.ShutdownPolicy,
		"drain_timeout":   c.DrainTimeout,
		"log_level":       c.LogLevel,
		"log_format":      c.LogFormat,
		"metrics_addr":    c.MetricsAddr,
	}
}

// Load resolves the configuration from file (optional), environment and the flags
// in fs (may be nil), then validates it.
func Load(file string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()

	d := Default()
	for k, val := range d.values() {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: %w", errorc.With(ErrLoad, errorc.String("file", file)), err)
		}
	}

	if fs != nil {
		for _, k := range keys {
			if f := fs.Lookup(flagName(k.name)); f != nil {
				if err := v.BindPFlag(k.name, f); err != nil {
					return Config{}, fmt.Errorf("%w: %w", ErrLoad, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	invalid := func(key, value string) error {
		return errorc.With(ErrInvalid, errorc.String(key, value))
	}

	switch {
	case c.Workers <= 0:
		return invalid("workers", strconv.Itoa(c.Workers))
	case c.Tasks < 0:
		return invalid("tasks", strconv.Itoa(c.Tasks))
	case c.MinCost > c.MaxCost:
		return invalid("min_cost", fmt.Sprintf("%d > max_cost %d", c.MinCost, c.MaxCost))
	case c.CostUnit < 0:
		return invalid("cost_unit", c.CostUnit.String())
	case c.FailureRate < 0 || c.FailureRate > 1:
		return invalid("failure_rate", strconv.FormatFloat(c.FailureRate, 'g', -1, 64))
	case c.PollInterval <= 0:
		return invalid("poll_interval", c.PollInterval.String())
	case c.QueueCapacity < 0:
		return invalid("queue_capacity", strconv.Itoa(c.QueueCapacity))
	case c.DrainTimeout <= 0:
		return invalid("drain_timeout", c.DrainTimeout.String())
	}

	if _, err := coordinator.ParseShutdownPolicy(c.ShutdownPolicy); err != nil {
		return invalid("shutdown_policy", c.ShutdownPolicy)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return invalid("log_format", c.LogFormat)
	}
	return nil
}

// YAML renders the configuration as a config file. Durations are written in
// time.Duration notation so the output can be loaded back.
func (c Config) YAML() ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	values := c.values()
	for _, k := range keys {
		val := values[k.name]
		if d, ok := val.(time.Duration); ok {
			val = d.String()
		}

		var vn yaml.Node
		if err := vn.Encode(val); err != nil {
			return nil, err
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k.name, HeadComment: k.usage},
			&vn,
		)
	}
	return yaml.Marshal(doc)
}
