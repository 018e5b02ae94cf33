package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, 5, c.Workers)
	require.Equal(t, 20, c.Tasks)
	require.Equal(t, uint(1), c.MinCost)
	require.Equal(t, uint(5), c.MaxCost)
	require.Equal(t, 100*time.Millisecond, c.CostUnit)
	require.Equal(t, time.Second, c.PollInterval)
	require.Equal(t, "drain", c.ShutdownPolicy)
	require.Equal(t, 30*time.Second, c.DrainTimeout)
	require.Equal(t, "console", c.LogFormat)
	require.Empty(t, c.MetricsAddr)
	require.NoError(t, c.Validate())
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coordinator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Precedence(t *testing.T) {
	file := writeFile(t, "workers: 2\ntasks: 7\ncost_unit: 5ms\nshutdown_policy: abandon\n")
	t.Setenv("COORDINATOR_TASKS", "9")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--workers", "4"}))

	c, err := Load(file, fs)
	require.NoError(t, err)
	require.Equal(t, 4, c.Workers, "flag wins over file")
	require.Equal(t, 9, c.Tasks, "env wins over file")
	require.Equal(t, 5*time.Millisecond, c.CostUnit, "file wins over default")
	require.Equal(t, "abandon", c.ShutdownPolicy)
	require.Equal(t, uint(5), c.MaxCost, "default")
}

func TestLoad_NoSources(t *testing.T) {
	c, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.ErrorIs(t, err, ErrLoad)
}

func TestLoad_Invalid(t *testing.T) {
	file := writeFile(t, "failure_rate: 1.5\n")
	_, err := Load(file, nil)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"negative tasks", func(c *Config) { c.Tasks = -1 }},
		{"min above max", func(c *Config) { c.MinCost, c.MaxCost = 6, 5 }},
		{"negative cost unit", func(c *Config) { c.CostUnit = -time.Second }},
		{"failure rate above one", func(c *Config) { c.FailureRate = 2 }},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }},
		{"negative capacity", func(c *Config) { c.QueueCapacity = -3 }},
		{"zero drain timeout", func(c *Config) { c.DrainTimeout = 0 }},
		{"unknown policy", func(c *Config) { c.ShutdownPolicy = "never" }},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			require.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	c := Default()
	c.Workers = 8
	c.DrainTimeout = 90 * time.Second

	out, err := c.YAML()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(out, &raw))
	require.Equal(t, 8, raw["workers"])
	require.Equal(t, "1m30s", raw["drain_timeout"])
	require.Contains(t, string(out), "# number of workers")

	loaded, err := Load(writeFile(t, string(out)), nil)
	require.NoError(t, err)
	require.Equal(t, c, loaded)
}
