package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuePaths(issues []ValidationIssue) []string {
	var paths []string
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	return paths
}

func TestValidate_ValidDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_SingleField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"negative port", func(c *Config) { c.Gateway.Port = -1 }, "gateway.port"},
		{"port too large", func(c *Config) { c.Gateway.Port = 99999 }, "gateway.port"},
		{"bind", func(c *Config) { c.Gateway.Bind = "tailnet" }, "gateway.bind"},
		{"custom bind without host", func(c *Config) { c.Gateway.Bind = "custom" }, "gateway.customBindHost"},
		{"auth mode", func(c *Config) { c.Gateway.Auth.Mode = "oauth" }, "gateway.auth.mode"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"console style", func(c *Config) { c.Logging.ConsoleStyle = "fancy" }, "logging.consoleStyle"},
		{"history store", func(c *Config) { c.History.Store = "postgres" }, "history.store"},
		{"history limit", func(c *Config) { c.History.Limit = -5 }, "history.limit"},
		{"init delay", func(c *Config) { c.Plugins.Dummy.InitDelay = "soon" }, "plugins.dummy.initDelay"},
		{"negative ad duration", func(c *Config) { c.Plugins.Dummy.AdDuration = "-1s" }, "plugins.dummy.adDuration"},
		{"fail kinds", func(c *Config) { c.Plugins.Dummy.FailKinds = []string{"banner"} }, "plugins.dummy.failKinds"},
		{"unsupported kinds", func(c *Config) { c.Plugins.Dummy.Unsupported = []string{"video"} }, "plugins.dummy.unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			issues := Validate(&cfg)
			require.Len(t, issues, 1)
			assert.Equal(t, tt.path, issues[0].Path)
		})
	}
}

func TestValidate_AcceptedValues(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.Bind = "custom"
	cfg.Gateway.CustomBindHost = "10.0.0.5"
	cfg.Gateway.Auth.Mode = "password"
	cfg.Logging.Level = "silent"
	cfg.Logging.ConsoleStyle = "compact"
	cfg.History.Store = "memory"
	cfg.Plugins.Dummy.InitDelay = "0s"
	cfg.Plugins.Dummy.FailKinds = []string{"rewarded", "fullscreen"}
	cfg.Plugins.Dummy.Unsupported = []string{"Full-Screen"}

	assert.Empty(t, Validate(&cfg))
}

func TestValidate_MultipleIssuesSorted(t *testing.T) {
	cfg := Defaults()
	cfg.Plugins.Dummy.AdDuration = "forever"
	cfg.Plugins.Dummy.InitDelay = "later"
	cfg.Gateway.Port = -1
	cfg.Logging.Level = "loud"

	issues := Validate(&cfg)
	assert.Equal(t, []string{
		"gateway.port",
		"logging.level",
		"plugins.dummy.adDuration",
		"plugins.dummy.initDelay",
	}, issuePaths(issues))
}

func TestValidationIssueString(t *testing.T) {
	vi := ValidationIssue{Path: "gateway.port", Message: "port must be 0-65535, got 99999"}
	assert.Equal(t, "gateway.port: port must be 0-65535, got 99999", vi.String())
}
