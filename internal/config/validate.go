package config

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/soyeahso/adlad/internal/ad"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	add := func(path, format string, args ...any) {
		issues = append(issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
	}
	oneOf := func(path, value string, valid []string) {
		if value != "" && !slices.Contains(valid, value) {
			add(path, "must be one of %v, got %q", valid, value)
		}
	}

	// Plugins
	dummy := cfg.Plugins.Dummy
	for path, value := range map[string]string{
		"plugins.dummy.initDelay":  dummy.InitDelay,
		"plugins.dummy.adDuration": dummy.AdDuration,
	} {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		switch {
		case err != nil:
			add(path, "invalid duration %q", value)
		case d < 0:
			add(path, "must not be negative, got %s", value)
		}
	}
	for path, kinds := range map[string][]string{
		"plugins.dummy.failKinds":   dummy.FailKinds,
		"plugins.dummy.unsupported": dummy.Unsupported,
	} {
		for _, k := range kinds {
			if _, err := ad.ParseKind(k); err != nil {
				add(path, "unknown ad kind %q", k)
			}
		}
	}

	// Gateway
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		add("gateway.port", "port must be 0-65535, got %d", cfg.Gateway.Port)
	}
	oneOf("gateway.bind", cfg.Gateway.Bind, []string{"auto", "lan", "loopback", "custom"})
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		add("gateway.customBindHost", "required when bind is custom")
	}
	oneOf("gateway.auth.mode", cfg.Gateway.Auth.Mode, []string{"token", "password"})

	// Logging
	oneOf("logging.level", cfg.Logging.Level, []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"})
	oneOf("logging.consoleStyle", cfg.Logging.ConsoleStyle, []string{"pretty", "compact", "json"})

	// History
	oneOf("history.store", cfg.History.Store, []string{"sqlite", "memory"})
	if cfg.History.Limit < 0 {
		add("history.limit", "must not be negative, got %d", cfg.History.Limit)
	}

	// map iteration above is unordered
	slices.SortStableFunc(issues, func(a, b ValidationIssue) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return issues
}
