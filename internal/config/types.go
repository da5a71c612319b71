package config

// Config is the root configuration for adlad.
type Config struct {
	Plugin  string        `yaml:"plugin,omitempty"` // name of the active plugin; "" selects the first registered one
	Plugins PluginsConfig `yaml:"plugins,omitempty"`
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`
}

// PluginsConfig holds per-plugin settings for the built-in plugins.
type PluginsConfig struct {
	Dummy DummyConfig `yaml:"dummy,omitempty"`
}

// DummyConfig configures the simulated ad network.
type DummyConfig struct {
	InitDelay   string   `yaml:"initDelay,omitempty"`  // Go duration, e.g. "500ms"
	AdDuration  string   `yaml:"adDuration,omitempty"` // Go duration, e.g. "2s"
	FailInit    bool     `yaml:"failInit,omitempty"`
	FailKinds   []string `yaml:"failKinds,omitempty"`   // ad kinds whose display hook returns an error
	Unsupported []string `yaml:"unsupported,omitempty"` // ad kinds the plugin does not implement
}

// GatewayConfig controls the gateway HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int         `yaml:"port,omitempty"`
	Bind           string      `yaml:"bind,omitempty"` // "auto" | "lan" | "loopback" | "custom"
	CustomBindHost string      `yaml:"customBindHost,omitempty"`
	Auth           GatewayAuth `yaml:"auth,omitempty"`
	AllowedOrigins []string    `yaml:"allowedOrigins,omitempty"`
}

// GatewayAuth configures gateway authentication.
type GatewayAuth struct {
	Mode     string `yaml:"mode,omitempty"` // "token" | "password"
	Token    string `yaml:"token,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}

// HistoryConfig controls where ad requests are recorded.
type HistoryConfig struct {
	Store string `yaml:"store,omitempty"` // "sqlite" | "memory"
	Limit int    `yaml:"limit,omitempty"` // records kept by the memory store
}
