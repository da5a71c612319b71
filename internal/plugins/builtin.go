// Package plugins wires the built-in ad plugins into a registry from config.
package plugins

import (
	"fmt"
	"time"

	"github.com/soyeahso/adlad/internal/ad"
	"github.com/soyeahso/adlad/internal/config"
	"github.com/soyeahso/adlad/internal/logging"
	"github.com/soyeahso/adlad/internal/plugin"
	"github.com/soyeahso/adlad/internal/plugins/dummy"
)

// NewRegistry registers every built-in plugin configured by cfg.
func NewRegistry(cfg config.PluginsConfig, log *logging.Logger) (*plugin.Registry, error) {
	reg := plugin.NewRegistry(log)

	dc, err := DummyConfig(cfg.Dummy)
	if err != nil {
		return nil, err
	}
	if err := reg.Register(dummy.New(dc, log)); err != nil {
		return nil, err
	}
	return reg, nil
}

// DummyConfig converts the YAML settings of the dummy plugin.
func DummyConfig(c config.DummyConfig) (dummy.Config, error) {
	var (
		out dummy.Config
		err error
	)
	if out.InitDelay, err = parseDuration("plugins.dummy.initDelay", c.InitDelay); err != nil {
		return out, err
	}
	if out.AdDuration, err = parseDuration("plugins.dummy.adDuration", c.AdDuration); err != nil {
		return out, err
	}
	if out.FailKinds, err = parseKinds("plugins.dummy.failKinds", c.FailKinds); err != nil {
		return out, err
	}
	if out.Unsupported, err = parseKinds("plugins.dummy.unsupported", c.Unsupported); err != nil {
		return out, err
	}
	out.FailInit = c.FailInit
	return out, nil
}

// Active selects the active plugin named by name. A registry without plugins
// yields a nil plugin, which the coordinator treats as "no active plugin".
func Active(reg *plugin.Registry, name string) (plugin.Plugin, error) {
	if reg.Count() == 0 {
		return nil, nil
	}
	return reg.Select(name)
}

func parseDuration(path, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", path, s)
	}
	return d, nil
}

func parseKinds(path string, names []string) ([]ad.Kind, error) {
	kinds := make([]ad.Kind, 0, len(names))
	for _, n := range names {
		k, err := ad.ParseKind(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
