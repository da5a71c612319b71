package plugin

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/soyeahso/adlad/internal/logging"
)

var (
	ErrNoPlugins      = errors.New("no plugins registered")
	ErrPluginNotFound = errors.New("plugin not found")
)

// Registry holds the plugins available to the process, in registration order.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	order   []string // insertion order for deterministic selection and close
	log     *logging.Logger
}

// NewRegistry creates a plugin registry.
func NewRegistry(log *logging.Logger) *Registry {
	if log == nil {
		log = logging.Nop()
	}
	return &Registry{
		plugins: make(map[string]Plugin),
		log:     log.Sub("plugins"),
	}
}

// Register adds a plugin to the registry without initializing it.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin already registered: %s", name)
	}

	r.plugins[name] = p
	r.order = append(r.order, name)

	r.log.Info().
		Str("name", name).
		Strs("capabilities", Resolve(p).List()).
		Msg("plugin registered")

	return nil
}

// Select picks the active plugin. An empty name selects the first registered
// plugin.
func (r *Registry) Select(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil, ErrNoPlugins
	}
	if name == "" {
		name = r.order[0]
	}
	p, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	r.log.Info().Str("name", name).Msg("plugin selected")
	return p, nil
}

// CloseAll closes plugins implementing Closer in reverse registration order.
// Plugins named in skip are left open; their owner closes them.
func (r *Registry) CloseAll(skip ...string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		if slices.Contains(skip, name) {
			continue
		}
		c, ok := r.plugins[name].(Closer)
		if !ok {
			continue
		}
		r.log.Info().Str("name", name).Msg("closing plugin")
		if err := c.Close(); err != nil {
			r.log.Error().Err(err).Str("name", name).Msg("plugin close error")
		}
	}
}

// Get returns a plugin by name, or nil if not found.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plugins[name]
}

// List returns all registered plugin names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// Info returns summary information about all registered plugins.
func (r *Registry) Info() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, Info{
			Name:         name,
			Capabilities: Resolve(r.plugins[name]).List(),
		})
	}
	return infos
}

// Info holds summary data about a plugin.
type Info struct {
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}
