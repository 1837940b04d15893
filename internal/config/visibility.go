package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

// ErrUnknownTerritory is returned when no config is stored for a territory.
var ErrUnknownTerritory = errors.New("unknown territory")

// ListEntry is a void list or whitelist entry.
// Name and HomeWorld are the durable identity; ObjectID is the last id the
// entry was seen with and is only a hint.
type ListEntry struct {
	Name      string         `yaml:"name" json:"name"`
	HomeWorld model.WorldID  `yaml:"home_world" json:"home_world"`
	ObjectID  model.EntityID `yaml:"object_id,omitempty" json:"object_id,omitempty"`
	Reason    string         `yaml:"reason,omitempty" json:"reason,omitempty"`
	Manual    bool           `yaml:"manual,omitempty" json:"manual,omitempty"`
}

// Visibility is the persisted visibility configuration.
type Visibility struct {
	Enabled         bool `yaml:"enabled"`
	AdvancedEnabled bool `yaml:"advanced_enabled"`

	// Territories where the filter keeps working while bound by duty.
	TerritoryTypeWhitelist []model.TerritoryID `yaml:"territory_type_whitelist"`

	// Default applies to territories without their own config and to every
	// territory while advanced mode is off.
	Default     TerritoryConfig                       `yaml:"default"`
	Territories map[model.TerritoryID]TerritoryConfig `yaml:"territories,omitempty"`

	VoidList  []ListEntry `yaml:"void_list,omitempty"`
	Whitelist []ListEntry `yaml:"whitelist,omitempty"`
}

// DefaultVisibility returns Visibility config with sensible defaults.
func DefaultVisibility() Visibility {
	return Visibility{
		Enabled:     true,
		Territories: make(map[model.TerritoryID]TerritoryConfig),
	}
}

// Clone returns a deep copy.
func (v Visibility) Clone() Visibility {
	out := v
	out.TerritoryTypeWhitelist = slices.Clone(v.TerritoryTypeWhitelist)
	out.Territories = make(map[model.TerritoryID]TerritoryConfig, len(v.Territories))
	for id, tc := range v.Territories {
		out.Territories[id] = tc.Clone()
	}
	out.VoidList = slices.Clone(v.VoidList)
	out.Whitelist = slices.Clone(v.Whitelist)
	return out
}

// LoadVisibility loads visibility config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadVisibility(path string) (Visibility, error) {
	cfg := DefaultVisibility()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading visibility config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing visibility config %s: %w", path, err)
	}
	if cfg.Territories == nil {
		cfg.Territories = make(map[model.TerritoryID]TerritoryConfig)
	}
	for id, tc := range cfg.Territories {
		tc.TerritoryType = id
		cfg.Territories[id] = tc
	}

	return cfg, nil
}

// SaveVisibility writes visibility config to a YAML file.
func SaveVisibility(path string, v Visibility) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding visibility config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing visibility config %s: %w", path, err)
	}
	return nil
}

// Settings is an immutable view of the configuration for one territory.
// A frame pass reads a single Settings value from start to end.
type Settings struct {
	Enabled   bool
	Territory model.TerritoryID
	Current   TerritoryConfig

	whitelist map[model.TerritoryID]struct{}
}

// TerritoryWhitelisted returns true if id is in the territory whitelist.
func (s *Settings) TerritoryWhitelisted(id model.TerritoryID) bool {
	_, ok := s.whitelist[id]
	return ok
}

// Runtime owns the live configuration and publishes Settings snapshots.
// Writers serialize on mu; readers only load the atomic pointer.
type Runtime struct {
	mu       sync.Mutex
	cfg      Visibility
	current  model.TerritoryID
	settings atomic.Pointer[Settings]
}

// NewRuntime creates a runtime from a loaded config. The config is copied.
func NewRuntime(v Visibility) *Runtime {
	r := &Runtime{cfg: v.Clone()}
	r.publishLocked()
	return r
}

// Settings returns the current snapshot. Never nil.
func (r *Runtime) Settings() *Settings {
	return r.settings.Load()
}

// SelectTerritory switches the current territory (zone transition).
// An unknown territory gets a clone of the default config.
func (r *Runtime) SelectTerritory(id model.TerritoryID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == id && r.settings.Load() != nil {
		return
	}
	r.current = id
	if _, ok := r.cfg.Territories[id]; !ok && r.cfg.AdvancedEnabled {
		tc := r.cfg.Default.Clone()
		tc.TerritoryType = id
		r.cfg.Territories[id] = tc
		slog.Debug("territory config created from default", "territory", id)
	}
	r.publishLocked()
}

// SetEnabled toggles the master switch.
func (r *Runtime) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.Enabled = enabled
	r.publishLocked()
}

// SetAdvancedEnabled toggles per-territory configs.
func (r *Runtime) SetAdvancedEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.AdvancedEnabled = enabled
	r.publishLocked()
}

// SetDefault replaces the default territory config.
func (r *Runtime) SetDefault(tc TerritoryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.Default = tc.Clone()
	r.publishLocked()
}

// SetTerritoryConfig stores a config for territory id.
func (r *Runtime) SetTerritoryConfig(id model.TerritoryID, tc TerritoryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tc = tc.Clone()
	tc.TerritoryType = id
	r.cfg.Territories[id] = tc
	r.publishLocked()
}

// TerritoryConfig returns a copy of the stored config for id.
func (r *Runtime) TerritoryConfig(id model.TerritoryID) (TerritoryConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tc, ok := r.cfg.Territories[id]
	if !ok {
		return TerritoryConfig{}, fmt.Errorf("territory %d: %w", id, ErrUnknownTerritory)
	}
	return tc.Clone(), nil
}

// RemoveTerritoryConfig drops the stored config for id.
func (r *Runtime) RemoveTerritoryConfig(id model.TerritoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cfg.Territories[id]; !ok {
		return fmt.Errorf("territory %d: %w", id, ErrUnknownTerritory)
	}
	delete(r.cfg.Territories, id)
	r.publishLocked()
	return nil
}

// SetTerritoryWhitelist replaces the bound-territory whitelist.
func (r *Runtime) SetTerritoryWhitelist(ids []model.TerritoryID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.TerritoryTypeWhitelist = slices.Clone(ids)
	r.publishLocked()
}

// Snapshot returns a deep copy of the whole configuration (for saving).
func (r *Runtime) Snapshot() Visibility {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.Clone()
}

func (r *Runtime) publishLocked() {
	if r.cfg.Territories == nil {
		r.cfg.Territories = make(map[model.TerritoryID]TerritoryConfig)
	}

	current := r.cfg.Default.Clone()
	if r.cfg.AdvancedEnabled {
		if tc, ok := r.cfg.Territories[r.current]; ok {
			current = tc.Clone()
		}
	}
	current.TerritoryType = r.current

	wl := make(map[model.TerritoryID]struct{}, len(r.cfg.TerritoryTypeWhitelist))
	for _, id := range r.cfg.TerritoryTypeWhitelist {
		wl[id] = struct{}{}
	}

	r.settings.Store(&Settings{
		Enabled:   r.cfg.Enabled,
		Territory: r.current,
		Current:   current,
		whitelist: wl,
	})
}
