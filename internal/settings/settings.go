// Package settings holds the user settings that outlive an import.
package settings

import (
	"context"
	"encoding/json"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/pallet-manifest/internal/kvstore"
)

// Key is the storage key for the settings document.
const Key = "settings"

// DefaultMaxPalletWeightKg is the pallet weight limit before any change.
const DefaultMaxPalletWeightKg = 1000

// Settings is the persisted settings document.
type Settings struct {
	MaxPalletWeightKg float64 `json:"maxPalletWeightKg"`
}

// Manager owns the current settings and writes every change through to the
// store. Storage failures are logged and swallowed.
type Manager struct {
	mu       sync.RWMutex
	settings Settings
	store    kvstore.Store
	logger   zerolog.Logger
}

// NewManager returns a manager holding the defaults.
func NewManager(store kvstore.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		settings: Settings{MaxPalletWeightKg: DefaultMaxPalletWeightKg},
		store:    store,
		logger:   logger.With().Str("component", "settings").Logger(),
	}
}

// Get returns the current settings.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// MaxPalletWeightKg returns the current pallet weight limit.
func (m *Manager) MaxPalletWeightKg() float64 {
	return m.Get().MaxPalletWeightKg
}

// SetMaxPalletWeightKg stores v clamped to zero or more. NaN and infinite
// values store 0.
func (m *Manager) SetMaxPalletWeightKg(ctx context.Context, v float64) Settings {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		v = 0
	}

	m.mu.Lock()
	m.settings.MaxPalletWeightKg = v
	current := m.settings
	m.mu.Unlock()

	data, err := json.Marshal(current)
	if err != nil {
		m.logger.Debug().Err(err).Msg("failed to encode settings")
		return current
	}
	if err := m.store.Set(ctx, Key, string(data)); err != nil {
		m.logger.Debug().Err(err).Msg("failed to persist settings")
	}
	return current
}

// Hydrate restores persisted settings. The stored limit is applied only when
// it is a JSON number; anything else keeps the current value.
func (m *Manager) Hydrate(ctx context.Context) {
	raw, ok, err := m.store.Get(ctx, Key)
	if err != nil {
		m.logger.Debug().Err(err).Msg("failed to read settings")
		return
	}
	if !ok || raw == "" {
		return
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		m.logger.Debug().Err(err).Msg("ignoring unreadable settings")
		return
	}

	var value interface{}
	if err := json.Unmarshal(doc["maxPalletWeightKg"], &value); err != nil {
		return
	}
	if limit, isNumber := value.(float64); isNumber {
		m.mu.Lock()
		m.settings.MaxPalletWeightKg = limit
		m.mu.Unlock()
	}
}
