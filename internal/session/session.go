// =============================================================================
// Pallet Manifest Importer - Import Session
// =============================================================================
//
// A Session holds the state of one import: the raw rows as read, and the
// clean items, error counters and summary derived from them. Derived state
// is only ever replaced as a whole by CleanAndValidate.
//
// PERSISTENCE:
//   After each cleaning pass the clean items, the summary and the source name
//   are written to the key-value store under "import.clean", "import.summary"
//   and "import.source", so the last import survives a restart. Every entry
//   is encoded before any is written, so an encoding failure leaves the
//   previous import intact. Error counters are not persisted.
//   Storage failures are logged and never returned: the in-memory result is
//   authoritative.
//
// =============================================================================

package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/pallet-manifest/internal/cleaner"
	"github.com/ginjaninja78/pallet-manifest/internal/kvstore"
	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

// Storage keys.
const (
	KeyClean   = "import.clean"
	KeySummary = "import.summary"
	KeySource  = "import.source"
)

// State is a snapshot of a session. Errors and Summary are nil until a
// cleaning pass has run, or after a restore that did not include them.
type State struct {
	// Source is the file or upload name the rows came from.
	Source  string
	Raw     []types.RawRow
	Clean   []types.CleanItem
	Errors  *types.ImportErrors
	Summary *types.ImportSummary
}

// HasData reports whether the state holds clean items.
func (s State) HasData() bool {
	return len(s.Clean) > 0
}

// Session is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	state  State
	store  kvstore.Store
	logger zerolog.Logger
}

// New creates an empty session persisting through store.
func New(store kvstore.Store, logger zerolog.Logger) *Session {
	return &Session{
		store:  store,
		logger: logger.With().Str("component", "session").Logger(),
		state: State{
			Raw:   []types.RawRow{},
			Clean: []types.CleanItem{},
		},
	}
}

// SetRaw replaces the raw rows and clears every derived field.
func (s *Session) SetRaw(rows []types.RawRow) {
	if rows == nil {
		rows = []types.RawRow{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{
		Raw:   rows,
		Clean: []types.CleanItem{},
	}
}

// SetSource records the name of the file the current rows came from.
func (s *Session) SetSource(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Source = name
}

// CleanAndValidate cleans the current raw rows, replaces the derived state
// and persists the clean items and summary.
func (s *Session) CleanAndValidate(ctx context.Context) cleaner.Result {
	s.mu.Lock()
	res := cleaner.Clean(s.state.Raw)
	errs := res.Errors
	summary := res.Summary
	s.state.Clean = res.Items
	s.state.Errors = &errs
	s.state.Summary = &summary
	source := s.state.Source
	s.mu.Unlock()

	s.persist(ctx, source, res)
	return res
}

func (s *Session) persist(ctx context.Context, source string, res cleaner.Result) {
	entries := []struct {
		key   string
		value interface{}
		data  string
	}{
		{key: KeyClean, value: res.Items},
		{key: KeySummary, value: res.Summary},
		{key: KeySource, value: source},
	}

	for i, e := range entries {
		data, err := json.Marshal(e.value)
		if err != nil {
			s.logger.Debug().Err(err).Str("key", e.key).Msg("failed to encode session state")
			return
		}
		entries[i].data = string(data)
	}

	for _, e := range entries {
		if err := s.store.Set(ctx, e.key, e.data); err != nil {
			s.logger.Debug().Err(err).Str("key", e.key).Msg("failed to persist session state")
			return
		}
	}
}

// Rehydrate restores the clean items, summary and source of the last import.
// Missing or unreadable entries leave the session unchanged. The clean items
// are restored first; if they cannot be read the summary is not attempted.
func (s *Session) Rehydrate(ctx context.Context) {
	var clean []types.CleanItem
	found, ok := s.load(ctx, KeyClean, &clean)
	if !ok {
		return
	}
	if found {
		if clean == nil {
			clean = []types.CleanItem{}
		}
		s.mu.Lock()
		s.state.Clean = clean
		s.mu.Unlock()
	}

	var source string
	if found, ok := s.load(ctx, KeySource, &source); ok && found {
		s.SetSource(source)
	}

	var summary types.ImportSummary
	if found, ok := s.load(ctx, KeySummary, &summary); !ok || !found {
		return
	}
	if summary.Pallets == nil {
		summary.Pallets = map[string]types.PalletTotals{}
	}
	if summary.Types == nil {
		summary.Types = map[string]int{}
	}

	s.mu.Lock()
	s.state.Summary = &summary
	s.mu.Unlock()
}

// load decodes key into v. found is false when the key is not set; ok is
// false when reading or decoding failed.
func (s *Session) load(ctx context.Context, key string, v interface{}) (found, ok bool) {
	raw, exists, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("failed to read session state")
		return false, false
	}
	if !exists || raw == "" {
		return false, true
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("ignoring unreadable session state")
		return false, false
	}
	return true, true
}

// Snapshot returns a copy of the current state. Slices are shared and must
// not be modified by the caller.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
