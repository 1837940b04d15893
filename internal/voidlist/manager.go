package voidlist

import (
	"cmp"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/config"
	"github.com/SF-XIV/VisibilityPluginPlus/internal/model"
)

// Kind selects one of the two lists.
type Kind uint8

const (
	KindVoid      Kind = iota // always hide
	KindWhitelist             // always show
	kindCount
)

// String returns list name for logs and storage.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindWhitelist:
		return "whitelist"
	default:
		return "unknown"
	}
}

// Key is the durable identity of a list entry: a digest of the lower-cased
// name and the home world. Object ids are recycled, names+worlds are not.
type Key [blake2b.Size256]byte

// IdentityKey computes the key for name on world.
func IdentityKey(name string, world model.WorldID) Key {
	buf := make([]byte, 0, len(name)+3)
	buf = append(buf, strings.ToLower(name)...)
	buf = append(buf, 0, byte(world>>8), byte(world))
	return blake2b.Sum256(buf)
}

// String returns the hex form of the key.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Store persists list entries whose last-seen object id changed.
type Store interface {
	SaveListEntry(ctx context.Context, kind Kind, entry config.ListEntry) error
}

type cacheEntry struct {
	key     Key
	matched bool
}

// Manager resolves and caches void list and whitelist membership.
// Thread-safe: reads take the read lock, cache misses take the write lock.
type Manager struct {
	mu      sync.RWMutex
	entries [kindCount]map[Key]*config.ListEntry
	cache   [kindCount]map[model.EntityID]cacheEntry
	dirty   [kindCount]map[Key]struct{}
}

// NewManager creates a manager loaded with the given entries.
func NewManager(void, whitelist []config.ListEntry) *Manager {
	m := &Manager{}
	for k := range kindCount {
		m.entries[k] = make(map[Key]*config.ListEntry)
		m.cache[k] = make(map[model.EntityID]cacheEntry)
		m.dirty[k] = make(map[Key]struct{})
	}
	m.Load(KindVoid, void)
	m.Load(KindWhitelist, whitelist)
	return m
}

// Load replaces all entries of a list and drops its cache.
func (m *Manager) Load(kind Kind, entries []config.ListEntry) {
	if kind >= kindCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[kind] = make(map[Key]*config.ListEntry, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		entry := e
		m.entries[kind][IdentityKey(e.Name, e.HomeWorld)] = &entry
	}
	clear(m.cache[kind])
	clear(m.dirty[kind])
}

// Add inserts or replaces an entry.
func (m *Manager) Add(kind Kind, entry config.ListEntry) error {
	if kind >= kindCount {
		return fmt.Errorf("adding entry: unknown list %d", kind)
	}
	if entry.Name == "" {
		return errors.New("adding entry: empty name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[kind][IdentityKey(entry.Name, entry.HomeWorld)] = &entry
	clear(m.cache[kind])
	return nil
}

// Remove deletes the entry for name on world. Returns false if absent.
func (m *Manager) Remove(kind Kind, name string, world model.WorldID) bool {
	if kind >= kindCount {
		return false
	}
	key := IdentityKey(name, world)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[kind][key]; !ok {
		return false
	}
	delete(m.entries[kind], key)
	delete(m.dirty[kind], key)
	clear(m.cache[kind])
	return true
}

// Entries returns a copy of a list.
func (m *Manager) Entries(kind Kind) []config.ListEntry {
	if kind >= kindCount {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]config.ListEntry, 0, len(m.entries[kind]))
	for _, e := range m.entries[kind] {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b config.ListEntry) int {
		return cmp.Or(cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), cmp.Compare(a.HomeWorld, b.HomeWorld))
	})
	return out
}

// CheckAndProcessVoidList returns true if the entity is on the void list.
func (m *Manager) CheckAndProcessVoidList(e *model.Entity) bool {
	return m.check(KindVoid, e)
}

// CheckAndProcessWhitelist returns true if the entity is explicitly whitelisted.
func (m *Manager) CheckAndProcessWhitelist(e *model.Entity) bool {
	return m.check(KindWhitelist, e)
}

// check resolves membership through the id cache. A cached verdict is only
// trusted while the id still belongs to the same name+world. Entities whose
// name has not streamed in yet never match.
func (m *Manager) check(kind Kind, e *model.Entity) bool {
	if e == nil || e.Name == "" || !e.HasIdentity() {
		return false
	}
	key := IdentityKey(e.Name, e.HomeWorld)

	m.mu.RLock()
	c, ok := m.cache[kind][e.ID]
	m.mu.RUnlock()
	if ok && c.key == key {
		return c.matched
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, matched := m.entries[kind][key]
	if matched && entry.ObjectID != e.ID {
		entry.ObjectID = e.ID
		m.dirty[kind][key] = struct{}{}
		slog.Debug("list entry seen with new object id",
			"list", kind.String(),
			"name", entry.Name,
			"world", entry.HomeWorld,
			"objectID", e.ID)
	}
	m.cache[kind][e.ID] = cacheEntry{key: key, matched: matched}
	return matched
}

// RetainCache drops cached verdicts for ids keep rejects.
// Called after each pass with the ids still present in the entity table.
func (m *Manager) RetainCache(keep func(model.EntityID) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range kindCount {
		for id := range m.cache[k] {
			if !keep(id) {
				delete(m.cache[k], id)
			}
		}
	}
}

// DirtyCount returns number of entries waiting for Flush.
func (m *Manager) DirtyCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for k := range kindCount {
		n += len(m.dirty[k])
	}
	return n
}

// Flush writes dirty entries to store. Entries that fail stay dirty and are
// retried by the next Flush.
func (m *Manager) Flush(ctx context.Context, store Store) error {
	type pending struct {
		kind  Kind
		key   Key
		entry config.ListEntry
	}

	m.mu.Lock()
	batch := make([]pending, 0, 8)
	for k := range kindCount {
		for key := range m.dirty[k] {
			if e, ok := m.entries[k][key]; ok {
				batch = append(batch, pending{kind: k, key: key, entry: *e})
			}
		}
		clear(m.dirty[k])
	}
	m.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	var errs []error
	for _, p := range batch {
		if err := store.SaveListEntry(ctx, p.kind, p.entry); err != nil {
			errs = append(errs, fmt.Errorf("saving %s entry %q: %w", p.kind, p.entry.Name, err))
			m.mu.Lock()
			if _, ok := m.entries[p.kind][p.key]; ok {
				m.dirty[p.kind][p.key] = struct{}{}
			}
			m.mu.Unlock()
		}
	}

	slog.Debug("list entries flushed", "count", len(batch), "failed", len(errs))
	return errors.Join(errs...)
}
