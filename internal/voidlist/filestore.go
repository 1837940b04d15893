package voidlist

import (
	"context"
	"sync"

	"github.com/SF-XIV/VisibilityPluginPlus/internal/config"
)

// FileStore persists list entries into the YAML visibility config at Path.
// Every save rewrites the file. Safe for concurrent use.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// SaveListEntry replaces the entry with the same identity, or appends it.
func (s *FileStore) SaveListEntry(ctx context.Context, kind Kind, entry config.ListEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := config.LoadVisibility(s.path)
	if err != nil {
		return err
	}

	list := &v.VoidList
	if kind == KindWhitelist {
		list = &v.Whitelist
	}

	key := IdentityKey(entry.Name, entry.HomeWorld)
	replaced := false
	for i := range *list {
		if IdentityKey((*list)[i].Name, (*list)[i].HomeWorld) == key {
			(*list)[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		*list = append(*list, entry)
	}

	return config.SaveVisibility(s.path, v)
}
