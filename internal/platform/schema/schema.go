// Package schema declares the logical object stores and indexes of the local
// database. It is static configuration consumed once when the database is
// opened or upgraded.
package schema

import (
	"fmt"
	"strings"
)

// KeyPath names the document field(s) a key or index is built from. A single
// entry is a plain field; more than one entry forms a composite key.
type KeyPath []string

func (k KeyPath) IsComposite() bool { return len(k) > 1 }

func (k KeyPath) String() string {
	if k.IsComposite() {
		return "[" + strings.Join(k, ", ") + "]"
	}
	return strings.Join(k, "")
}

type DatabaseSchema struct {
	Name    string
	Version int
	Stores  []StoreConfig
}

type StoreConfig struct {
	Name          string
	KeyPath       KeyPath
	AutoIncrement bool
	Indexes       []IndexConfig
}

// IndexConfig describes a secondary index. MultiEntry indexes are built from
// array-valued fields and hold one entry per array element.
type IndexConfig struct {
	Name       string
	KeyPath    KeyPath
	Unique     bool
	MultiEntry bool
}

func (s DatabaseSchema) Store(name string) (StoreConfig, bool) {
	for _, store := range s.Stores {
		if store.Name == name {
			return store, true
		}
	}
	return StoreConfig{}, false
}

func (s StoreConfig) Index(name string) (IndexConfig, bool) {
	for _, idx := range s.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexConfig{}, false
}

func (s DatabaseSchema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("database name is required")
	}
	if s.Version <= 0 {
		return fmt.Errorf("database version must be > 0")
	}
	if len(s.Stores) == 0 {
		return fmt.Errorf("database %s declares no stores", s.Name)
	}

	seenStores := make(map[string]struct{}, len(s.Stores))
	for _, store := range s.Stores {
		if err := validIdentifier(store.Name); err != nil {
			return fmt.Errorf("store name: %w", err)
		}
		if _, ok := seenStores[store.Name]; ok {
			return fmt.Errorf("duplicate store %s", store.Name)
		}
		seenStores[store.Name] = struct{}{}

		if err := validKeyPath(store.KeyPath); err != nil {
			return fmt.Errorf("store %s key path: %w", store.Name, err)
		}
		if store.AutoIncrement {
			return fmt.Errorf("store %s: auto-increment keys are not supported", store.Name)
		}

		seenIndexes := make(map[string]struct{}, len(store.Indexes))
		for _, idx := range store.Indexes {
			if err := validIdentifier(idx.Name); err != nil {
				return fmt.Errorf("store %s index name: %w", store.Name, err)
			}
			if _, ok := seenIndexes[idx.Name]; ok {
				return fmt.Errorf("store %s: duplicate index %s", store.Name, idx.Name)
			}
			seenIndexes[idx.Name] = struct{}{}

			if err := validKeyPath(idx.KeyPath); err != nil {
				return fmt.Errorf("store %s index %s key path: %w", store.Name, idx.Name, err)
			}
			if idx.MultiEntry && idx.KeyPath.IsComposite() {
				return fmt.Errorf("store %s index %s: multi-entry index cannot use a composite key path", store.Name, idx.Name)
			}
			if idx.MultiEntry && idx.Unique {
				return fmt.Errorf("store %s index %s: unique multi-entry indexes are not supported", store.Name, idx.Name)
			}
		}
	}

	return nil
}

func validKeyPath(path KeyPath) error {
	if len(path) == 0 {
		return fmt.Errorf("key path is empty")
	}
	for _, field := range path {
		if err := validIdentifier(field); err != nil {
			return err
		}
	}
	return nil
}

func validIdentifier(v string) error {
	if v == "" {
		return fmt.Errorf("identifier is empty")
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return fmt.Errorf("identifier %q contains %q", v, r)
		}
	}
	return nil
}
