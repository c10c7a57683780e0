package filter

import (
	"fmt"

	"github.com/google/uuid"
)

// Custom is a named, user-defined predicate persisted to the local store and
// referenced by saved views through its ID.
type Custom struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Node Node   `json:"node"`
}

// KV is the slice of the local durable store the library needs.
type KV interface {
	GetJSON(key string, v any) bool
	SetJSON(key string, v any) error
}

const customKey = "filters/custom"

// Library keeps the user's custom filter definitions, mirrored to the local
// store on every mutation. An absent or corrupt stored entry loads as an
// empty library.
type Library struct {
	kv      KV
	customs []Custom
}

// NewLibrary loads the stored definitions from kv, which may be nil for a
// purely in-memory library.
func NewLibrary(kv KV) *Library {
	lib := &Library{kv: kv}
	if kv != nil {
		var stored []Custom
		if kv.GetJSON(customKey, &stored) {
			lib.customs = stored
		}
	}
	return lib
}

// List returns the definitions in insertion order.
func (lib *Library) List() []Custom {
	out := make([]Custom, len(lib.customs))
	copy(out, lib.customs)
	return out
}

// Get returns the definition with the given ID.
func (lib *Library) Get(id string) (Custom, bool) {
	for _, c := range lib.customs {
		if c.ID == id {
			return c, true
		}
	}
	return Custom{}, false
}

// Upsert stores a definition, assigning an ID when absent, and writes the
// library through to the local store.
func (lib *Library) Upsert(c Custom) (Custom, error) {
	if c.Name == "" {
		return Custom{}, fmt.Errorf("custom filter requires a name")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	replaced := false
	for i, existing := range lib.customs {
		if existing.ID == c.ID {
			lib.customs[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		lib.customs = append(lib.customs, c)
	}

	return c, lib.persist()
}

// Remove deletes a definition by ID. Removing an unknown ID is a no-op.
func (lib *Library) Remove(id string) error {
	kept := lib.customs[:0]
	for _, c := range lib.customs {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	lib.customs = kept
	return lib.persist()
}

func (lib *Library) persist() error {
	if lib.kv == nil {
		return nil
	}
	if err := lib.kv.SetJSON(customKey, lib.customs); err != nil {
		return fmt.Errorf("persist custom filters: %w", err)
	}
	return nil
}
