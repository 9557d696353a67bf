/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package admission

import (
	"errors"
	"fmt"
	"sync"

	"github.com/acronis/go-admission/capacity"
)

// errActorEntryNotReferenced is returned when an actor entry is unreferenced more times than it was referenced.
var errActorEntryNotReferenced = errors.New("actor entry is not referenced")

// actorEntry is a live per-actor record.
// It owns one permit of the global actor pool for its whole lifetime.
type actorEntry struct {
	actorID     string
	slots       *capacity.Pool
	actorPermit *capacity.Permit
	refs        int // guarded by actorTable.mu
}

// actorTable maps actor ids to their live entries.
// An entry is referenced by every attempt that passed the actor tier and is removed,
// releasing its actor permit, in the same critical section that drops its last reference.
type actorTable struct {
	perActorCapacity int

	mu      sync.Mutex
	entries map[string]*actorEntry
}

func newActorTable(perActorCapacity int) *actorTable {
	return &actorTable{perActorCapacity: perActorCapacity, entries: make(map[string]*actorEntry)}
}

// ref takes a reference on the live entry of the actor, if there is one.
func (t *actorTable) ref(actorID string) (*actorEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[actorID]
	if ok {
		entry.refs++
	}
	return entry, ok
}

// refOrCreate takes a reference on the live entry of the actor, creating one that owns actorPermit if absent.
// When another attempt has created the entry in the meantime, actorPermit is not consumed and is returned back
// as spare, so the caller has to release it.
func (t *actorTable) refOrCreate(actorID string, actorPermit *capacity.Permit) (entry *actorEntry, spare *capacity.Permit, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.entries[actorID]; ok {
		entry.refs++
		return entry, actorPermit, nil
	}

	slots, err := capacity.New(t.perActorCapacity)
	if err != nil {
		return nil, actorPermit, fmt.Errorf("create per-actor pool: %w", err)
	}
	entry = &actorEntry{actorID: actorID, slots: slots, actorPermit: actorPermit, refs: 1}
	t.entries[actorID] = entry
	return entry, nil, nil
}

// unref drops a reference on the entry. The last reference removes the entry and releases its actor permit.
func (t *actorTable) unref(entry *actorEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry.refs <= 0 {
		return fmt.Errorf("unref actor %q: %w", entry.actorID, errActorEntryNotReferenced)
	}
	entry.refs--
	if entry.refs > 0 {
		return nil
	}
	if t.entries[entry.actorID] == entry {
		delete(t.entries, entry.actorID)
	}
	if err := entry.actorPermit.Release(); err != nil {
		return fmt.Errorf("release actor permit of %q: %w", entry.actorID, err)
	}
	return nil
}

func (t *actorTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *actorTable) has(actorID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[actorID]
	return ok
}
