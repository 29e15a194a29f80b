// Package registry holds the process-wide id -> Transfer Runtime map. All
// mutation happens under one exclusive lock; readers always receive a
// cloned Record, never a reference into the locked map (SPEC_FULL.md
// §4.B, grounded on the downloads map in internal/downloader/queue.go's
// WorkerPool in the teacher repository).
package registry

import (
	"sync"

	"github.com/freedlm/fdm/internal/transfer"
)

// ErrNotFound is returned by Get/Update/Remove when the id is unknown.
type ErrNotFound string

func (e ErrNotFound) Error() string {
	return "transfer not found: " + string(e)
}

// Registry is the process-wide transfer map.
type Registry struct {
	mu    sync.Mutex
	items map[string]*transfer.Runtime
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{items: make(map[string]*transfer.Runtime)}
}

// Insert adds a new runtime, keyed by rec.ID. Overwrites silently if the
// id already exists — callers are expected to generate fresh ids.
func (r *Registry) Insert(rec *transfer.Record, cancel *transfer.CancelHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rec.ID] = &transfer.Runtime{Record: rec, Cancel: cancel}
}

// Get returns a cloned Record and its current cancellation handle. The
// handle itself is shared (it must be, to be trippable from outside) but
// the Record is never a live reference.
func (r *Registry) Get(id string) (*transfer.Record, *transfer.CancelHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.items[id]
	if !ok {
		return nil, nil, ErrNotFound(id)
	}
	return rt.Record.Clone(), rt.Cancel, nil
}

// Update applies fn to the live record under the lock and bumps
// UpdatedAt. It is the only primitive allowed to mutate a Record in
// place; every cross-component write goes through it. Returns the
// post-mutation clone.
func (r *Registry) Update(id string, fn func(*transfer.Record)) (*transfer.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound(id)
	}
	fn(rt.Record)
	rt.Record.UpdatedAt = transfer.NowMillis()
	return rt.Record.Clone(), nil
}

// SetCancelHandle installs a fresh cancellation handle for id, used by
// Resume/Restart so a tripped handle from a prior Worker attempt cannot
// affect the new one.
func (r *Registry) SetCancelHandle(id string, cancel *transfer.CancelHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.items[id]
	if !ok {
		return ErrNotFound(id)
	}
	rt.Cancel = cancel
	return nil
}

// Remove deletes id from the registry.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound(id)
	}
	delete(r.items, id)
	return nil
}

// SnapshotAll returns a cloned Record for every tracked transfer. Order
// is unspecified.
func (r *Registry) SnapshotAll() []*transfer.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*transfer.Record, 0, len(r.items))
	for _, rt := range r.items {
		out = append(out, rt.Record.Clone())
	}
	return out
}
