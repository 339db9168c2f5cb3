package resource

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/blockedby/recruiting-os/internal/cache"
	"github.com/blockedby/recruiting-os/internal/codec"
	"github.com/blockedby/recruiting-os/internal/logger"
	"github.com/blockedby/recruiting-os/internal/schema"
	"github.com/blockedby/recruiting-os/internal/storage"
)

// Option configures a Manager.
type Option func(*Manager)

// WithEvents installs a sink for record change events.
func WithEvents(sink EventSink) Option {
	return func(m *Manager) { m.pipeline.events = sink }
}

// Manager is the composition root for one entity type: it binds the
// schema to the pipeline, the cache and the dialog controller. One
// manager exists per entity type; at most one dialog (and one draft) is
// open per manager at any time.
type Manager struct {
	mu       sync.Mutex
	schema   *schema.EntitySchema
	store    storage.Store
	pipeline *Pipeline
	cache    *cache.Cache
	dialog   Dialog
	gen      uint64 // bumped on every dialog transition; a submit may only close the dialog it started from
	busy     bool
}

// NewManager creates a manager for one entity schema.
func NewManager(s *schema.EntitySchema, store storage.Store, c *cache.Cache, notifier Notifier, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		schema:   s,
		store:    store,
		pipeline: NewPipeline(s, store, c, notifier, log),
		cache:    c,
		dialog:   closedDialog(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Schema returns the bound entity schema.
func (m *Manager) Schema() *schema.EntitySchema {
	return m.schema
}

// Collection returns the cached collection snapshot, starting the
// initial fetch on first access.
func (m *Manager) Collection() cache.Snapshot {
	return m.cache.Get(m.schema.Entity)
}

// Refresh triggers a user-requested refetch, e.g. after a read error.
func (m *Manager) Refresh() {
	m.cache.Refresh(m.schema.Entity)
}

// Dialog returns a copy of the current dialog state.
func (m *Manager) Dialog() Dialog {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.dialog
	d.Draft = m.dialog.Draft.Clone()
	return d
}

// OpenCreate opens the create dialog with an empty default draft.
func (m *Manager) OpenCreate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dialog.State != DialogClosed {
		return ErrDialogOpen
	}
	m.gen++
	m.dialog = Dialog{State: DialogCreate, Draft: schema.NewDraft(m.schema)}
	return nil
}

// OpenEdit opens the edit dialog for a persisted record. The record's
// identity is captured here and used for the eventual update, no matter
// what the draft later contains.
func (m *Manager) OpenEdit(rec schema.Record) error {
	if !rec.Saved() {
		return ErrUnsavedRecord
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dialog.State != DialogClosed {
		return ErrDialogOpen
	}
	m.gen++
	m.dialog = Dialog{
		State: DialogEdit,
		ID:    rec.ID,
		Draft: codec.Encode(rec, m.schema),
	}
	return nil
}

// Cancel closes the dialog and discards the draft. No side effects.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.dialog = closedDialog()
}

// Submit runs the mutation for the open dialog with the user-entered
// draft. On success the dialog closes; on failure it stays open with the
// submitted draft intact. While a mutation is in flight further submits
// return ErrBusy. If the dialog was closed or reopened mid-flight the
// mutation's store and cache effects still land, only the stale draft is
// dropped; the new dialog is left untouched.
func (m *Manager) Submit(ctx context.Context, d schema.Draft) (*schema.Record, error) {
	m.mu.Lock()
	if m.dialog.State == DialogClosed {
		m.mu.Unlock()
		return nil, ErrDialogClosed
	}
	if m.busy {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	m.busy = true
	m.dialog.Draft = d.Clone()
	state := m.dialog.State
	id := m.dialog.ID
	gen := m.gen
	m.mu.Unlock()

	var (
		rec *schema.Record
		err error
	)
	if state == DialogCreate {
		rec, err = m.pipeline.Create(ctx, d)
	} else {
		rec, err = m.pipeline.Update(ctx, id, d)
	}

	m.mu.Lock()
	m.busy = false
	if err == nil && m.gen == gen {
		m.gen++
		m.dialog = closedDialog()
	}
	m.mu.Unlock()

	return rec, err
}

// Delete removes a record by id. Independent of the dialog; the
// presentation layer confirms before calling.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	return m.pipeline.Delete(ctx, id)
}

// Find looks a record up by id, preferring the cached collection and
// falling back to the store when the cache is not ready yet.
func (m *Manager) Find(ctx context.Context, id uuid.UUID) (schema.Record, bool) {
	snap := m.cache.Get(m.schema.Entity)
	if snap.State == cache.StateReady {
		for _, rec := range snap.Records {
			if rec.ID == id {
				return rec, true
			}
		}
		return schema.Record{}, false
	}

	records, err := m.store.List(ctx, m.schema.Entity)
	if err != nil {
		return schema.Record{}, false
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, true
		}
	}
	return schema.Record{}, false
}

// CreateFromDraft drives the full dashboard create flow for the REST
// surface: open the create dialog (or reuse one left open by an earlier
// failed submit) and submit the draft.
func (m *Manager) CreateFromDraft(ctx context.Context, d schema.Draft) (*schema.Record, error) {
	if err := m.OpenCreate(); err != nil {
		m.mu.Lock()
		reusable := m.dialog.State == DialogCreate
		m.mu.Unlock()
		if !reusable {
			return nil, err
		}
	}
	return m.Submit(ctx, d)
}

// UpdateFromDraft drives the full dashboard edit flow for the REST
// surface: open the edit dialog for the record (or reuse the one already
// editing it) and submit the draft.
func (m *Manager) UpdateFromDraft(ctx context.Context, id uuid.UUID, d schema.Draft) (*schema.Record, error) {
	m.mu.Lock()
	state, openID := m.dialog.State, m.dialog.ID
	m.mu.Unlock()

	switch {
	case state == DialogEdit && openID == id:
		// retry after a failed submit
	case state == DialogClosed:
		rec, ok := m.Find(ctx, id)
		if !ok {
			return nil, storage.ErrNotFound
		}
		if err := m.OpenEdit(rec); err != nil {
			return nil, err
		}
	default:
		return nil, ErrDialogOpen
	}
	return m.Submit(ctx, d)
}
