package resource

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/recruiting-os/internal/codec"
	"github.com/blockedby/recruiting-os/internal/schema"
	"github.com/blockedby/recruiting-os/internal/storage"
)

// fakeStore is an in-memory storage.Store with failure injection.
type fakeStore struct {
	mu      sync.Mutex
	records map[string][]schema.Record

	insertErr error
	updateErr error
	deleteErr error
	listErr   error

	inserts int
	updates int
	deletes int
	lists   int

	block chan struct{} // when set, mutations wait on it
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string][]schema.Record)}
}

func (f *fakeStore) waitIfBlocked() {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
}

func (f *fakeStore) List(ctx context.Context, entity string) ([]schema.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]schema.Record, len(f.records[entity]))
	copy(out, f.records[entity])
	return out, nil
}

func (f *fakeStore) Insert(ctx context.Context, entity string, rec *schema.Record) error {
	f.waitIfBlocked()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	// newest first
	f.records[entity] = append([]schema.Record{*rec}, f.records[entity]...)
	return nil
}

func (f *fakeStore) Update(ctx context.Context, entity string, id uuid.UUID, rec *schema.Record) error {
	f.waitIfBlocked()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, existing := range f.records[entity] {
		if existing.ID == id {
			rec.ID = id
			rec.CreatedAt = existing.CreatedAt
			f.records[entity][i] = *rec
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) Delete(ctx context.Context, entity string, id uuid.UUID) error {
	f.waitIfBlocked()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, existing := range f.records[entity] {
		if existing.ID == id {
			f.records[entity] = append(f.records[entity][:i], f.records[entity][i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) counts() (inserts, updates, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserts, f.updates, f.deletes
}

// fakeNotifier records delivered notifications.
type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *fakeNotifier) Success(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, text)
}

func (n *fakeNotifier) Error(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, text)
}

func (n *fakeNotifier) counts() (successes, failures int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.successes), len(n.failures)
}

// fakeInvalidator counts cache invalidations.
type fakeInvalidator struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeInvalidator) Invalidate(entity string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, entity)
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeSink records emitted change events.
type fakeSink struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeSink) RecordChanged(entity, action string, id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, entity+"/"+action)
}

func channelDraft() schema.Draft {
	d := schema.NewDraft(schema.TelegramChannels)
	d.Values["channel_title"] = "Go Jobs"
	d.Values["channel_username"] = "@golang_jobs"
	return d
}

func TestPipeline_CreateSuccess(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	sink := &fakeSink{}
	p := NewPipeline(schema.TelegramChannels, store, inv, notifier, nil)
	p.events = sink

	rec, err := p.Create(context.Background(), channelDraft())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Saved())
	assert.Equal(t, "Go Jobs", rec.Values["channel_title"])

	successes, failures := notifier.counts()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, failures)
	assert.Equal(t, "Telegram канал добавлен", notifier.successes[0])
	assert.Equal(t, 1, inv.count())
	assert.Equal(t, []string{"telegram_channels/created"}, sink.events)
}

func TestPipeline_CreateValidationFailureSkipsStore(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	p := NewPipeline(schema.TelegramChannels, store, inv, notifier, nil)

	d := schema.NewDraft(schema.TelegramChannels)
	d.Values["channel_title"] = "Go Jobs"
	// channel_username missing

	_, err := p.Create(context.Background(), d)
	require.Error(t, err)

	var ferrs *codec.FieldErrors
	require.ErrorAs(t, err, &ferrs)

	inserts, _, _ := store.counts()
	assert.Equal(t, 0, inserts, "validation failure must not reach the store")
	assert.Equal(t, 0, inv.count(), "validation failure must not invalidate the cache")

	successes, failures := notifier.counts()
	assert.Equal(t, 0, successes)
	assert.Equal(t, 1, failures)
	assert.Contains(t, notifier.failures[0], "Ошибка при добавлении: ")
}

func TestPipeline_CreateStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.insertErr = &storage.RemoteError{Op: "insert", Entity: "telegram_channels", Message: "connection refused"}
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	p := NewPipeline(schema.TelegramChannels, store, inv, notifier, nil)

	_, err := p.Create(context.Background(), channelDraft())
	require.Error(t, err)

	var remote *storage.RemoteError
	assert.ErrorAs(t, err, &remote)
	assert.Equal(t, 0, inv.count(), "failed insert must not invalidate the cache")

	successes, failures := notifier.counts()
	assert.Equal(t, 0, successes)
	assert.Equal(t, 1, failures)
}

func TestPipeline_UpdatePreservesIdentity(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	p := NewPipeline(schema.TelegramChannels, store, inv, notifier, nil)

	created, err := p.Create(context.Background(), channelDraft())
	require.NoError(t, err)

	d := channelDraft()
	d.Values["channel_title"] = "Go Jobs Renamed"
	updated, err := p.Update(context.Background(), created.ID, d)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt, "returned record carries the original timestamp")
	assert.Equal(t, "Go Jobs Renamed", updated.Values["channel_title"])

	stored, err := store.List(context.Background(), "telegram_channels")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, created.ID, stored[0].ID)
	assert.Equal(t, created.CreatedAt, stored[0].CreatedAt)
}

func TestPipeline_UpdateNotFound(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	p := NewPipeline(schema.TelegramChannels, store, inv, notifier, nil)

	_, err := p.Update(context.Background(), uuid.New(), channelDraft())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, failures := notifier.counts()
	assert.Equal(t, 1, failures)
	assert.Contains(t, notifier.failures[0], "Ошибка при обновлении: ")
}

func TestPipeline_Delete(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	sink := &fakeSink{}
	p := NewPipeline(schema.JobSeekers, store, inv, notifier, nil)
	p.events = sink

	d := schema.NewDraft(schema.JobSeekers)
	d.Values["full_name"] = "Иван Иванов"
	d.Values["email"] = "ivan@example.com"
	created, err := p.Create(context.Background(), d)
	require.NoError(t, err)

	require.NoError(t, p.Delete(context.Background(), created.ID))

	stored, err := store.List(context.Background(), "job_seekers")
	require.NoError(t, err)
	assert.Empty(t, stored)

	successes, _ := notifier.counts()
	assert.Equal(t, 2, successes)
	assert.Equal(t, "Соискатель удален", notifier.successes[1])
	assert.Equal(t, 2, inv.count())
	assert.Equal(t, "job_seekers/deleted", sink.events[1])
}

func TestPipeline_DeleteFailure(t *testing.T) {
	store := newFakeStore()
	store.deleteErr = errors.New("deadlock detected")
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	p := NewPipeline(schema.JobSeekers, store, inv, notifier, nil)

	err := p.Delete(context.Background(), uuid.New())
	require.Error(t, err)

	assert.Equal(t, 0, inv.count())
	_, failures := notifier.counts()
	assert.Equal(t, 1, failures)
	assert.Contains(t, notifier.failures[0], "Ошибка при удалении: ")
}
