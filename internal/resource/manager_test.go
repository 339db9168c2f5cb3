package resource

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/recruiting-os/internal/cache"
	"github.com/blockedby/recruiting-os/internal/codec"
	"github.com/blockedby/recruiting-os/internal/schema"
	"github.com/blockedby/recruiting-os/internal/storage"
)

func newTestManager(t *testing.T, s *schema.EntitySchema, store *fakeStore) (*Manager, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	c := cache.New(store)
	return NewManager(s, store, c, notifier, nil), notifier
}

func waitReady(t *testing.T, m *Manager) cache.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := m.Collection()
		if snap.State == cache.StateReady {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("collection never became ready")
	return cache.Snapshot{}
}

func TestManager_CreateFlow(t *testing.T) {
	store := newFakeStore()
	m, notifier := newTestManager(t, schema.TelegramChannels, store)

	require.NoError(t, m.OpenCreate())

	dialog := m.Dialog()
	assert.Equal(t, DialogCreate, dialog.State)
	assert.True(t, dialog.Draft.Flags["is_active"], "create draft starts from schema defaults")

	rec, err := m.Submit(context.Background(), channelDraft())
	require.NoError(t, err)
	assert.True(t, rec.Saved())

	assert.Equal(t, DialogClosed, m.Dialog().State, "dialog closes on success")

	snap := waitReady(t, m)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, rec.ID, snap.Records[0].ID)

	successes, failures := notifier.counts()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, failures)
}

func TestManager_ValidationKeepsDialogOpen(t *testing.T) {
	store := newFakeStore()
	m, notifier := newTestManager(t, schema.HrExperts, store)

	require.NoError(t, m.OpenCreate())

	d := schema.NewDraft(schema.HrExperts)
	d.Values["chat_id"] = "42"
	d.Values["message"] = "hello"
	// telegram_username left empty

	_, err := m.Submit(context.Background(), d)
	require.Error(t, err)

	var ferrs *codec.FieldErrors
	require.ErrorAs(t, err, &ferrs)
	require.Len(t, ferrs.Errors, 1)
	assert.Equal(t, "telegram_username", ferrs.Errors[0].Field)

	inserts, _, _ := store.counts()
	assert.Equal(t, 0, inserts)

	dialog := m.Dialog()
	assert.Equal(t, DialogCreate, dialog.State, "dialog stays open after failed submit")
	assert.Equal(t, "hello", dialog.Draft.Values["message"], "submitted draft is preserved")

	_, failures := notifier.counts()
	assert.Equal(t, 1, failures)
}

func TestManager_EditCapturesIdentity(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(t, schema.TelegramChannels, store)

	require.NoError(t, m.OpenCreate())
	created, err := m.Submit(context.Background(), channelDraft())
	require.NoError(t, err)
	waitReady(t, m)

	require.NoError(t, m.OpenEdit(*created))

	dialog := m.Dialog()
	assert.Equal(t, DialogEdit, dialog.State)
	assert.Equal(t, "Go Jobs", dialog.Draft.Values["channel_title"], "edit draft is prefilled")

	d := dialog.Draft
	d.Values["channel_title"] = "Renamed"
	updated, err := m.Submit(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	records, err := store.List(context.Background(), "telegram_channels")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, created.CreatedAt, records[0].CreatedAt, "creation time survives the rewrite")
}

func TestManager_OpenEditUnsavedRecord(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(t, schema.TelegramChannels, store)

	err := m.OpenEdit(schema.Record{Values: map[string]any{}})
	assert.ErrorIs(t, err, ErrUnsavedRecord)
}

func TestManager_SingleDialogPerEntityType(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(t, schema.TelegramChannels, store)

	require.NoError(t, m.OpenCreate())
	assert.ErrorIs(t, m.OpenCreate(), ErrDialogOpen)

	rec := schema.Record{ID: uuid.New(), Values: map[string]any{}}
	assert.ErrorIs(t, m.OpenEdit(rec), ErrDialogOpen, "no direct create-to-edit transition")

	// Closing first allows the switch
	m.Cancel()
	require.NoError(t, m.OpenEdit(rec))
	assert.Equal(t, DialogEdit, m.Dialog().State)
}

func TestManager_CancelDiscardsDraft(t *testing.T) {
	store := newFakeStore()
	m, notifier := newTestManager(t, schema.TelegramChannels, store)

	require.NoError(t, m.OpenCreate())
	m.Cancel()

	assert.Equal(t, DialogClosed, m.Dialog().State)
	inserts, updates, deletes := store.counts()
	assert.Zero(t, inserts+updates+deletes, "cancel has no side effects")
	successes, failures := notifier.counts()
	assert.Zero(t, successes+failures)

	require.NoError(t, m.OpenCreate())
	assert.Equal(t, "", m.Dialog().Draft.Values["channel_title"], "reopened draft starts fresh")
}

func TestManager_SubmitWithoutDialog(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(t, schema.TelegramChannels, store)

	_, err := m.Submit(context.Background(), channelDraft())
	assert.ErrorIs(t, err, ErrDialogClosed)
}

func TestManager_BusyRejectsSecondSubmit(t *testing.T) {
	store := newFakeStore()
	block := make(chan struct{})
	store.block = block
	m, _ := newTestManager(t, schema.TelegramChannels, store)

	require.NoError(t, m.OpenCreate())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = m.Submit(context.Background(), channelDraft())
	}()

	// Wait until the first submit is blocked in the store
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		busy := m.busy
		m.mu.Unlock()
		if busy {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	_, err := m.Submit(context.Background(), channelDraft())
	assert.ErrorIs(t, err, ErrBusy)

	close(block)
	wg.Wait()
	assert.Equal(t, DialogClosed, m.Dialog().State)
}

func TestManager_CloseDuringFlightKeepsMutation(t *testing.T) {
	store := newFakeStore()
	block := make(chan struct{})
	store.block = block
	m, _ := newTestManager(t, schema.TelegramChannels, store)

	require.NoError(t, m.OpenCreate())

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), channelDraft())
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		busy := m.busy
		m.mu.Unlock()
		if busy {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Operator closes the dialog while the mutation is in flight
	m.Cancel()
	close(block)
	require.NoError(t, <-done)

	// The store effect landed, only the stale draft was dropped
	records, err := store.List(context.Background(), "telegram_channels")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, DialogClosed, m.Dialog().State)
}

func TestManager_StaleSubmitLeavesReopenedDialog(t *testing.T) {
	store := newFakeStore()
	block := make(chan struct{})
	store.block = block
	m, _ := newTestManager(t, schema.TelegramChannels, store)

	require.NoError(t, m.OpenCreate())

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), channelDraft())
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		busy := m.busy
		m.mu.Unlock()
		if busy {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Operator cancels and opens a fresh dialog while the first
	// mutation is still in flight
	m.Cancel()
	require.NoError(t, m.OpenCreate())

	close(block)
	require.NoError(t, <-done)

	dialog := m.Dialog()
	assert.Equal(t, DialogCreate, dialog.State, "stale submit completion must not close the new dialog")
	assert.Equal(t, "", dialog.Draft.Values["channel_title"], "new draft stays untouched")

	records, err := store.List(context.Background(), "telegram_channels")
	require.NoError(t, err)
	assert.Len(t, records, 1, "the first mutation's store effect still lands")
}

func TestManager_DeleteRefreshesCollection(t *testing.T) {
	store := newFakeStore()
	m, notifier := newTestManager(t, schema.TelegramChannels, store)

	require.NoError(t, m.OpenCreate())
	created, err := m.Submit(context.Background(), channelDraft())
	require.NoError(t, err)

	snap := waitReady(t, m)
	require.Len(t, snap.Records, 1)

	require.NoError(t, m.Delete(context.Background(), created.ID))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(m.Collection().Records) == 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Empty(t, m.Collection().Records)

	successes, _ := notifier.counts()
	assert.Equal(t, 2, successes)
	assert.Equal(t, "Telegram канал удален", notifier.successes[1])
}

func TestManager_FindFallsBackToStore(t *testing.T) {
	store := newFakeStore()
	rec := schema.Record{ID: uuid.New(), CreatedAt: time.Now().UTC(), Values: map[string]any{"channel_title": "Go Jobs"}}
	store.records["telegram_channels"] = []schema.Record{rec}
	m, _ := newTestManager(t, schema.TelegramChannels, store)

	// Cache may still be LOADING here; Find must work regardless
	got, ok := m.Find(context.Background(), rec.ID)
	require.True(t, ok)
	assert.Equal(t, rec.ID, got.ID)

	_, ok = m.Find(context.Background(), uuid.New())
	assert.False(t, ok)
}

func TestManager_CreateFromDraftReusesFailedDialog(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(t, schema.TelegramChannels, store)

	// First attempt fails validation and leaves the dialog open
	d := schema.NewDraft(schema.TelegramChannels)
	_, err := m.CreateFromDraft(context.Background(), d)
	require.Error(t, err)
	assert.Equal(t, DialogCreate, m.Dialog().State)

	// Second attempt with a valid draft reuses it
	rec, err := m.CreateFromDraft(context.Background(), channelDraft())
	require.NoError(t, err)
	assert.True(t, rec.Saved())
	assert.Equal(t, DialogClosed, m.Dialog().State)
}

func TestManager_UpdateFromDraftNotFound(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(t, schema.TelegramChannels, store)
	waitReady(t, m)

	_, err := m.UpdateFromDraft(context.Background(), uuid.New(), channelDraft())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestManager_UpdateFromDraftBlockedByOtherDialog(t *testing.T) {
	store := newFakeStore()
	m, _ := newTestManager(t, schema.TelegramChannels, store)

	require.NoError(t, m.OpenCreate())

	_, err := m.UpdateFromDraft(context.Background(), uuid.New(), channelDraft())
	assert.ErrorIs(t, err, ErrDialogOpen)
}
