package resource

import (
	"errors"

	"github.com/google/uuid"

	"github.com/blockedby/recruiting-os/internal/schema"
)

// DialogState is the state of the create/edit dialog.
type DialogState string

// Dialog states. Switching the target record always passes through
// Closed: there is no direct transition between create and edit.
const (
	DialogClosed DialogState = "CLOSED"
	DialogCreate DialogState = "CREATE_OPEN"
	DialogEdit   DialogState = "EDIT_OPEN"
)

// dialog errors
var (
	// ErrDialogOpen is returned when opening a dialog while one is
	// already open for the entity type.
	ErrDialogOpen = errors.New("a dialog is already open")
	// ErrDialogClosed is returned when submitting without an open dialog.
	ErrDialogClosed = errors.New("no dialog is open")
	// ErrBusy is returned while a mutation for the open dialog is still
	// in flight. Submission is unavailable, never queued.
	ErrBusy = errors.New("a mutation is already in flight")
	// ErrUnsavedRecord is returned when edit-opening a record that has
	// no store-assigned identity yet.
	ErrUnsavedRecord = errors.New("record has not been persisted")
)

// Dialog is the controller state: which dialog is open and, in edit
// mode, the identity captured when it opened. Draft is the transient
// form representation, discarded on close.
type Dialog struct {
	State DialogState
	ID    uuid.UUID
	Draft schema.Draft
}

func closedDialog() Dialog {
	return Dialog{State: DialogClosed}
}
