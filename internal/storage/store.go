// Package storage provides the remote store contract and its backends.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/blockedby/recruiting-os/internal/schema"
)

// ErrNotFound is returned when a mutation targets an unknown record id.
var ErrNotFound = errors.New("record not found")

// Store is the remote collaborator behind the resource managers.
// Implementations fill ID and CreatedAt on insert; both are owned by the
// store and never change afterwards. Update fills CreatedAt on the
// passed record so callers always return a fully-timestamped record.
type Store interface {
	List(ctx context.Context, entity string) ([]schema.Record, error)
	Insert(ctx context.Context, entity string, rec *schema.Record) error
	Update(ctx context.Context, entity string, id uuid.UUID, rec *schema.Record) error
	Delete(ctx context.Context, entity string, id uuid.UUID) error
}

// RemoteError is a store-side failure carrying a human-readable message.
type RemoteError struct {
	Op      string
	Entity  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
}

func remoteErr(op, entity string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &RemoteError{Op: op, Entity: entity, Message: err.Error()}
}
