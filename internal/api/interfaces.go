package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/blockedby/recruiting-os/internal/cache"
	"github.com/blockedby/recruiting-os/internal/resource"
	"github.com/blockedby/recruiting-os/internal/schema"
)

// Resource defines the interface for one managed entity type.
// Implemented by resource.Manager.
type Resource interface {
	Schema() *schema.EntitySchema
	Collection() cache.Snapshot
	Refresh()
	Dialog() resource.Dialog
	OpenCreate() error
	OpenEdit(rec schema.Record) error
	Cancel()
	Submit(ctx context.Context, d schema.Draft) (*schema.Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, id uuid.UUID) (schema.Record, bool)
	CreateFromDraft(ctx context.Context, d schema.Draft) (*schema.Record, error)
	UpdateFromDraft(ctx context.Context, id uuid.UUID, d schema.Draft) (*schema.Record, error)
}
