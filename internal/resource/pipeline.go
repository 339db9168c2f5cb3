// Package resource implements the generic CRUD controller: the mutation
// pipeline, the dialog state machine and the per-entity manager that
// binds one schema to the shared pieces.
package resource

import (
	"context"

	"github.com/google/uuid"

	"github.com/blockedby/recruiting-os/internal/codec"
	"github.com/blockedby/recruiting-os/internal/logger"
	"github.com/blockedby/recruiting-os/internal/schema"
	"github.com/blockedby/recruiting-os/internal/storage"
)

// Notifier delivers mutation outcomes to the operator. Fire-and-forget,
// the pipeline never inspects the result.
type Notifier interface {
	Success(text string)
	Error(text string)
}

// Invalidator is the cache side effect of a successful mutation.
type Invalidator interface {
	Invalidate(entity string)
}

// EventSink receives record change events for dashboard push. Optional.
type EventSink interface {
	RecordChanged(entity, action string, id uuid.UUID)
}

// Record change actions emitted to the EventSink.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// error toast prefixes, kept verbatim from the dashboard
const (
	noticeCreateFailed = "Ошибка при добавлении: "
	noticeUpdateFailed = "Ошибка при обновлении: "
	noticeDeleteFailed = "Ошибка при удалении: "
)

// Pipeline sequences one entity's mutations: decode the draft, call the
// store, invalidate the cache and notify. Every success path triggers
// exactly one invalidation and one success notification; every failure
// path triggers exactly one error notification and leaves the cache
// untouched.
type Pipeline struct {
	schema   *schema.EntitySchema
	store    storage.Store
	cache    Invalidator
	notifier Notifier
	events   EventSink
	log      *logger.Logger
}

// NewPipeline creates a mutation pipeline for one entity schema.
func NewPipeline(s *schema.EntitySchema, store storage.Store, cache Invalidator, notifier Notifier, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Get()
	}
	return &Pipeline{
		schema:   s,
		store:    store,
		cache:    cache,
		notifier: notifier,
		log:      log,
	}
}

// Create decodes the draft and inserts a new record. A decode failure
// returns *codec.FieldErrors without any store call.
func (p *Pipeline) Create(ctx context.Context, d schema.Draft) (*schema.Record, error) {
	rec, err := codec.Decode(d, p.schema)
	if err != nil {
		p.notifier.Error(noticeCreateFailed + err.Error())
		return nil, err
	}

	if err := p.store.Insert(ctx, p.schema.Entity, &rec); err != nil {
		p.log.Error().Err(err).Str("entity", p.schema.Entity).Msg("insert failed")
		p.notifier.Error(noticeCreateFailed + err.Error())
		return nil, err
	}

	p.cache.Invalidate(p.schema.Entity)
	p.notifier.Success(p.schema.Notices.Created)
	p.emit(ActionCreated, rec.ID)
	p.log.Info().Str("entity", p.schema.Entity).Str("id", rec.ID.String()).Msg("record created")
	return &rec, nil
}

// Update decodes the draft and rewrites the record with the given id.
// The identity is always the one captured when the dialog entered edit
// mode; nothing in the draft can change it.
func (p *Pipeline) Update(ctx context.Context, id uuid.UUID, d schema.Draft) (*schema.Record, error) {
	rec, err := codec.Decode(d, p.schema)
	if err != nil {
		p.notifier.Error(noticeUpdateFailed + err.Error())
		return nil, err
	}

	if err := p.store.Update(ctx, p.schema.Entity, id, &rec); err != nil {
		p.log.Error().Err(err).Str("entity", p.schema.Entity).Str("id", id.String()).Msg("update failed")
		p.notifier.Error(noticeUpdateFailed + err.Error())
		return nil, err
	}

	rec.ID = id
	p.cache.Invalidate(p.schema.Entity)
	p.notifier.Success(p.schema.Notices.Updated)
	p.emit(ActionUpdated, id)
	return &rec, nil
}

// Delete removes the record with the given id.
func (p *Pipeline) Delete(ctx context.Context, id uuid.UUID) error {
	if err := p.store.Delete(ctx, p.schema.Entity, id); err != nil {
		p.log.Error().Err(err).Str("entity", p.schema.Entity).Str("id", id.String()).Msg("delete failed")
		p.notifier.Error(noticeDeleteFailed + err.Error())
		return err
	}

	p.cache.Invalidate(p.schema.Entity)
	p.notifier.Success(p.schema.Notices.Deleted)
	p.emit(ActionDeleted, id)
	return nil
}

func (p *Pipeline) emit(action string, id uuid.UUID) {
	if p.events != nil {
		p.events.RecordChanged(p.schema.Entity, action, id)
	}
}
