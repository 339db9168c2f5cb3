package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/blockedby/recruiting-os/internal/cache"
	"github.com/blockedby/recruiting-os/internal/resource"
	"github.com/blockedby/recruiting-os/internal/schema"
)

// ============================================================================
// Common Types
// ============================================================================

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error  string          `json:"error" description:"Error message"`
	Fields []FieldErrorDTO `json:"fields,omitempty" description:"Per-field validation failures"`
}

// FieldErrorDTO describes one rejected form field.
type FieldErrorDTO struct {
	Field  string `json:"field" description:"Field name"`
	Reason string `json:"reason" description:"Rejection reason: required, invalid_number"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status" example:"ok" description:"Health status"`
	Version string `json:"version" example:"dev" description:"Application version"`
}

// StatusResponse is a generic operation acknowledgement.
type StatusResponse struct {
	Status string `json:"status" example:"deleted" description:"Operation result"`
}

// ============================================================================
// Schema Types
// ============================================================================

// FieldSpecResponse describes one form field of an entity.
type FieldSpecResponse struct {
	Name     string `json:"name" description:"Column and form field name"`
	Label    string `json:"label" description:"Human-readable form label"`
	Kind     string `json:"kind" description:"Field kind: string, number, bool, string_list, json"`
	Required bool   `json:"required" description:"Whether the field must be non-empty"`
	Default  string `json:"default,omitempty" description:"Draft default for new records"`
}

// SchemaResponse describes one managed entity type.
type SchemaResponse struct {
	Entity string              `json:"entity" description:"Entity table name"`
	Title  string              `json:"title" description:"Human-readable entity title"`
	Fields []FieldSpecResponse `json:"fields" description:"Ordered field specifications"`
}

// SchemasListResponse lists every managed entity type.
type SchemasListResponse struct {
	Entities []SchemaResponse `json:"entities" description:"Managed entity types"`
	Total    int              `json:"total" description:"Number of entity types"`
}

// ============================================================================
// Record Types
// ============================================================================

// RecordResponse represents a stored record in API responses.
type RecordResponse struct {
	ID        uuid.UUID      `json:"id" description:"Record unique identifier"`
	CreatedAt time.Time      `json:"created_at" description:"Record creation timestamp"`
	Values    map[string]any `json:"values" description:"Typed field values keyed by field name"`
}

// CollectionResponse contains a collection snapshot for one entity.
type CollectionResponse struct {
	Entity  string           `json:"entity" description:"Entity table name"`
	State   string           `json:"state" description:"Read state: LOADING, READY, ERROR"`
	Error   string           `json:"error,omitempty" description:"Fetch error when state is ERROR"`
	Records []RecordResponse `json:"records" description:"Records ordered newest first"`
	Total   int              `json:"total" description:"Number of records in the snapshot"`
}

// DraftRequest carries form-native field values for create and update.
type DraftRequest struct {
	Values map[string]string `json:"values" description:"Text field values keyed by field name"`
	Flags  map[string]bool   `json:"flags,omitempty" description:"Boolean field values keyed by field name"`
}

// ============================================================================
// Dialog Types
// ============================================================================

// DraftDTO is the form representation carried by an open dialog.
type DraftDTO struct {
	Values map[string]string `json:"values" description:"Text field values"`
	Flags  map[string]bool   `json:"flags" description:"Boolean field values"`
}

// DialogResponse describes the create/edit dialog for one entity type.
type DialogResponse struct {
	State string    `json:"state" description:"Dialog state: CLOSED, CREATE_OPEN, EDIT_OPEN"`
	ID    *string   `json:"id,omitempty" description:"Edited record ID when state is EDIT_OPEN"`
	Draft *DraftDTO `json:"draft,omitempty" description:"Current draft when a dialog is open"`
}

// ============================================================================
// Conversion Helpers
// ============================================================================

// RecordFromSchema converts a schema.Record to RecordResponse.
func RecordFromSchema(rec schema.Record) RecordResponse {
	return RecordResponse{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		Values:    rec.Values,
	}
}

// CollectionFromSnapshot converts a cache snapshot to CollectionResponse.
func CollectionFromSnapshot(entity string, snap cache.Snapshot) CollectionResponse {
	records := make([]RecordResponse, len(snap.Records))
	for i, rec := range snap.Records {
		records[i] = RecordFromSchema(rec)
	}
	resp := CollectionResponse{
		Entity:  entity,
		State:   string(snap.State),
		Records: records,
		Total:   len(records),
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	return resp
}

// SchemaFromEntity converts an entity schema to SchemaResponse.
func SchemaFromEntity(s *schema.EntitySchema) SchemaResponse {
	fields := make([]FieldSpecResponse, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = FieldSpecResponse{
			Name:     f.Name,
			Label:    f.Label,
			Kind:     string(f.Kind),
			Required: f.Required,
			Default:  f.Default,
		}
	}
	return SchemaResponse{
		Entity: s.Entity,
		Title:  s.Title,
		Fields: fields,
	}
}

// DialogFromResource converts a dialog state to DialogResponse.
func DialogFromResource(d resource.Dialog) DialogResponse {
	resp := DialogResponse{State: string(d.State)}
	if d.State == resource.DialogEdit {
		id := d.ID.String()
		resp.ID = &id
	}
	if d.State != resource.DialogClosed {
		resp.Draft = &DraftDTO{
			Values: d.Draft.Values,
			Flags:  d.Draft.Flags,
		}
	}
	return resp
}

// draftFromRequest converts a DraftRequest to the form-native draft.
func draftFromRequest(req DraftRequest) schema.Draft {
	d := schema.Draft{Values: req.Values, Flags: req.Flags}
	if d.Values == nil {
		d.Values = map[string]string{}
	}
	if d.Flags == nil {
		d.Flags = map[string]bool{}
	}
	return d
}
