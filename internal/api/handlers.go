// Package api provides HTTP handlers for the REST API.
package api

import (
	"errors"
	"net/http"

	"github.com/go-fuego/fuego"
	"github.com/google/uuid"

	"github.com/blockedby/recruiting-os/internal/codec"
	"github.com/blockedby/recruiting-os/internal/resource"
	"github.com/blockedby/recruiting-os/internal/storage"
)

// ============================================================================
// Health
// ============================================================================

func (s *Server) healthCheck(c fuego.ContextNoBody) (HealthResponse, error) {
	return HealthResponse{
		Status:  "ok",
		Version: "dev",
	}, nil
}

// ============================================================================
// Schema Handlers
// ============================================================================

func (s *Server) listSchemas(c fuego.ContextNoBody) (SchemasListResponse, error) {
	entities := make([]SchemaResponse, len(s.resources))
	for i, res := range s.resources {
		entities[i] = SchemaFromEntity(res.Schema())
	}
	return SchemasListResponse{
		Entities: entities,
		Total:    len(entities),
	}, nil
}

// ============================================================================
// Record Handlers
// ============================================================================

func (s *Server) listRecords(res Resource) func(fuego.ContextNoBody) (CollectionResponse, error) {
	return func(c fuego.ContextNoBody) (CollectionResponse, error) {
		snap := res.Collection()
		return CollectionFromSnapshot(res.Schema().Entity, snap), nil
	}
}

func (s *Server) getRecord(res Resource) func(fuego.ContextNoBody) (RecordResponse, error) {
	return func(c fuego.ContextNoBody) (RecordResponse, error) {
		id, err := uuid.Parse(c.PathParam("id"))
		if err != nil {
			return RecordResponse{}, fuego.BadRequestError{Detail: "Invalid record ID"}
		}

		rec, ok := res.Find(c.Context(), id)
		if !ok {
			return RecordResponse{}, fuego.NotFoundError{Detail: "Record not found"}
		}

		return RecordFromSchema(rec), nil
	}
}

func (s *Server) createRecord(res Resource) func(fuego.ContextWithBody[DraftRequest]) (RecordResponse, error) {
	return func(c fuego.ContextWithBody[DraftRequest]) (RecordResponse, error) {
		body, err := c.Body()
		if err != nil {
			return RecordResponse{}, fuego.BadRequestError{Detail: err.Error()}
		}

		rec, err := res.CreateFromDraft(c.Context(), draftFromRequest(body))
		if err != nil {
			return RecordResponse{}, mapError(err)
		}

		return RecordFromSchema(*rec), nil
	}
}

func (s *Server) updateRecord(res Resource) func(fuego.ContextWithBody[DraftRequest]) (RecordResponse, error) {
	return func(c fuego.ContextWithBody[DraftRequest]) (RecordResponse, error) {
		id, err := uuid.Parse(c.PathParam("id"))
		if err != nil {
			return RecordResponse{}, fuego.BadRequestError{Detail: "Invalid record ID"}
		}

		body, err := c.Body()
		if err != nil {
			return RecordResponse{}, fuego.BadRequestError{Detail: err.Error()}
		}

		rec, err := res.UpdateFromDraft(c.Context(), id, draftFromRequest(body))
		if err != nil {
			return RecordResponse{}, mapError(err)
		}

		return RecordFromSchema(*rec), nil
	}
}

func (s *Server) deleteRecord(res Resource) func(fuego.ContextNoBody) (StatusResponse, error) {
	return func(c fuego.ContextNoBody) (StatusResponse, error) {
		id, err := uuid.Parse(c.PathParam("id"))
		if err != nil {
			return StatusResponse{}, fuego.BadRequestError{Detail: "Invalid record ID"}
		}

		if err := res.Delete(c.Context(), id); err != nil {
			return StatusResponse{}, mapError(err)
		}

		return StatusResponse{Status: "deleted"}, nil
	}
}

func (s *Server) refreshCollection(res Resource) func(fuego.ContextNoBody) (StatusResponse, error) {
	return func(c fuego.ContextNoBody) (StatusResponse, error) {
		res.Refresh()
		return StatusResponse{Status: "refreshing"}, nil
	}
}

// ============================================================================
// Dialog Handlers
// ============================================================================

func (s *Server) getDialog(res Resource) func(fuego.ContextNoBody) (DialogResponse, error) {
	return func(c fuego.ContextNoBody) (DialogResponse, error) {
		return DialogFromResource(res.Dialog()), nil
	}
}

func (s *Server) openCreateDialog(res Resource) func(fuego.ContextNoBody) (DialogResponse, error) {
	return func(c fuego.ContextNoBody) (DialogResponse, error) {
		if err := res.OpenCreate(); err != nil {
			return DialogResponse{}, mapError(err)
		}
		return DialogFromResource(res.Dialog()), nil
	}
}

func (s *Server) openEditDialog(res Resource) func(fuego.ContextNoBody) (DialogResponse, error) {
	return func(c fuego.ContextNoBody) (DialogResponse, error) {
		id, err := uuid.Parse(c.PathParam("id"))
		if err != nil {
			return DialogResponse{}, fuego.BadRequestError{Detail: "Invalid record ID"}
		}

		rec, ok := res.Find(c.Context(), id)
		if !ok {
			return DialogResponse{}, fuego.NotFoundError{Detail: "Record not found"}
		}

		if err := res.OpenEdit(rec); err != nil {
			return DialogResponse{}, mapError(err)
		}

		return DialogFromResource(res.Dialog()), nil
	}
}

func (s *Server) cancelDialog(res Resource) func(fuego.ContextNoBody) (DialogResponse, error) {
	return func(c fuego.ContextNoBody) (DialogResponse, error) {
		res.Cancel()
		return DialogFromResource(res.Dialog()), nil
	}
}

func (s *Server) submitDialog(res Resource) func(fuego.ContextWithBody[DraftRequest]) (RecordResponse, error) {
	return func(c fuego.ContextWithBody[DraftRequest]) (RecordResponse, error) {
		body, err := c.Body()
		if err != nil {
			return RecordResponse{}, fuego.BadRequestError{Detail: err.Error()}
		}

		rec, err := res.Submit(c.Context(), draftFromRequest(body))
		if err != nil {
			return RecordResponse{}, mapError(err)
		}

		return RecordFromSchema(*rec), nil
	}
}

// mapError converts domain errors to HTTP errors.
func mapError(err error) error {
	var ferrs *codec.FieldErrors
	if errors.As(err, &ferrs) {
		return fuego.BadRequestError{Title: "Validation Failed", Detail: ferrs.Error()}
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fuego.NotFoundError{Detail: "Record not found"}
	case errors.Is(err, resource.ErrBusy),
		errors.Is(err, resource.ErrDialogOpen),
		errors.Is(err, resource.ErrDialogClosed):
		return fuego.ConflictError{Detail: err.Error()}
	case errors.Is(err, resource.ErrUnsavedRecord):
		return fuego.BadRequestError{Detail: err.Error()}
	}

	var remote *storage.RemoteError
	if errors.As(err, &remote) {
		return fuego.HTTPError{Title: "Upstream Error", Detail: remote.Error(), Status: http.StatusBadGateway}
	}

	return fuego.InternalServerError{Detail: err.Error()}
}
