// Package schema defines the entity schemas and value types shared by the
// codec, storage and resource layers.
package schema

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind represents the storage type of a field.
type Kind string

// Kind constants define the closed set of supported field types.
const (
	KindString     Kind = "STRING"
	KindNumber     Kind = "NUMBER"
	KindBool       Kind = "BOOL"
	KindStringList Kind = "STRING_LIST"
	KindJSON       Kind = "JSON"
)

// FieldSpec describes a single field of an entity.
type FieldSpec struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	// Default is the form-native default: text for string/number/list/json
	// fields, "true"/"false" for bool fields.
	Default string
}

// Notices holds the per-entity notification texts shown after mutations.
type Notices struct {
	Created string
	Updated string
	Deleted string
}

// EntitySchema is the static description of one managed resource type.
// Instances are defined at startup and never mutated.
type EntitySchema struct {
	// Entity is the table / collection name, e.g. "job_seekers".
	Entity string
	// Title is the human-readable name shown in the dashboard.
	Title   string
	Fields  []FieldSpec
	Notices Notices
}

// Field returns the spec for the named field.
func (s *EntitySchema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FieldNames returns the ordered field names.
func (s *EntitySchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Record is a persisted (or about to be persisted) row of an entity.
// Values maps field name to the normalized storage representation:
// string, float64, bool, []string, map[string]any or nil.
type Record struct {
	// ID is assigned by the store on insert and never changes afterwards.
	ID uuid.UUID
	// CreatedAt is set by the store, the client never edits it.
	CreatedAt time.Time
	Values    map[string]any
}

// Saved reports whether the record has been persisted.
func (r *Record) Saved() bool {
	return r.ID != uuid.Nil
}

// Draft is the form-native representation of a record being created or
// edited. Every non-boolean value is text; boolean fields live in Flags.
type Draft struct {
	Values map[string]string
	Flags  map[string]bool
}

// NewDraft returns an empty draft populated with the schema defaults.
func NewDraft(s *EntitySchema) Draft {
	d := Draft{
		Values: make(map[string]string, len(s.Fields)),
		Flags:  make(map[string]bool),
	}
	for _, f := range s.Fields {
		if f.Kind == KindBool {
			d.Flags[f.Name] = f.Default == "true"
			continue
		}
		d.Values[f.Name] = f.Default
	}
	return d
}

// Clone returns a deep copy of the draft.
func (d Draft) Clone() Draft {
	c := Draft{
		Values: make(map[string]string, len(d.Values)),
		Flags:  make(map[string]bool, len(d.Flags)),
	}
	for k, v := range d.Values {
		c.Values[k] = v
	}
	for k, v := range d.Flags {
		c.Flags[k] = v
	}
	return c
}

// FieldError is a local decode or validation failure for a single field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// FieldError reasons.
const (
	ReasonRequired      = "required"
	ReasonInvalidNumber = "invalid_number"
)

func (e FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}
