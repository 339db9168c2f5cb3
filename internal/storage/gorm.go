package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blockedby/recruiting-os/internal/schema"
)

// GormStore is the secondary store backend for single-file sqlite
// deployments (and usable with the postgres dialector). List and JSON
// fields are persisted as JSON text columns.
type GormStore struct {
	db      *gorm.DB
	schemas map[string]*schema.EntitySchema
}

// NewGorm creates a GORM-backed store for the given schemas.
func NewGorm(db *gorm.DB, schemas []*schema.EntitySchema) *GormStore {
	m := make(map[string]*schema.EntitySchema, len(schemas))
	for _, s := range schemas {
		m[s.Entity] = s
	}
	return &GormStore{db: db, schemas: m}
}

// Migrate creates the entity tables if they do not exist.
func (st *GormStore) Migrate() error {
	for _, s := range st.schemas {
		if err := st.db.Exec(buildCreateTable(s)).Error; err != nil {
			return fmt.Errorf("migrate %s: %w", s.Entity, err)
		}
	}
	return nil
}

// List returns all records of an entity ordered by creation time, newest
// first.
func (st *GormStore) List(ctx context.Context, entity string) ([]schema.Record, error) {
	s, err := st.schema(entity)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	err = st.db.WithContext(ctx).Table(entity).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, remoteErr("list", entity, err)
	}

	records := make([]schema.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := recordFromRow(s, row)
		if err != nil {
			return nil, remoteErr("list", entity, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Insert creates a record, assigning id and created_at client-side since
// sqlite has no RETURNING path through map-based GORM writes.
func (st *GormStore) Insert(ctx context.Context, entity string, rec *schema.Record) error {
	s, err := st.schema(entity)
	if err != nil {
		return err
	}

	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()

	row := rowFromRecord(s, rec)
	row["id"] = rec.ID.String()
	row["created_at"] = rec.CreatedAt

	if err := st.db.WithContext(ctx).Table(entity).Create(row).Error; err != nil {
		rec.ID = uuid.Nil
		rec.CreatedAt = time.Time{}
		return remoteErr("insert", entity, err)
	}
	return nil
}

// Update rewrites all schema fields of the record with the given id and
// fills its server-owned creation timestamp.
func (st *GormStore) Update(ctx context.Context, entity string, id uuid.UUID, rec *schema.Record) error {
	s, err := st.schema(entity)
	if err != nil {
		return err
	}

	res := st.db.WithContext(ctx).Table(entity).
		Where("id = ?", id.String()).
		Updates(rowFromRecord(s, rec))
	if res.Error != nil {
		return remoteErr("update", entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	row := map[string]any{}
	err = st.db.WithContext(ctx).Table(entity).
		Select("created_at").
		Where("id = ?", id.String()).
		Take(&row).Error
	if err != nil {
		return remoteErr("update", entity, err)
	}
	rec.CreatedAt = asTime(row["created_at"])
	return nil
}

// Delete removes the record with the given id.
func (st *GormStore) Delete(ctx context.Context, entity string, id uuid.UUID) error {
	if _, err := st.schema(entity); err != nil {
		return err
	}

	res := st.db.WithContext(ctx).Table(entity).
		Where("id = ?", id.String()).
		Delete(nil)
	if res.Error != nil {
		return remoteErr("delete", entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (st *GormStore) schema(entity string) (*schema.EntitySchema, error) {
	s, ok := st.schemas[entity]
	if !ok {
		return nil, fmt.Errorf("unknown entity %q", entity)
	}
	return s, nil
}

func buildCreateTable(s *schema.EntitySchema) string {
	cols := []string{
		"id TEXT PRIMARY KEY",
		"created_at TIMESTAMP NOT NULL",
	}
	for _, f := range s.Fields {
		var typ string
		switch f.Kind {
		case schema.KindNumber:
			typ = "REAL"
		case schema.KindBool:
			typ = "BOOLEAN"
		default:
			typ = "TEXT"
		}
		cols = append(cols, fmt.Sprintf("%s %s", f.Name, typ))
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		s.Entity, strings.Join(cols, ", "),
	)
}

// rowFromRecord serializes schema values into column values. Lists and
// JSON blobs become JSON text.
func rowFromRecord(s *schema.EntitySchema, rec *schema.Record) map[string]any {
	row := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		v := rec.Values[f.Name]
		switch f.Kind {
		case schema.KindStringList, schema.KindJSON:
			if v == nil {
				row[f.Name] = nil
				continue
			}
			b, err := json.Marshal(v)
			if err != nil {
				row[f.Name] = nil
				continue
			}
			row[f.Name] = string(b)
		default:
			row[f.Name] = v
		}
	}
	return row
}

func recordFromRow(s *schema.EntitySchema, row map[string]any) (schema.Record, error) {
	rec := schema.Record{Values: make(map[string]any, len(s.Fields))}

	id, err := uuid.Parse(asString(row["id"]))
	if err != nil {
		return schema.Record{}, fmt.Errorf("parse id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = asTime(row["created_at"])

	for _, f := range s.Fields {
		v := row[f.Name]
		switch f.Kind {
		case schema.KindString:
			if v == nil {
				rec.Values[f.Name] = nil
				continue
			}
			rec.Values[f.Name] = asString(v)
		case schema.KindNumber:
			rec.Values[f.Name] = asNumber(v)
		case schema.KindBool:
			rec.Values[f.Name] = asBool(v)
		case schema.KindStringList:
			list := []string{}
			if raw := asString(v); raw != "" {
				_ = json.Unmarshal([]byte(raw), &list)
			}
			rec.Values[f.Name] = list
		case schema.KindJSON:
			var parsed any
			if raw := asString(v); raw != "" {
				_ = json.Unmarshal([]byte(raw), &parsed)
			}
			rec.Values[f.Name] = parsed
		}
	}
	return rec, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts
			}
		}
	}
	return time.Time{}
}

func asNumber(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return t
	case float32:
		return float64(t)
	case int64:
		return float64(t)
	case int:
		return float64(t)
	default:
		return nil
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return false
	}
}
