package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blockedby/recruiting-os/internal/schema"
)

// PostgresStore is the primary store backend, built on a pgx pool with
// SQL derived from the entity schemas.
type PostgresStore struct {
	pool    *pgxpool.Pool
	schemas map[string]*schema.EntitySchema
}

// NewPostgres creates a postgres-backed store for the given schemas.
func NewPostgres(pool *pgxpool.Pool, schemas []*schema.EntitySchema) *PostgresStore {
	m := make(map[string]*schema.EntitySchema, len(schemas))
	for _, s := range schemas {
		m[s.Entity] = s
	}
	return &PostgresStore{pool: pool, schemas: m}
}

// List returns all records of an entity ordered by creation time, newest
// first.
func (st *PostgresStore) List(ctx context.Context, entity string) ([]schema.Record, error) {
	s, err := st.schema(entity)
	if err != nil {
		return nil, err
	}

	rows, err := st.pool.Query(ctx, buildSelect(s))
	if err != nil {
		return nil, remoteErr("list", entity, err)
	}
	defer rows.Close()

	var records []schema.Record
	for rows.Next() {
		rec, err := scanRecord(s, rows.Scan)
		if err != nil {
			return nil, remoteErr("list", entity, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("list", entity, err)
	}
	return records, nil
}

// Insert creates a record and fills its server-assigned id and timestamp.
func (st *PostgresStore) Insert(ctx context.Context, entity string, rec *schema.Record) error {
	s, err := st.schema(entity)
	if err != nil {
		return err
	}

	err = st.pool.QueryRow(ctx, buildInsert(s), insertArgs(s, rec)...).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return remoteErr("insert", entity, err)
	}
	return nil
}

// Update rewrites all schema fields of the record with the given id and
// fills its server-owned creation timestamp.
func (st *PostgresStore) Update(ctx context.Context, entity string, id uuid.UUID, rec *schema.Record) error {
	s, err := st.schema(entity)
	if err != nil {
		return err
	}

	args := append(insertArgs(s, rec), id)
	err = st.pool.QueryRow(ctx, buildUpdate(s), args...).Scan(&rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return remoteErr("update", entity, err)
	}
	return nil
}

// Delete removes the record with the given id.
func (st *PostgresStore) Delete(ctx context.Context, entity string, id uuid.UUID) error {
	if _, err := st.schema(entity); err != nil {
		return err
	}

	tag, err := st.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", entity), id)
	if err != nil {
		return remoteErr("delete", entity, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (st *PostgresStore) schema(entity string) (*schema.EntitySchema, error) {
	s, ok := st.schemas[entity]
	if !ok {
		return nil, fmt.Errorf("unknown entity %q", entity)
	}
	return s, nil
}

// buildSelect returns the list query: id, created_at, then the schema
// fields in declaration order.
func buildSelect(s *schema.EntitySchema) string {
	cols := append([]string{"id", "created_at"}, s.FieldNames()...)
	return fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY created_at DESC",
		strings.Join(cols, ", "), s.Entity,
	)
}

func buildInsert(s *schema.EntitySchema) string {
	names := s.FieldNames()
	placeholders := make([]string, len(names))
	for i := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id, created_at",
		s.Entity, strings.Join(names, ", "), strings.Join(placeholders, ", "),
	)
}

func buildUpdate(s *schema.EntitySchema) string {
	names := s.FieldNames()
	sets := make([]string, len(names))
	for i, name := range names {
		sets[i] = fmt.Sprintf("%s = $%d", name, i+1)
	}
	return fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d RETURNING created_at",
		s.Entity, strings.Join(sets, ", "), len(names)+1,
	)
}

func insertArgs(s *schema.EntitySchema, rec *schema.Record) []any {
	args := make([]any, 0, len(s.Fields))
	for _, f := range s.Fields {
		args = append(args, rec.Values[f.Name])
	}
	return args
}

// scanRecord reads one row through typed holders chosen per field kind.
func scanRecord(s *schema.EntitySchema, scan func(...any) error) (schema.Record, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
	)
	holders := make([]any, 0, len(s.Fields))
	for _, f := range s.Fields {
		switch f.Kind {
		case schema.KindString:
			holders = append(holders, new(*string))
		case schema.KindNumber:
			holders = append(holders, new(*float64))
		case schema.KindBool:
			holders = append(holders, new(*bool))
		case schema.KindStringList:
			holders = append(holders, new(*[]string))
		case schema.KindJSON:
			holders = append(holders, new(any))
		}
	}

	dest := append([]any{&id, &createdAt}, holders...)
	if err := scan(dest...); err != nil {
		return schema.Record{}, err
	}

	rec := schema.Record{
		ID:        id,
		CreatedAt: createdAt,
		Values:    make(map[string]any, len(s.Fields)),
	}
	for i, f := range s.Fields {
		rec.Values[f.Name] = holderValue(f.Kind, holders[i])
	}
	return rec, nil
}

func holderValue(kind schema.Kind, holder any) any {
	switch kind {
	case schema.KindString:
		if p := *holder.(**string); p != nil {
			return *p
		}
		return nil
	case schema.KindNumber:
		if p := *holder.(**float64); p != nil {
			return *p
		}
		return nil
	case schema.KindBool:
		if p := *holder.(**bool); p != nil {
			return *p
		}
		return false
	case schema.KindStringList:
		if p := *holder.(**[]string); p != nil {
			return *p
		}
		return []string{}
	case schema.KindJSON:
		return *holder.(*any)
	}
	return nil
}
