package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS prefabs (
	id         uuid        PRIMARY KEY,
	name       text        NOT NULL UNIQUE,
	asset      text        NOT NULL DEFAULT '',
	tags       text[]      NOT NULL DEFAULT '{}',
	created_at timestamptz NOT NULL DEFAULT now()
)`

const prefabColumns = `id, name, asset, tags, created_at`

// Postgres is a prefab catalog stored in the prefabs table.
type Postgres struct {
	db DBTX
}

// NewPostgres creates a catalog over db.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the prefabs table if it does not exist.
func (c *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create prefabs table: %w", err)
	}
	return nil
}

// Upsert inserts p or updates the asset and tags of the prefab with the
// same name. The stored row is returned.
func (c *Postgres) Upsert(ctx context.Context, p Prefab) (Prefab, error) {
	if p.Name == "" {
		return Prefab{}, fmt.Errorf("%w: name is required", ErrInvalidPrefab)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	row := c.db.QueryRow(ctx, `
		INSERT INTO prefabs (id, name, asset, tags)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET asset = EXCLUDED.asset, tags = EXCLUDED.tags
		RETURNING `+prefabColumns,
		pgtype.UUID{Bytes: p.ID, Valid: true}, p.Name, p.Asset, tags,
	)

	stored, err := scanPrefab(row)
	if err != nil {
		return Prefab{}, fmt.Errorf("upsert prefab %q: %w", p.Name, err)
	}
	return stored, nil
}

// Resolve returns the prefab named name.
func (c *Postgres) Resolve(ctx context.Context, name string) (Prefab, error) {
	row := c.db.QueryRow(ctx, `SELECT `+prefabColumns+` FROM prefabs WHERE name = $1`, name)

	p, err := scanPrefab(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Prefab{}, fmt.Errorf("%w: %q", ErrPrefabNotFound, name)
	}
	if err != nil {
		return Prefab{}, fmt.Errorf("resolve prefab %q: %w", name, err)
	}
	return p, nil
}

// List returns all prefabs ordered by name.
func (c *Postgres) List(ctx context.Context) ([]Prefab, error) {
	rows, err := c.db.Query(ctx, `SELECT `+prefabColumns+` FROM prefabs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list prefabs: %w", err)
	}
	defer rows.Close()

	var out []Prefab
	for rows.Next() {
		p, err := scanPrefab(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prefab: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list prefabs: %w", err)
	}
	return out, nil
}

// Delete removes the prefab named name and reports whether a row was deleted.
func (c *Postgres) Delete(ctx context.Context, name string) (bool, error) {
	tag, err := c.db.Exec(ctx, `DELETE FROM prefabs WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("delete prefab %q: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Save is Upsert for the Store interface.
func (c *Postgres) Save(ctx context.Context, p Prefab) (Prefab, error) {
	return c.Upsert(ctx, p)
}

// Seed upserts every prefab in order and stops at the first failure.
func (c *Postgres) Seed(ctx context.Context, prefabs []Prefab) error {
	for _, p := range prefabs {
		if _, err := c.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func scanPrefab(row pgx.Row) (Prefab, error) {
	var (
		id        pgtype.UUID
		p         Prefab
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &p.Name, &p.Asset, &p.Tags, &createdAt); err != nil {
		return Prefab{}, err
	}
	if id.Valid {
		p.ID = uuid.UUID(id.Bytes)
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	return p, nil
}
