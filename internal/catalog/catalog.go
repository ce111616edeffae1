// Package catalog resolves prefab names to the templates that get placed.
//
// Two catalogs are provided: [Memory], a process-local registry, and
// [Postgres], which keeps prefabs in a table. Both match names exactly.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrPrefabNotFound is returned when no prefab has the requested name.
	ErrPrefabNotFound = errors.New("prefab not found")
	// ErrInvalidPrefab is returned when saving a prefab without a name.
	ErrInvalidPrefab = errors.New("invalid prefab")
)

// Prefab is a placeable template.
type Prefab struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Asset     string    `json:"asset"` // Engine-side asset path or key
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Resolver looks up a prefab by exact name.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Prefab, error)
}

// Store is a Resolver that can also be listed and edited.
type Store interface {
	Resolver
	List(ctx context.Context) ([]Prefab, error)
	Save(ctx context.Context, p Prefab) (Prefab, error)
	Delete(ctx context.Context, name string) (bool, error)
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Postgres)(nil)
)
