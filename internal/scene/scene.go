// Package scene holds placed prefab instances.
//
// A [Sink] receives a batch of placements: the caller clears it first and
// then places each instance in order. [Graph] keeps the instances in memory
// under a single root container; [Multi] forwards to several sinks.
package scene

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/JonMunkholm/scenecsv/internal/catalog"
	"github.com/JonMunkholm/scenecsv/internal/placement"
)

// Sink receives placed instances.
type Sink interface {
	// Clear removes every instance placed by earlier batches.
	Clear(ctx context.Context) error
	// Place adds one instance at pos with rot given as Euler degrees.
	Place(ctx context.Context, inst Instance, pos, rot placement.Vec3) error
}

// Instance is one placed copy of a prefab.
type Instance struct {
	ID     uuid.UUID      `json:"id"`
	Name   string         `json:"name"`
	Prefab catalog.Prefab `json:"prefab"`
}

// NewInstance creates an instance of p with a fresh ID. An empty name falls
// back to the prefab name.
func NewInstance(p catalog.Prefab, name string) Instance {
	if name == "" {
		name = p.Name
	}
	return Instance{ID: uuid.New(), Name: name, Prefab: p}
}

// Multi forwards every call to each sink in order.
type Multi []Sink

// Clear clears every sink. All sinks are attempted; errors are joined.
func (m Multi) Clear(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		if err := s.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Place places the instance in each sink and stops at the first error.
func (m Multi) Place(ctx context.Context, inst Instance, pos, rot placement.Vec3) error {
	for _, s := range m {
		if err := s.Place(ctx, inst, pos, rot); err != nil {
			return err
		}
	}
	return nil
}
