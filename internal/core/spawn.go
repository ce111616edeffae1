package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/scenecsv/internal/catalog"
	"github.com/JonMunkholm/scenecsv/internal/placement"
	"github.com/JonMunkholm/scenecsv/internal/profile"
	"github.com/JonMunkholm/scenecsv/internal/scene"
	"github.com/JonMunkholm/scenecsv/internal/tabular"
)

// SkippedRow is a row dropped under the skip policy.
type SkippedRow struct {
	Row       int    `json:"row"`
	Column    string `json:"column"`
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// SpawnResult describes one spawn run.
type SpawnResult struct {
	ID         uuid.UUID        `json:"id"`
	Profile    string           `json:"profile"`
	Source     string           `json:"source"`
	Origin     Origin           `json:"origin"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Rows       int              `json:"rows"`
	Placed     []scene.Instance `json:"placed"`
	Unresolved []string         `json:"unresolved,omitempty"` // Prefab names with no catalog entry, in record order
	Skipped    []SkippedRow     `json:"skipped,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Duration returns how long the spawn took.
func (r *SpawnResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Preview is the mapped form of a profile's source, without placement.
type Preview struct {
	Profile  string              `json:"profile"`
	Source   string              `json:"source"`
	Header   []string            `json:"header"`
	Rows     []tabular.Row       `json:"rows"`
	Records  []placement.Record  `json:"records"`
	Skipped  []SkippedRow        `json:"skipped,omitempty"`
	Bindings []placement.Binding `json:"bindings"`
	Missing  []string            `json:"missingColumns,omitempty"` // Bound columns absent from the header
}

// Spawn clears the scene and places one prefab instance per mapped record of
// the named profile. Records naming a prefab the catalog does not know are
// skipped and listed in Unresolved. Every run, failed or not, is recorded in
// the history.
func (s *Service) Spawn(ctx context.Context, profileName string) (*SpawnResult, error) {
	res := &SpawnResult{
		ID:        uuid.New(),
		Profile:   profileName,
		Origin:    OriginFromContext(ctx),
		StartedAt: time.Now().UTC(),
	}
	log := s.logger.With("spawn_id", res.ID.String(), "profile", profileName)

	err := s.spawn(ctx, res)

	res.FinishedAt = time.Now().UTC()
	if err != nil {
		res.Error = err.Error()
	}
	s.history.Add(res)

	if err != nil {
		log.Error("spawn failed", "error", err, "duration_ms", res.Duration().Milliseconds())
		return res, err
	}
	log.Info("spawn complete",
		"rows", res.Rows,
		"placed", len(res.Placed),
		"unresolved", len(res.Unresolved),
		"skipped", len(res.Skipped),
		"duration_ms", res.Duration().Milliseconds(),
	)
	return res, nil
}

func (s *Service) spawn(ctx context.Context, res *SpawnResult) error {
	if err := s.limiter.Acquire(ctx); err != nil {
		return err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.Profile(res.Profile)
	if err != nil {
		return err
	}
	res.Source = p.Source

	text, rows, mapped, err := s.load(ctx, p)
	if err != nil {
		return err
	}
	res.Rows = len(rows)
	if missing := MissingColumns(tabular.Header(text), p.Bindings); len(missing) > 0 {
		s.logger.Warn("bound columns missing from source", "profile", p.Name, "columns", missing)
	}
	res.Skipped = skippedRows(mapped.Skipped)

	if err := s.sink.Clear(ctx); err != nil {
		return fmt.Errorf("clear scene: %w", err)
	}

	for _, rec := range mapped.Records {
		prefab, err := s.catalog.Resolve(ctx, rec.PrefabName)
		if errors.Is(err, catalog.ErrPrefabNotFound) {
			s.logger.Warn("prefab not found", "prefab", rec.PrefabName, "object", rec.ObjectName)
			res.Unresolved = append(res.Unresolved, rec.PrefabName)
			continue
		}
		if err != nil {
			return fmt.Errorf("resolve prefab %q: %w", rec.PrefabName, err)
		}

		inst := scene.NewInstance(prefab, rec.ObjectName)
		if err := s.sink.Place(ctx, inst, rec.Position, rec.Rotation); err != nil {
			return fmt.Errorf("place %q: %w", inst.Name, err)
		}
		res.Placed = append(res.Placed, inst)
	}
	return nil
}

// Preview parses and maps the named profile's source without touching the
// scene.
func (s *Service) Preview(ctx context.Context, profileName string) (*Preview, error) {
	p, err := s.Profile(profileName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, rows, mapped, err := s.load(ctx, p)
	if err != nil {
		return nil, err
	}

	header := tabular.Header(text)
	return &Preview{
		Profile:  p.Name,
		Source:   p.Source,
		Header:   header,
		Rows:     rows,
		Records:  mapped.Records,
		Skipped:  skippedRows(mapped.Skipped),
		Bindings: p.Bindings,
		Missing:  MissingColumns(header, p.Bindings),
	}, nil
}

// load reads, parses and maps a profile's source.
func (s *Service) load(ctx context.Context, p profile.Profile) (string, []tabular.Row, *placement.Result, error) {
	text, err := s.source.Load(ctx, p.Source)
	if err != nil {
		return "", nil, nil, fmt.Errorf("load source %q: %w", p.Source, err)
	}

	rows := tabular.Parse(text)
	mapper := placement.Mapper{Policy: p.Policy, Logger: s.logger}
	mapped, err := mapper.Map(rows, p.Bindings, p.Template)
	if err != nil {
		return "", nil, nil, fmt.Errorf("map %q: %w", p.Source, err)
	}
	return text, rows, mapped, nil
}

func skippedRows(errs []*placement.ConversionError) []SkippedRow {
	if len(errs) == 0 {
		return nil
	}
	out := make([]SkippedRow, len(errs))
	for i, e := range errs {
		out[i] = SkippedRow{Row: e.Row, Column: e.Column, Attribute: e.Attribute.String(), Value: e.Raw}
	}
	return out
}
