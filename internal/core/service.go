package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/scenecsv/internal/catalog"
	"github.com/JonMunkholm/scenecsv/internal/profile"
	"github.com/JonMunkholm/scenecsv/internal/scene"
	"github.com/JonMunkholm/scenecsv/internal/source"
	"github.com/JonMunkholm/scenecsv/internal/tabular"
)

// ErrProfileNotFound is returned for a profile name that is not registered.
var ErrProfileNotFound = errors.New("profile not found")

// ErrCatalogReadOnly is returned by catalog edits when the configured
// resolver cannot list or modify prefabs.
var ErrCatalogReadOnly = errors.New("prefab catalog is read-only")

// DefaultSpawnTimeout bounds a single spawn when none is configured.
const DefaultSpawnTimeout = 2 * time.Minute

// Options configures a Service. Profiles, Source and Catalog are required.
type Options struct {
	Profiles *profile.Registry
	Source   source.Provider
	Catalog  catalog.Resolver

	// Graph receives every placement. A new graph is created when nil.
	Graph *scene.Graph
	// Sinks receive placements after the graph, e.g. a broker publisher.
	Sinks []scene.Sink

	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration
	HistorySize   int
	Logger        *slog.Logger
}

// Service parses sources, maps them to placement records and places the
// matching prefabs into the scene.
type Service struct {
	profiles *profile.Registry
	source   source.Provider
	catalog  catalog.Resolver
	graph    *scene.Graph
	sink     scene.Sink

	limiter *SpawnLimiter
	history *History
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates a Service from opts.
func NewService(opts Options) (*Service, error) {
	if opts.Profiles == nil {
		return nil, fmt.Errorf("profile registry is required")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("source provider is required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("prefab catalog is required")
	}

	graph := opts.Graph
	if graph == nil {
		graph = scene.NewGraph()
	}
	var sink scene.Sink = graph
	if len(opts.Sinks) > 0 {
		sink = append(scene.Multi{graph}, opts.Sinks...)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultSpawnTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Service{
		profiles: opts.Profiles,
		source:   opts.Source,
		catalog:  opts.Catalog,
		graph:    graph,
		sink:     sink,
		limiter:  NewSpawnLimiter(opts.MaxConcurrent, opts.MaxWait),
		history:  NewHistory(opts.HistorySize),
		timeout:  timeout,
		logger:   logger.With("component", "spawn"),
	}, nil
}

// Profiles returns every registered profile sorted by name.
func (s *Service) Profiles() []profile.Profile {
	return s.profiles.All()
}

// Profile returns the named profile or ErrProfileNotFound.
func (s *Service) Profile(name string) (profile.Profile, error) {
	p, ok := s.profiles.Get(name)
	if !ok {
		return profile.Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return p, nil
}

// Scene returns a snapshot of the placed instances.
func (s *Service) Scene() []scene.Node {
	return s.graph.Nodes()
}

// SceneGeneration counts scene clears since startup. Clients compare it to
// notice that the scene was rebuilt.
func (s *Service) SceneGeneration() uint64 {
	return s.graph.Generation()
}

// FindNode returns the first placed instance named name.
func (s *Service) FindNode(name string) (scene.Node, error) {
	n, ok := s.graph.Find(name)
	if !ok {
		return scene.Node{}, fmt.Errorf("%w: %q", scene.ErrNodeNotFound, name)
	}
	return n, nil
}

// Prefabs lists the catalog when it supports listing.
func (s *Service) Prefabs(ctx context.Context) ([]catalog.Prefab, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	return store.List(ctx)
}

// SavePrefab adds p to the catalog or replaces the prefab with its name.
func (s *Service) SavePrefab(ctx context.Context, p catalog.Prefab) (catalog.Prefab, error) {
	store, err := s.store()
	if err != nil {
		return catalog.Prefab{}, err
	}
	saved, err := store.Save(ctx, p)
	if err != nil {
		return catalog.Prefab{}, err
	}
	s.logger.Info("prefab saved", "prefab", saved.Name, "asset", saved.Asset)
	return saved, nil
}

// DeletePrefab removes the named prefab. Records naming it become unresolved
// on the next spawn; placed instances stay.
func (s *Service) DeletePrefab(ctx context.Context, name string) error {
	store, err := s.store()
	if err != nil {
		return err
	}
	deleted, err := store.Delete(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %q", catalog.ErrPrefabNotFound, name)
	}
	s.logger.Info("prefab deleted", "prefab", name)
	return nil
}

func (s *Service) store() (catalog.Store, error) {
	store, ok := s.catalog.(catalog.Store)
	if !ok {
		return nil, ErrCatalogReadOnly
	}
	return store, nil
}

// ClearScene removes every placed instance from all sinks.
func (s *Service) ClearScene(ctx context.Context) error {
	if err := s.limiter.Acquire(ctx); err != nil {
		return err
	}
	defer s.limiter.Release()

	if err := s.sink.Clear(ctx); err != nil {
		return fmt.Errorf("clear scene: %w", err)
	}
	s.logger.Info("scene cleared")
	return nil
}

// History returns recent spawn results, newest first.
func (s *Service) History() []*SpawnResult {
	return s.history.List()
}

// LimiterStatus reports spawn slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForDrain blocks until no spawn is running or ctx ends.
func (s *Service) WaitForDrain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ParseResult is the parsed form of a raw text body.
type ParseResult struct {
	Header []string      `json:"header"`
	Rows   []tabular.Row `json:"rows"`
}

// ParseText runs the tabular parser over text.
func (s *Service) ParseText(text string) ParseResult {
	return ParseResult{
		Header: tabular.Header(text),
		Rows:   tabular.Parse(text),
	}
}
