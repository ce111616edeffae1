package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/scenecsv/internal/catalog"
	"github.com/JonMunkholm/scenecsv/internal/placement"
	"github.com/JonMunkholm/scenecsv/internal/profile"
	"github.com/JonMunkholm/scenecsv/internal/scene"
	"github.com/JonMunkholm/scenecsv/internal/source"
)

const forestCSV = "Type,Name,X,Z,Rot\r\nTree,Oak,1,2,90\r\nRock,,3.5,4,0\r\nGhost,Boo,0,0,0\r\n"

var forestBindings = []placement.Binding{
	{Attribute: placement.PrefabName, Column: "Type"},
	{Attribute: placement.ObjectName, Column: "Name"},
	{Attribute: placement.PosX, Column: "X"},
	{Attribute: placement.PosZ, Column: "Z"},
	{Attribute: placement.RotY, Column: "Rot"},
}

// recordingSink counts calls made through scene.Sink.
type recordingSink struct {
	mu     sync.Mutex
	clears int
	places []string
}

func (r *recordingSink) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.places = nil
	return nil
}

func (r *recordingSink) Place(ctx context.Context, inst scene.Instance, pos, rot placement.Vec3) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.places = append(r.places, inst.Name)
	return nil
}

type testEnv struct {
	svc     *Service
	sources source.StaticProvider
	sink    *recordingSink
}

func newTestEnv(t *testing.T, opts Options, profiles ...profile.Profile) *testEnv {
	t.Helper()

	reg := profile.NewRegistry()
	for _, p := range profiles {
		if err := reg.Register(p); err != nil {
			t.Fatalf("Register(%s): %v", p.Name, err)
		}
	}

	sources := source.StaticProvider{"forest": forestCSV}
	sink := &recordingSink{}

	opts.Profiles = reg
	opts.Source = sources
	if opts.Catalog == nil {
		cat := catalog.NewMemory()
		cat.RegisterNames("Tree", "Rock")
		opts.Catalog = cat
	}
	opts.Sinks = append(opts.Sinks, sink)

	svc, err := NewService(opts)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &testEnv{svc: svc, sources: sources, sink: sink}
}

func forestProfile(policy placement.Policy) profile.Profile {
	return profile.Profile{
		Name:     "forest",
		Source:   "forest",
		Bindings: forestBindings,
		Template: placement.Record{Position: placement.Vec3{Y: 1}},
		Policy:   policy,
	}
}

// =============================================================================
// Spawn Tests
// =============================================================================

func TestSpawn_PlacesResolvedRecords(t *testing.T) {
	env := newTestEnv(t, Options{}, forestProfile(placement.PolicyFailFast))

	res, err := env.svc.Spawn(context.Background(), "forest")
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	if res.Rows != 3 {
		t.Errorf("Rows = %d, want 3", res.Rows)
	}
	if len(res.Placed) != 2 {
		t.Fatalf("Placed = %d, want 2", len(res.Placed))
	}
	if res.Placed[0].Name != "Oak" {
		t.Errorf("Placed[0].Name = %q, want Oak", res.Placed[0].Name)
	}
	if res.Placed[1].Name != "Rock" {
		t.Errorf("empty object name should default to prefab name, got %q", res.Placed[1].Name)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0] != "Ghost" {
		t.Errorf("Unresolved = %v, want [Ghost]", res.Unresolved)
	}

	nodes := env.svc.Scene()
	if len(nodes) != 2 {
		t.Fatalf("scene has %d nodes, want 2", len(nodes))
	}
	oak := nodes[0]
	if oak.Position != (placement.Vec3{X: 1, Y: 1, Z: 2}) {
		t.Errorf("Oak position = %v, want (1, 1, 2)", oak.Position)
	}
	if oak.Rotation.Y != 90 {
		t.Errorf("Oak rotation Y = %g, want 90", oak.Rotation.Y)
	}

	if env.sink.clears != 1 || len(env.sink.places) != 2 {
		t.Errorf("extra sink saw %d clears, %d places; want 1, 2", env.sink.clears, len(env.sink.places))
	}
}

func TestSpawn_ClearsPreviousBatch(t *testing.T) {
	env := newTestEnv(t, Options{}, forestProfile(placement.PolicyFailFast))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := env.svc.Spawn(ctx, "forest"); err != nil {
			t.Fatalf("Spawn #%d error = %v", i, err)
		}
	}
	if got := len(env.svc.Scene()); got != 2 {
		t.Errorf("scene has %d nodes after repeated spawns, want 2", got)
	}
}

func TestSpawn_FailFastKeepsScene(t *testing.T) {
	env := newTestEnv(t, Options{}, forestProfile(placement.PolicyFailFast))
	ctx := context.Background()

	if _, err := env.svc.Spawn(ctx, "forest"); err != nil {
		t.Fatalf("first Spawn error = %v", err)
	}

	env.sources["forest"] = "Type,X\nTree,1\nTree,abc\n"
	res, err := env.svc.Spawn(ctx, "forest")

	var convErr *placement.ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("Spawn() error = %v, want ConversionError", err)
	}
	if convErr.Row != 1 || convErr.Column != "X" || convErr.Raw != "abc" {
		t.Errorf("ConversionError = %+v", convErr)
	}
	if res == nil || res.Error == "" {
		t.Error("failed spawn should return a result carrying the error")
	}
	if got := len(env.svc.Scene()); got != 2 {
		t.Errorf("scene has %d nodes, want the previous 2 untouched", got)
	}
}

func TestSpawn_SkipPolicy(t *testing.T) {
	env := newTestEnv(t, Options{}, forestProfile(placement.PolicySkipRow))
	env.sources["forest"] = "Type,X\nTree,1\nTree,abc\nRock,2\n"

	res, err := env.svc.Spawn(context.Background(), "forest")
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if len(res.Placed) != 2 {
		t.Errorf("Placed = %d, want 2", len(res.Placed))
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Row != 1 || res.Skipped[0].Value != "abc" {
		t.Errorf("Skipped = %+v, want row 1 value abc", res.Skipped)
	}
}

func TestSpawn_Errors(t *testing.T) {
	env := newTestEnv(t, Options{}, forestProfile(placement.PolicyFailFast),
		profile.Profile{Name: "missing", Source: "nowhere", Bindings: forestBindings})

	if _, err := env.svc.Spawn(context.Background(), "nope"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("unknown profile error = %v, want ErrProfileNotFound", err)
	}
	if _, err := env.svc.Spawn(context.Background(), "missing"); !errors.Is(err, source.ErrSourceNotFound) {
		t.Errorf("missing source error = %v, want ErrSourceNotFound", err)
	}
}

func TestSpawn_Busy(t *testing.T) {
	env := newTestEnv(t, Options{MaxWait: 20 * time.Millisecond}, forestProfile(placement.PolicyFailFast))

	if !env.svc.limiter.TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer env.svc.limiter.Release()

	if _, err := env.svc.Spawn(context.Background(), "forest"); !errors.Is(err, ErrTooManySpawns) {
		t.Errorf("Spawn() error = %v, want ErrTooManySpawns", err)
	}
}

func TestSpawn_EmptySource(t *testing.T) {
	env := newTestEnv(t, Options{}, forestProfile(placement.PolicyFailFast))
	env.sources["forest"] = "Type,Name,X,Z,Rot"

	res, err := env.svc.Spawn(context.Background(), "forest")
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if res.Rows != 0 || len(res.Placed) != 0 {
		t.Errorf("header-only source placed %d from %d rows", len(res.Placed), res.Rows)
	}
}

// =============================================================================
// History Tests
// =============================================================================

func TestSpawn_RecordsHistory(t *testing.T) {
	env := newTestEnv(t, Options{HistorySize: 2}, forestProfile(placement.PolicyFailFast))
	ctx := ContextWithOrigin(context.Background(), Origin{Via: "cli"})

	for i := 0; i < 3; i++ {
		_, _ = env.svc.Spawn(ctx, "forest")
	}
	_, _ = env.svc.Spawn(ctx, "nope")

	hist := env.svc.History()
	if len(hist) != 2 {
		t.Fatalf("History() len = %d, want 2", len(hist))
	}
	if hist[0].Profile != "nope" || hist[0].Error == "" {
		t.Errorf("newest entry = %+v, want failed nope spawn", hist[0])
	}
	if hist[1].Origin.Via != "cli" {
		t.Errorf("Origin.Via = %q, want cli", hist[1].Origin.Via)
	}
}

// =============================================================================
// Preview / Parse / Clear Tests
// =============================================================================

func TestPreview_DoesNotTouchScene(t *testing.T) {
	env := newTestEnv(t, Options{}, forestProfile(placement.PolicyFailFast))

	pv, err := env.svc.Preview(context.Background(), "forest")
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(pv.Records) != 3 {
		t.Errorf("Records = %d, want 3 (preview does not resolve prefabs)", len(pv.Records))
	}
	if len(pv.Header) != 5 || pv.Header[0] != "Type" {
		t.Errorf("Header = %v", pv.Header)
	}
	if env.sink.clears != 0 || len(env.svc.Scene()) != 0 {
		t.Error("Preview should not clear or place")
	}
}

func TestParseText(t *testing.T) {
	env := newTestEnv(t, Options{})

	res := env.svc.ParseText("A,B\n1,x\n")
	if len(res.Rows) != 1 || len(res.Header) != 2 {
		t.Fatalf("ParseText() = %+v", res)
	}
	if v, _ := res.Rows[0].Get("A"); v.String() != "1" {
		t.Errorf("A = %v, want 1", v)
	}
}

func TestClearScene(t *testing.T) {
	env := newTestEnv(t, Options{}, forestProfile(placement.PolicyFailFast))
	ctx := context.Background()

	_, _ = env.svc.Spawn(ctx, "forest")
	if err := env.svc.ClearScene(ctx); err != nil {
		t.Fatalf("ClearScene() error = %v", err)
	}
	if len(env.svc.Scene()) != 0 || len(env.sink.places) != 0 {
		t.Error("ClearScene should empty every sink")
	}
}

func TestNewService_RequiresCollaborators(t *testing.T) {
	if _, err := NewService(Options{}); err == nil {
		t.Error("NewService without collaborators should fail")
	}
}

// =============================================================================
// Catalog and Scene Lookup Tests
// =============================================================================

// resolveOnly is a catalog without list or edit support.
type resolveOnly struct{}

func (resolveOnly) Resolve(ctx context.Context, name string) (catalog.Prefab, error) {
	return catalog.Prefab{Name: name}, nil
}

func TestPrefabs_ReadOnlyCatalog(t *testing.T) {
	env := newTestEnv(t, Options{Catalog: resolveOnly{}})
	ctx := context.Background()

	if _, err := env.svc.Prefabs(ctx); !errors.Is(err, ErrCatalogReadOnly) {
		t.Errorf("Prefabs() error = %v, want ErrCatalogReadOnly", err)
	}
	if _, err := env.svc.SavePrefab(ctx, catalog.Prefab{Name: "x"}); !errors.Is(err, ErrCatalogReadOnly) {
		t.Errorf("SavePrefab() error = %v, want ErrCatalogReadOnly", err)
	}
	if err := env.svc.DeletePrefab(ctx, "x"); !errors.Is(err, ErrCatalogReadOnly) {
		t.Errorf("DeletePrefab() error = %v, want ErrCatalogReadOnly", err)
	}
}

func TestPrefabs_EditAffectsSpawn(t *testing.T) {
	env := newTestEnv(t, Options{}, forestProfile(placement.PolicyFailFast))
	ctx := context.Background()

	if err := env.svc.DeletePrefab(ctx, "Rock"); err != nil {
		t.Fatalf("DeletePrefab() error = %v", err)
	}
	if err := env.svc.DeletePrefab(ctx, "Rock"); !errors.Is(err, catalog.ErrPrefabNotFound) {
		t.Errorf("second DeletePrefab() error = %v, want ErrPrefabNotFound", err)
	}

	res, err := env.svc.Spawn(ctx, "forest")
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if len(res.Unresolved) == 0 {
		t.Error("deleted prefab should be unresolved")
	}

	list, err := env.svc.Prefabs(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "Tree" {
		t.Errorf("Prefabs() = %+v, %v; want [Tree]", list, err)
	}
}

func TestFindNode(t *testing.T) {
	env := newTestEnv(t, Options{}, forestProfile(placement.PolicyFailFast))
	ctx := context.Background()
	gen := env.svc.SceneGeneration()

	res, err := env.svc.Spawn(ctx, "forest")
	if err != nil || len(res.Placed) == 0 {
		t.Fatalf("Spawn() = %+v, %v", res, err)
	}
	if env.svc.SceneGeneration() != gen+1 {
		t.Errorf("SceneGeneration() = %d, want %d", env.svc.SceneGeneration(), gen+1)
	}

	name := res.Placed[0].Name
	n, err := env.svc.FindNode(name)
	if err != nil || n.ID != res.Placed[0].ID {
		t.Errorf("FindNode(%q) = %+v, %v", name, n, err)
	}
	if _, err := env.svc.FindNode("nobody"); !errors.Is(err, scene.ErrNodeNotFound) {
		t.Errorf("FindNode(nobody) error = %v, want ErrNodeNotFound", err)
	}
}
