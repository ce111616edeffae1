package scene

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/scenecsv/internal/placement"
)

// RootName is the name of the container every instance is parented to.
const RootName = "SceneRoot"

// ErrNodeNotFound is returned when no placed instance has the requested name.
var ErrNodeNotFound = errors.New("scene node not found")

// Node is one instance in the graph.
type Node struct {
	Instance
	Parent      string         `json:"parent"`
	Position    placement.Vec3 `json:"position"`
	Rotation    placement.Vec3 `json:"rotation"`
	Orientation Quat           `json:"orientation"`
	PlacedAt    time.Time      `json:"placedAt"`
}

// Forward is the direction the node faces: +Z turned by its orientation.
func (n Node) Forward() placement.Vec3 {
	x, y, z := n.Orientation.Rotate(0, 0, 1)
	return placement.Vec3{X: x, Y: y, Z: z}
}

// Graph is an in-memory scene with a single root container. It is safe for
// concurrent use.
type Graph struct {
	mu    sync.RWMutex
	nodes []Node
	index map[uuid.UUID]int
	gen   uint64
}

// NewGraph creates an empty scene.
func NewGraph() *Graph {
	return &Graph{index: make(map[uuid.UUID]int)}
}

// Clear removes every instance.
func (g *Graph) Clear(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = nil
	g.index = make(map[uuid.UUID]int)
	g.gen++
	return nil
}

// Place appends the instance under the root. Placing an ID that already
// exists moves that node instead of duplicating it.
func (g *Graph) Place(ctx context.Context, inst Instance, pos, rot placement.Vec3) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n := Node{
		Instance:    inst,
		Parent:      RootName,
		Position:    pos,
		Rotation:    rot,
		Orientation: FromEuler(rot.X, rot.Y, rot.Z),
		PlacedAt:    time.Now().UTC(),
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if i, ok := g.index[inst.ID]; ok {
		g.nodes[i] = n
		return nil
	}
	g.index[inst.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return nil
}

// Nodes returns a snapshot of the instances in placement order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Find returns the first node with the given instance name.
func (g *Graph) Find(name string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, n := range g.nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

// Len returns the number of placed instances.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Generation increments on every Clear.
func (g *Graph) Generation() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.gen
}
