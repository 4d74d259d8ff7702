// Package loader imports the character asset (glTF 2.0 / GLB) into a scene
// graph, off the frame thread.
package loader

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/normanking/heroavatar/internal/scene"
)

var (
	// ErrNoScene means the document has no nodes to show.
	ErrNoScene = errors.New("asset has no scene")
	// ErrTimeout means the whole load exceeded its deadline.
	ErrTimeout = errors.New("asset load timed out")
	// ErrStalled means no progress was reported for the stall window.
	ErrStalled = errors.New("asset load stalled")
)

// Stage names a step of the import.
type Stage string

const (
	StageQueued Stage = "queued"
	StageOpen   Stage = "open"
	StageNodes  Stage = "nodes"
	StageSkins  Stage = "skins"
	StageMeshes Stage = "meshes"
	StageClips  Stage = "clips"
	StageDone   Stage = "done"
)

// Progress reports how far an import got.
type Progress struct {
	Stage Stage
	Done  int
	Total int
}

// Primitive is one drawable triangle list with CPU-side vertex data.
type Primitive struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Joints    [][4]uint16
	Weights   [][4]float32
	Indices   []uint32

	BaseColor mgl32.Vec4
	// Texture holds the encoded base color image, if any.
	Texture     []byte
	TextureMIME string
}

// Skinned reports whether the primitive carries joint influences.
func (p *Primitive) Skinned() bool {
	return len(p.Joints) == len(p.Positions) && len(p.Weights) == len(p.Positions) && len(p.Positions) > 0
}

// Mesh is a mesh instance attached to a node.
type Mesh struct {
	Name       string
	Node       *scene.Node
	Skin       *scene.Skin
	Primitives []Primitive
}

// Asset is a fully imported character.
type Asset struct {
	Path   string
	Graph  *scene.Graph
	Meshes []*Mesh
	Skins  []*scene.Skin
	Clips  []*scene.Clip
}

// VertexCount sums the vertices of every primitive.
func (a *Asset) VertexCount() int {
	n := 0
	for _, m := range a.Meshes {
		for i := range m.Primitives {
			n += len(m.Primitives[i].Positions)
		}
	}
	return n
}
