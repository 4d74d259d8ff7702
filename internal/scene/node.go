// Package scene holds the character's scene graph: named transform nodes,
// skins, clips, and the camera and lights that frame them.
package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Node is a named transform in the hierarchy. Rotation is an XYZ Euler
// triple in radians; tweens write its components directly.
type Node struct {
	Name        string
	Translation mgl32.Vec3
	Rotation    mgl32.Vec3
	Scale       mgl32.Vec3

	// Index is the node's position in the source asset, -1 for nodes
	// created at runtime.
	Index int

	Parent   *Node
	Children []*Node

	world mgl32.Mat4
}

// NewNode creates a node with identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:  name,
		Scale: mgl32.Vec3{1, 1, 1},
		Index: -1,
		world: mgl32.Ident4(),
	}
}

// Add attaches child under n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.Parent != nil {
		child.Parent.Remove(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Remove detaches child from n. It reports whether child was attached.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return true
		}
	}
	return false
}

// Quat returns the node's rotation as a quaternion.
func (n *Node) Quat() mgl32.Quat {
	return EulerToQuat(n.Rotation)
}

// SetQuat replaces the node's rotation with the Euler equivalent of q.
func (n *Node) SetQuat(q mgl32.Quat) {
	n.Rotation = QuatToEuler(q)
}

// LocalMatrix composes translation * rotation * scale.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2])
	r := n.Quat().Mat4()
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// World returns the world matrix computed by the last UpdateWorld.
func (n *Node) World() mgl32.Mat4 {
	return n.world
}

// UpdateWorld recomputes world matrices for n and its descendants.
func (n *Node) UpdateWorld(parent mgl32.Mat4) {
	n.world = parent.Mul4(n.LocalMatrix())
	for _, c := range n.Children {
		c.UpdateWorld(n.world)
	}
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Graph is a rooted node tree.
type Graph struct {
	Root *Node
}

// NewGraph creates a graph with an empty root node.
func NewGraph(name string) *Graph {
	return &Graph{Root: NewNode(name)}
}

// Find returns the first node whose name matches name ignoring case, or nil.
// Asset exporters disagree on casing, so exact-case lookups are never used.
func (g *Graph) Find(name string) *Node {
	if g == nil || g.Root == nil || name == "" {
		return nil
	}
	var found *Node
	g.Root.Walk(func(n *Node) bool {
		if strings.EqualFold(n.Name, name) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the graph.
func (g *Graph) Count() int {
	count := 0
	g.Root.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Update recomputes every world matrix from the root.
func (g *Graph) Update() {
	g.Root.UpdateWorld(mgl32.Ident4())
}
