package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/normanking/heroavatar/internal/loader"
	"github.com/normanking/heroavatar/internal/scene"
)

// vertexStride is position(3) normal(3) uv(2) joints(4) weights(4).
const vertexStride = 16

// Mesh is one uploaded primitive.
type Mesh struct {
	VAO         uint32
	VBO         uint32
	EBO         uint32
	VertexCount int32
	IndexCount  int32
	HasIndices  bool

	Node      *scene.Node
	Skin      *scene.Skin
	BaseColor mgl32.Vec4
	Texture   uint32 // 0 when untextured
}

// interleave packs a primitive into the vertex layout. Joint indices are
// stored as floats; the shader casts them back.
func interleave(p *loader.Primitive) []float32 {
	n := len(p.Positions)
	data := make([]float32, 0, n*vertexStride)
	for i := 0; i < n; i++ {
		pos := p.Positions[i]
		data = append(data, pos[0], pos[1], pos[2])

		var nrm [3]float32
		if i < len(p.Normals) {
			nrm = p.Normals[i]
		}
		data = append(data, nrm[0], nrm[1], nrm[2])

		var uv [2]float32
		if i < len(p.UVs) {
			uv = p.UVs[i]
		}
		data = append(data, uv[0], uv[1])

		var j [4]uint16
		var w [4]float32
		if i < len(p.Joints) && i < len(p.Weights) {
			j = p.Joints[i]
			w = p.Weights[i]
		}
		data = append(data, float32(j[0]), float32(j[1]), float32(j[2]), float32(j[3]))
		data = append(data, w[0], w[1], w[2], w[3])
	}
	return data
}

// newMesh uploads a primitive. The texture is owned by the caller.
func newMesh(p *loader.Primitive, node *scene.Node, skin *scene.Skin, texture uint32) *Mesh {
	m := &Mesh{
		Node:        node,
		BaseColor:   p.BaseColor,
		Texture:     texture,
		VertexCount: int32(len(p.Positions)),
	}
	if p.Skinned() {
		m.Skin = skin
	}

	gl.GenVertexArrays(1, &m.VAO)
	gl.GenBuffers(1, &m.VBO)

	gl.BindVertexArray(m.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)

	vertexData := interleave(p)
	if len(vertexData) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertexData)*4, gl.Ptr(vertexData), gl.STATIC_DRAW)
	}

	stride := int32(vertexStride * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, stride, 8*4)
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointerWithOffset(4, 4, gl.FLOAT, false, stride, 12*4)
	gl.EnableVertexAttribArray(4)

	if len(p.Indices) > 0 {
		m.HasIndices = true
		m.IndexCount = int32(len(p.Indices))
		gl.GenBuffers(1, &m.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(p.Indices)*4, gl.Ptr(p.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	return m
}

// Draw issues the draw call. Uniforms must already be set.
func (m *Mesh) Draw() {
	gl.BindVertexArray(m.VAO)
	if m.HasIndices {
		gl.DrawElements(gl.TRIANGLES, m.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, m.VertexCount)
	}
	gl.BindVertexArray(0)
}

// Delete releases the buffers.
func (m *Mesh) Delete() {
	gl.DeleteVertexArrays(1, &m.VAO)
	gl.DeleteBuffers(1, &m.VBO)
	if m.HasIndices {
		gl.DeleteBuffers(1, &m.EBO)
	}
}
