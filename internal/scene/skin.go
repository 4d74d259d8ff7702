package scene

import "github.com/go-gl/mathgl/mgl32"

// MaxJoints bounds the joint palette uploaded per skinned draw.
const MaxJoints = 128

// Skin binds mesh vertices to joint nodes.
type Skin struct {
	Name        string
	Joints      []*Node
	InverseBind []mgl32.Mat4
}

// JointMatrices writes jointWorld * inverseBind for every joint into dst,
// growing it as needed. World matrices must be current.
func (s *Skin) JointMatrices(dst []mgl32.Mat4) []mgl32.Mat4 {
	if cap(dst) < len(s.Joints) {
		dst = make([]mgl32.Mat4, len(s.Joints))
	}
	dst = dst[:len(s.Joints)]

	for i, j := range s.Joints {
		ibm := mgl32.Ident4()
		if i < len(s.InverseBind) {
			ibm = s.InverseBind[i]
		}
		dst[i] = j.World().Mul4(ibm)
	}
	return dst
}
