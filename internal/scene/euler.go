package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	axisX = mgl32.Vec3{1, 0, 0}
	axisY = mgl32.Vec3{0, 1, 0}
	axisZ = mgl32.Vec3{0, 0, 1}
)

// EulerToQuat converts XYZ Euler angles to a quaternion (Rx * Ry * Rz).
func EulerToQuat(e mgl32.Vec3) mgl32.Quat {
	qx := mgl32.QuatRotate(e[0], axisX)
	qy := mgl32.QuatRotate(e[1], axisY)
	qz := mgl32.QuatRotate(e[2], axisZ)
	return qx.Mul(qy).Mul(qz).Normalize()
}

// QuatToEuler converts a quaternion to XYZ Euler angles. Near gimbal lock
// the Z angle is folded into X.
func QuatToEuler(q mgl32.Quat) mgl32.Vec3 {
	m := q.Normalize().Mat4()

	m11, m12, m13 := float64(m.At(0, 0)), float64(m.At(0, 1)), float64(m.At(0, 2))
	m22, m23 := float64(m.At(1, 1)), float64(m.At(1, 2))
	m32, m33 := float64(m.At(2, 1)), float64(m.At(2, 2))

	y := math.Asin(math.Max(-1, math.Min(1, m13)))

	var x, z float64
	if math.Abs(m13) < 0.9999999 {
		x = math.Atan2(-m23, m33)
		z = math.Atan2(-m12, m11)
	} else {
		x = math.Atan2(m32, m22)
	}

	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}
