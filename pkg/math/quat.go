package math

import "math"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromEulerXYZ converts an XYZ-ordered Euler rotation (radians) to a
// quaternion. X is applied first, then Y, then Z, so q = qz * qy * qx.
func QuatFromEulerXYZ(e Vec3) Quat {
	sx, cx := math.Sincos(e.X / 2)
	sy, cy := math.Sincos(e.Y / 2)
	sz, cz := math.Sincos(e.Z / 2)
	return Quat{
		X: sx*cy*cz - cx*sy*sz,
		Y: cx*sy*cz + sx*cy*sz,
		Z: cx*cy*sz - sx*sy*cz,
		W: cx*cy*cz + sx*sy*sz,
	}
}

// WXYZ returns the components in scalar-first order.
func (q Quat) WXYZ() [4]float64 {
	return [4]float64{q.W, q.X, q.Y, q.Z}
}

// QuatFromWXYZ builds a quaternion from scalar-first components.
func QuatFromWXYZ(a [4]float64) Quat {
	return Quat{W: a[0], X: a[1], Y: a[2], Z: a[3]}
}
