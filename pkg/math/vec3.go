// Package math provides the vector and rotation types used by scene data and
// exported poses.
package math

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Array returns the components as [x, y, z].
func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Vec3FromArray builds a vector from [x, y, z].
func Vec3FromArray(a [3]float64) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}
