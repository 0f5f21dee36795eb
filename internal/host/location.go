package host

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Scale returns v * f.
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

// Length returns the Euclidean length.
func (v Vec3) Length() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Normalize returns the unit vector, or the zero vector for zero input.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Location is a position in a named world plus a facing.
// Yaw and Pitch are in degrees.
type Location struct {
	World string
	X     float64
	Y     float64
	Z     float64
	Yaw   float64
	Pitch float64
}

// Position returns the coordinates as a vector.
func (l Location) Position() Vec3 { return Vec3{l.X, l.Y, l.Z} }

// Add returns l moved by v with the same facing.
func (l Location) Add(v Vec3) Location {
	l.X += v.X
	l.Y += v.Y
	l.Z += v.Z
	return l
}

// Direction returns the unit vector l is facing.
// Yaw 0 faces +Z; pitch 90 faces straight down.
func (l Location) Direction() Vec3 {
	yaw := l.Yaw * math.Pi / 180
	pitch := l.Pitch * math.Pi / 180
	xz := math.Cos(pitch)
	return Vec3{
		X: -xz * math.Sin(yaw),
		Y: -math.Sin(pitch),
		Z: xz * math.Cos(yaw),
	}
}

// Block returns the integer block coordinates containing l.
func (l Location) Block() (x, y, z int) {
	return int(math.Floor(l.X)), int(math.Floor(l.Y)), int(math.Floor(l.Z))
}
