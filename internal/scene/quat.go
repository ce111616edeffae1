package scene

import "math"

// Quat is a unit rotation quaternion.
type Quat struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Identity is the zero rotation.
var Identity = Quat{W: 1}

// FromEuler builds a rotation from Euler angles in degrees. The rotation
// turns about Z first, then X, then Y.
func FromEuler(x, y, z float64) Quat {
	if x == 0 && y == 0 && z == 0 {
		return Identity
	}
	qx := axisAngle(1, 0, 0, x)
	qy := axisAngle(0, 1, 0, y)
	qz := axisAngle(0, 0, 1, z)
	return qy.Mul(qx).Mul(qz)
}

func axisAngle(ax, ay, az, deg float64) Quat {
	half := deg * math.Pi / 360
	s, c := math.Sin(half), math.Cos(half)
	return Quat{W: c, X: ax * s, Y: ay * s, Z: az * s}
}

// Mul returns q*r, which applies r first and then q.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Rotate applies q to the vector (x, y, z).
func (q Quat) Rotate(x, y, z float64) (float64, float64, float64) {
	v := Quat{X: x, Y: y, Z: z}
	conj := Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
	r := q.Mul(v).Mul(conj)
	return r.X, r.Y, r.Z
}
