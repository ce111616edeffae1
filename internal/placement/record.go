package placement

import "fmt"

// Vec3 is a three-component vector. Rotations are Euler angles in degrees.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Record is one object to place: which prefab, under what name, where and
// how it is turned. Records hold no references, so copies never alias.
type Record struct {
	PrefabName string `json:"prefabName"`
	ObjectName string `json:"objectName"`
	Position   Vec3   `json:"position"`
	Rotation   Vec3   `json:"rotation"`
}

// Binding ties an attribute to the literal header name it is read from.
type Binding struct {
	Attribute Attribute `json:"attribute"`
	Column    string    `json:"column"`
}

func (b Binding) String() string {
	return fmt.Sprintf("%s<-%q", b.Attribute, b.Column)
}
