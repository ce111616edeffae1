package placement

import (
	"fmt"
	"strings"
)

// Attribute names one settable field of a Record.
type Attribute uint8

const (
	PrefabName Attribute = iota
	ObjectName
	PosX
	PosY
	PosZ
	RotY

	numAttributes
)

// attributeSpec describes how a column value lands in a record.
// Exactly one of setText and setFloat is non-nil.
type attributeSpec struct {
	name     string
	setText  func(r *Record, s string)
	setFloat func(r *Record, f float64)
}

// attributeTable is the single dispatch table for all attributes.
var attributeTable = [numAttributes]attributeSpec{
	PrefabName: {name: "prefabName", setText: func(r *Record, s string) { r.PrefabName = s }},
	ObjectName: {name: "objectName", setText: func(r *Record, s string) { r.ObjectName = s }},
	PosX:       {name: "posX", setFloat: func(r *Record, f float64) { r.Position.X = f }},
	PosY:       {name: "posY", setFloat: func(r *Record, f float64) { r.Position.Y = f }},
	PosZ:       {name: "posZ", setFloat: func(r *Record, f float64) { r.Position.Z = f }},
	RotY:       {name: "rotY", setFloat: func(r *Record, f float64) { r.Rotation.Y = f }},
}

// Attributes returns every attribute in declaration order.
func Attributes() []Attribute {
	out := make([]Attribute, numAttributes)
	for i := range out {
		out[i] = Attribute(i)
	}
	return out
}

// Valid reports whether a is one of the declared attributes.
func (a Attribute) Valid() bool { return a < numAttributes }

// Numeric reports whether a is a position or rotation component.
func (a Attribute) Numeric() bool {
	return a.Valid() && attributeTable[a].setFloat != nil
}

func (a Attribute) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Attribute(%d)", uint8(a))
	}
	return attributeTable[a].name
}

// MarshalText implements encoding.TextMarshaler.
func (a Attribute) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid attribute %d", uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Attribute) UnmarshalText(text []byte) error {
	v, err := ParseAttribute(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAttribute resolves an attribute by name. Matching ignores case,
// underscores and dashes, so "posX", "pos_x" and "POS-X" are equivalent.
func ParseAttribute(s string) (Attribute, error) {
	key := normalizeName(s)
	for i := range attributeTable {
		if normalizeName(attributeTable[i].name) == key {
			return Attribute(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown attribute %q", ErrInvalidBinding, s)
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}
