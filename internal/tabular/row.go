package tabular

import (
	"bytes"
	"encoding/json"
)

// Row maps column names to typed values and remembers the order in which
// columns were first set. A row built by Parse holds exactly the header
// columns it had values for, in header order.
type Row struct {
	keys   []string
	values map[string]Value
}

// NewRow returns an empty row with room for n columns.
func NewRow(n int) *Row {
	return &Row{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// Set stores v under col. A column that is already present keeps its
// position and takes the new value.
func (r *Row) Set(col string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[col]; !ok {
		r.keys = append(r.keys, col)
	}
	r.values[col] = v
}

// Get returns the value stored under col.
func (r Row) Get(col string) (Value, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Has reports whether col is present.
func (r Row) Has(col string) bool {
	_, ok := r.values[col]
	return ok
}

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.keys) }

// Columns returns the column names in order. The slice is a copy.
func (r Row) Columns() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Each calls fn for every column in order.
func (r Row) Each(fn func(col string, v Value)) {
	for _, k := range r.keys {
		fn(k, r.values[k])
	}
}

// MarshalJSON encodes the row as a JSON object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
