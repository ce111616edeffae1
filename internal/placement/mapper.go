package placement

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/scenecsv/internal/tabular"
)

// Policy decides what happens to a row with an unconvertible numeric value.
type Policy int

const (
	// PolicyFailFast aborts the whole mapping on the first bad value.
	PolicyFailFast Policy = iota
	// PolicySkipRow drops the offending row, logs it and keeps going.
	PolicySkipRow
)

func (p Policy) String() string {
	switch p {
	case PolicyFailFast:
		return "fail"
	case PolicySkipRow:
		return "skip"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts "fail" (also "fail-fast", "abort") and "skip"
// (also "skip-row"). The empty string means PolicyFailFast.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail", "fail-fast", "failfast", "abort":
		return PolicyFailFast, nil
	case "skip", "skip-row", "skiprow":
		return PolicySkipRow, nil
	default:
		return 0, fmt.Errorf("unknown conversion policy %q (want fail or skip)", s)
	}
}

// Result is the output of Mapper.Map.
type Result struct {
	Records []Record
	Skipped []*ConversionError // Only populated under PolicySkipRow
}

// Mapper maps rows to records under a conversion policy.
// The zero Mapper fails fast and logs to slog.Default.
type Mapper struct {
	Policy Policy
	Logger *slog.Logger
}

// Map maps rows with PolicyFailFast. On error no records are returned.
func Map(rows []tabular.Row, bindings []Binding, template Record) ([]Record, error) {
	res, err := Mapper{}.Map(rows, bindings, template)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Map builds one record per row, in row order, starting each from a copy of
// template.
func (m Mapper) Map(rows []tabular.Row, bindings []Binding, template Record) (*Result, error) {
	if err := ValidateBindings(bindings); err != nil {
		return nil, err
	}

	res := &Result{Records: make([]Record, 0, len(rows))}

	for i, row := range rows {
		rec, err := mapRow(i, row, bindings, template)
		if err == nil {
			res.Records = append(res.Records, rec)
			continue
		}

		var convErr *ConversionError
		if m.Policy != PolicySkipRow || !errors.As(err, &convErr) {
			return nil, err
		}

		m.logger().Warn("skipping row with invalid number",
			"row", convErr.Row,
			"column", convErr.Column,
			"attribute", convErr.Attribute.String(),
			"value", convErr.Raw,
		)
		res.Skipped = append(res.Skipped, convErr)
	}

	return res, nil
}

func (m Mapper) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

// mapRow applies every binding to a fresh copy of template.
func mapRow(index int, row tabular.Row, bindings []Binding, template Record) (Record, error) {
	rec := template

	for _, b := range bindings {
		v, ok := row.Get(b.Column)
		if !ok {
			continue
		}

		spec := attributeTable[b.Attribute]
		if spec.setText != nil {
			spec.setText(&rec, v.String())
			continue
		}

		f, err := v.AsFloat()
		if err != nil {
			return Record{}, &ConversionError{
				Row:       index,
				Column:    b.Column,
				Attribute: b.Attribute,
				Raw:       v.String(),
				Err:       err,
			}
		}
		spec.setFloat(&rec, f)
	}

	return rec, nil
}
