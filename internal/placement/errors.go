package placement

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBinding is returned for bindings with an unknown attribute or an
// empty column name.
var ErrInvalidBinding = errors.New("invalid binding")

// ConversionError reports a bound numeric column whose value is not a number.
type ConversionError struct {
	Row       int       // Index into the rows passed to Map (0-based)
	Column    string    // Source column name
	Attribute Attribute // Attribute being set
	Raw       string    // Offending value as text
	Err       error     // Underlying parse error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("row %d: column %q (%s): invalid number %q", e.Row, e.Column, e.Attribute, e.Raw)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ValidateBindings checks every binding and reports all problems at once.
func ValidateBindings(bindings []Binding) error {
	var errs []string
	for i, b := range bindings {
		if !b.Attribute.Valid() {
			errs = append(errs, fmt.Sprintf("binding %d: unknown attribute %d", i, uint8(b.Attribute)))
		}
		if b.Column == "" {
			errs = append(errs, fmt.Sprintf("binding %d (%s): empty column name", i, b.Attribute))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidBinding, strings.Join(errs, "; "))
	}
	return nil
}
