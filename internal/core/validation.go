package core

import (
	"github.com/JonMunkholm/scenecsv/internal/placement"
)

// MissingColumns returns the bound columns that do not appear in header, in
// binding order and without repeats. Rows keep template values for these
// attributes, so a missing column is usually a typo in the profile.
func MissingColumns(header []string, bindings []placement.Binding) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, b := range bindings {
		if present[b.Column] {
			continue
		}
		present[b.Column] = true
		missing = append(missing, b.Column)
	}
	return missing
}
