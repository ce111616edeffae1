// Package profile loads binding profiles: named bundles of a data source, a
// column binding table, a default record and a conversion policy.
//
// Profiles are written in YAML (.yaml, .yml) or HCL (.hcl). A YAML file may
// hold several documents; an HCL file may hold several profile blocks.
package profile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/scenecsv/internal/placement"
)

// ErrUnknownFormat is returned for files that are neither YAML nor HCL.
var ErrUnknownFormat = errors.New("unknown profile format")

// Profile is one spawnable configuration.
type Profile struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Source      string              `json:"source"`
	Bindings    []placement.Binding `json:"bindings"`
	Template    placement.Record    `json:"template"`
	Policy      placement.Policy    `json:"-"`
	Path        string              `json:"path,omitempty"` // File the profile was loaded from
}

// Validate reports every problem with p at once.
func (p Profile) Validate() error {
	var errs []string

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(p.Source) == "" {
		errs = append(errs, "source is required")
	}
	if len(p.Bindings) == 0 {
		errs = append(errs, "at least one binding is required")
	}
	if err := placement.ValidateBindings(p.Bindings); err != nil {
		errs = append(errs, err.Error())
	}
	if p.Policy != placement.PolicyFailFast && p.Policy != placement.PolicySkipRow {
		errs = append(errs, fmt.Sprintf("unknown policy %s", p.Policy))
	}

	if len(errs) > 0 {
		label := p.Name
		if label == "" {
			label = p.Path
		}
		return fmt.Errorf("profile %q:\n  - %s", label, strings.Join(errs, "\n  - "))
	}
	return nil
}

// LoadFile loads every profile in the file at path. The format is picked by
// extension.
func LoadFile(path string) ([]Profile, error) {
	var (
		profiles []Profile
		err      error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		profiles, err = loadYAMLFile(path)
	case ".hcl":
		profiles, err = loadHCLFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, err
	}

	for i := range profiles {
		profiles[i].Path = path
		if profiles[i].Name == "" && len(profiles) == 1 {
			profiles[i].Name = baseName(path)
		}
		if err := profiles[i].Validate(); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// IsProfileFile reports whether path has a profile extension.
func IsProfileFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".hcl":
		return true
	}
	return false
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// rawBinding is the on-disk form shared by both formats.
type rawBinding struct {
	Attribute string `yaml:"attribute" hcl:"attribute,label"`
	Column    string `yaml:"column" hcl:"column"`
}

func convertBindings(raw []rawBinding) ([]placement.Binding, error) {
	out := make([]placement.Binding, 0, len(raw))
	for i, rb := range raw {
		attr, err := placement.ParseAttribute(rb.Attribute)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		out = append(out, placement.Binding{Attribute: attr, Column: rb.Column})
	}
	return out, nil
}
