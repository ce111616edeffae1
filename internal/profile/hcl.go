package profile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/JonMunkholm/scenecsv/internal/placement"
)

// hclFile is the top-level structure of a profile file for decoding.
//
//	profile "trees" {
//	  source = "trees"
//	  policy = "skip"
//	  template {
//	    prefab_name = "Tree"
//	    rotation    = [0, 0, 0]
//	  }
//	  binding "prefabName" { column = "Type" }
//	}
type hclFile struct {
	Profiles []*hclProfile `hcl:"profile,block"`
}

type hclProfile struct {
	Name        string       `hcl:"name,label"`
	Description string       `hcl:"description,optional"`
	Source      string       `hcl:"source"`
	Policy      string       `hcl:"policy,optional"`
	Template    *hclTemplate `hcl:"template,block"`
	Bindings    []rawBinding `hcl:"binding,block"`
}

type hclTemplate struct {
	PrefabName string    `hcl:"prefab_name,optional"`
	ObjectName string    `hcl:"object_name,optional"`
	Position   []float64 `hcl:"position,optional"`
	Rotation   []float64 `hcl:"rotation,optional"`
}

func loadHCLFile(path string) ([]Profile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decodeHCL(file, path)
}

// ParseHCL decodes profile blocks from HCL source. filename is used in
// diagnostics only. Profiles are not validated.
func ParseHCL(src []byte, filename string) ([]Profile, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decodeHCL(file, filename)
}

func decodeHCL(file *hcl.File, filename string) ([]Profile, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	out := make([]Profile, 0, len(parsed.Profiles))
	for _, hp := range parsed.Profiles {
		p, err := hp.profile()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (hp *hclProfile) profile() (Profile, error) {
	policy, err := placement.ParsePolicy(hp.Policy)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", hp.Name, err)
	}
	bindings, err := convertBindings(hp.Bindings)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", hp.Name, err)
	}

	p := Profile{
		Name:        hp.Name,
		Description: hp.Description,
		Source:      hp.Source,
		Policy:      policy,
		Bindings:    bindings,
	}
	if t := hp.Template; t != nil {
		p.Template.PrefabName = t.PrefabName
		p.Template.ObjectName = t.ObjectName
		if p.Template.Position, err = vec3(t.Position, "position"); err != nil {
			return Profile{}, fmt.Errorf("profile %q: %w", hp.Name, err)
		}
		if p.Template.Rotation, err = vec3(t.Rotation, "rotation"); err != nil {
			return Profile{}, fmt.Errorf("profile %q: %w", hp.Name, err)
		}
	}
	return p, nil
}

func vec3(v []float64, field string) (placement.Vec3, error) {
	switch len(v) {
	case 0:
		return placement.Vec3{}, nil
	case 3:
		return placement.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return placement.Vec3{}, fmt.Errorf("template %s: want 3 components, got %d", field, len(v))
	}
}
