package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/scenecsv/internal/placement"
)

type yamlProfile struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Source      string       `yaml:"source"`
	Policy      string       `yaml:"policy"`
	Template    yamlTemplate `yaml:"template"`
	Bindings    []rawBinding `yaml:"bindings"`
}

type yamlTemplate struct {
	PrefabName string         `yaml:"prefabName"`
	ObjectName string         `yaml:"objectName"`
	Position   placement.Vec3 `yaml:"position"`
	Rotation   placement.Vec3 `yaml:"rotation"`
}

func loadYAMLFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}
	profiles, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profiles, nil
}

// ParseYAML decodes every YAML document in data as a profile. Profiles are
// not validated.
func ParseYAML(data []byte) ([]Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var out []Profile
	for {
		var yp yamlProfile
		err := dec.Decode(&yp)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
		}

		p, err := yp.profile()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (yp yamlProfile) profile() (Profile, error) {
	policy, err := placement.ParsePolicy(yp.Policy)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", yp.Name, err)
	}
	bindings, err := convertBindings(yp.Bindings)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", yp.Name, err)
	}
	return Profile{
		Name:        yp.Name,
		Description: yp.Description,
		Source:      yp.Source,
		Policy:      policy,
		Bindings:    bindings,
		Template: placement.Record{
			PrefabName: yp.Template.PrefabName,
			ObjectName: yp.Template.ObjectName,
			Position:   yp.Template.Position,
			Rotation:   yp.Template.Rotation,
		},
	}, nil
}

// MarshalYAML writes p in the format ParseYAML reads.
func MarshalYAML(p Profile) ([]byte, error) {
	yp := yamlProfile{
		Name:        p.Name,
		Description: p.Description,
		Source:      p.Source,
		Policy:      p.Policy.String(),
		Template: yamlTemplate{
			PrefabName: p.Template.PrefabName,
			ObjectName: p.Template.ObjectName,
			Position:   p.Template.Position,
			Rotation:   p.Template.Rotation,
		},
	}
	for _, b := range p.Bindings {
		yp.Bindings = append(yp.Bindings, rawBinding{Attribute: b.Attribute.String(), Column: b.Column})
	}
	return yaml.Marshal(yp)
}
