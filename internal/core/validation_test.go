package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/scenecsv/internal/placement"
)

func TestMissingColumns(t *testing.T) {
	bindings := []placement.Binding{
		{Attribute: placement.PrefabName, Column: "Type"},
		{Attribute: placement.PosX, Column: "X"},
		{Attribute: placement.PosZ, Column: "Z"},
		{Attribute: placement.RotY, Column: "Z"},
	}

	tests := []struct {
		name   string
		header []string
		want   []string
	}{
		{"all present", []string{"Type", "X", "Z"}, nil},
		{"one missing once", []string{"Type", "X"}, []string{"Z"}},
		{"case sensitive", []string{"type", "X", "Z"}, []string{"Type"}},
		{"empty header", nil, []string{"Type", "X", "Z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingColumns(tt.header, bindings)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MissingColumns() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
