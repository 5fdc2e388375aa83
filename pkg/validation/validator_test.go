package validation

import (
	"strings"
	"testing"
)

type testSite struct {
	Name   string   `yaml:"name" validate:"required,ident"`
	Shapes []string `yaml:"shapes" validate:"omitempty,unique,dive,ident"`
}

type testDef struct {
	Name   string     `yaml:"name" validate:"required,ident"`
	Weight float64    `yaml:"weight" validate:"gt=0"`
	Rate   float64    `yaml:"rate" validate:"gte=0"`
	Kind   string     `yaml:"kind" validate:"omitempty,oneof=constant mass"`
	Sites  []testSite `yaml:"sites" validate:"dive"`
}

func TestStruct(t *testing.T) {
	valid := func() testDef {
		return testDef{
			Name:   "Receptor",
			Weight: 100,
			Rate:   1,
			Sites:  []testSite{{Name: "R1", Shapes: []string{"open", "closed"}}},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*testDef)
		errSubstr string
	}{
		{name: "valid", mutate: func(d *testDef) {}},
		{name: "missing name", mutate: func(d *testDef) { d.Name = "" }, errSubstr: "name: field is required"},
		{name: "bad name", mutate: func(d *testDef) { d.Name = "1abc" }, errSubstr: "not a valid identifier"},
		{name: "zero weight", mutate: func(d *testDef) { d.Weight = 0 }, errSubstr: "weight: must be greater than 0"},
		{name: "negative rate", mutate: func(d *testDef) { d.Rate = -1 }, errSubstr: "rate: must be at least 0"},
		{name: "bad kind", mutate: func(d *testDef) { d.Kind = "linear" }, errSubstr: "kind: must be one of"},
		{name: "duplicate shapes", mutate: func(d *testDef) { d.Sites[0].Shapes = []string{"a", "a"} }, errSubstr: "sites[0].shapes: entries must be unique"},
		{name: "nested bad shape", mutate: func(d *testDef) { d.Sites[0].Shapes = []string{"ok", "no-dash"} }, errSubstr: "sites[0].shapes[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(&d)
			err := Struct(&d)

			if tt.errSubstr == "" {
				if err != nil {
					t.Fatalf("Expected no error but got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.errSubstr)
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("Expected error containing %q, got %q", tt.errSubstr, err.Error())
			}
		})
	}
}

func TestStruct_Nil(t *testing.T) {
	if err := Struct(nil); err == nil {
		t.Error("Expected error for nil definition")
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		input     string
		expectErr bool
	}{
		{"Receptor", false},
		{"_private", false},
		{"site_2", false},
		{"", true},
		{"2fast", true},
		{"has space", true},
		{"dotted.name", true},
		{strings.Repeat("a", MaxNameLength), false},
		{strings.Repeat("a", MaxNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := Identifier("mol", tt.input)
			if tt.expectErr && err == nil {
				t.Errorf("Identifier(%q) expected error", tt.input)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Identifier(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}
