package mol

import (
	"errors"
	"testing"

	"github.com/dd0wney/plexnet/pkg/modelerr"
)

func kinase() Spec {
	return Spec{
		Name:   "Kinase",
		Weight: 50,
		Sites: []SiteSpec{
			{Name: "dock", Shapes: []string{"closed", "open"}, Default: "closed"},
			{Name: "cat"},
		},
		ModSites: []ModSiteSpec{
			{Name: "Y", Values: []ModValueSpec{{Name: "none"}, {Name: "phos", Weight: 80}}},
		},
		Allostery: []AlloSpec{
			{When: map[string]string{"Y": "phos"}, Shapes: map[string]string{"dock": "open"}},
		},
	}
}

func TestRegistry_Define(t *testing.T) {
	r := NewRegistry()
	m, err := r.Define(kinase())
	if err != nil {
		t.Fatalf("Define: %v", err)
	}
	if m.ID != 0 || r.Len() != 1 {
		t.Errorf("ID = %d, Len = %d", m.ID, r.Len())
	}

	got, ok := r.Lookup("Kinase")
	if !ok || got != m {
		t.Error("Lookup did not return the defined mol")
	}
	if _, ok := r.Lookup("Phosphatase"); ok {
		t.Error("Lookup of an undefined mol should miss")
	}
	if r.Get(5) != nil {
		t.Error("Get out of range should return nil")
	}

	if len(m.Sites[1].Shapes) != 1 || m.Sites[1].Shapes[0] != "cat" {
		t.Errorf("shapeless site shapes = %v, want [cat]", m.Sites[1].Shapes)
	}
}

func TestRegistry_DefineErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
		want   error
	}{
		{"bad name", func(s *Spec) { s.Name = "1x" }, modelerr.ErrInvalidDefinition},
		{"zero weight", func(s *Spec) { s.Weight = 0 }, modelerr.ErrInvalidDefinition},
		{"duplicate site", func(s *Spec) { s.Sites[1].Name = "dock" }, modelerr.ErrInvalidDefinition},
		{"site clashes with mod site", func(s *Spec) { s.ModSites[0].Name = "cat" }, modelerr.ErrInvalidDefinition},
		{"duplicate mod value", func(s *Spec) { s.ModSites[0].Values[1].Name = "none" }, modelerr.ErrInvalidDefinition},
		{"unknown default shape", func(s *Spec) { s.Sites[0].Default = "ajar" }, modelerr.ErrUnknownReference},
		{"unknown default value", func(s *Spec) { s.ModSites[0].Default = "acetyl" }, modelerr.ErrUnknownReference},
		{"allostery unknown mod", func(s *Spec) { s.Allostery[0].When = map[string]string{"S": "phos"} }, modelerr.ErrUnknownReference},
		{"allostery unknown shape", func(s *Spec) { s.Allostery[0].Shapes = map[string]string{"dock": "ajar"} }, modelerr.ErrUnknownReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := kinase()
			tt.mutate(&spec)
			_, err := NewRegistry().Define(spec)
			if !errors.Is(err, tt.want) {
				t.Errorf("Define error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Define(kinase()); err != nil {
		t.Fatal(err)
	}
	_, err := r.Define(kinase())
	if !errors.Is(err, modelerr.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	var me *modelerr.ModelError
	if !errors.As(err, &me) || me.Name != "Kinase" {
		t.Errorf("error should name the mol: %v", err)
	}
}

func TestMol_Allostery(t *testing.T) {
	m, err := NewRegistry().Define(kinase())
	if err != nil {
		t.Fatal(err)
	}

	s := m.DefaultState()
	if s.Shapes[0] != 0 || s.Mods[0] != 0 {
		t.Fatalf("default state = %+v", s)
	}
	if got := m.ShapeKey(0, s).String(); got != "Kinase.dock[closed]" {
		t.Errorf("ShapeKey = %s", got)
	}
	if got := m.ShapeKey(1, s).String(); got != "Kinase.cat" {
		t.Errorf("ShapeKey = %s", got)
	}

	phos := s.Clone()
	phos.Mods[0] = 1
	phos = m.Reshape(phos)
	if phos.Shapes[0] != 1 {
		t.Errorf("phosphorylated dock shape = %d, want open", phos.Shapes[0])
	}
	if s.Mods[0] != 0 {
		t.Error("Clone should not alias the original")
	}
	if w := m.StateWeight(phos); w != 130 {
		t.Errorf("StateWeight = %v, want 130", w)
	}
	if m.ModValueName(0, phos) != "phos" {
		t.Errorf("ModValueName = %s", m.ModValueName(0, phos))
	}
	if s.Key() == phos.Key() {
		t.Error("distinct states should have distinct keys")
	}
}

func TestMol_IndexLookups(t *testing.T) {
	m, err := NewRegistry().Define(kinase())
	if err != nil {
		t.Fatal(err)
	}

	if i, ok := m.SiteIndex("cat"); !ok || i != 1 {
		t.Errorf("SiteIndex(cat) = %d, %v", i, ok)
	}
	if _, ok := m.SiteIndex("Y"); ok {
		t.Error("mod site should not resolve as a binding site")
	}
	if i, ok := m.ModSiteIndex("Y"); !ok || i != 0 {
		t.Errorf("ModSiteIndex(Y) = %d, %v", i, ok)
	}
	if i, ok := m.ModValueIndex(0, "phos"); !ok || i != 1 {
		t.Errorf("ModValueIndex = %d, %v", i, ok)
	}
	if _, ok := m.ModValueIndex(3, "phos"); ok {
		t.Error("out of range mod site should miss")
	}
	if i, ok := m.ShapeIndex(0, "open"); !ok || i != 1 {
		t.Errorf("ShapeIndex = %d, %v", i, ok)
	}
	if keys := m.ShapeKeys(0); len(keys) != 2 || keys[1].Shape != "open" {
		t.Errorf("ShapeKeys = %v", keys)
	}
}

func TestStateKey(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{State{}, "/"},
		{State{Shapes: []int{0}}, "0/"},
		{State{Shapes: []int{1, 0}, Mods: []int{2}}, "1.0/2"},
	}
	for _, tt := range tests {
		if got := tt.state.Key(); got != tt.want {
			t.Errorf("Key(%+v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}
