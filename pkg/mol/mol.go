// Package mol holds mol type definitions and the per-instance state of a mol
// inside a complex.
package mol

import (
	"strconv"
	"strings"
)

// ID identifies a mol type within a Registry.
type ID int

// Mol is a compiled, immutable mol type.
type Mol struct {
	ID       ID
	Name     string
	Weight   float64
	Sites    []BindingSite
	ModSites []ModSite

	allostery []alloState
	siteIndex map[string]int
	modIndex  map[string]int
}

// BindingSite is a binding-site slot with its shapes.
type BindingSite struct {
	Name    string
	Shapes  []string
	Default int
}

// ModSite is a modification slot with its values.
type ModSite struct {
	Name    string
	Values  []ModValue
	Default int
}

// ModValue is one modification value and the weight it adds.
type ModValue struct {
	Name   string
	Weight float64
}

// alloState is a compiled AlloSpec. -1 entries are wildcards in when and
// "leave alone" in shapes.
type alloState struct {
	when   []int
	shapes []int
}

// ShapeKey names one shape of one site of one mol. Rate tables are keyed by it.
type ShapeKey struct {
	Mol   string
	Site  string
	Shape string
}

func (k ShapeKey) String() string {
	if k.Shape == k.Site {
		return k.Mol + "." + k.Site
	}
	return k.Mol + "." + k.Site + "[" + k.Shape + "]"
}

// State is the state of one mol instance: a shape index per binding site and a
// value index per modification site.
type State struct {
	Shapes []int
	Mods   []int
}

// Clone returns a deep copy.
func (s State) Clone() State {
	return State{
		Shapes: append([]int(nil), s.Shapes...),
		Mods:   append([]int(nil), s.Mods...),
	}
}

// Key encodes the state as a compact comparable string.
func (s State) Key() string {
	var b strings.Builder
	for i, v := range s.Shapes {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteByte('/')
	for i, v := range s.Mods {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// SiteIndex returns the index of the named binding site.
func (m *Mol) SiteIndex(name string) (int, bool) {
	i, ok := m.siteIndex[name]
	return i, ok
}

// ModSiteIndex returns the index of the named modification site.
func (m *Mol) ModSiteIndex(name string) (int, bool) {
	i, ok := m.modIndex[name]
	return i, ok
}

// ModValueIndex returns the index of a value of modification site mod.
func (m *Mol) ModValueIndex(mod int, value string) (int, bool) {
	if mod < 0 || mod >= len(m.ModSites) {
		return 0, false
	}
	for i, v := range m.ModSites[mod].Values {
		if v.Name == value {
			return i, true
		}
	}
	return 0, false
}

// ShapeIndex returns the index of a shape of binding site site.
func (m *Mol) ShapeIndex(site int, shape string) (int, bool) {
	if site < 0 || site >= len(m.Sites) {
		return 0, false
	}
	for i, s := range m.Sites[site].Shapes {
		if s == shape {
			return i, true
		}
	}
	return 0, false
}

// DefaultState returns the state with every modification site at its default
// value and site shapes as the allostery table dictates.
func (m *Mol) DefaultState() State {
	s := State{Mods: make([]int, len(m.ModSites))}
	for i, ms := range m.ModSites {
		s.Mods[i] = ms.Default
	}
	return m.Reshape(s)
}

// Reshape recomputes binding-site shapes from the modification state.
func (m *Mol) Reshape(s State) State {
	out := State{
		Shapes: make([]int, len(m.Sites)),
		Mods:   append([]int(nil), s.Mods...),
	}
	for i, site := range m.Sites {
		out.Shapes[i] = site.Default
	}
	for _, a := range m.allostery {
		if !a.matches(out.Mods) {
			continue
		}
		for site, shape := range a.shapes {
			if shape >= 0 {
				out.Shapes[site] = shape
			}
		}
	}
	return out
}

func (a alloState) matches(mods []int) bool {
	for i, want := range a.when {
		if want >= 0 && mods[i] != want {
			return false
		}
	}
	return true
}

// StateWeight is the base weight plus the weight of every modification value.
func (m *Mol) StateWeight(s State) float64 {
	w := m.Weight
	for i, v := range s.Mods {
		w += m.ModSites[i].Values[v].Weight
	}
	return w
}

// ShapeKey names the shape that site currently shows in state s.
func (m *Mol) ShapeKey(site int, s State) ShapeKey {
	bs := m.Sites[site]
	return ShapeKey{Mol: m.Name, Site: bs.Name, Shape: bs.Shapes[s.Shapes[site]]}
}

// ShapeKeys lists every shape a site can show.
func (m *Mol) ShapeKeys(site int) []ShapeKey {
	bs := m.Sites[site]
	keys := make([]ShapeKey, len(bs.Shapes))
	for i, shape := range bs.Shapes {
		keys[i] = ShapeKey{Mol: m.Name, Site: bs.Name, Shape: shape}
	}
	return keys
}

// ModValueName returns the name of the value modification site mod holds.
func (m *Mol) ModValueName(mod int, s State) string {
	return m.ModSites[mod].Values[s.Mods[mod]].Name
}
