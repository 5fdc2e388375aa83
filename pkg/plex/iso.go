package plex

// Map sends mol and binding indices of one plex to those of another. -1 marks
// an index with no image.
type Map struct {
	Mols     []int
	Bindings []int
}

func newMap(mols, bindings int) Map {
	m := Map{Mols: make([]int, mols), Bindings: make([]int, bindings)}
	for i := range m.Mols {
		m.Mols[i] = -1
	}
	for i := range m.Bindings {
		m.Bindings[i] = -1
	}
	return m
}

func (m Map) clone() Map {
	out := Map{Mols: make([]int, len(m.Mols)), Bindings: make([]int, len(m.Bindings))}
	copy(out.Mols, m.Mols)
	copy(out.Bindings, m.Bindings)
	return out
}

// Iso is a structure-preserving map from a left plex to a right plex together
// with its inverse. Flip[i] reports that left binding i lands on its image
// with the two ends swapped.
type Iso struct {
	Forward  Map
	Backward Map
	Flip     []bool
}

// Identity returns the iso from p onto itself.
func Identity(p Plex) Iso {
	iso := Iso{
		Forward:  newMap(len(p.Mols), len(p.Bindings)),
		Backward: newMap(len(p.Mols), len(p.Bindings)),
		Flip:     make([]bool, len(p.Bindings)),
	}
	for i := range p.Mols {
		iso.Forward.Mols[i] = i
		iso.Backward.Mols[i] = i
	}
	for i := range p.Bindings {
		iso.Forward.Bindings[i] = i
		iso.Backward.Bindings[i] = i
	}
	return iso
}

// MapSite sends a left site to the right plex.
func (iso Iso) MapSite(s SiteSpec) SiteSpec {
	return SiteSpec{Mol: iso.Forward.Mols[s.Mol], Site: s.Site}
}

// Inverse swaps the roles of the two plexes. Only defined for a bijection.
func (iso Iso) Inverse() Iso {
	flip := make([]bool, len(iso.Backward.Bindings))
	for j, i := range iso.Backward.Bindings {
		if i >= 0 {
			flip[j] = iso.Flip[i]
		}
	}
	return Iso{Forward: iso.Backward, Backward: iso.Forward, Flip: flip}
}

// IsIdentity reports whether every mol and binding maps to itself unflipped.
func (iso Iso) IsIdentity() bool {
	for i, j := range iso.Forward.Mols {
		if i != j {
			return false
		}
	}
	for i, j := range iso.Forward.Bindings {
		if i != j || iso.Flip[i] {
			return false
		}
	}
	return true
}

// Consistent reports whether Forward and Backward are mutual inverses on the
// mapped domain.
func (iso Iso) Consistent() bool {
	for i, j := range iso.Forward.Mols {
		if j >= 0 && (j >= len(iso.Backward.Mols) || iso.Backward.Mols[j] != i) {
			return false
		}
	}
	for j, i := range iso.Backward.Mols {
		if i >= 0 && (i >= len(iso.Forward.Mols) || iso.Forward.Mols[i] != j) {
			return false
		}
	}
	for i, j := range iso.Forward.Bindings {
		if j >= 0 && (j >= len(iso.Backward.Bindings) || iso.Backward.Bindings[j] != i) {
			return false
		}
	}
	for j, i := range iso.Backward.Bindings {
		if i >= 0 && (i >= len(iso.Forward.Bindings) || iso.Forward.Bindings[i] != j) {
			return false
		}
	}
	return true
}
