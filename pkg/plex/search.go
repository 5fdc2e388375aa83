package plex

import (
	"fmt"

	"github.com/dd0wney/plexnet/pkg/modelerr"
)

// Search looks for structure-preserving maps from Left into Right.
//
// Each match is handed to OnMatch. Returning true accepts the match and stops
// the search; returning false asks for the next one. A nil OnMatch accepts
// the first match. Neither plex is modified, so a Search may run concurrently
// with others over the same plexes.
type Search struct {
	Left    Plex
	Right   Plex
	OnMatch func(Iso) bool
}

// FindIso searches for bijections. It reports whether a match was accepted.
func (s Search) FindIso() (bool, error) {
	if len(s.Left.Mols) != len(s.Right.Mols) || len(s.Left.Bindings) != len(s.Right.Bindings) {
		return false, nil
	}
	return s.run(true)
}

// FindInjection searches for maps embedding Left into Right. Extra mols and
// bindings in Right are allowed.
func (s Search) FindInjection() (bool, error) {
	if len(s.Left.Mols) > len(s.Right.Mols) || len(s.Left.Bindings) > len(s.Right.Bindings) {
		return false, nil
	}
	return s.run(false)
}

func (s Search) run(bijective bool) (bool, error) {
	m := &matcher{
		left:      s.Left,
		right:     s.Right,
		onMatch:   s.OnMatch,
		bijective: bijective,
		fwd:       newMap(len(s.Left.Mols), len(s.Left.Bindings)),
		bwd:       newMap(len(s.Right.Mols), len(s.Right.Bindings)),
		flip:      make([]bool, len(s.Left.Bindings)),
	}
	if m.onMatch == nil {
		m.onMatch = func(Iso) bool { return true }
	}

	if len(s.Left.Bindings) == 0 {
		if len(s.Left.Mols) != 1 {
			return false, modelerr.Malformed("plex.Search", fmt.Sprintf("%d mols without bindings: not connected", len(s.Left.Mols)))
		}
		return m.mapLoneMol(), nil
	}
	return m.mapBinding(0), nil
}

type matcher struct {
	left, right Plex
	onMatch     func(Iso) bool
	bijective   bool

	fwd, bwd Map
	flip     []bool
}

// mapLoneMol matches a single unbound left mol to each same-type right mol.
func (m *matcher) mapLoneMol() bool {
	for j, t := range m.right.Mols {
		if t != m.left.Mols[0] {
			continue
		}
		m.fwd.Mols[0], m.bwd.Mols[j] = j, 0
		if m.emit() {
			return true
		}
		m.fwd.Mols[0], m.bwd.Mols[j] = -1, -1
	}
	return false
}

// mapBinding extends the partial map with an image for left binding i,
// trying right bindings in index order, unflipped before flipped.
func (m *matcher) mapBinding(i int) bool {
	if i == len(m.left.Bindings) {
		return m.emit()
	}
	lb := m.left.Bindings[i]

	for j, rb := range m.right.Bindings {
		if m.bwd.Bindings[j] >= 0 {
			continue
		}
		for _, flipped := range [2]bool{false, true} {
			target := rb
			if flipped {
				target = rb.Flipped()
			}

			first, ok := m.mapSite(lb.Left, target.Left)
			if !ok {
				continue
			}
			second, ok := m.mapSite(lb.Right, target.Right)
			if !ok {
				m.unmapMol(first)
				continue
			}

			m.fwd.Bindings[i], m.bwd.Bindings[j] = j, i
			m.flip[i] = flipped
			if m.mapBinding(i + 1) {
				return true
			}
			m.fwd.Bindings[i], m.bwd.Bindings[j] = -1, -1
			m.flip[i] = false
			m.unmapMol(second)
			m.unmapMol(first)
		}
	}
	return false
}

// mapSite checks that left site l may land on right site r and records the
// mol pairing if it is new. It returns the left mol it newly mapped, or -1.
func (m *matcher) mapSite(l, r SiteSpec) (int, bool) {
	if l.Site != r.Site {
		return -1, false
	}
	switch current := m.fwd.Mols[l.Mol]; {
	case current == r.Mol:
		return -1, true
	case current >= 0:
		return -1, false
	}
	if m.bwd.Mols[r.Mol] >= 0 || m.left.Mols[l.Mol] != m.right.Mols[r.Mol] {
		return -1, false
	}
	m.fwd.Mols[l.Mol], m.bwd.Mols[r.Mol] = r.Mol, l.Mol
	return l.Mol, true
}

func (m *matcher) unmapMol(l int) {
	if l < 0 {
		return
	}
	m.bwd.Mols[m.fwd.Mols[l]] = -1
	m.fwd.Mols[l] = -1
}

func (m *matcher) emit() bool {
	if m.bijective {
		for _, j := range m.fwd.Mols {
			if j < 0 {
				return false
			}
		}
	}
	flip := make([]bool, len(m.flip))
	copy(flip, m.flip)
	return m.onMatch(Iso{Forward: m.fwd.clone(), Backward: m.bwd.clone(), Flip: flip})
}

// FindIso returns the first isomorphism from l onto r.
func FindIso(l, r Plex) (Iso, bool, error) {
	var found Iso
	ok, err := Search{Left: l, Right: r, OnMatch: func(iso Iso) bool {
		found = iso
		return true
	}}.FindIso()
	return found, ok, err
}

// Injections enumerates every embedding of pattern into target.
func Injections(pattern, target Plex) ([]Iso, error) {
	var out []Iso
	_, err := Search{Left: pattern, Right: target, OnMatch: func(iso Iso) bool {
		out = append(out, iso)
		return false
	}}.FindInjection()
	return out, err
}

// Automorphisms enumerates every isomorphism of p onto itself, the identity
// first.
func Automorphisms(p Plex) ([]Iso, error) {
	var out []Iso
	_, err := Search{Left: p, Right: p, OnMatch: func(iso Iso) bool {
		out = append(out, iso)
		return false
	}}.FindIso()
	return out, err
}
