// Package plex models complexes of mol instances joined by bindings, and finds
// structure-preserving maps between them.
package plex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dd0wney/plexnet/pkg/modelerr"
	"github.com/dd0wney/plexnet/pkg/mol"
)

// SiteSpec addresses one binding site of one mol instance within a plex.
type SiteSpec struct {
	Mol  int
	Site int
}

func (s SiteSpec) String() string {
	return strconv.Itoa(s.Mol) + "." + strconv.Itoa(s.Site)
}

// Binding joins two sites. The pair is unordered; Left and Right only record
// the order it was written in.
type Binding struct {
	Left  SiteSpec
	Right SiteSpec
}

// Flipped returns the binding with its ends swapped.
func (b Binding) Flipped() Binding {
	return Binding{Left: b.Right, Right: b.Left}
}

// Plex is an ordered list of mol instances plus the bindings among their sites.
type Plex struct {
	Mols     []mol.ID
	Bindings []Binding
}

// Single returns the plex holding one unbound instance of m.
func Single(m mol.ID) Plex {
	return Plex{Mols: []mol.ID{m}}
}

// Clone returns a deep copy.
func (p Plex) Clone() Plex {
	return Plex{
		Mols:     append([]mol.ID(nil), p.Mols...),
		Bindings: append([]Binding(nil), p.Bindings...),
	}
}

// BoundSites returns the set of occupied sites.
func (p Plex) BoundSites() map[SiteSpec]int {
	bound := make(map[SiteSpec]int, 2*len(p.Bindings))
	for i, b := range p.Bindings {
		bound[b.Left] = i
		bound[b.Right] = i
	}
	return bound
}

// Encode returns a string identifying this exact plex value, including the
// order of its mols and bindings. Equal encodings mean equal plexes.
func (p Plex) Encode() string {
	var b strings.Builder
	for i, m := range p.Mols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(m)))
	}
	b.WriteByte(';')
	for i, bnd := range p.Bindings {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(bnd.Left.String())
		b.WriteByte('-')
		b.WriteString(bnd.Right.String())
	}
	return b.String()
}

// Check verifies the structural invariants: mol references are in range, each
// site is bound at most once, and the plex is connected. A plex without
// bindings must hold exactly one mol.
func Check(p Plex) error {
	const op = "plex.Check"

	if len(p.Mols) == 0 {
		return modelerr.Malformed(op, "plex has no mols")
	}
	if len(p.Bindings) == 0 {
		if len(p.Mols) != 1 {
			return modelerr.Malformed(op, fmt.Sprintf("%d mols without bindings: not connected", len(p.Mols)))
		}
		return nil
	}

	used := make(map[SiteSpec]bool, 2*len(p.Bindings))
	for i, b := range p.Bindings {
		for _, s := range [2]SiteSpec{b.Left, b.Right} {
			if s.Mol < 0 || s.Mol >= len(p.Mols) || s.Site < 0 {
				return modelerr.Malformed(op, fmt.Sprintf("binding %d references site %s out of range", i, s))
			}
			if used[s] {
				return modelerr.Malformed(op, fmt.Sprintf("site %s bound twice", s))
			}
			used[s] = true
		}
	}

	if reached := reachable(p, 0); len(reached) != len(p.Mols) {
		return modelerr.Malformed(op, fmt.Sprintf("only %d of %d mols reachable: not connected", len(reached), len(p.Mols)))
	}
	return nil
}

// reachable returns the set of mols connected to start.
func reachable(p Plex, start int) map[int]bool {
	adj := make([][]int, len(p.Mols))
	for _, b := range p.Bindings {
		adj[b.Left.Mol] = append(adj[b.Left.Mol], b.Right.Mol)
		adj[b.Right.Mol] = append(adj[b.Right.Mol], b.Left.Mol)
	}
	seen := map[int]bool{start: true}
	queue := []int{start}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		for _, n := range adj[m] {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return seen
}

// Component extracts the connected component containing mol start. Mols keep
// their relative order. The returned slice maps each old mol index to its new
// index, or -1 when the mol lies outside the component.
func Component(p Plex, start int) (Plex, []int) {
	seen := reachable(p, start)

	oldToNew := make([]int, len(p.Mols))
	var out Plex
	for i, m := range p.Mols {
		if !seen[i] {
			oldToNew[i] = -1
			continue
		}
		oldToNew[i] = len(out.Mols)
		out.Mols = append(out.Mols, m)
	}
	for _, b := range p.Bindings {
		if !seen[b.Left.Mol] {
			continue
		}
		out.Bindings = append(out.Bindings, Binding{
			Left:  SiteSpec{Mol: oldToNew[b.Left.Mol], Site: b.Left.Site},
			Right: SiteSpec{Mol: oldToNew[b.Right.Mol], Site: b.Right.Site},
		})
	}
	return out, oldToNew
}

// WithoutBinding returns a copy of p with binding i removed. The result may be
// disconnected.
func (p Plex) WithoutBinding(i int) Plex {
	out := Plex{Mols: append([]mol.ID(nil), p.Mols...)}
	out.Bindings = make([]Binding, 0, len(p.Bindings)-1)
	out.Bindings = append(out.Bindings, p.Bindings[:i]...)
	out.Bindings = append(out.Bindings, p.Bindings[i+1:]...)
	return out
}

// Join places b after a. Mol indices of b are shifted by the returned offset.
// No binding between the two halves is added.
func Join(a, b Plex) (Plex, int) {
	offset := len(a.Mols)
	out := Plex{
		Mols:     make([]mol.ID, 0, len(a.Mols)+len(b.Mols)),
		Bindings: make([]Binding, 0, len(a.Bindings)+len(b.Bindings)+1),
	}
	out.Mols = append(out.Mols, a.Mols...)
	out.Mols = append(out.Mols, b.Mols...)
	out.Bindings = append(out.Bindings, a.Bindings...)
	for _, bnd := range b.Bindings {
		out.Bindings = append(out.Bindings, Binding{
			Left:  SiteSpec{Mol: bnd.Left.Mol + offset, Site: bnd.Left.Site},
			Right: SiteSpec{Mol: bnd.Right.Mol + offset, Site: bnd.Right.Site},
		})
	}
	return out, offset
}
