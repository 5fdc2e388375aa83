package plex

import (
	"math/rand"

	"github.com/dd0wney/plexnet/pkg/mol"
)

func bind(lm, ls, rm, rs int) Binding {
	return Binding{Left: SiteSpec{Mol: lm, Site: ls}, Right: SiteSpec{Mol: rm, Site: rs}}
}

// randomPlex builds a connected plex of up to six mols drawn from three types:
// a random spanning tree, sometimes closed into a ring.
func randomPlex(seed int64) Plex {
	r := rand.New(rand.NewSource(seed))
	n := 1 + r.Intn(6)

	p := Plex{Mols: make([]mol.ID, n)}
	for i := range p.Mols {
		p.Mols[i] = mol.ID(r.Intn(3))
	}
	nextSite := make([]int, n)
	take := func(m int) SiteSpec {
		s := SiteSpec{Mol: m, Site: nextSite[m]}
		nextSite[m]++
		return s
	}
	for k := 1; k < n; k++ {
		parent := r.Intn(k)
		p.Bindings = append(p.Bindings, Binding{Left: take(parent), Right: take(k)})
	}
	if n > 2 && r.Intn(3) == 0 {
		a, b := r.Intn(n), r.Intn(n)
		if a != b {
			p.Bindings = append(p.Bindings, Binding{Left: take(a), Right: take(b)})
		}
	}
	return p
}

// relabel permutes mols and bindings and randomly flips binding ends.
func relabel(p Plex, seed int64) Plex {
	r := rand.New(rand.NewSource(seed))
	perm := r.Perm(len(p.Mols))

	out := Plex{Mols: make([]mol.ID, len(p.Mols))}
	for old, m := range p.Mols {
		out.Mols[perm[old]] = m
	}
	for _, i := range r.Perm(len(p.Bindings)) {
		b := p.Bindings[i]
		nb := Binding{
			Left:  SiteSpec{Mol: perm[b.Left.Mol], Site: b.Left.Site},
			Right: SiteSpec{Mol: perm[b.Right.Mol], Site: b.Right.Site},
		}
		if r.Intn(2) == 0 {
			nb = nb.Flipped()
		}
		out.Bindings = append(out.Bindings, nb)
	}
	return out
}

// preserves checks that iso really maps l's structure onto r.
func preserves(l, r Plex, iso Iso) bool {
	if !iso.Consistent() {
		return false
	}
	for i, j := range iso.Forward.Mols {
		if j < 0 || l.Mols[i] != r.Mols[j] {
			return false
		}
	}
	for i, lb := range l.Bindings {
		j := iso.Forward.Bindings[i]
		if j < 0 {
			return false
		}
		rb := r.Bindings[j]
		if iso.Flip[i] {
			rb = rb.Flipped()
		}
		if iso.MapSite(lb.Left) != rb.Left || iso.MapSite(lb.Right) != rb.Right {
			return false
		}
	}
	return true
}
