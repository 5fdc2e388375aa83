package network

import (
	"github.com/dd0wney/plexnet/pkg/extrap"
	"github.com/dd0wney/plexnet/pkg/mol"
	"github.com/dd0wney/plexnet/pkg/plex"
)

const (
	leftSide  = 0
	rightSide = 1
)

// dimerize pairs a new free-site context with every recorded context on the
// other side of the rule. When both sides share one feature the new context
// is already recorded and so also meets itself, which stands for two copies
// of the same species binding.
func (n *Network) dimerize(g *generator, side int, ctx Context, depth int) error {
	if g.left == g.right {
		for _, other := range g.left.contexts {
			if err := n.dimerizePair(g, ctx, other, depth); err != nil {
				return err
			}
		}
		return nil
	}

	if side == leftSide {
		for _, other := range g.right.contexts {
			if err := n.dimerizePair(g, ctx, other, depth); err != nil {
				return err
			}
		}
		return nil
	}
	for _, other := range g.left.contexts {
		if err := n.dimerizePair(g, other, ctx, depth); err != nil {
			return err
		}
	}
	return nil
}

func (n *Network) dimerizePair(g *generator, l, r Context, depth int) error {
	rateFn := func() (float64, error) {
		return g.rates.Rate(n.siteOf(l), n.siteOf(r))
	}
	rate, err := rateFn()
	if err != nil {
		return err
	}

	lp, rp := l.Species.Family.Paradigm, r.Species.Family.Paradigm
	joined, offset := plex.Join(lp, rp)
	joined.Bindings = append(joined.Bindings, plex.Binding{
		Left:  plex.SiteSpec{Mol: l.Pos.Mol, Site: l.Pos.Site},
		Right: plex.SiteSpec{Mol: r.Pos.Mol + offset, Site: r.Pos.Site},
	})
	states := make([]mol.State, 0, len(joined.Mols))
	states = append(states, l.Species.States...)
	states = append(states, r.Species.States...)

	product, err := n.speciesFor(joined, states)
	if err != nil {
		return err
	}
	n.record(g, terms(l.Species, r.Species), terms(product), rate, rateFn, depth)
	return nil
}

// siteOf returns the shape and weight a binary rate lookup needs.
func (n *Network) siteOf(c Context) extrap.Site {
	m := n.mols.Get(c.molID())
	return extrap.Site{
		Shape:  m.ShapeKey(c.Pos.Site, c.Species.States[c.Pos.Mol]),
		Weight: c.Species.Weight,
	}
}

// decompose breaks the binding at ctx, giving one product when the complex
// stays connected and two otherwise.
func (n *Network) decompose(g *generator, ctx Context, depth int) error {
	sp := ctx.Species
	p := sp.Family.Paradigm
	b := p.Bindings[ctx.Pos.Binding]

	rateFn := func() (float64, error) {
		return g.rates.Rate(
			n.siteOf(Context{Species: sp, Pos: Position{Mol: b.Left.Mol, Site: b.Left.Site}}),
			n.siteOf(Context{Species: sp, Pos: Position{Mol: b.Right.Mol, Site: b.Right.Site}}))
	}
	rate, err := rateFn()
	if err != nil {
		return err
	}

	rest := p.WithoutBinding(ctx.Pos.Binding)
	left, leftMap := plex.Component(rest, b.Left.Mol)
	first, err := n.speciesFor(left, pick(sp.States, leftMap, len(left.Mols)))
	if err != nil {
		return err
	}
	if leftMap[b.Right.Mol] >= 0 {
		n.record(g, terms(sp), terms(first), rate, rateFn, depth)
		return nil
	}

	right, rightMap := plex.Component(rest, b.Right.Mol)
	second, err := n.speciesFor(right, pick(sp.States, rightMap, len(right.Mols)))
	if err != nil {
		return err
	}
	n.record(g, terms(sp), terms(first, second), rate, rateFn, depth)
	return nil
}

// pick gathers the states of the mols a component kept.
func pick(states []mol.State, oldToNew []int, size int) []mol.State {
	out := make([]mol.State, size)
	for old, i := range oldToNew {
		if i >= 0 {
			out[i] = states[old]
		}
	}
	return out
}

// modify applies a UniMol or Omni rule at ctx. A context failing a query, or
// one the exchanges leave unchanged, produces nothing.
func (n *Network) modify(g *generator, ctx Context, depth int) error {
	sp := ctx.Species
	target := func(s modSetting) int {
		if g.kind == Omni {
			return ctx.Pos.Embedding.Forward.Mols[s.mol]
		}
		return ctx.Pos.Mol
	}

	for _, q := range g.queries {
		if sp.States[target(q)].Mods[q.mod] != q.value {
			return nil
		}
	}

	states := make([]mol.State, len(sp.States))
	copy(states, sp.States)
	touched := make(map[int]bool)
	for _, ex := range g.exchanges {
		i := target(ex)
		if !touched[i] {
			states[i] = states[i].Clone()
			touched[i] = true
		}
		states[i].Mods[ex.mod] = ex.value
	}
	changed := false
	for i := range touched {
		states[i] = n.mols.Get(sp.Family.Paradigm.Mols[i]).Reshape(states[i])
		if states[i].Key() != sp.States[i].Key() {
			changed = true
		}
	}
	if !changed {
		return nil
	}

	rateFn := func() (float64, error) {
		var auxWeight float64
		if g.auxReactant != nil {
			auxWeight = g.auxReactant.Weight
		}
		return g.unary.Rate(sp.Weight, auxWeight), nil
	}
	rate, err := rateFn()
	if err != nil {
		return err
	}

	product, err := n.member(sp.Family, states)
	if err != nil {
		return err
	}
	if product == sp {
		return nil
	}
	n.record(g, terms(sp, g.auxReactant), terms(product, g.auxProduct), rate, rateFn, depth)
	return nil
}
