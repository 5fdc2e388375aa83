package network

import (
	"fmt"
	"slices"

	"github.com/dd0wney/plexnet/pkg/logging"
	"github.com/dd0wney/plexnet/pkg/modelerr"
	"github.com/dd0wney/plexnet/pkg/mol"
	"github.com/dd0wney/plexnet/pkg/plex"
	"github.com/dd0wney/plexnet/pkg/validation"
)

// allostery is a compiled AllosterySpec. Instance indices refer to pattern.
type allostery struct {
	name       string
	pattern    plex.Plex
	subcomplex bool
	queries    []modSetting
	shapes     []shapeSetting
}

type shapeSetting struct {
	mol   int
	site  int
	shape int
}

// alloSetting is an allostery entry placed in one family's paradigm through
// one embedding of its pattern.
type alloSetting struct {
	queries []modSetting
	shapes  []shapeSetting
}

func (a alloSetting) holds(states []mol.State) bool {
	for _, q := range a.queries {
		if states[q.mol].Mods[q.mod] != q.value {
			return false
		}
	}
	return true
}

// DefineAllostery makes complexes containing spec.Complex show the given site
// shapes. Families are compiled against the allostery known when they are
// created, so it must be defined before any species.
func (n *Network) DefineAllostery(spec AllosterySpec) error {
	const op = "DefineAllostery"
	if err := n.checkOpen(op); err != nil {
		return err
	}
	byName := func(b *modelerr.Builder) *modelerr.Builder { return b.Rule(spec.Name) }
	if err := validation.Struct(&spec); err != nil {
		return invalid(op, byName, err)
	}
	for _, a := range n.allostery {
		if a.name == spec.Name {
			return modelerr.New(op).Rule(spec.Name).Cause(modelerr.ErrDuplicateName).Err()
		}
	}

	pattern, _, err := n.buildComplex(op, spec.Complex)
	if err != nil {
		return err
	}
	if err := plex.Check(pattern); err != nil {
		return invalid(op, byName, err)
	}
	a := &allostery{name: spec.Name, pattern: pattern, subcomplex: spec.Subcomplex}

	for i, inst := range spec.Complex.Mols {
		m := n.mols.Get(pattern.Mols[i])
		for _, modName := range sortedKeys(inst.Mods) {
			q, err := n.modSetting(op, m, i, modName, inst.Mods[modName])
			if err != nil {
				return err
			}
			a.queries = append(a.queries, q)
		}
	}
	for _, sh := range spec.Shapes {
		if sh.Mol >= len(pattern.Mols) {
			return n.unknown(op, "instance %d of %d", sh.Mol, len(pattern.Mols))
		}
		m := n.mols.Get(pattern.Mols[sh.Mol])
		site, ok := m.SiteIndex(sh.Site)
		if !ok {
			return modelerr.New(op).Site(m.Name, sh.Site).Cause(modelerr.ErrUnknownReference).Err()
		}
		shape, ok := m.ShapeIndex(site, sh.Shape)
		if !ok {
			return n.unknown(op, "shape %s of %s.%s", sh.Shape, m.Name, sh.Site)
		}
		a.shapes = append(a.shapes, shapeSetting{mol: sh.Mol, site: site, shape: shape})
	}

	if len(n.families) > 0 {
		return invalid(op, byName, fmt.Errorf("allostery must be defined before any species"))
	}
	n.allostery = append(n.allostery, a)
	n.log.Debug("allostery defined",
		logging.Rule(a.name),
		logging.Int("mols", len(pattern.Mols)),
		logging.Bool("subcomplex", a.subcomplex))
	return nil
}

// familyAllostery places every allostery entry that applies to paradigm p.
func (n *Network) familyAllostery(p plex.Plex) ([]alloSetting, error) {
	var out []alloSetting
	for _, a := range n.allostery {
		if !a.subcomplex && (len(a.pattern.Mols) != len(p.Mols) || len(a.pattern.Bindings) != len(p.Bindings)) {
			continue
		}
		embeddings, err := plex.Injections(a.pattern, p)
		if err != nil {
			return nil, err
		}
		for _, e := range embeddings {
			var s alloSetting
			for _, q := range a.queries {
				q.mol = e.Forward.Mols[q.mol]
				s.queries = append(s.queries, q)
			}
			for _, sh := range a.shapes {
				sh.mol = e.Forward.Mols[sh.mol]
				s.shapes = append(s.shapes, sh)
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// shaped recomputes site shapes for paradigm-order states: first from each
// mol's own modification state, then from the family's allostery.
func (n *Network) shaped(fam *Family, states []mol.State) []mol.State {
	out := slices.Clone(states)
	for i, id := range fam.Paradigm.Mols {
		out[i] = n.mols.Get(id).Reshape(out[i])
	}
	for _, a := range fam.allo {
		if !a.holds(out) {
			continue
		}
		for _, sh := range a.shapes {
			out[sh.mol].Shapes[sh.site] = sh.shape
		}
	}
	return out
}
