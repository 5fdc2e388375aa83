package network

import (
	"strconv"
	"strings"

	"github.com/dd0wney/plexnet/pkg/logging"
	"github.com/dd0wney/plexnet/pkg/modelerr"
	"github.com/dd0wney/plexnet/pkg/mol"
	"github.com/dd0wney/plexnet/pkg/plex"
	"github.com/dd0wney/plexnet/pkg/recognizer"
)

// Family is the set of species sharing one complex structure.
type Family struct {
	ID       int
	Paradigm plex.Plex

	autos     []plex.Iso
	allo      []alloSetting
	byState   map[string]*Species
	members   []*Species
	conns     []connection
	connected bool
}

// Members returns the family's species in creation order.
func (f *Family) Members() []*Species {
	return append([]*Species(nil), f.members...)
}

// Symmetric reports whether the paradigm has automorphisms besides the
// identity.
func (f *Family) Symmetric() bool {
	return len(f.autos) > 1
}

// Species is a family plus a state for every mol instance of its paradigm.
type Species struct {
	ID         int
	Family     *Family
	States     []mol.State
	Tag        string
	Names      []string
	Weight     float64
	Population int

	notified bool
}

// Notified reports whether the species has been expanded.
func (s *Species) Notified() bool {
	return s.notified
}

// Name returns the first user-given name, or the tag.
func (s *Species) Name() string {
	if len(s.Names) > 0 {
		return s.Names[0]
	}
	return s.Tag
}

// speciesFor recognizes p and returns the species of its family with the
// given states, listed in p's mol order.
func (n *Network) speciesFor(p plex.Plex, states []mol.State) (*Species, error) {
	rec, err := n.recognizer.Recognize(p)
	if err != nil {
		return nil, err
	}
	fam, err := n.familyFor(rec)
	if err != nil {
		return nil, err
	}

	ordered := make([]mol.State, len(states))
	for k, i := range rec.Iso.Backward.Mols {
		ordered[k] = states[i]
	}
	return n.member(fam, ordered)
}

func (n *Network) familyFor(rec recognizer.Recognition) (*Family, error) {
	if rec.Class.ID < len(n.families) {
		return n.families[rec.Class.ID], nil
	}

	autos, err := plex.Automorphisms(rec.Class.Paradigm)
	if err != nil {
		return nil, err
	}
	allo, err := n.familyAllostery(rec.Class.Paradigm)
	if err != nil {
		return nil, err
	}
	fam := &Family{
		ID:       rec.Class.ID,
		Paradigm: rec.Class.Paradigm,
		autos:    autos,
		allo:     allo,
		byState:  make(map[string]*Species),
	}
	n.families = append(n.families, fam)
	n.log.Debug("family created",
		logging.Family(fam.ID),
		logging.Int("mols", len(fam.Paradigm.Mols)),
		logging.Int("automorphisms", len(autos)))
	return fam, nil
}

// member returns the species of fam with the given paradigm-order states,
// creating it if needed. Shapes are recomputed first, so states copied from
// another complex lose the shapes that complex imposed. States related by a
// paradigm automorphism describe the same species; the one with the smallest
// key is kept.
func (n *Network) member(fam *Family, states []mol.State) (*Species, error) {
	states, key := canonicalStates(fam, n.shaped(fam, states))
	if sp, ok := fam.byState[key]; ok {
		return sp, nil
	}

	if limit := n.cfg.Generation.MaxSpecies; limit > 0 && len(n.species) >= limit {
		return nil, modelerr.New("network.member").
			Context("limit %d", limit).
			Cause(modelerr.ErrSpeciesLimit).Err()
	}

	sp := &Species{
		ID:     len(n.species),
		Family: fam,
		States: states,
	}
	for i, id := range fam.Paradigm.Mols {
		sp.Weight += n.mols.Get(id).StateWeight(states[i])
	}
	sp.Tag = n.tag(fam.Paradigm, states)

	fam.byState[key] = sp
	fam.members = append(fam.members, sp)
	n.species = append(n.species, sp)
	n.byName[sp.Tag] = sp
	n.deltaSpecies = append(n.deltaSpecies, sp)

	if n.metrics != nil {
		n.metrics.UpdateNetworkSize(len(n.families), len(n.species))
	}
	n.log.Debug("species created", logging.Family(fam.ID), logging.Species(sp.Tag))
	return sp, nil
}

func stateKey(states []mol.State) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = s.Key()
	}
	return strings.Join(parts, ";")
}

func canonicalStates(fam *Family, states []mol.State) ([]mol.State, string) {
	best, bestKey := states, stateKey(states)
	for _, a := range fam.autos {
		permuted := make([]mol.State, len(states))
		for i, j := range a.Forward.Mols {
			permuted[j] = states[i]
		}
		if key := stateKey(permuted); key < bestKey {
			best, bestKey = permuted, key
		}
	}
	return best, bestKey
}

// tag renders a species as text, e.g. "Ligand(L1!1,P~p).Receptor(R1!1)".
// Mols appear in the order a walk from one of them reaches them, following
// bound sites in site order. The smallest rendering over every starting mol
// is the tag, so it does not depend on how the paradigm happens to be
// ordered.
func (n *Network) tag(p plex.Plex, states []mol.State) string {
	partner := make(map[plex.SiteSpec]plex.SiteSpec, 2*len(p.Bindings))
	for _, b := range p.Bindings {
		partner[b.Left] = b.Right
		partner[b.Right] = b.Left
	}

	var best string
	for start := range p.Mols {
		s := n.render(p, states, partner, n.walk(p, partner, start))
		if start == 0 || s < best {
			best = s
		}
	}
	return best
}

// walk lists the mols of p breadth first from start. Each site has at most
// one partner, so the order is fixed once start is.
func (n *Network) walk(p plex.Plex, partner map[plex.SiteSpec]plex.SiteSpec, start int) []int {
	order := make([]int, 1, len(p.Mols))
	order[0] = start
	seen := make([]bool, len(p.Mols))
	seen[start] = true
	for k := 0; k < len(order); k++ {
		i := order[k]
		for s := range n.mols.Get(p.Mols[i]).Sites {
			other, ok := partner[plex.SiteSpec{Mol: i, Site: s}]
			if ok && !seen[other.Mol] {
				seen[other.Mol] = true
				order = append(order, other.Mol)
			}
		}
	}
	return order
}

// render writes the mols in order. Bond labels count up in order of first
// appearance.
func (n *Network) render(p plex.Plex, states []mol.State, partner map[plex.SiteSpec]plex.SiteSpec, order []int) string {
	bonds := make(map[plex.SiteSpec]int, len(partner))
	next := 1

	var sb strings.Builder
	for k, i := range order {
		if k > 0 {
			sb.WriteByte('.')
		}
		m := n.mols.Get(p.Mols[i])
		sb.WriteString(m.Name)
		sb.WriteByte('(')
		first := true
		sep := func() {
			if !first {
				sb.WriteByte(',')
			}
			first = false
		}
		for s, site := range m.Sites {
			sep()
			sb.WriteString(site.Name)
			here := plex.SiteSpec{Mol: i, Site: s}
			other, bound := partner[here]
			if !bound {
				continue
			}
			label, ok := bonds[here]
			if !ok {
				label = next
				next++
				bonds[other] = label
			}
			sb.WriteByte('!')
			sb.WriteString(strconv.Itoa(label))
		}
		for ms, mod := range m.ModSites {
			sep()
			sb.WriteString(mod.Name)
			sb.WriteByte('~')
			sb.WriteString(m.ModValueName(ms, states[i]))
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
