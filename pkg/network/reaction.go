package network

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/dd0wney/plexnet/pkg/extrap"
	"github.com/dd0wney/plexnet/pkg/logging"
	"github.com/dd0wney/plexnet/pkg/mol"
)

// GeneratorKind tells which kind of rule produced a reaction.
type GeneratorKind int

const (
	Declared GeneratorKind = iota
	Dimerize
	Decompose
	UniMol
	Omni
)

func (k GeneratorKind) String() string {
	switch k {
	case Declared:
		return "declared"
	case Dimerize:
		return "dimerize"
	case Decompose:
		return "decompose"
	case UniMol:
		return "unimol"
	case Omni:
		return "omni"
	}
	return "unknown"
}

// Term is a species with its stoichiometric multiplicity.
type Term struct {
	Species *Species
	Mult    int
}

// Reaction converts reactants into products at Rate.
//
// Degeneracy counts the symmetric positions a generator found the same
// reaction at; Rate is the sum of the per-position rates.
type Reaction struct {
	ID         int
	Reactants  []Term
	Products   []Term
	Rate       float64
	Degeneracy int
	Rule       string
	Kind       GeneratorKind

	positions []rateFunc
}

type rateFunc func() (float64, error)

func (r *Reaction) consumesAll(want []*Species) bool {
	for _, sp := range want {
		if !slices.ContainsFunc(r.Reactants, func(t Term) bool { return t.Species == sp }) {
			return false
		}
	}
	return true
}

// String renders the reaction as "A + 2 B -> C".
func (r *Reaction) String() string {
	side := func(terms []Term) string {
		if len(terms) == 0 {
			return "0"
		}
		parts := make([]string, len(terms))
		for i, t := range terms {
			if t.Mult == 1 {
				parts[i] = t.Species.Name()
			} else {
				parts[i] = strconv.Itoa(t.Mult) + " " + t.Species.Name()
			}
		}
		return strings.Join(parts, " + ")
	}
	return side(r.Reactants) + " -> " + side(r.Products)
}

// refresh recomputes Rate from the per-position rates.
func (r *Reaction) refresh() error {
	if r.positions == nil {
		return nil
	}
	var total float64
	for _, fn := range r.positions {
		v, err := fn()
		if err != nil {
			return err
		}
		total += v
	}
	r.Rate = total
	return nil
}

// terms collapses a species list into terms ordered by species ID.
func terms(species ...*Species) []Term {
	var out []Term
	for _, sp := range species {
		if sp == nil {
			continue
		}
		if i := slices.IndexFunc(out, func(t Term) bool { return t.Species == sp }); i >= 0 {
			out[i].Mult++
			continue
		}
		out = append(out, Term{Species: sp, Mult: 1})
	}
	slices.SortFunc(out, func(a, b Term) int { return cmp.Compare(a.Species.ID, b.Species.ID) })
	return out
}

func reactionKey(reactants, products []Term) string {
	var b strings.Builder
	write := func(ts []Term) {
		for _, t := range ts {
			b.WriteString(strconv.Itoa(t.Species.ID))
			b.WriteByte('*')
			b.WriteString(strconv.Itoa(t.Mult))
			b.WriteByte(' ')
		}
	}
	write(reactants)
	b.WriteString("->")
	write(products)
	return b.String()
}

// generator is a compiled reaction rule.
type generator struct {
	kind GeneratorKind
	name string

	seen      map[string]*Reaction
	reactions []*Reaction

	// Dimerize and Decompose.
	left, right *feature
	rates       *extrap.Rates
	leftSite    siteRef
	rightSite   siteRef

	// UniMol and Omni.
	feat        *feature
	unary       *extrap.Unary
	queries     []modSetting
	exchanges   []modSetting
	auxReactant *Species
	auxProduct  *Species
}

// siteRef is a resolved site of a mol type.
type siteRef struct {
	mol  mol.ID
	site int
}

// modSetting is a resolved modification value. mol is the pattern instance
// for Omni rules and unused for UniMol.
type modSetting struct {
	mol   int
	mod   int
	value int
}

// record adds a reaction, or folds it into an identical one the same rule
// already produced, and queues its products for expansion at depth-1.
func (n *Network) record(g *generator, reactants, products []Term, rate float64, fn rateFunc, depth int) {
	defer func() {
		for _, t := range products {
			n.enqueue(t.Species, depth-1)
		}
	}()

	key := reactionKey(reactants, products)
	if n.cfg.Generation.DedupeReactions {
		if r, ok := g.seen[key]; ok {
			r.Degeneracy++
			r.Rate += rate
			r.positions = append(r.positions, fn)
			return
		}
	}

	r := &Reaction{
		ID:         len(n.reactions),
		Reactants:  reactants,
		Products:   products,
		Rate:       rate,
		Degeneracy: 1,
		Rule:       g.name,
		Kind:       g.kind,
		positions:  []rateFunc{fn},
	}
	if _, ok := g.seen[key]; !ok {
		g.seen[key] = r
	}
	g.reactions = append(g.reactions, r)
	n.addReaction(r)
}

func (n *Network) addReaction(r *Reaction) {
	n.reactions = append(n.reactions, r)
	n.deltaReactions = append(n.deltaReactions, r)
	for _, t := range r.Reactants {
		n.byReactant[t.Species] = append(n.byReactant[t.Species], r)
	}
	if n.metrics != nil {
		n.metrics.RecordReaction(r.Kind.String())
	}
	if logging.Enabled(n.log, logging.DebugLevel) {
		n.log.Debug("reaction recorded",
			logging.Generator(r.Kind.String()),
			logging.Rule(r.Rule),
			logging.String("reaction", r.String()),
			logging.Float64("rate", r.Rate))
	}
}

// refreshRule recomputes the rates of every reaction a rule produced.
func (n *Network) refreshRule(g *generator) error {
	for _, r := range g.reactions {
		if err := r.refresh(); err != nil {
			return err
		}
	}
	return nil
}
