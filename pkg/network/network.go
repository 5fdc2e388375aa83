// Package network grows a reaction network from mol definitions and reaction
// rules.
//
// A Network owns every family, species, feature and reaction it discovers.
// Species enter generation through IncrementNetwork or UpdatePopulation; each
// species is expanded at most once. Expansion pushes the species onto a work
// queue together with a depth budget. Processing a queued species offers it to
// the features of its family, whose subscribed generators build reactions
// against every compatible context seen so far. Product species are queued in
// turn with one less unit of depth.
//
// A Network is not safe for concurrent use.
package network

import (
	"iter"
	"os"
	"time"

	"github.com/dd0wney/plexnet/pkg/config"
	"github.com/dd0wney/plexnet/pkg/logging"
	"github.com/dd0wney/plexnet/pkg/metrics"
	"github.com/dd0wney/plexnet/pkg/modelerr"
	"github.com/dd0wney/plexnet/pkg/mol"
	"github.com/dd0wney/plexnet/pkg/recognizer"
)

// Network is a generation context.
type Network struct {
	cfg        *config.Config
	log        logging.Logger
	metrics    *metrics.Registry
	mols       *mol.Registry
	recognizer *recognizer.Recognizer

	families []*Family
	species  []*Species
	byName   map[string]*Species

	features   map[featureKey]*feature
	generators []*generator
	rules      map[string]*generator
	allostery  []*allostery

	reactions  []*Reaction
	byReactant map[*Species][]*Reaction

	deltaSpecies   []*Species
	deltaReactions []*Reaction

	queue  []task
	head   int
	frozen bool
}

// Option configures a Network.
type Option func(*Network)

// WithLogger sets the logger. The default writes JSON to stderr at the
// configured level.
func WithLogger(l logging.Logger) Option {
	return func(n *Network) { n.log = l }
}

// WithMetrics reports generation activity to r. Without it a registry is
// built from the configuration when metrics are enabled there.
func WithMetrics(r *metrics.Registry) Option {
	return func(n *Network) { n.metrics = r }
}

// New creates an empty network. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) *Network {
	if cfg == nil {
		cfg = config.Default()
	}
	n := &Network{
		cfg:        cfg,
		mols:       mol.NewRegistry(),
		byName:     make(map[string]*Species),
		features:   make(map[featureKey]*feature),
		rules:      make(map[string]*generator),
		byReactant: make(map[*Species][]*Reaction),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.log == nil {
		n.log = logging.NewJSONLogger(os.Stderr, cfg.LogLevel())
	}
	if n.metrics == nil && cfg.Metrics.Enabled {
		n.metrics = metrics.FromConfig(cfg.Metrics)
	}
	n.log = n.log.With(logging.Component("network"))

	ropts := []recognizer.Option{recognizer.WithCache(cfg.Recognizer.Cache)}
	if n.metrics != nil {
		ropts = append(ropts, recognizer.WithObserver(n.metrics))
	}
	n.recognizer = recognizer.New(ropts...)
	return n
}

// IncrementNetwork expands the named species with the configured depth budget.
func (n *Network) IncrementNetwork(name string) error {
	return n.IncrementNetworkDepth(name, n.cfg.Generation.MaxDepth)
}

// IncrementNetworkDepth expands the named species with the given depth budget.
// A species already expanded is left alone. Products at depth zero are
// recorded but not expanded themselves.
func (n *Network) IncrementNetworkDepth(name string, depth int) error {
	sp, err := n.MustSpecies(name)
	if err != nil {
		return err
	}
	n.frozen = true

	op := logging.StartTimer(n.log, "network incremented",
		logging.Species(sp.Tag), logging.Depth(depth))
	start := time.Now()
	before, beforeRx := len(n.species), len(n.reactions)

	n.enqueue(sp, depth)
	err = n.drain()
	if n.metrics != nil {
		n.metrics.ObserveIncrement(time.Since(start))
		n.metrics.UpdateSystemMetrics()
	}
	if err != nil {
		op.EndError(err)
		return err
	}
	op.End(
		logging.Int("new_species", len(n.species)-before),
		logging.Int("new_reactions", len(n.reactions)-beforeRx))
	return nil
}

// UpdatePopulation adds delta to the population of a species. The first
// update of a species expands it with the configured depth budget.
func (n *Network) UpdatePopulation(name string, delta int) error {
	sp, err := n.MustSpecies(name)
	if err != nil {
		return err
	}
	if sp.Population+delta < 0 {
		return modelerr.New("UpdatePopulation").Species(name).
			Context("population %d, delta %d", sp.Population, delta).
			Cause(modelerr.ErrNegativePopulation).Err()
	}
	sp.Population += delta
	if sp.notified {
		return nil
	}
	n.frozen = true
	n.enqueue(sp, n.cfg.Generation.MaxDepth)
	return n.drain()
}

// Species looks a species up by user name or tag.
func (n *Network) Species(nameOrTag string) (*Species, bool) {
	sp, ok := n.byName[nameOrTag]
	return sp, ok
}

// MustSpecies is Species with a modelerr.ErrUnknownSpecies error on a miss.
func (n *Network) MustSpecies(nameOrTag string) (*Species, error) {
	sp, ok := n.byName[nameOrTag]
	if !ok {
		return nil, modelerr.New("network.Species").Species(nameOrTag).
			Cause(modelerr.ErrUnknownSpecies).Err()
	}
	return sp, nil
}

// Mol looks a mol type up by name.
func (n *Network) Mol(name string) (*mol.Mol, bool) {
	return n.mols.Lookup(name)
}

// MustMol is Mol with a modelerr.ErrUnknownMol error on a miss.
func (n *Network) MustMol(name string) (*mol.Mol, error) {
	m, ok := n.mols.Lookup(name)
	if !ok {
		return nil, modelerr.New("network.Mol").Mol(name).
			Cause(modelerr.ErrUnknownMol).Err()
	}
	return m, nil
}

// Config returns the configuration the network was built with.
func (n *Network) Config() *config.Config {
	return n.cfg
}

// Metrics returns the registry generation reports to, or nil.
func (n *Network) Metrics() *metrics.Registry {
	return n.metrics
}

// AllSpecies yields every species in creation order.
func (n *Network) AllSpecies() iter.Seq[*Species] {
	return func(yield func(*Species) bool) {
		for _, sp := range n.species {
			if !yield(sp) {
				return
			}
		}
	}
}

// Reactions yields every reaction in creation order.
func (n *Network) Reactions() iter.Seq[*Reaction] {
	return func(yield func(*Reaction) bool) {
		for _, r := range n.reactions {
			if !yield(r) {
				return
			}
		}
	}
}

// Families returns every family in creation order.
func (n *Network) Families() []*Family {
	return append([]*Family(nil), n.families...)
}

// DeltaSpecies returns the species created since the last ResetDelta.
func (n *Network) DeltaSpecies() []*Species {
	return append([]*Species(nil), n.deltaSpecies...)
}

// DeltaReactions returns the reactions created since the last ResetDelta.
func (n *Network) DeltaReactions() []*Reaction {
	return append([]*Reaction(nil), n.deltaReactions...)
}

// ResetDelta clears the delta lists.
func (n *Network) ResetDelta() {
	n.deltaSpecies = nil
	n.deltaReactions = nil
}

// ReactionsWithSubstrates returns the reactions consuming every named species.
func (n *Network) ReactionsWithSubstrates(names ...string) ([]*Reaction, error) {
	if len(names) == 0 {
		return nil, nil
	}
	want := make([]*Species, len(names))
	for i, name := range names {
		sp, err := n.MustSpecies(name)
		if err != nil {
			return nil, err
		}
		want[i] = sp
	}

	var out []*Reaction
	for _, r := range n.byReactant[want[0]] {
		if r.consumesAll(want) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Stats summarizes the network.
type Stats struct {
	Mols       int
	Families   int
	Species    int
	Reactions  int
	Features   int
	Rules      int
	Recognizer recognizer.Stats
}

// Stats returns the current size of the network.
func (n *Network) Stats() Stats {
	return Stats{
		Mols:       n.mols.Len(),
		Families:   len(n.families),
		Species:    len(n.species),
		Reactions:  len(n.reactions),
		Features:   len(n.features),
		Rules:      len(n.rules),
		Recognizer: n.recognizer.Stats(),
	}
}
