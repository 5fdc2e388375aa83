package network

import (
	"fmt"
	"sort"

	"github.com/dd0wney/plexnet/pkg/extrap"
	"github.com/dd0wney/plexnet/pkg/logging"
	"github.com/dd0wney/plexnet/pkg/modelerr"
	"github.com/dd0wney/plexnet/pkg/mol"
	"github.com/dd0wney/plexnet/pkg/plex"
	"github.com/dd0wney/plexnet/pkg/validation"
)

func (n *Network) checkOpen(op string) error {
	if n.frozen {
		return modelerr.New(op).Cause(modelerr.ErrFrozen).Err()
	}
	return nil
}

func invalid(op string, b func(*modelerr.Builder) *modelerr.Builder, err error) error {
	return b(modelerr.New(op)).Context("%v", err).Cause(modelerr.ErrInvalidDefinition).Err()
}

func (n *Network) unknown(op, what string, args ...any) error {
	return modelerr.New(op).Context(what, args...).Cause(modelerr.ErrUnknownReference).Err()
}

// DefineMol registers a mol type.
func (n *Network) DefineMol(spec mol.Spec) (*mol.Mol, error) {
	if err := n.checkOpen("DefineMol"); err != nil {
		return nil, err
	}
	m, err := n.mols.Define(spec)
	if err != nil {
		return nil, err
	}
	n.log.Debug("mol defined",
		logging.String("mol", m.Name),
		logging.Int("sites", len(m.Sites)),
		logging.Int("mod_sites", len(m.ModSites)))
	return m, nil
}

// DefineSpecies creates the species described by spec and names it. The name
// becomes an alias next to the species tag.
func (n *Network) DefineSpecies(spec SpeciesSpec) (*Species, error) {
	const op = "DefineSpecies"
	if err := n.checkOpen(op); err != nil {
		return nil, err
	}
	byName := func(b *modelerr.Builder) *modelerr.Builder { return b.Species(spec.Name) }
	if err := validation.Struct(&spec); err != nil {
		return nil, invalid(op, byName, err)
	}
	if _, taken := n.byName[spec.Name]; taken {
		return nil, modelerr.New(op).Species(spec.Name).Cause(modelerr.ErrDuplicateName).Err()
	}

	p, states, err := n.buildComplex(op, spec.Complex)
	if err != nil {
		return nil, err
	}
	if err := plex.Check(p); err != nil {
		return nil, invalid(op, byName, err)
	}
	sp, err := n.speciesFor(p, states)
	if err != nil {
		return nil, err
	}

	sp.Names = append(sp.Names, spec.Name)
	sp.Population += spec.Population
	n.byName[spec.Name] = sp
	return sp, nil
}

// buildComplex resolves a complex description into a plex and per-instance
// states in instance order.
func (n *Network) buildComplex(op string, c ComplexSpec) (plex.Plex, []mol.State, error) {
	var p plex.Plex
	states := make([]mol.State, len(c.Mols))
	mols := make([]*mol.Mol, len(c.Mols))

	for i, inst := range c.Mols {
		m, ok := n.mols.Lookup(inst.Mol)
		if !ok {
			return p, nil, modelerr.New(op).Mol(inst.Mol).Cause(modelerr.ErrUnknownReference).Err()
		}
		s := m.DefaultState()
		for _, modName := range sortedKeys(inst.Mods) {
			mod, ok := m.ModSiteIndex(modName)
			if !ok {
				return p, nil, n.unknown(op, "mod site %s.%s", m.Name, modName)
			}
			v, ok := m.ModValueIndex(mod, inst.Mods[modName])
			if !ok {
				return p, nil, n.unknown(op, "value %s of %s.%s", inst.Mods[modName], m.Name, modName)
			}
			s.Mods[mod] = v
		}
		states[i] = m.Reshape(s)
		mols[i] = m
		p.Mols = append(p.Mols, m.ID)
	}

	site := func(ref InstanceSite) (plex.SiteSpec, error) {
		if ref.Mol >= len(mols) {
			return plex.SiteSpec{}, n.unknown(op, "instance %d of %d", ref.Mol, len(mols))
		}
		s, ok := mols[ref.Mol].SiteIndex(ref.Site)
		if !ok {
			return plex.SiteSpec{}, n.unknown(op, "site %s.%s", mols[ref.Mol].Name, ref.Site)
		}
		return plex.SiteSpec{Mol: ref.Mol, Site: s}, nil
	}
	for _, b := range c.Bindings {
		l, err := site(b.Left)
		if err != nil {
			return p, nil, err
		}
		r, err := site(b.Right)
		if err != nil {
			return p, nil, err
		}
		p.Bindings = append(p.Bindings, plex.Binding{Left: l, Right: r})
	}
	return p, states, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// newRule validates spec and reserves the rule name.
func (n *Network) newRule(op, name string, kind GeneratorKind, spec any) (*generator, error) {
	if err := n.checkOpen(op); err != nil {
		return nil, err
	}
	byRule := func(b *modelerr.Builder) *modelerr.Builder { return b.Rule(name) }
	if err := validation.Struct(spec); err != nil {
		return nil, invalid(op, byRule, err)
	}
	if _, taken := n.rules[name]; taken {
		return nil, modelerr.New(op).Rule(name).Cause(modelerr.ErrDuplicateName).Err()
	}
	return &generator{kind: kind, name: name, seen: make(map[string]*Reaction)}, nil
}

func (n *Network) register(g *generator) {
	n.rules[g.name] = g
	if g.kind != Declared {
		n.generators = append(n.generators, g)
	}
	n.log.Debug("rule defined", logging.Rule(g.name), logging.Generator(g.kind.String()))
}

func (n *Network) resolveSite(op string, ref SiteRef) (siteRef, *mol.Mol, error) {
	m, ok := n.mols.Lookup(ref.Mol)
	if !ok {
		return siteRef{}, nil, modelerr.New(op).Mol(ref.Mol).Cause(modelerr.ErrUnknownReference).Err()
	}
	s, ok := m.SiteIndex(ref.Site)
	if !ok {
		return siteRef{}, nil, modelerr.New(op).Site(ref.Mol, ref.Site).Cause(modelerr.ErrUnknownReference).Err()
	}
	return siteRef{mol: m.ID, site: s}, m, nil
}

// shapeKey resolves a shape name of a site; an empty name means the site's
// default shape.
func (n *Network) shapeKey(op string, ref siteRef, shape string) (mol.ShapeKey, error) {
	m := n.mols.Get(ref.mol)
	site := m.Sites[ref.site]
	if shape == "" {
		shape = site.Shapes[site.Default]
	}
	if _, ok := m.ShapeIndex(ref.site, shape); !ok {
		return mol.ShapeKey{}, n.unknown(op, "shape %s of %s.%s", shape, m.Name, site.Name)
	}
	return mol.ShapeKey{Mol: m.Name, Site: site.Name, Shape: shape}, nil
}

func (n *Network) setShapeRate(op string, g *generator, leftShape, rightShape string, rate float64) error {
	a, err := n.shapeKey(op, g.leftSite, leftShape)
	if err != nil {
		return err
	}
	b, err := n.shapeKey(op, g.rightSite, rightShape)
	if err != nil {
		return err
	}
	return g.rates.SetRate(a, b, rate)
}

func (n *Network) policy(op, name, p string) (extrap.Policy, error) {
	policy, err := extrap.ParsePolicy(validation.DefaultOr(p, n.cfg.Generation.RatePolicy))
	if err != nil {
		return policy, invalid(op, func(b *modelerr.Builder) *modelerr.Builder { return b.Rule(name) }, err)
	}
	return policy, nil
}

// DefineDimerization adds a rule binding a free Left site to a free Right site.
func (n *Network) DefineDimerization(spec DimerizationSpec) error {
	const op = "DefineDimerization"
	g, err := n.newRule(op, spec.Name, Dimerize, &spec)
	if err != nil {
		return err
	}
	var lm, rm *mol.Mol
	if g.leftSite, lm, err = n.resolveSite(op, spec.Left); err != nil {
		return err
	}
	if g.rightSite, rm, err = n.resolveSite(op, spec.Right); err != nil {
		return err
	}

	policy, err := n.policy(op, spec.Name, spec.Policy)
	if err != nil {
		return err
	}
	switch policy {
	case extrap.MassScaled:
		g.rates, err = extrap.NewMassScaled(
			validation.DefaultOr(spec.LeftMass, lm.Weight),
			validation.DefaultOr(spec.RightMass, rm.Weight))
		if err != nil {
			return err
		}
	default:
		g.rates = extrap.NewConstant()
	}
	for _, sr := range spec.Rates {
		if err := n.setShapeRate(op, g, sr.LeftShape, sr.RightShape, sr.Rate); err != nil {
			return err
		}
	}

	g.left = n.feature(freeSiteKey(g.leftSite.mol, g.leftSite.site))
	g.right = n.feature(freeSiteKey(g.rightSite.mol, g.rightSite.site))
	g.left.subscribe(g, leftSide)
	if g.right != g.left {
		g.right.subscribe(g, rightSide)
	}
	n.register(g)
	return nil
}

// DefineDecomposition adds a rule breaking bindings between Left and Right
// sites.
func (n *Network) DefineDecomposition(spec DecompositionSpec) error {
	const op = "DefineDecomposition"
	g, err := n.newRule(op, spec.Name, Decompose, &spec)
	if err != nil {
		return err
	}
	if g.leftSite, _, err = n.resolveSite(op, spec.Left); err != nil {
		return err
	}
	if g.rightSite, _, err = n.resolveSite(op, spec.Right); err != nil {
		return err
	}

	g.rates = extrap.NewConstant()
	for _, sr := range spec.Rates {
		if err := n.setShapeRate(op, g, sr.LeftShape, sr.RightShape, sr.Rate); err != nil {
			return err
		}
	}

	g.feat = n.feature(bindingKey(
		siteType{mol: g.leftSite.mol, site: g.leftSite.site},
		siteType{mol: g.rightSite.mol, site: g.rightSite.site}))
	g.feat.subscribe(g, leftSide)
	n.register(g)
	return nil
}

// modSetting resolves a modification site and value of m.
func (n *Network) modSetting(op string, m *mol.Mol, instance int, modSite, value string) (modSetting, error) {
	mod, ok := m.ModSiteIndex(modSite)
	if !ok {
		return modSetting{}, n.unknown(op, "mod site %s.%s", m.Name, modSite)
	}
	v, ok := m.ModValueIndex(mod, value)
	if !ok {
		return modSetting{}, n.unknown(op, "value %s of %s.%s", value, m.Name, modSite)
	}
	return modSetting{mol: instance, mod: mod, value: v}, nil
}

// auxiliary resolves the extra species and rate of a single-substrate rule.
func (n *Network) auxiliary(op, name string, g *generator, aux, auxProduct, policyName string, rate, enablingMass, auxMass, enablingWeight float64) error {
	if aux != "" {
		sp, ok := n.byName[aux]
		if !ok {
			return modelerr.New(op).Species(aux).Cause(modelerr.ErrUnknownReference).Err()
		}
		g.auxReactant = sp
	}
	if auxProduct != "" {
		sp, ok := n.byName[auxProduct]
		if !ok {
			return modelerr.New(op).Species(auxProduct).Cause(modelerr.ErrUnknownReference).Err()
		}
		g.auxProduct = sp
	}

	policy, err := n.policy(op, name, policyName)
	if err != nil {
		return err
	}
	switch policy {
	case extrap.MassScaled:
		if g.auxReactant == nil {
			return invalid(op, func(b *modelerr.Builder) *modelerr.Builder { return b.Rule(name) },
				fmt.Errorf("mass policy needs an auxiliary reactant"))
		}
		g.unary, err = extrap.NewUnaryMassScaled(rate,
			validation.DefaultOr(enablingMass, enablingWeight),
			validation.DefaultOr(auxMass, g.auxReactant.Weight))
	default:
		g.unary, err = extrap.NewUnary(rate)
	}
	return err
}

// DefineUniMol adds a rule changing the modification state of single mols.
func (n *Network) DefineUniMol(spec UniMolSpec) error {
	const op = "DefineUniMol"
	g, err := n.newRule(op, spec.Name, UniMol, &spec)
	if err != nil {
		return err
	}
	m, ok := n.mols.Lookup(spec.Mol)
	if !ok {
		return modelerr.New(op).Mol(spec.Mol).Cause(modelerr.ErrUnknownReference).Err()
	}
	for _, q := range spec.Queries {
		s, err := n.modSetting(op, m, 0, q.ModSite, q.Value)
		if err != nil {
			return err
		}
		g.queries = append(g.queries, s)
	}
	for _, ex := range spec.Exchanges {
		s, err := n.modSetting(op, m, 0, ex.ModSite, ex.Value)
		if err != nil {
			return err
		}
		g.exchanges = append(g.exchanges, s)
	}
	if err := n.auxiliary(op, spec.Name, g, spec.AuxReactant, spec.AuxProduct,
		spec.Policy, spec.Rate, spec.EnablingMass, spec.AuxMass, m.Weight); err != nil {
		return err
	}

	g.feat = n.feature(molKey(m.ID))
	g.feat.subscribe(g, leftSide)
	n.register(g)
	return nil
}

// DefineOmni adds a rule changing the modification state of mols in any
// complex that contains Pattern. Mods given on pattern instances act as
// further queries.
func (n *Network) DefineOmni(spec OmniSpec) error {
	const op = "DefineOmni"
	g, err := n.newRule(op, spec.Name, Omni, &spec)
	if err != nil {
		return err
	}
	pattern, _, err := n.buildComplex(op, spec.Pattern)
	if err != nil {
		return err
	}
	if err := plex.Check(pattern); err != nil {
		return invalid(op, func(b *modelerr.Builder) *modelerr.Builder { return b.Rule(spec.Name) }, err)
	}

	instance := func(i int) (*mol.Mol, error) {
		if i >= len(pattern.Mols) {
			return nil, n.unknown(op, "pattern instance %d of %d", i, len(pattern.Mols))
		}
		return n.mols.Get(pattern.Mols[i]), nil
	}
	for i, inst := range spec.Pattern.Mols {
		m, _ := instance(i)
		for _, modName := range sortedKeys(inst.Mods) {
			s, err := n.modSetting(op, m, i, modName, inst.Mods[modName])
			if err != nil {
				return err
			}
			g.queries = append(g.queries, s)
		}
	}
	for _, q := range spec.Queries {
		m, err := instance(q.Mol)
		if err != nil {
			return err
		}
		s, err := n.modSetting(op, m, q.Mol, q.ModSite, q.Value)
		if err != nil {
			return err
		}
		g.queries = append(g.queries, s)
	}
	for _, ex := range spec.Exchanges {
		m, err := instance(ex.Mol)
		if err != nil {
			return err
		}
		s, err := n.modSetting(op, m, ex.Mol, ex.ModSite, ex.Value)
		if err != nil {
			return err
		}
		g.exchanges = append(g.exchanges, s)
	}

	var freeSites []plex.SiteSpec
	for _, fs := range spec.FreeSites {
		m, err := instance(fs.Mol)
		if err != nil {
			return err
		}
		s, ok := m.SiteIndex(fs.Site)
		if !ok {
			return modelerr.New(op).Site(m.Name, fs.Site).Cause(modelerr.ErrUnknownReference).Err()
		}
		freeSites = append(freeSites, plex.SiteSpec{Mol: fs.Mol, Site: s})
	}

	var enablingWeight float64
	for _, id := range pattern.Mols {
		enablingWeight += n.mols.Get(id).Weight
	}
	if err := n.auxiliary(op, spec.Name, g, spec.AuxReactant, spec.AuxProduct,
		spec.Policy, spec.Rate, spec.EnablingMass, spec.AuxMass, enablingWeight); err != nil {
		return err
	}

	g.feat = n.feature(featureKey{kind: omniFeature, omni: len(n.generators)})
	g.feat.pattern = pattern
	g.feat.freeSites = freeSites
	g.feat.subscribe(g, leftSide)
	n.register(g)
	return nil
}

// DefineReaction adds a reaction between named species directly.
func (n *Network) DefineReaction(spec ReactionSpec) (*Reaction, error) {
	const op = "DefineReaction"
	g, err := n.newRule(op, spec.Name, Declared, &spec)
	if err != nil {
		return nil, err
	}
	side := func(ts []TermSpec) ([]*Species, error) {
		var out []*Species
		for _, t := range ts {
			sp, ok := n.byName[t.Species]
			if !ok {
				return nil, modelerr.New(op).Species(t.Species).Cause(modelerr.ErrUnknownReference).Err()
			}
			for range validation.DefaultOr(t.Mult, 1) {
				out = append(out, sp)
			}
		}
		return out, nil
	}
	reactants, err := side(spec.Reactants)
	if err != nil {
		return nil, err
	}
	products, err := side(spec.Products)
	if err != nil {
		return nil, err
	}

	r := &Reaction{
		ID:         len(n.reactions),
		Reactants:  terms(reactants...),
		Products:   terms(products...),
		Rate:       spec.Rate,
		Degeneracy: 1,
		Rule:       spec.Name,
		Kind:       Declared,
	}
	g.reactions = append(g.reactions, r)
	n.register(g)
	n.addReaction(r)
	return r, nil
}

// SetDimerizationRate declares or replaces a rate of a dimerization rule and
// recomputes the rates of the reactions it already produced. Empty shape names
// stand for the default shape. Rates may change after generation has started.
func (n *Network) SetDimerizationRate(rule, leftShape, rightShape string, rate float64) error {
	return n.setRuleRate("SetDimerizationRate", Dimerize, rule, leftShape, rightShape, rate)
}

// SetDecompositionRate is SetDimerizationRate for decomposition rules.
func (n *Network) SetDecompositionRate(rule, leftShape, rightShape string, rate float64) error {
	return n.setRuleRate("SetDecompositionRate", Decompose, rule, leftShape, rightShape, rate)
}

func (n *Network) setRuleRate(op string, kind GeneratorKind, rule, leftShape, rightShape string, rate float64) error {
	g, ok := n.rules[rule]
	if !ok || g.kind != kind {
		return modelerr.New(op).Rule(rule).Context("no %s rule", kind).Cause(modelerr.ErrUnknownReference).Err()
	}
	if err := n.setShapeRate(op, g, leftShape, rightShape, rate); err != nil {
		return err
	}
	if err := n.refreshRule(g); err != nil {
		return modelerr.New(op).Rule(rule).Cause(err).Err()
	}
	return nil
}
