package network

import (
	"github.com/dd0wney/plexnet/pkg/mol"
	"github.com/dd0wney/plexnet/pkg/plex"
)

type featureKind int

const (
	molFeature featureKind = iota
	freeSiteFeature
	bindingFeature
	omniFeature
)

// siteType is a binding site of a mol type, independent of any instance.
type siteType struct {
	mol  mol.ID
	site int
}

func (s siteType) less(o siteType) bool {
	if s.mol != o.mol {
		return s.mol < o.mol
	}
	return s.site < o.site
}

type featureKey struct {
	kind featureKind
	a, b siteType
	omni int
}

func molKey(id mol.ID) featureKey {
	return featureKey{kind: molFeature, a: siteType{mol: id, site: -1}}
}

func freeSiteKey(id mol.ID, site int) featureKey {
	return featureKey{kind: freeSiteFeature, a: siteType{mol: id, site: site}}
}

// bindingKey does not depend on the order of its ends.
func bindingKey(a, b siteType) featureKey {
	if b.less(a) {
		a, b = b, a
	}
	return featureKey{kind: bindingFeature, a: a, b: b}
}

// Position locates a feature match inside a family paradigm. Binding is -1
// unless the feature is a binding feature; Embedding is set only for pattern
// features and maps the pattern into the paradigm.
type Position struct {
	Mol       int
	Site      int
	Binding   int
	Embedding plex.Iso
}

// Context is a species at a position that satisfies a feature.
type Context struct {
	Species *Species
	Pos     Position
}

// molID is the mol type at the context's position.
func (c Context) molID() mol.ID {
	return c.Species.Family.Paradigm.Mols[c.Pos.Mol]
}

type subscription struct {
	gen  *generator
	side int
}

// feature records every context that satisfied it and the generators to run
// on each new one.
type feature struct {
	key         featureKey
	contexts    []Context
	subscribers []subscription

	// Pattern features only.
	pattern   plex.Plex
	freeSites []plex.SiteSpec
}

type connection struct {
	feat *feature
	pos  Position
}

// feature returns the feature for key, creating it on first use.
func (n *Network) feature(key featureKey) *feature {
	f, ok := n.features[key]
	if !ok {
		f = &feature{key: key}
		n.features[key] = f
	}
	return f
}

func (f *feature) subscribe(g *generator, side int) {
	f.subscribers = append(f.subscribers, subscription{gen: g, side: side})
}

// connect finds every feature the family's paradigm satisfies. It runs once
// per family, the first time one of its species is processed; all features
// exist by then.
func (n *Network) connect(fam *Family) error {
	p := fam.Paradigm
	bound := p.BoundSites()

	for i, id := range p.Mols {
		if f, ok := n.features[molKey(id)]; ok {
			fam.conns = append(fam.conns, connection{feat: f, pos: Position{Mol: i, Site: -1, Binding: -1}})
		}
	}
	for i, id := range p.Mols {
		for s := range n.mols.Get(id).Sites {
			if _, ok := bound[plex.SiteSpec{Mol: i, Site: s}]; ok {
				continue
			}
			if f, ok := n.features[freeSiteKey(id, s)]; ok {
				fam.conns = append(fam.conns, connection{feat: f, pos: Position{Mol: i, Site: s, Binding: -1}})
			}
		}
	}
	for i, b := range p.Bindings {
		key := bindingKey(
			siteType{mol: p.Mols[b.Left.Mol], site: b.Left.Site},
			siteType{mol: p.Mols[b.Right.Mol], site: b.Right.Site})
		if f, ok := n.features[key]; ok {
			fam.conns = append(fam.conns, connection{feat: f, pos: Position{Mol: b.Left.Mol, Site: b.Left.Site, Binding: i}})
		}
	}

	for _, g := range n.generators {
		if g.kind != Omni {
			continue
		}
		f := g.feat
		embeddings, err := plex.Injections(f.pattern, p)
		if err != nil {
			return err
		}
	embedding:
		for _, e := range embeddings {
			for _, s := range f.freeSites {
				if _, ok := bound[e.MapSite(s)]; ok {
					continue embedding
				}
			}
			fam.conns = append(fam.conns, connection{feat: f, pos: Position{Mol: e.Forward.Mols[0], Site: -1, Binding: -1, Embedding: e}})
		}
	}

	fam.connected = true
	return nil
}
