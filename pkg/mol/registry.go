package mol

import (
	"iter"
	"sort"

	"github.com/dd0wney/plexnet/pkg/modelerr"
	"github.com/dd0wney/plexnet/pkg/validation"
)

// Registry owns every defined mol type. IDs are assigned in definition order.
type Registry struct {
	mols   []*Mol
	byName map[string]ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]ID)}
}

// Define compiles spec and registers it.
func (r *Registry) Define(spec Spec) (*Mol, error) {
	const op = "DefineMol"

	if err := validation.Struct(&spec); err != nil {
		return nil, modelerr.New(op).Mol(spec.Name).Context("%v", err).Cause(modelerr.ErrInvalidDefinition).Err()
	}
	if _, exists := r.byName[spec.Name]; exists {
		return nil, modelerr.New(op).Mol(spec.Name).Cause(modelerr.ErrDuplicateName).Err()
	}

	m, err := compile(spec)
	if err != nil {
		return nil, err
	}
	m.ID = ID(len(r.mols))
	r.mols = append(r.mols, m)
	r.byName[m.Name] = m.ID
	return m, nil
}

// Lookup returns the named mol.
func (r *Registry) Lookup(name string) (*Mol, bool) {
	id, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.mols[id], true
}

// Get returns the mol with the given ID, or nil.
func (r *Registry) Get(id ID) *Mol {
	if id < 0 || int(id) >= len(r.mols) {
		return nil
	}
	return r.mols[id]
}

// Len returns the number of defined mols.
func (r *Registry) Len() int {
	return len(r.mols)
}

// All yields mols in definition order.
func (r *Registry) All() iter.Seq[*Mol] {
	return func(yield func(*Mol) bool) {
		for _, m := range r.mols {
			if !yield(m) {
				return
			}
		}
	}
}

func compile(spec Spec) (*Mol, error) {
	const op = "DefineMol"

	m := &Mol{
		Name:      spec.Name,
		Weight:    spec.Weight,
		siteIndex: make(map[string]int, len(spec.Sites)),
		modIndex:  make(map[string]int, len(spec.ModSites)),
	}
	seen := make(map[string]bool)

	for i, ss := range spec.Sites {
		if seen[ss.Name] {
			return nil, modelerr.New(op).Site(spec.Name, ss.Name).Context("site name used twice").Cause(modelerr.ErrInvalidDefinition).Err()
		}
		seen[ss.Name] = true

		shapes := ss.Shapes
		if len(shapes) == 0 {
			shapes = []string{ss.Name}
		}
		site := BindingSite{Name: ss.Name, Shapes: append([]string(nil), shapes...)}
		if ss.Default != "" {
			idx := indexOf(site.Shapes, ss.Default)
			if idx < 0 {
				return nil, modelerr.New(op).Site(spec.Name, ss.Name).Context("default shape %q", ss.Default).Cause(modelerr.ErrUnknownReference).Err()
			}
			site.Default = idx
		}
		m.Sites = append(m.Sites, site)
		m.siteIndex[ss.Name] = i
	}

	for i, ms := range spec.ModSites {
		if seen[ms.Name] {
			return nil, modelerr.New(op).Site(spec.Name, ms.Name).Context("site name used twice").Cause(modelerr.ErrInvalidDefinition).Err()
		}
		seen[ms.Name] = true

		mod := ModSite{Name: ms.Name}
		names := make([]string, 0, len(ms.Values))
		for _, v := range ms.Values {
			if indexOf(names, v.Name) >= 0 {
				return nil, modelerr.New(op).Site(spec.Name, ms.Name).Context("value %q listed twice", v.Name).Cause(modelerr.ErrInvalidDefinition).Err()
			}
			names = append(names, v.Name)
			mod.Values = append(mod.Values, ModValue{Name: v.Name, Weight: v.Weight})
		}
		if ms.Default != "" {
			idx := indexOf(names, ms.Default)
			if idx < 0 {
				return nil, modelerr.New(op).Site(spec.Name, ms.Name).Context("default value %q", ms.Default).Cause(modelerr.ErrUnknownReference).Err()
			}
			mod.Default = idx
		}
		m.ModSites = append(m.ModSites, mod)
		m.modIndex[ms.Name] = i
	}

	for _, as := range spec.Allostery {
		a, err := m.compileAllostery(as)
		if err != nil {
			return nil, err
		}
		m.allostery = append(m.allostery, a)
	}
	return m, nil
}

func (m *Mol) compileAllostery(as AlloSpec) (alloState, error) {
	const op = "DefineMol"

	a := alloState{
		when:   make([]int, len(m.ModSites)),
		shapes: make([]int, len(m.Sites)),
	}
	for i := range a.when {
		a.when[i] = -1
	}
	for i := range a.shapes {
		a.shapes[i] = -1
	}

	// Sorted so the first reported error does not depend on map order.
	for _, modName := range sortedKeys(as.When) {
		mod, ok := m.ModSiteIndex(modName)
		if !ok {
			return a, modelerr.New(op).Site(m.Name, modName).Context("allostery condition").Cause(modelerr.ErrUnknownReference).Err()
		}
		val, ok := m.ModValueIndex(mod, as.When[modName])
		if !ok {
			return a, modelerr.New(op).Site(m.Name, modName).Context("allostery value %q", as.When[modName]).Cause(modelerr.ErrUnknownReference).Err()
		}
		a.when[mod] = val
	}
	for _, siteName := range sortedKeys(as.Shapes) {
		site, ok := m.SiteIndex(siteName)
		if !ok {
			return a, modelerr.New(op).Site(m.Name, siteName).Context("allostery shape").Cause(modelerr.ErrUnknownReference).Err()
		}
		shape, ok := m.ShapeIndex(site, as.Shapes[siteName])
		if !ok {
			return a, modelerr.New(op).Site(m.Name, siteName).Context("allostery shape %q", as.Shapes[siteName]).Cause(modelerr.ErrUnknownReference).Err()
		}
		a.shapes[site] = shape
	}
	return a, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
