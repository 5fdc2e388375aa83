package mol

// Spec is the definition of a mol type as handed over by a rule-file loader.
type Spec struct {
	Name      string        `yaml:"name" validate:"required,ident"`
	Weight    float64       `yaml:"weight" validate:"gt=0"`
	Sites     []SiteSpec    `yaml:"sites" validate:"dive"`
	ModSites  []ModSiteSpec `yaml:"mod_sites" validate:"dive"`
	Allostery []AlloSpec    `yaml:"allostery" validate:"dive"`
}

// SiteSpec defines a binding site. A site without shapes has a single shape
// named after the site.
type SiteSpec struct {
	Name    string   `yaml:"name" validate:"required,ident"`
	Shapes  []string `yaml:"shapes" validate:"omitempty,unique,dive,ident"`
	Default string   `yaml:"default" validate:"omitempty,ident"`
}

// ModSiteSpec defines a modification site and its possible values.
type ModSiteSpec struct {
	Name    string         `yaml:"name" validate:"required,ident"`
	Values  []ModValueSpec `yaml:"values" validate:"required,min=1,dive"`
	Default string         `yaml:"default" validate:"omitempty,ident"`
}

// ModValueSpec is one value of a modification site. Weight is added to the
// mol's base weight while the site holds this value.
type ModValueSpec struct {
	Name   string  `yaml:"name" validate:"required,ident"`
	Weight float64 `yaml:"weight" validate:"gte=0"`
}

// AlloSpec makes binding sites show the given shapes whenever the mol's
// modification sites hold every value listed in When. Later entries win.
type AlloSpec struct {
	When   map[string]string `yaml:"when" validate:"required,min=1"`
	Shapes map[string]string `yaml:"shapes" validate:"required,min=1"`
}
