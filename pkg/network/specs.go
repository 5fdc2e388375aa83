package network

// SiteRef names a binding site of a mol type.
type SiteRef struct {
	Mol  string `yaml:"mol" validate:"required,ident"`
	Site string `yaml:"site" validate:"required,ident"`
}

// InstanceSite names a binding site of one mol instance in a complex or
// pattern, by instance index.
type InstanceSite struct {
	Mol  int    `yaml:"mol" validate:"gte=0"`
	Site string `yaml:"site" validate:"required,ident"`
}

// BindingSpec joins two instance sites.
type BindingSpec struct {
	Left  InstanceSite `yaml:"left"`
	Right InstanceSite `yaml:"right"`
}

// InstanceSpec is one mol instance with optional modification values. Mods
// not listed keep their default value.
type InstanceSpec struct {
	Mol  string            `yaml:"mol" validate:"required,ident"`
	Mods map[string]string `yaml:"mods"`
}

// ComplexSpec describes a complex: mol instances and the bindings among them.
type ComplexSpec struct {
	Mols     []InstanceSpec `yaml:"mols" validate:"required,min=1,dive"`
	Bindings []BindingSpec  `yaml:"bindings" validate:"dive"`
}

// SpeciesSpec declares a named species.
type SpeciesSpec struct {
	Name       string      `yaml:"name" validate:"required,ident"`
	Complex    ComplexSpec `yaml:"complex"`
	Population int         `yaml:"population" validate:"gte=0"`
}

// ShapeRate is the rate for a pair of shapes. Empty shape names stand for the
// site's default shape.
type ShapeRate struct {
	LeftShape  string  `yaml:"left_shape" validate:"omitempty,ident"`
	RightShape string  `yaml:"right_shape" validate:"omitempty,ident"`
	Rate       float64 `yaml:"rate" validate:"gte=0"`
}

// DimerizationSpec binds a free Left site to a free Right site.
type DimerizationSpec struct {
	Name  string      `yaml:"name" validate:"required,ident"`
	Left  SiteRef     `yaml:"left"`
	Right SiteRef     `yaml:"right"`
	Rates []ShapeRate `yaml:"rates" validate:"dive"`

	// Policy is "constant" or "mass"; empty uses the configured default.
	Policy string `yaml:"policy" validate:"omitempty,oneof=constant mass"`

	// LeftMass and RightMass are the masses the rates were measured at under
	// the mass policy. Zero means the base weight of the mol.
	LeftMass  float64 `yaml:"left_mass" validate:"gte=0"`
	RightMass float64 `yaml:"right_mass" validate:"gte=0"`
}

// DecompositionSpec breaks bindings between Left and Right sites.
type DecompositionSpec struct {
	Name  string      `yaml:"name" validate:"required,ident"`
	Left  SiteRef     `yaml:"left"`
	Right SiteRef     `yaml:"right"`
	Rates []ShapeRate `yaml:"rates" validate:"dive"`
}

// ModSetting is a modification site and a value for it.
type ModSetting struct {
	ModSite string `yaml:"mod_site" validate:"required,ident"`
	Value   string `yaml:"value" validate:"required,ident"`
}

// UniMolSpec modifies a mol whose modification state satisfies every query.
type UniMolSpec struct {
	Name      string       `yaml:"name" validate:"required,ident"`
	Mol       string       `yaml:"mol" validate:"required,ident"`
	Queries   []ModSetting `yaml:"queries" validate:"dive"`
	Exchanges []ModSetting `yaml:"exchanges" validate:"required,min=1,dive"`
	Rate      float64      `yaml:"rate" validate:"gte=0"`

	// AuxReactant and AuxProduct name declared species consumed or released
	// alongside the modification.
	AuxReactant string `yaml:"aux_reactant" validate:"omitempty,ident"`
	AuxProduct  string `yaml:"aux_product" validate:"omitempty,ident"`

	// Policy "mass" rescales the rate by the weights of the enabling species
	// and AuxReactant, measured at EnablingMass and AuxMass.
	Policy       string  `yaml:"policy" validate:"omitempty,oneof=constant mass"`
	EnablingMass float64 `yaml:"enabling_mass" validate:"gte=0"`
	AuxMass      float64 `yaml:"aux_mass" validate:"gte=0"`
}

// PatternMod addresses a modification site of a pattern instance.
type PatternMod struct {
	Mol     int    `yaml:"mol" validate:"gte=0"`
	ModSite string `yaml:"mod_site" validate:"required,ident"`
	Value   string `yaml:"value" validate:"required,ident"`
}

// OmniSpec modifies mols of any complex containing Pattern.
type OmniSpec struct {
	Name    string      `yaml:"name" validate:"required,ident"`
	Pattern ComplexSpec `yaml:"pattern"`

	// FreeSites must be unbound in the complex, not just in the pattern.
	FreeSites []InstanceSite `yaml:"free_sites" validate:"dive"`
	Queries   []PatternMod   `yaml:"queries" validate:"dive"`
	Exchanges []PatternMod   `yaml:"exchanges" validate:"required,min=1,dive"`
	Rate      float64        `yaml:"rate" validate:"gte=0"`

	AuxReactant  string  `yaml:"aux_reactant" validate:"omitempty,ident"`
	AuxProduct   string  `yaml:"aux_product" validate:"omitempty,ident"`
	Policy       string  `yaml:"policy" validate:"omitempty,oneof=constant mass"`
	EnablingMass float64 `yaml:"enabling_mass" validate:"gte=0"`
	AuxMass      float64 `yaml:"aux_mass" validate:"gte=0"`
}

// TermSpec is a species and its stoichiometric multiplicity.
type TermSpec struct {
	Species string `yaml:"species" validate:"required"`
	Mult    int    `yaml:"mult" validate:"gte=0"` // zero means 1
}

// ReactionSpec declares a reaction between named species directly.
type ReactionSpec struct {
	Name      string     `yaml:"name" validate:"required,ident"`
	Reactants []TermSpec `yaml:"reactants" validate:"dive"`
	Products  []TermSpec `yaml:"products" validate:"dive"`
	Rate      float64    `yaml:"rate" validate:"gte=0"`
}

// AllosterySpec gives binding sites of complexes containing Complex the listed
// shapes. Mods written on Complex instances must hold. Without Subcomplex only
// complexes with exactly the structure of Complex are affected.
type AllosterySpec struct {
	Name       string      `yaml:"name" validate:"required,ident"`
	Complex    ComplexSpec `yaml:"complex"`
	Subcomplex bool        `yaml:"subcomplex"`
	Shapes     []SiteShape `yaml:"shapes" validate:"required,min=1,dive"`
}

// SiteShape sets a site of a Complex instance to one of its shapes.
type SiteShape struct {
	Mol   int    `yaml:"mol" validate:"gte=0"`
	Site  string `yaml:"site" validate:"required,ident"`
	Shape string `yaml:"shape" validate:"required,ident"`
}
