// Package modelerr defines the error taxonomy shared by the mol, plex, rate and
// network packages.
//
// Every failure in network generation is a logic or configuration problem with a
// deterministic reproduction, so nothing here is retryable. Errors fall in three
// classes: configuration errors raised while defining mols and rules or while a
// generator looks up a rate, structural defects raised when a plex violates its
// connectivity invariant, and lookup misses. Read accessors report lookup misses
// as (value, false) results; the sentinels exist for the Must* variants.
package modelerr

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	ErrDuplicateName      = errors.New("duplicate name")
	ErrUnknownReference   = errors.New("unknown reference")
	ErrMissingRate        = errors.New("missing rate")
	ErrMissingInvariant   = errors.New("missing binding invariant")
	ErrInvalidDefinition  = errors.New("invalid definition")
	ErrFrozen             = errors.New("definitions are frozen once generation has started")
	ErrSpeciesLimit       = errors.New("species limit reached")
	ErrNegativePopulation = errors.New("negative population")
)

// Structural defects.
var (
	ErrMalformedStructure = errors.New("malformed structure")
)

// Lookup misses.
var (
	ErrUnknownSpecies = errors.New("unknown species")
	ErrUnknownMol     = errors.New("unknown mol")
)

// ModelError carries the context needed to locate the offending definition.
type ModelError struct {
	Op      string // operation that failed, e.g. "DefineMol", "dimerize"
	Kind    string // kind of entity: "mol", "site", "rule", "species", "plex", "shape"
	Name    string // entity name, when there is one
	Context string // extra detail, such as the shape pair of a missing rate
	Cause   error
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	subject := e.Kind
	if e.Name != "" {
		if subject != "" {
			subject += " "
		}
		subject += fmt.Sprintf("%q", e.Name)
	}
	switch {
	case subject != "" && e.Context != "":
		return fmt.Sprintf("%s %s (%s): %v", e.Op, subject, e.Context, e.Cause)
	case subject != "":
		return fmt.Sprintf("%s %s: %v", e.Op, subject, e.Cause)
	case e.Context != "":
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Context, e.Cause)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
}

// Unwrap returns the underlying cause for error chain support.
func (e *ModelError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *ModelError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// Builder provides a fluent interface for building ModelErrors.
type Builder struct {
	err ModelError
}

// New starts an error for the given operation.
func New(op string) *Builder {
	return &Builder{err: ModelError{Op: op}}
}

// Mol marks the subject as the named mol.
func (b *Builder) Mol(name string) *Builder {
	b.err.Kind = "mol"
	b.err.Name = name
	return b
}

// Site marks the subject as a site of a mol, named "Mol.site".
func (b *Builder) Site(molName, siteName string) *Builder {
	b.err.Kind = "site"
	b.err.Name = molName + "." + siteName
	return b
}

// Rule marks the subject as the named reaction rule.
func (b *Builder) Rule(name string) *Builder {
	b.err.Kind = "rule"
	b.err.Name = name
	return b
}

// Species marks the subject as the named species.
func (b *Builder) Species(name string) *Builder {
	b.err.Kind = "species"
	b.err.Name = name
	return b
}

// Plex marks the subject as a plex structure.
func (b *Builder) Plex(desc string) *Builder {
	b.err.Kind = "plex"
	b.err.Name = desc
	return b
}

// Context sets additional context information.
func (b *Builder) Context(format string, args ...any) *Builder {
	b.err.Context = fmt.Sprintf(format, args...)
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Build returns the constructed ModelError.
func (b *Builder) Build() *ModelError {
	e := b.err
	return &e
}

// Err returns the constructed error.
func (b *Builder) Err() error {
	return b.Build()
}

// MissingRate reports a rate lookup miss for an unordered pair of shapes.
func MissingRate(op, first, second string) error {
	return New(op).Context("shapes %s / %s", first, second).Cause(ErrMissingRate).Err()
}

// MissingInvariant reports a binding-invariant lookup miss for a pair of shapes.
func MissingInvariant(op, first, second string) error {
	return New(op).Context("shapes %s / %s", first, second).Cause(ErrMissingInvariant).Err()
}

// Malformed reports a plex that violates the structural invariants.
func Malformed(op, detail string) error {
	return New(op).Context("%s", detail).Cause(ErrMalformedStructure).Err()
}

// IsConfiguration reports whether err is a configuration error: the affected
// definition or reaction must be fixed before generation can proceed.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrUnknownReference) ||
		errors.Is(err, ErrMissingRate) ||
		errors.Is(err, ErrMissingInvariant) ||
		errors.Is(err, ErrInvalidDefinition) ||
		errors.Is(err, ErrFrozen) ||
		errors.Is(err, ErrSpeciesLimit)
}

// IsDefect reports whether err indicates a structural defect upstream.
func IsDefect(err error) bool {
	return errors.Is(err, ErrMalformedStructure)
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownSpecies) || errors.Is(err, ErrUnknownMol)
}

// IsFatal reports whether collaborators should treat err as a fatal
// configuration error rather than an input error reportable to the end user.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMissingRate) ||
		errors.Is(err, ErrMissingInvariant) ||
		errors.Is(err, ErrMalformedStructure)
}
