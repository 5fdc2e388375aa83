package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxNameLength bounds mol, site, shape and rule names.
	MaxNameLength = 64

	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Field errors carry the yaml name so messages match the rule file.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := validate.RegisterValidation("ident", isIdent); err != nil {
		panic(err)
	}
}

func isIdent(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) <= MaxNameLength && identPattern.MatchString(s)
}

// Struct validates a definition using its `validate` struct tags and returns
// the first failure in a readable form.
func Struct(v any) error {
	if v == nil {
		return errors.New("definition cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Identifier checks a single name against the identifier rule used by the
// `ident` tag.
func Identifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%s name %q exceeds maximum length of %d characters", kind, name, MaxNameLength)
	}
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%s name %q is invalid (must start with letter or underscore, followed by alphanumeric or underscore)", kind, name)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := trimRoot(e.Namespace())
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "ident":
			return fmt.Errorf("%s: %q is not a valid identifier", field, e.Value())
		case "unique":
			return fmt.Errorf("%s: entries must be unique", field)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}

// trimRoot drops the struct type name from a namespace like
// "Spec.sites[0].name".
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
