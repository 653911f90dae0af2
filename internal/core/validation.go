package core

// validation.go checks run options before any document is touched.
//
// A run does not start until every free-text field is filled in. The rule is
// expressed with struct tags so the web form and the CLI flags share it.

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Options are the plain configuration values supplied by a frontend.
type Options struct {
	Variant   TemplateVariant `validate:"required" label:"template type"`
	Project   string          `validate:"required,max=200" label:"project"`
	Client    string          `validate:"required,max=200" label:"client"`
	Reference string          `validate:"required,max=200" label:"reference document"`
	Revision  string          `validate:"required,max=50" label:"document revision"`

	// HeaderRow is the 1-based fallback header row; 0 means none.
	HeaderRow int `validate:"gte=0,lte=1048576" label:"header row"`

	// FileName is the source file name, used for output naming and logs.
	FileName string `validate:"omitempty,max=255" label:"file name"`
}

// Static returns the metadata block for the given run date.
func (o Options) Static(date string) StaticFields {
	return StaticFields{
		Project:   o.Project,
		Client:    o.Client,
		Reference: o.Reference,
		Revision:  o.Revision,
		Date:      date,
	}
}

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Human-readable field name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects every problem found in a set of options.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// ValidateOptions returns ValidationErrors listing every invalid option, or nil.
func ValidateOptions(o Options) error {
	o.Project = strings.TrimSpace(o.Project)
	o.Client = strings.TrimSpace(o.Client)
	o.Reference = strings.TrimSpace(o.Reference)
	o.Revision = strings.TrimSpace(o.Revision)

	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate options: %w", err)
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Value:   fmt.Sprintf("%v", fe.Value()),
			Message: ruleMessage(fe),
		})
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// ParseHeaderRow parses the optional fallback header row typed into a form.
// Blank input means no fallback.
func ParseHeaderRow(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid header row %q: must be a positive whole number", s)
	}
	return n, nil
}
