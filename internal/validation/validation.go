// Package validation checks and sanitizes contact form input before it
// reaches the store.
package validation

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/model"
	"github.com/go-playground/validator/v10"
)

type Code string

const (
	CodeMissingField  Code = "MissingField"
	CodeInvalidEmail  Code = "InvalidEmail"
	CodeFieldTooLong  Code = "FieldTooLong"
	CodeInvalidStatus Code = "InvalidStatus"
)

const (
	DefaultNameMaxLen    = 100
	DefaultMessageMaxLen = 1000

	// EmailMaxLen is the longest address SMTP can carry (RFC 5321 path limit
	// minus the angle brackets).
	EmailMaxLen = 254
)

// Violation describes one rejected field.
type Violation struct {
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Errors is returned when one or more fields fail. It holds at most one
// violation per field, in schema order.
type Errors []Violation

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Field+": "+string(v.Code))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Fields returns the names of the offending fields.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, v := range e {
		out = append(out, v.Field)
	}
	return out
}

type Limits struct {
	NameMaxLen    int
	MessageMaxLen int
}

func DefaultLimits() Limits {
	return Limits{NameMaxLen: DefaultNameMaxLen, MessageMaxLen: DefaultMessageMaxLen}
}

// fieldRule binds a form field to a validator tag.
type fieldRule struct {
	name  string
	tag   string
	value func(*model.ContactSubmission) string
}

type Validator struct {
	validate    *validator.Validate
	schema      []fieldRule
	statusTag   string
	statusNames string
}

func New(limits Limits) *Validator {
	if limits.NameMaxLen <= 0 {
		limits.NameMaxLen = DefaultNameMaxLen
	}
	if limits.MessageMaxLen <= 0 {
		limits.MessageMaxLen = DefaultMessageMaxLen
	}

	names := make([]string, 0, len(model.ContactStatuses))
	for _, s := range model.ContactStatuses {
		names = append(names, string(s))
	}

	return &Validator{
		validate: validator.New(),
		schema: []fieldRule{
			{
				name:  "name",
				tag:   "required,max=" + strconv.Itoa(limits.NameMaxLen),
				value: func(s *model.ContactSubmission) string { return s.Name },
			},
			{
				name:  "email",
				tag:   "required,email,max=" + strconv.Itoa(EmailMaxLen),
				value: func(s *model.ContactSubmission) string { return s.Email },
			},
			{
				name:  "message",
				tag:   "required,max=" + strconv.Itoa(limits.MessageMaxLen),
				value: func(s *model.ContactSubmission) string { return s.Message },
			},
		},
		statusTag:   "required,oneof=" + strings.Join(names, " "),
		statusNames: strings.Join(names, ", "),
	}
}

// Contact validates a raw submission and returns its sanitized form: name and
// message trimmed and HTML-escaped, email trimmed and normalized. Lengths are
// measured in characters on the trimmed, unescaped input.
func (v *Validator) Contact(in model.ContactSubmission) (model.ContactSubmission, error) {
	trimmed := model.ContactSubmission{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Message: strings.TrimSpace(in.Message),
	}

	var errs Errors
	for _, r := range v.schema {
		if err := v.validate.Var(r.value(&trimmed), r.tag); err != nil {
			errs = append(errs, violationFor(r.name, err))
		}
	}
	if len(errs) > 0 {
		return model.ContactSubmission{}, errs
	}

	return model.ContactSubmission{
		Name:    html.EscapeString(trimmed.Name),
		Email:   NormalizeEmail(trimmed.Email),
		Message: html.EscapeString(trimmed.Message),
	}, nil
}

// Status parses a requested status. Anything outside the enum, including the
// empty string, is an InvalidStatus violation.
func (v *Validator) Status(raw string) (model.ContactStatus, error) {
	if err := v.validate.Var(raw, v.statusTag); err != nil {
		return "", Errors{{
			Field:   "status",
			Code:    CodeInvalidStatus,
			Message: "Status must be one of: " + v.statusNames,
		}}
	}
	return model.ContactStatus(raw), nil
}

func violationFor(field string, err error) Violation {
	var tag, param string
	if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
		tag, param = ve[0].Tag(), ve[0].Param()
	}

	label := strings.ToUpper(field[:1]) + field[1:]
	switch tag {
	case "email":
		return Violation{Field: field, Code: CodeInvalidEmail, Message: "Invalid email address"}
	case "max":
		return Violation{Field: field, Code: CodeFieldTooLong, Message: fmt.Sprintf("%s must be at most %s characters", label, param)}
	default:
		return Violation{Field: field, Code: CodeMissingField, Message: label + " is required"}
	}
}
