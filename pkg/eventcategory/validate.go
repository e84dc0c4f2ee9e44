// Package eventcategory validates and normalizes event category submissions.
// It is shared by the server (authoritative check) and the CLI form
// (client-side check before submitting).
package eventcategory

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Field names reported by ValidationError.
const (
	FieldName  = "name"
	FieldColor = "color"
	FieldEmoji = "emoji"
)

// MaxColor is the largest storable 24-bit RGB value.
const MaxColor = 0xFFFFFF

var (
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// Input is a category submission as received from a client.
type Input struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Emoji *string `json:"emoji,omitempty"` // nil when no emoji was picked
}

// Normalized is a validated submission ready to be stored.
type Normalized struct {
	Name  string
	Color int    // 0..MaxColor
	Emoji string // "" when absent
}

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NameValidator decides whether a category name is acceptable. A non-nil
// error's text is used as the user-facing message.
type NameValidator interface {
	ValidateName(name string) error
}

// NameValidatorFunc adapts a plain function to NameValidator.
type NameValidatorFunc func(name string) error

func (f NameValidatorFunc) ValidateName(name string) error { return f(name) }

// DefaultNameValidator requires a non-empty name made of letters, digits and hyphens.
var DefaultNameValidator NameValidator = NameValidatorFunc(func(name string) error {
	if name == "" {
		return errors.New("Category name is required.")
	}
	if !namePattern.MatchString(name) {
		return errors.New("Category name can only contain letters, numbers or hypens.")
	}
	return nil
})

// Validate checks name, color and emoji in that order and returns the
// normalized record or a *ValidationError for the first failing field.
// A nil names uses DefaultNameValidator.
func Validate(in Input, names NameValidator) (Normalized, error) {
	if names == nil {
		names = DefaultNameValidator
	}
	if err := names.ValidateName(in.Name); err != nil {
		return Normalized{}, &ValidationError{Field: FieldName, Message: err.Error()}
	}

	color, err := ParseColor(in.Color)
	if err != nil {
		return Normalized{}, err
	}

	var emoji string
	if in.Emoji != nil {
		if !IsEmoji(*in.Emoji) {
			return Normalized{}, &ValidationError{Field: FieldEmoji, Message: "Invalid emoji"}
		}
		emoji = *in.Emoji
	}

	return Normalized{Name: in.Name, Color: color, Emoji: emoji}, nil
}

// ParseColor converts "#RRGGBB" (any case) into its integer value.
func ParseColor(s string) (int, error) {
	if s == "" {
		return 0, &ValidationError{Field: FieldColor, Message: "Color is required"}
	}
	if !colorPattern.MatchString(s) {
		return 0, &ValidationError{Field: FieldColor, Message: "Invalid color format."}
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, &ValidationError{Field: FieldColor, Message: "Invalid color format."}
	}
	return int(v), nil
}

// FormatColor renders a stored color as uppercase "#RRGGBB".
func FormatColor(v int) string {
	return fmt.Sprintf("#%06X", v&MaxColor)
}
