package domain

import (
	"errors"
	"strings"
)

// ErrMissingName marks a source record that cannot become a profile node.
var ErrMissingName = errors.New("faculty record has no name")

// FacultyRecord is the canonical representation of one faculty member
// inside this service. The Faculty180 provider maps into this model and
// the Drupal mapper maps out of it; the loosely-typed wire payload never
// travels past the provider boundary.
type FacultyRecord struct {
	Name string

	// Optional profile fields. Blank means absent.
	Bio        string
	Email      string
	Phone      string
	Department string
	Title      string // job title, not to be confused with the node title
	Office     string
}

// Validate enforces the one schema rule the source has: a usable name.
func (r FacultyRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	return nil
}

// FromWire builds a FacultyRecord from the raw key/value payload the
// source API returns. Unknown keys are ignored; non-string values for
// known keys are ignored rather than coerced.
func FromWire(raw map[string]any) FacultyRecord {
	str := func(key string) string {
		if v, ok := raw[key].(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}

	return FacultyRecord{
		Name:       str("name"),
		Bio:        str("bio"),
		Email:      str("email"),
		Phone:      str("phone"),
		Department: str("department"),
		Title:      str("title"),
		Office:     str("office"),
	}
}
