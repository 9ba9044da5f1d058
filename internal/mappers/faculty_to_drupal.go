package mappers

import (
	"strings"

	"faculty-sync/internal/domain"
	"faculty-sync/internal/providers/drupal"
)

// bodyFormat is the rich-text format applied to the bio field.
const bodyFormat = "basic_html"

// fieldNames maps optional record fields to the Drupal machine names of
// the profile content type's custom fields.
var fieldNames = map[string]func(domain.FacultyRecord) string{
	"field_email":           func(r domain.FacultyRecord) string { return r.Email },
	"field_phone":           func(r domain.FacultyRecord) string { return r.Phone },
	"field_department":      func(r domain.FacultyRecord) string { return r.Department },
	"field_job_title":       func(r domain.FacultyRecord) string { return r.Title },
	"field_office_location": func(r domain.FacultyRecord) string { return r.Office },
}

// ToNodePayload maps one faculty record into a node-creation payload.
// Optional fields are included only when non-blank; an empty string means
// absent, never an empty Drupal field. The node is always published.
func ToNodePayload(contentType string, rec domain.FacultyRecord) (drupal.NodePayload, error) {
	if err := rec.Validate(); err != nil {
		return drupal.NodePayload{}, err
	}

	payload := drupal.NodePayload{
		Type:   []drupal.TargetID{{TargetID: contentType}},
		Title:  []drupal.FieldValue{{Value: strings.TrimSpace(rec.Name)}},
		Status: []drupal.FieldValue{{Value: true}},
	}

	if bio := strings.TrimSpace(rec.Bio); bio != "" {
		payload.Body = []drupal.BodyValue{{Value: bio, Format: bodyFormat}}
	}

	for name, get := range fieldNames {
		if v := strings.TrimSpace(get(rec)); v != "" {
			if payload.Fields == nil {
				payload.Fields = map[string][]drupal.FieldValue{}
			}
			payload.Fields[name] = []drupal.FieldValue{{Value: v}}
		}
	}

	return payload, nil
}
