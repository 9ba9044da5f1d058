package providers

import (
	"context"

	"faculty-sync/internal/domain"
)

// FacultyProvider is implemented by any source of faculty records.
type FacultyProvider interface {
	Name() string
	ListFaculty(ctx context.Context) ([]domain.FacultyRecord, error)
}
