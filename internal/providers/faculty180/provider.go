package faculty180

import (
	"context"

	"faculty-sync/internal/domain"
)

// Provider adapts the Faculty180 client into the providers.FacultyProvider
// interface, converting wire maps into the canonical record model.
type Provider struct {
	C *Client
}

func (p Provider) Name() string { return "faculty180" }

func (p Provider) ListFaculty(ctx context.Context) ([]domain.FacultyRecord, error) {
	raw, err := p.C.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.FacultyRecord, 0, len(raw))
	for _, m := range raw {
		out = append(out, domain.FromWire(m))
	}
	return out, nil
}
