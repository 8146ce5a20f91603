package candidate

import "context"

// Repository defines the candidate repository interface
type Repository interface {
	GetByID(ctx context.Context, id string) (*Candidate, error)
	GetByWhatsApp(ctx context.Context, number string) (*Candidate, error)

	// ListShortlistable returns applied candidates with a CV score of at
	// least minScore, best score first, capped at limit.
	ListShortlistable(ctx context.Context, minScore, limit int) ([]*Candidate, error)

	UpdateStatus(ctx context.Context, id string, status Status) error
}
