package interviewer

import "context"

// Repository defines the interviewer repository interface. The orchestrator
// never mutates interviewer records.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Interviewer, error)
	GetByWhatsApp(ctx context.Context, number string) (*Interviewer, error)

	// PickAvailable returns one active interviewer. When excludeID is
	// non-empty that interviewer is excluded by the query itself, so a
	// reassignment can never select the interviewer being replaced.
	// Returns ErrNoneAvailable when no active interviewer matches.
	PickAvailable(ctx context.Context, excludeID string) (*Interviewer, error)
}
