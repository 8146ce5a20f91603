package postgresql

import (
	"context"
	"fmt"

	"github.com/gnx-solutions/interview-scheduler/internal/domain/interviewer"
	"github.com/gnx-solutions/interview-scheduler/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type interviewerRepository struct {
	db *database.DB
}

// NewInterviewerRepository creates a new interviewer repository
func NewInterviewerRepository(db *database.DB) interviewer.Repository {
	return &interviewerRepository{db: db}
}

const interviewerColumns = `id, name, email, whatsapp_number, is_active, created_at, updated_at`

func scanInterviewer(row pgx.Row) (*interviewer.Interviewer, error) {
	var iv interviewer.Interviewer
	err := row.Scan(
		&iv.ID,
		&iv.Name,
		&iv.Email,
		&iv.WhatsAppNumber,
		&iv.IsActive,
		&iv.CreatedAt,
		&iv.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, interviewer.ErrInterviewerNotFound
		}
		return nil, fmt.Errorf("failed to scan interviewer: %w", err)
	}
	return &iv, nil
}

// GetByID retrieves an interviewer by ID
func (r *interviewerRepository) GetByID(ctx context.Context, id string) (*interviewer.Interviewer, error) {
	query := fmt.Sprintf(`SELECT %s FROM interviewers WHERE id = $1`, interviewerColumns)
	return scanInterviewer(r.db.QueryRow(ctx, query, id))
}

// GetByWhatsApp retrieves an interviewer by normalized WhatsApp number
func (r *interviewerRepository) GetByWhatsApp(ctx context.Context, number string) (*interviewer.Interviewer, error) {
	query := fmt.Sprintf(`SELECT %s FROM interviewers WHERE whatsapp_number = $1`, interviewerColumns)
	return scanInterviewer(r.db.QueryRow(ctx, query, number))
}

// PickAvailable returns one active interviewer, excluding excludeID when set.
// The exclusion happens in the query, never as an afterthought in the caller.
func (r *interviewerRepository) PickAvailable(ctx context.Context, excludeID string) (*interviewer.Interviewer, error) {
	query := fmt.Sprintf(`SELECT %s FROM interviewers WHERE is_active = TRUE`, interviewerColumns)
	args := []interface{}{}
	if excludeID != "" {
		query += " AND id != $1"
		args = append(args, excludeID)
	}
	query += " ORDER BY RANDOM() LIMIT 1"

	iv, err := scanInterviewer(r.db.QueryRow(ctx, query, args...))
	if err == interviewer.ErrInterviewerNotFound {
		return nil, interviewer.ErrNoneAvailable
	}
	return iv, err
}
