package postgresql

import (
	"context"
	"fmt"

	"github.com/gnx-solutions/interview-scheduler/internal/domain/candidate"
	"github.com/gnx-solutions/interview-scheduler/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type candidateRepository struct {
	db *database.DB
}

// NewCandidateRepository creates a new candidate repository
func NewCandidateRepository(db *database.DB) candidate.Repository {
	return &candidateRepository{db: db}
}

const candidateColumns = `id, name, email, whatsapp_number, cv_score, status, created_at, updated_at`

func scanCandidate(row pgx.Row) (*candidate.Candidate, error) {
	var c candidate.Candidate
	var status string
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.WhatsAppNumber,
		&c.CVScore,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, candidate.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to scan candidate: %w", err)
	}
	c.Status = candidate.Status(status)
	return &c, nil
}

// GetByID retrieves a candidate by ID
func (r *candidateRepository) GetByID(ctx context.Context, id string) (*candidate.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE id = $1`, candidateColumns)
	return scanCandidate(r.db.QueryRow(ctx, query, id))
}

// GetByWhatsApp retrieves a candidate by normalized WhatsApp number
func (r *candidateRepository) GetByWhatsApp(ctx context.Context, number string) (*candidate.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE whatsapp_number = $1`, candidateColumns)
	return scanCandidate(r.db.QueryRow(ctx, query, number))
}

// ListShortlistable returns applied candidates at or above minScore, best
// score first
func (r *candidateRepository) ListShortlistable(ctx context.Context, minScore, limit int) ([]*candidate.Candidate, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM candidates
		WHERE status = $1 AND cv_score >= $2
		ORDER BY cv_score DESC
		LIMIT $3
	`, candidateColumns)

	rows, err := r.db.Query(ctx, query, string(candidate.StatusApplied), minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query shortlistable candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*candidate.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// UpdateStatus sets the candidate lifecycle status
func (r *candidateRepository) UpdateStatus(ctx context.Context, id string, status candidate.Status) error {
	query := `UPDATE candidates SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update candidate status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return candidate.ErrCandidateNotFound
	}
	return nil
}
