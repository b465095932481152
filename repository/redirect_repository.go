package repository

import (
	"database/sql"
	"fmt"

	"cims/models"
)

// RedirectRepository reads the complaint_redirects audit trail. Rows are only
// ever written through ComplaintRepository.RedirectComplaint.
type RedirectRepository struct {
	db *sql.DB
}

// NewRedirectRepository creates a new redirect repository
func NewRedirectRepository(db *sql.DB) *RedirectRepository {
	return &RedirectRepository{db: db}
}

// GetRedirectsByComplaint returns all redirect records for a complaint,
// newest first.
func (r *RedirectRepository) GetRedirectsByComplaint(complaintID string) ([]models.ComplaintRedirect, error) {
	query := `
		SELECT id, complaint_id, from_department, to_department, redirected_by, reason, created_at
		FROM complaint_redirects
		WHERE complaint_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to query redirects: %w", err)
	}
	defer rows.Close()

	var redirects []models.ComplaintRedirect
	for rows.Next() {
		var redirect models.ComplaintRedirect
		err := rows.Scan(
			&redirect.ID, &redirect.ComplaintID,
			&redirect.FromDepartment, &redirect.ToDepartment,
			&redirect.RedirectedBy, &redirect.Reason, &redirect.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan redirect: %w", err)
		}
		redirects = append(redirects, redirect)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating redirects: %w", err)
	}
	return redirects, nil
}
