package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cims/models"
)

// ComplaintRepository handles database operations for complaints
type ComplaintRepository struct {
	db *sql.DB
}

// NewComplaintRepository creates a new complaint repository
func NewComplaintRepository(db *sql.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

const complaintColumns = `
	id, title, description, category, status, progress_stage,
	citizen_name, citizen_phone, citizen_email, location, latitude, longitude,
	complaint_images, solution_image, assigned_department, assigned_to,
	resolved_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComplaint(row rowScanner) (*models.Complaint, error) {
	var c models.Complaint
	var images sql.NullString
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.Category, &c.Status, &c.ProgressStage,
		&c.CitizenName, &c.CitizenPhone, &c.CitizenEmail, &c.Location, &c.Latitude, &c.Longitude,
		&images, &c.SolutionImage, &c.AssignedDepartment, &c.AssignedTo,
		&c.ResolvedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if images.Valid && images.String != "" {
		if err := json.Unmarshal([]byte(images.String), &c.ComplaintImages); err != nil {
			return nil, fmt.Errorf("failed to decode complaint images: %w", err)
		}
	}
	return &c, nil
}

// CreateComplaint inserts a new complaint. A fresh UUID is assigned when the
// caller did not provide one; created/updated timestamps are set to now (UTC).
func (r *ComplaintRepository) CreateComplaint(complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now

	images, err := json.Marshal(complaint.ComplaintImages)
	if err != nil {
		return fmt.Errorf("failed to encode complaint images: %w", err)
	}

	query := `
		INSERT INTO complaints (
			id, title, description, category, status, progress_stage,
			citizen_name, citizen_phone, citizen_email, location, latitude, longitude,
			complaint_images, solution_image, assigned_department, assigned_to,
			resolved_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(
		query,
		complaint.ID, complaint.Title, complaint.Description, complaint.Category,
		complaint.Status, complaint.ProgressStage,
		complaint.CitizenName, complaint.CitizenPhone, complaint.CitizenEmail,
		complaint.Location, complaint.Latitude, complaint.Longitude,
		string(images), complaint.SolutionImage,
		complaint.AssignedDepartment, complaint.AssignedTo,
		complaint.ResolvedAt, complaint.CreatedAt, complaint.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

// GetComplaintByID retrieves a complaint by its ID
func (r *ComplaintRepository) GetComplaintByID(id string) (*models.Complaint, error) {
	query := `SELECT` + complaintColumns + ` FROM complaints WHERE id = ?`
	complaint, err := scanComplaint(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}
	return complaint, nil
}

// GetComplaintsByDepartment returns the department queue, newest first. A
// complaint is visible to a department iff it is assigned to that department
// or not assigned at all.
func (r *ComplaintRepository) GetComplaintsByDepartment(department models.DepartmentType) ([]models.Complaint, error) {
	query := `
		SELECT` + complaintColumns + `
		FROM complaints
		WHERE assigned_department = ? OR assigned_department IS NULL
		ORDER BY created_at DESC
	`
	return r.queryComplaints(query, string(department))
}

// GetComplaintsByStatus returns complaints with the given status scoped to a
// department queue, newest first.
func (r *ComplaintRepository) GetComplaintsByStatus(status models.ComplaintStatus, department models.DepartmentType) ([]models.Complaint, error) {
	query := `
		SELECT` + complaintColumns + `
		FROM complaints
		WHERE status = ? AND (assigned_department = ? OR assigned_department IS NULL)
		ORDER BY created_at DESC
	`
	return r.queryComplaints(query, string(status), string(department))
}

// GetComplaintsByCitizenEmail returns all complaints submitted by a citizen,
// newest first.
func (r *ComplaintRepository) GetComplaintsByCitizenEmail(email string) ([]models.Complaint, error) {
	query := `
		SELECT` + complaintColumns + `
		FROM complaints
		WHERE citizen_email = ?
		ORDER BY created_at DESC
	`
	return r.queryComplaints(query, email)
}

// GetComplaintsInRange returns complaints created in the half-open range
// [start, end), optionally filtered by assigned department, oldest first.
func (r *ComplaintRepository) GetComplaintsInRange(start, end time.Time, department *models.DepartmentType) ([]models.Complaint, error) {
	query := `
		SELECT` + complaintColumns + `
		FROM complaints
		WHERE created_at >= ? AND created_at < ?
	`
	args := []interface{}{start.UTC(), end.UTC()}
	if department != nil {
		query += ` AND assigned_department = ?`
		args = append(args, string(*department))
	}
	query += ` ORDER BY created_at ASC`
	return r.queryComplaints(query, args...)
}

func (r *ComplaintRepository) queryComplaints(query string, args ...interface{}) ([]models.Complaint, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, *complaint)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating complaints: %w", err)
	}
	return complaints, nil
}

// AcceptComplaint atomically assigns a new complaint to an official and moves it
// to in_progress/notified. The WHERE guard makes the first accept win: a second
// accept racing on the same complaint matches no rows and returns ErrConflict.
func (r *ComplaintRepository) AcceptComplaint(id, officialID string, department models.DepartmentType) error {
	query := `
		UPDATE complaints
		SET status = ?, progress_stage = ?, assigned_to = ?, assigned_department = ?, updated_at = ?
		WHERE id = ? AND status = ?
		  AND (assigned_department IS NULL OR assigned_department = ?)
	`
	result, err := r.db.Exec(
		query,
		models.StatusInProgress, models.StageNotified, officialID, string(department),
		time.Now().UTC(), id, models.StatusNew, string(department),
	)
	if err != nil {
		return fmt.Errorf("failed to accept complaint: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to accept complaint: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

// UpdateStatus is the sole writer of status/progress_stage/resolved_at. It is
// invoked with explicit target values; callers never compute intermediate state.
func (r *ComplaintRepository) UpdateStatus(
	id string,
	status models.ComplaintStatus,
	stage models.ProgressStage,
	solutionImage *string,
	resolvedAt *time.Time,
) error {
	query := `
		UPDATE complaints
		SET status = ?, progress_stage = ?,
		    solution_image = COALESCE(?, solution_image),
		    resolved_at = COALESCE(?, resolved_at),
		    updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query, status, stage, solutionImage, resolvedAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update complaint status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update complaint status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RedirectComplaint retargets a complaint and appends its audit row in a single
// transaction: either the department changes and the redirect is recorded, or
// neither happens. Completed complaints are terminal: the WHERE guard keeps a
// redirect from reopening one, returning ErrConflict instead.
func (r *ComplaintRepository) RedirectComplaint(redirect *models.ComplaintRedirect) error {
	if redirect.ID == "" {
		redirect.ID = uuid.New().String()
	}
	redirect.CreatedAt = time.Now().UTC()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin redirect transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE complaints
		SET assigned_department = ?, status = ?, progress_stage = ?, updated_at = ?
		WHERE id = ? AND status <> ?
	`, string(redirect.ToDepartment), models.StatusInProgress, models.StageNotified,
		redirect.CreatedAt, redirect.ComplaintID, models.StatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to retarget complaint: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to retarget complaint: %w", err)
	}
	if affected == 0 {
		// Row missing or already completed; callers resolve which via a read.
		return ErrConflict
	}

	_, err = tx.Exec(`
		INSERT INTO complaint_redirects (
			id, complaint_id, from_department, to_department, redirected_by, reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, redirect.ID, redirect.ComplaintID, string(redirect.FromDepartment),
		string(redirect.ToDepartment), redirect.RedirectedBy, redirect.Reason, redirect.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record redirect: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit redirect: %w", err)
	}
	return nil
}
