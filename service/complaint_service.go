package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"cims/models"
	"cims/realtime"
)

// ComplaintService drives the complaint lifecycle state machine:
//
//	new → in_progress(notified) → in_progress(progress) → completed
//
// All transitions are server-authoritative; the store's status writer is the
// only place status, progress_stage and resolved_at change, and it is always
// invoked with explicit target values.
type ComplaintService struct {
	complaints    ComplaintStore
	redirects     RedirectStore
	notifications NotificationStore
	feed          realtime.Feed
}

// NewComplaintService creates a new complaint lifecycle service
func NewComplaintService(
	complaints ComplaintStore,
	redirects RedirectStore,
	notifications NotificationStore,
	feed realtime.Feed,
) *ComplaintService {
	return &ComplaintService{
		complaints:    complaints,
		redirects:     redirects,
		notifications: notifications,
		feed:          feed,
	}
}

// validStageTransitions names the allowed progress-stage moves for an accepted
// complaint. Completion is not here: it goes through Complete, which also
// demands the solution image.
var validStageTransitions = map[models.ProgressStage][]models.ProgressStage{
	models.StageNotified: {models.StageProgress},
}

func stageTransitionAllowed(from, to models.ProgressStage) bool {
	for _, allowed := range validStageTransitions[from] {
		if to == allowed {
			return true
		}
	}
	return false
}

// GetQueue returns the department's complaint queue: complaints assigned to
// the department plus unassigned ones, newest first.
func (s *ComplaintService) GetQueue(ctx context.Context, department models.DepartmentType, status models.ComplaintStatus) ([]models.Complaint, error) {
	if status == "" {
		return s.complaints.GetComplaintsByDepartment(department)
	}
	return s.complaints.GetComplaintsByStatus(status, department)
}

// GetComplaint returns a single complaint if it is visible to the department.
func (s *ComplaintService) GetComplaint(ctx context.Context, id string, department models.DepartmentType) (*models.Complaint, error) {
	complaint, err := s.complaints.GetComplaintByID(id)
	if err != nil {
		return nil, err
	}
	if complaint.AssignedDepartment.Valid && complaint.AssignedDepartment.String != string(department) {
		return nil, ErrNotVisible
	}
	return complaint, nil
}

// GetRedirectHistory returns the complaint's redirect audit trail, newest first.
func (s *ComplaintService) GetRedirectHistory(ctx context.Context, complaintID string) ([]models.ComplaintRedirect, error) {
	return s.redirects.GetRedirectsByComplaint(complaintID)
}

// Accept assigns a new complaint to the acting official and moves it to
// in_progress/notified. The store applies the transition atomically, so two
// officials racing on the same complaint leave exactly one assignee. The
// citizen notification is best-effort: its failure is logged, never returned.
func (s *ComplaintService) Accept(ctx context.Context, complaintID string, official *models.Profile) error {
	complaint, err := s.complaints.GetComplaintByID(complaintID)
	if err != nil {
		return err
	}
	if complaint.Status != models.StatusNew {
		return fmt.Errorf("%w: cannot accept complaint in status %s", ErrInvalidTransition, complaint.Status)
	}
	if complaint.AssignedDepartment.Valid && complaint.AssignedDepartment.String != string(official.Department) {
		return ErrNotVisible
	}

	if err := s.complaints.AcceptComplaint(complaintID, official.ID, official.Department); err != nil {
		return err
	}

	s.notifyCitizen(complaint, "Complaint Accepted",
		fmt.Sprintf("Your complaint %q has been accepted.", complaint.Title))
	s.publishChange(ctx, complaintID)
	return nil
}

// AdvanceStage moves an accepted complaint between progress stages. Only the
// owning department may advance it, and only along the transition table.
func (s *ComplaintService) AdvanceStage(ctx context.Context, complaintID string, official *models.Profile, stage models.ProgressStage) error {
	if stage == models.StageCompleted {
		return fmt.Errorf("%w: completion requires a solution image, use Complete", ErrInvalidTransition)
	}
	if stage != models.StageProgress {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, stage)
	}

	complaint, err := s.complaints.GetComplaintByID(complaintID)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(complaint, official); err != nil {
		return err
	}
	current := models.ProgressStage(complaint.ProgressStage.String)
	if !stageTransitionAllowed(current, stage) {
		return fmt.Errorf("%w: cannot move from stage %q to %q", ErrInvalidTransition, current, stage)
	}

	if err := s.complaints.UpdateStatus(complaintID, models.StatusInProgress, stage, nil, nil); err != nil {
		return err
	}
	s.publishChange(ctx, complaintID)
	return nil
}

// CanComplete runs Complete's state checks without writing anything. The
// handler calls it before uploading the solution image so a rejected
// completion leaves no orphaned object in the bucket.
func (s *ComplaintService) CanComplete(ctx context.Context, complaintID string, official *models.Profile) error {
	_, err := s.completableBy(complaintID, official)
	return err
}

func (s *ComplaintService) completableBy(complaintID string, official *models.Profile) (*models.Complaint, error) {
	complaint, err := s.complaints.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(complaint, official); err != nil {
		return nil, err
	}
	if models.ProgressStage(complaint.ProgressStage.String) != models.StageProgress {
		return nil, fmt.Errorf("%w: complaint must be in the progress stage to complete", ErrInvalidTransition)
	}
	return complaint, nil
}

// Complete finishes a complaint. The solution image is validated before any
// backend call; completion sets status and stage to completed and stamps
// resolved_at.
func (s *ComplaintService) Complete(ctx context.Context, complaintID string, official *models.Profile, solutionImageURL string) error {
	if solutionImageURL == "" {
		return ErrSolutionImageRequired
	}

	complaint, err := s.completableBy(complaintID, official)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = s.complaints.UpdateStatus(complaintID, models.StatusCompleted, models.StageCompleted, &solutionImageURL, &now)
	if err != nil {
		return err
	}

	s.notifyCitizen(complaint, "Complaint Resolved",
		fmt.Sprintf("Your complaint %q has been resolved.", complaint.Title))
	s.publishChange(ctx, complaintID)
	return nil
}

func (s *ComplaintService) requireOwnership(complaint *models.Complaint, official *models.Profile) error {
	if complaint.Status != models.StatusInProgress {
		return fmt.Errorf("%w: complaint is in status %s", ErrInvalidTransition, complaint.Status)
	}
	if !complaint.AssignedDepartment.Valid || complaint.AssignedDepartment.String != string(official.Department) {
		return ErrNotAssigned
	}
	return nil
}

// notifyCitizen writes an inbox row for the complaint's citizen. Failures are
// logged and swallowed: a missed notification must not roll back a transition.
func (s *ComplaintService) notifyCitizen(complaint *models.Complaint, title, message string) {
	if s.notifications == nil || !complaint.CitizenEmail.Valid {
		return
	}
	n := &models.Notification{
		UserEmail: complaint.CitizenEmail.String,
		Title:     title,
		Message:   message,
	}
	if err := s.notifications.CreateNotification(n); err != nil {
		log.Warn().Err(err).Str("complaint_id", complaint.ID).Msg("citizen notification failed")
	}
}

func (s *ComplaintService) publishChange(ctx context.Context, complaintID string) {
	if s.feed == nil {
		return
	}
	if err := s.feed.PublishComplaintChanged(ctx, complaintID); err != nil {
		log.Warn().Err(err).Str("complaint_id", complaintID).Msg("change feed publish failed")
	}
}

// nullString wraps a string in a valid sql.NullString, used by services when
// building complaint rows.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
