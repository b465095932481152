package service

import (
	"time"

	"cims/models"
)

// Store interfaces consumed by the services. The repository package provides
// the MySQL implementations; tests substitute in-memory fakes.

// ComplaintStore is the complaint persistence surface. AcceptComplaint and
// RedirectComplaint are atomic: each call either fully applies or not at all.
type ComplaintStore interface {
	CreateComplaint(complaint *models.Complaint) error
	GetComplaintByID(id string) (*models.Complaint, error)
	GetComplaintsByDepartment(department models.DepartmentType) ([]models.Complaint, error)
	GetComplaintsByStatus(status models.ComplaintStatus, department models.DepartmentType) ([]models.Complaint, error)
	GetComplaintsByCitizenEmail(email string) ([]models.Complaint, error)
	GetComplaintsInRange(start, end time.Time, department *models.DepartmentType) ([]models.Complaint, error)
	AcceptComplaint(id, officialID string, department models.DepartmentType) error
	UpdateStatus(id string, status models.ComplaintStatus, stage models.ProgressStage, solutionImage *string, resolvedAt *time.Time) error
	RedirectComplaint(redirect *models.ComplaintRedirect) error
}

// RedirectStore reads the redirect audit trail.
type RedirectStore interface {
	GetRedirectsByComplaint(complaintID string) ([]models.ComplaintRedirect, error)
}

// NotificationStore appends to and reads the citizen notification inbox.
type NotificationStore interface {
	CreateNotification(n *models.Notification) error
	GetNotificationsByEmail(email string) ([]models.Notification, error)
	MarkNotificationRead(id int64, email string) error
}

// ProfileStore is the official-profile persistence surface.
type ProfileStore interface {
	CreateProfile(profile *models.Profile) error
	GetProfileByID(id string) (*models.Profile, error)
	GetProfileByEmail(email string) (*models.Profile, error)
	GetAllProfiles() ([]models.Profile, error)
	UpdateRole(id string, role models.UserRole) error
	UpdateProfile(id string, fullName, location *string) error
}
