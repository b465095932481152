package models

import (
	"database/sql"
	"time"
)

// ComplaintStatus represents the possible statuses of a complaint
type ComplaintStatus string

const (
	StatusNew        ComplaintStatus = "new"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusCompleted  ComplaintStatus = "completed"
	// StatusRedirected is a declared status no transition assigns: a redirected
	// complaint lands in in_progress for its new department. It stays in the
	// vocabulary because stored rows and clients may still carry it.
	StatusRedirected ComplaintStatus = "redirected"
)

// ProgressStage represents the sub-state of an in_progress complaint
type ProgressStage string

const (
	StageNotified  ProgressStage = "notified"
	StageProgress  ProgressStage = "progress"
	StageCompleted ProgressStage = "completed"
)

// DepartmentType represents a governing body that can own complaints
type DepartmentType string

const (
	DeptMunicipal     DepartmentType = "municipal"
	DeptPanchayat     DepartmentType = "panchayat"
	DeptTownPanchayat DepartmentType = "town_panchayat"
	DeptCorporation   DepartmentType = "corporation"
	DeptWater         DepartmentType = "water"
	DeptEnergy        DepartmentType = "energy"
	DeptPWD           DepartmentType = "pwd"
)

// ValidDepartment reports whether d is a known department.
func ValidDepartment(d DepartmentType) bool {
	switch d {
	case DeptMunicipal, DeptPanchayat, DeptTownPanchayat, DeptCorporation,
		DeptWater, DeptEnergy, DeptPWD:
		return true
	}
	return false
}

// RestrictedDepartments are the specialist targets of redirection. Their
// officials may only accept complaints, never redirect them onward.
var RestrictedDepartments = map[DepartmentType]bool{
	DeptWater:  true,
	DeptEnergy: true,
	DeptPWD:    true,
}

// IsRestrictedDepartment reports whether d is accept-only.
func IsRestrictedDepartment(d DepartmentType) bool {
	return RestrictedDepartments[d]
}

// ComplaintCategory is the backend complaint vocabulary the keyword
// categorizer and the redirect fallback operate on
type ComplaintCategory string

const (
	CategoryWater       ComplaintCategory = "water"
	CategoryElectricity ComplaintCategory = "electricity"
	CategoryPWD         ComplaintCategory = "pwd"
	CategoryOther       ComplaintCategory = "other"
)

// UserRole represents an official's role on the department dashboard
type UserRole string

const (
	RoleOfficial UserRole = "official"
	RoleAdmin    UserRole = "admin"
)

// Complaint represents a complaint entity
type Complaint struct {
	ID                 string          `db:"id" json:"id"`
	Title              string          `db:"title" json:"title"`
	Description        string          `db:"description" json:"description"`
	Category           sql.NullString  `db:"category" json:"category"`
	Status             ComplaintStatus `db:"status" json:"status"`
	ProgressStage      sql.NullString  `db:"progress_stage" json:"progress_stage"`
	CitizenName        string          `db:"citizen_name" json:"citizen_name"`
	CitizenPhone       string          `db:"citizen_phone" json:"citizen_phone"`
	CitizenEmail       sql.NullString  `db:"citizen_email" json:"citizen_email"`
	Location           string          `db:"location" json:"location"`
	Latitude           sql.NullFloat64 `db:"latitude" json:"latitude"`
	Longitude          sql.NullFloat64 `db:"longitude" json:"longitude"`
	ComplaintImages    []string        `db:"complaint_images" json:"complaint_images"`
	SolutionImage      sql.NullString  `db:"solution_image" json:"solution_image"`
	AssignedDepartment sql.NullString  `db:"assigned_department" json:"assigned_department"`
	AssignedTo         sql.NullString  `db:"assigned_to" json:"assigned_to"`
	ResolvedAt         sql.NullTime    `db:"resolved_at" json:"resolved_at"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// FirstImage returns the first complaint image, the one the redirection
// decision engine classifies, or "" when the complaint has no images.
func (c *Complaint) FirstImage() string {
	if len(c.ComplaintImages) == 0 {
		return ""
	}
	return c.ComplaintImages[0]
}

// ComplaintRedirect is one immutable row of the redirect audit trail
type ComplaintRedirect struct {
	ID             string         `db:"id" json:"id"`
	ComplaintID    string         `db:"complaint_id" json:"complaint_id"`
	FromDepartment DepartmentType `db:"from_department" json:"from_department"`
	ToDepartment   DepartmentType `db:"to_department" json:"to_department"`
	RedirectedBy   string         `db:"redirected_by" json:"redirected_by"`
	Reason         sql.NullString `db:"reason" json:"reason"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// Profile represents a department official
type Profile struct {
	ID           string         `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	FullName     string         `db:"full_name" json:"full_name"`
	Department   DepartmentType `db:"department" json:"department"`
	Role         UserRole       `db:"role" json:"role"`
	Location     string         `db:"location" json:"location"`
	PasswordHash string         `db:"password_hash" json:"-"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Notification is one entry in a citizen's notification inbox
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserEmail string    `db:"user_email" json:"user_email"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
