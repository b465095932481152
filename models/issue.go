package models

import "time"

// The citizen portal speaks its own vocabulary: issues with their own statuses
// and categories, projected from the complaint rows on every read. Nothing in
// this file is persisted.

// IssueStatus is the citizen-visible status of an issue
type IssueStatus string

const (
	IssuePending   IssueStatus = "pending"
	IssueSeen      IssueStatus = "seen"
	IssueProgress  IssueStatus = "progress"
	IssueCompleted IssueStatus = "completed"
)

// IssueStatusLabels maps citizen statuses to display labels and doubles as the
// set of valid filter values.
var IssueStatusLabels = map[IssueStatus]string{
	IssuePending:   "Pending",
	IssueSeen:      "Seen",
	IssueProgress:  "In Progress",
	IssueCompleted: "Completed",
}

// IssueCategory is the citizen-facing category vocabulary
type IssueCategory string

const (
	IssueRoadDamage     IssueCategory = "road_damage"
	IssueStreetlight    IssueCategory = "streetlight"
	IssueDrainage       IssueCategory = "drainage"
	IssueGarbage        IssueCategory = "garbage"
	IssueWaterSupply    IssueCategory = "water_supply"
	IssueElectricity    IssueCategory = "electricity"
	IssuePublicProperty IssueCategory = "public_property"
	IssueOther          IssueCategory = "other"
)

// IssueCategoryLabels maps citizen categories to display labels and doubles as
// the set of valid submission values.
var IssueCategoryLabels = map[IssueCategory]string{
	IssueRoadDamage:     "Road Damage",
	IssueStreetlight:    "Streetlight",
	IssueDrainage:       "Drainage",
	IssueGarbage:        "Garbage",
	IssueWaterSupply:    "Water Supply",
	IssueElectricity:    "Electricity",
	IssuePublicProperty: "Public Property",
	IssueOther:          "Other",
}

// DepartmentLabels maps departments to display labels.
var DepartmentLabels = map[DepartmentType]string{
	DeptMunicipal:     "Municipality",
	DeptPanchayat:     "Panchayat",
	DeptTownPanchayat: "Town Panchayat",
	DeptCorporation:   "Corporation",
	DeptWater:         "Water Department",
	DeptEnergy:        "Energy Department",
	DeptPWD:           "Public Works Department",
}

// Issue is the citizen-visible projection of a complaint
type Issue struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      IssueCategory `json:"category"`
	Status        IssueStatus   `json:"status"`
	StatusLabel   string        `json:"status_label"`
	Location      string        `json:"location"`
	Department    string        `json:"department,omitempty"`
	Images        []string      `json:"images"`
	SolutionImage string        `json:"solution_image,omitempty"`
	CreatedAt     string        `json:"created_at"`
	UpdatedAt     string        `json:"updated_at"`
	ResolvedAt    string        `json:"resolved_at,omitempty"`
}

// MapStatusToIssue projects a backend status pair onto the citizen status. A
// new complaint is pending; an accepted one is seen until work starts; the dead
// redirected status also reads as pending.
func MapStatusToIssue(status ComplaintStatus, stage ProgressStage) IssueStatus {
	switch status {
	case StatusNew:
		return IssuePending
	case StatusInProgress:
		if stage == StageProgress {
			return IssueProgress
		}
		return IssueSeen
	case StatusCompleted:
		return IssueCompleted
	default:
		return IssuePending
	}
}

// MapIssueToStatus is the reverse projection, used for status filters.
func MapIssueToStatus(status IssueStatus) (ComplaintStatus, ProgressStage) {
	switch status {
	case IssueSeen:
		return StatusInProgress, StageNotified
	case IssueProgress:
		return StatusInProgress, StageProgress
	case IssueCompleted:
		return StatusCompleted, StageCompleted
	default:
		return StatusNew, ""
	}
}

// MapCategoryToIssue projects a backend category onto a citizen category.
func MapCategoryToIssue(category ComplaintCategory) IssueCategory {
	switch category {
	case CategoryWater:
		return IssueWaterSupply
	case CategoryElectricity:
		return IssueElectricity
	case CategoryPWD:
		return IssueRoadDamage
	default:
		return IssueOther
	}
}

// MapIssueCategory maps a citizen category onto the backend vocabulary. The
// mapping is lossy: drainage folds into water, streetlight into electricity,
// public property into pwd, garbage into other.
func MapIssueCategory(category IssueCategory) ComplaintCategory {
	switch category {
	case IssueWaterSupply, IssueDrainage:
		return CategoryWater
	case IssueElectricity, IssueStreetlight:
		return CategoryElectricity
	case IssueRoadDamage, IssuePublicProperty:
		return CategoryPWD
	default:
		return CategoryOther
	}
}

// ProjectIssue computes the citizen view of a complaint. The projection is
// pure: it is re-derived on every read and persists nothing.
func ProjectIssue(c *Complaint) Issue {
	status := MapStatusToIssue(c.Status, ProgressStage(c.ProgressStage.String))

	category := IssueOther
	if c.Category.Valid {
		category = MapCategoryToIssue(ComplaintCategory(c.Category.String))
	}

	issue := Issue{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    category,
		Status:      status,
		StatusLabel: IssueStatusLabels[status],
		Location:    c.Location,
		Images:      c.ComplaintImages,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if c.AssignedDepartment.Valid {
		issue.Department = DepartmentLabels[DepartmentType(c.AssignedDepartment.String)]
	}
	if c.SolutionImage.Valid {
		issue.SolutionImage = c.SolutionImage.String
	}
	if c.ResolvedAt.Valid {
		issue.ResolvedAt = c.ResolvedAt.Time.UTC().Format(time.RFC3339)
	}
	return issue
}
