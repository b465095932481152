package models

// SubmitIssueRequest is the citizen submission payload. The image is a base64
// payload, optionally with a data URI prefix.
type SubmitIssueRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    IssueCategory `json:"category"`
	Department  string        `json:"department"`
	Location    string        `json:"location"`
	Latitude    *float64      `json:"latitude,omitempty"`
	Longitude   *float64      `json:"longitude,omitempty"`
	ImageBase64 string        `json:"image"`
	CitizenName string        `json:"citizen_name"`
}

// AnalyzeIssueRequest asks the AI to pre-fill submission fields from a photo
type AnalyzeIssueRequest struct {
	ImageBase64 string `json:"image"`
	Description string `json:"description"`
}

// IssueAnalysis is the AI's pre-fill suggestion for a submission
type IssueAnalysis struct {
	Problem       string `json:"problem"`
	GoverningBody string `json:"governing_body"`
	Category      string `json:"category"`
	Location      string `json:"location"`
	Reason        string `json:"reason"`
}

// RedirectRequest carries the optional operator note for a redirect. The
// target department is chosen by the decision engine, never by the caller.
type RedirectRequest struct {
	Reason string `json:"reason"`
}

// AdvanceStageRequest moves an accepted complaint to a new progress stage
type AdvanceStageRequest struct {
	Stage ProgressStage `json:"stage"`
}

// OfficialLoginRequest is the department dashboard login payload
type OfficialLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OfficialLoginResponse carries the signed token and the profile
type OfficialLoginResponse struct {
	Token   string   `json:"token"`
	Profile *Profile `json:"profile"`
}

// CitizenTokenRequest identifies a citizen by email for submission and tracking
type CitizenTokenRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UpdateRoleRequest changes an official's role (admin only)
type UpdateRoleRequest struct {
	Role UserRole `json:"role"`
}

// CreateOfficialRequest registers a new department official (admin only)
type CreateOfficialRequest struct {
	Email      string         `json:"email"`
	Password   string         `json:"password"`
	FullName   string         `json:"full_name"`
	Department DepartmentType `json:"department"`
	Role       UserRole       `json:"role"`
	Location   string         `json:"location"`
}

// UpdateProfileRequest updates the acting official's display fields
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Location *string `json:"location"`
}
