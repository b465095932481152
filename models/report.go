package models

// LocationCount is one bucket of the location histogram
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// CategoryCount is one bucket of the category histogram
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DailyCount is one day of the submission trend, keyed by UTC date
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ReportData is the aggregated resolution report for a date range
type ReportData struct {
	TotalComplaints       int             `json:"total_complaints"`
	SolvedIssues          int             `json:"solved_issues"`
	PendingIssues         int             `json:"pending_issues"`
	AverageResolutionTime float64         `json:"average_resolution_time"`
	LocationDistribution  []LocationCount `json:"location_distribution"`
	CategoryDistribution  []CategoryCount `json:"category_distribution"`
	DailyTrends           []DailyCount    `json:"daily_trends"`
}
