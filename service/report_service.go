package service

import (
	"context"
	"math"
	"sort"
	"time"

	"cims/models"
)

// ReportService computes summary statistics over complaints created in a date
// range. The reduction is pure and idempotent: same complaint set, same report;
// nothing is persisted.
type ReportService struct {
	complaints ComplaintStore
}

// NewReportService creates a new report service
func NewReportService(complaints ComplaintStore) *ReportService {
	return &ReportService{complaints: complaints}
}

// Generate produces the report for the half-open range [start, end), optionally
// filtered to one department.
func (s *ReportService) Generate(ctx context.Context, start, end time.Time, department *models.DepartmentType) (*models.ReportData, error) {
	if !end.After(start) {
		return nil, ValidationError("report range end must be after start")
	}

	complaints, err := s.complaints.GetComplaintsInRange(start, end, department)
	if err != nil {
		return nil, err
	}
	return Reduce(complaints), nil
}

// Reduce computes the report figures from a complaint set.
func Reduce(complaints []models.Complaint) *models.ReportData {
	total := len(complaints)

	solved := 0
	var resolutionSum time.Duration
	resolvedCount := 0
	locationCounts := map[string]int{}
	categoryCounts := map[string]int{}
	dailyCounts := map[string]int{}

	for i := range complaints {
		c := &complaints[i]
		if c.Status == models.StatusCompleted {
			solved++
		}
		if c.ResolvedAt.Valid {
			resolutionSum += c.ResolvedAt.Time.Sub(c.CreatedAt)
			resolvedCount++
		}
		locationCounts[c.Location]++
		category := string(models.CategoryOther)
		if c.Category.Valid {
			category = c.Category.String
		}
		categoryCounts[category]++
		dailyCounts[c.CreatedAt.UTC().Format("2006-01-02")]++
	}

	// Mean resolution time in hours, one decimal. Guard the empty case: no
	// resolved complaints means zero, not a division by zero.
	averageResolution := 0.0
	if resolvedCount > 0 {
		hours := resolutionSum.Hours() / float64(resolvedCount)
		averageResolution = math.Round(hours*10) / 10
	}

	locations := make([]models.LocationCount, 0, len(locationCounts))
	for location, count := range locationCounts {
		locations = append(locations, models.LocationCount{Location: location, Count: count})
	}
	sort.Slice(locations, func(i, j int) bool {
		if locations[i].Count != locations[j].Count {
			return locations[i].Count > locations[j].Count
		}
		return locations[i].Location < locations[j].Location
	})

	categories := make([]models.CategoryCount, 0, len(categoryCounts))
	for category, count := range categoryCounts {
		categories = append(categories, models.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Category < categories[j].Category
	})

	trends := make([]models.DailyCount, 0, len(dailyCounts))
	for date, count := range dailyCounts {
		trends = append(trends, models.DailyCount{Date: date, Count: count})
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].Date < trends[j].Date
	})

	return &models.ReportData{
		TotalComplaints:       total,
		SolvedIssues:          solved,
		PendingIssues:         total - solved,
		AverageResolutionTime: averageResolution,
		LocationDistribution:  locations,
		CategoryDistribution:  categories,
		DailyTrends:           trends,
	}
}
