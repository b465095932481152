package models

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapStatusToIssue(t *testing.T) {
	tests := []struct {
		status   ComplaintStatus
		stage    ProgressStage
		expected IssueStatus
	}{
		{StatusNew, "", IssuePending},
		{StatusInProgress, StageNotified, IssueSeen},
		{StatusInProgress, StageProgress, IssueProgress},
		{StatusCompleted, StageCompleted, IssueCompleted},
		// The dead redirected value still projects to something sensible.
		{StatusRedirected, "", IssuePending},
		{"garbage", "", IssuePending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapStatusToIssue(tt.status, tt.stage),
			"%s/%s", tt.status, tt.stage)
	}
}

func TestStatusMappingRoundTrip(t *testing.T) {
	for _, status := range []IssueStatus{IssuePending, IssueSeen, IssueProgress, IssueCompleted} {
		backend, stage := MapIssueToStatus(status)
		assert.Equal(t, status, MapStatusToIssue(backend, stage), string(status))
	}
}

func TestMapIssueCategory(t *testing.T) {
	tests := []struct {
		category IssueCategory
		expected ComplaintCategory
	}{
		{IssueWaterSupply, CategoryWater},
		{IssueDrainage, CategoryWater},
		{IssueElectricity, CategoryElectricity},
		{IssueStreetlight, CategoryElectricity},
		{IssueRoadDamage, CategoryPWD},
		{IssuePublicProperty, CategoryPWD},
		{IssueGarbage, CategoryOther},
		{IssueOther, CategoryOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapIssueCategory(tt.category), string(tt.category))
	}
}

func TestMapCategoryToIssue(t *testing.T) {
	assert.Equal(t, IssueWaterSupply, MapCategoryToIssue(CategoryWater))
	assert.Equal(t, IssueElectricity, MapCategoryToIssue(CategoryElectricity))
	assert.Equal(t, IssueRoadDamage, MapCategoryToIssue(CategoryPWD))
	assert.Equal(t, IssueOther, MapCategoryToIssue(CategoryOther))
}

func TestProjectIssue(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	resolved := created.Add(48 * time.Hour)
	c := &Complaint{
		ID:                 "c-1",
		Title:              "Burst pipe",
		Description:        "Flooding the street",
		Category:           sql.NullString{String: "water", Valid: true},
		Status:             StatusCompleted,
		ProgressStage:      sql.NullString{String: "completed", Valid: true},
		Location:           "Mylapore",
		ComplaintImages:    []string{"https://img/1.jpg"},
		SolutionImage:      sql.NullString{String: "https://img/fixed.jpg", Valid: true},
		AssignedDepartment: sql.NullString{String: "water", Valid: true},
		ResolvedAt:         sql.NullTime{Time: resolved, Valid: true},
		CreatedAt:          created,
		UpdatedAt:          resolved,
	}

	issue := ProjectIssue(c)

	assert.Equal(t, "c-1", issue.ID)
	assert.Equal(t, IssueCompleted, issue.Status)
	assert.Equal(t, "Completed", issue.StatusLabel)
	assert.Equal(t, IssueWaterSupply, issue.Category)
	assert.Equal(t, "Water Department", issue.Department)
	assert.Equal(t, "https://img/fixed.jpg", issue.SolutionImage)
	assert.Equal(t, "2026-03-01T10:30:00Z", issue.CreatedAt)
	assert.Equal(t, "2026-03-03T10:30:00Z", issue.ResolvedAt)
}

func TestRestrictedDepartments(t *testing.T) {
	for _, dept := range []DepartmentType{DeptWater, DeptEnergy, DeptPWD} {
		assert.True(t, IsRestrictedDepartment(dept), string(dept))
	}
	for _, dept := range []DepartmentType{DeptMunicipal, DeptPanchayat, DeptTownPanchayat, DeptCorporation} {
		assert.False(t, IsRestrictedDepartment(dept), string(dept))
	}
}

func TestValidDepartment(t *testing.T) {
	assert.True(t, ValidDepartment(DeptMunicipal))
	assert.True(t, ValidDepartment(DeptPWD))
	assert.False(t, ValidDepartment("ministry"))
	assert.False(t, ValidDepartment(""))
}

func TestFirstImage(t *testing.T) {
	assert.Equal(t, "", (&Complaint{}).FirstImage())
	c := &Complaint{ComplaintImages: []string{"a.jpg", "b.jpg"}}
	assert.Equal(t, "a.jpg", c.FirstImage())
}
