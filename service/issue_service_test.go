package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cims/models"
)

const citizenEmail = "ravi@example.com"

func testImage() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
}

func submitRequest() *models.SubmitIssueRequest {
	return &models.SubmitIssueRequest{
		Title:       "Burst water pipe",
		Description: "Pipe burst flooding the street",
		Category:    models.IssueWaterSupply,
		Location:    "Mylapore",
		ImageBase64: testImage(),
		CitizenName: "Ravi",
	}
}

func newIssueService(store *fakeComplaintStore) (*IssueService, *fakeNotificationStore, *fakeUploader, *fakeFeed) {
	notifications := &fakeNotificationStore{}
	uploader := &fakeUploader{}
	feed := &fakeFeed{}
	svc := NewIssueService(store, notifications, uploader, nil, feed)
	return svc, notifications, uploader, feed
}

func TestSubmitIssue(t *testing.T) {
	store := newFakeComplaintStore()
	svc, _, uploader, feed := newIssueService(store)

	issue, err := svc.SubmitIssue(context.Background(), citizenEmail, submitRequest())
	require.NoError(t, err)

	assert.Equal(t, models.IssuePending, issue.Status)
	assert.Equal(t, models.IssueWaterSupply, issue.Category)

	c, err := store.GetComplaintByID(issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, c.Status)
	assert.Equal(t, "water", c.Category.String)
	assert.Equal(t, citizenEmail, c.CitizenEmail.String)
	assert.False(t, c.AssignedDepartment.Valid)

	require.Len(t, uploader.uploads, 1)
	assert.Equal(t, "image/jpeg", uploader.uploads[0].ContentType)
	assert.Equal(t, []string{"mem://" + uploader.uploads[0].Key}, c.ComplaintImages)
	assert.Equal(t, []string{issue.ID}, feed.published)
}

func TestSubmitIssueValidation(t *testing.T) {
	store := newFakeComplaintStore()
	svc, _, uploader, _ := newIssueService(store)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.SubmitIssueRequest)
	}{
		{"missing title", func(r *models.SubmitIssueRequest) { r.Title = " " }},
		{"missing description", func(r *models.SubmitIssueRequest) { r.Description = "" }},
		{"missing location", func(r *models.SubmitIssueRequest) { r.Location = "" }},
		{"missing image", func(r *models.SubmitIssueRequest) { r.ImageBase64 = "" }},
		{"bad image encoding", func(r *models.SubmitIssueRequest) { r.ImageBase64 = "not base64 at all!!!" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := submitRequest()
			tt.mutate(req)
			_, err := svc.SubmitIssue(ctx, citizenEmail, req)
			var verr ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
	// No complaint rows and no stray uploads from rejected submissions.
	issues, _ := svc.ListIssues(ctx, citizenEmail)
	assert.Empty(t, issues)
	assert.Empty(t, uploader.uploads)
}

func TestSubmitIssueWithDepartment(t *testing.T) {
	store := newFakeComplaintStore()
	svc, _, _, _ := newIssueService(store)

	req := submitRequest()
	req.Department = string(models.DeptCorporation)
	issue, err := svc.SubmitIssue(context.Background(), citizenEmail, req)
	require.NoError(t, err)

	c, _ := store.GetComplaintByID(issue.ID)
	assert.Equal(t, string(models.DeptCorporation), c.AssignedDepartment.String)

	// Unknown departments are ignored rather than rejected.
	req = submitRequest()
	req.Department = "ministry_of_silly_walks"
	issue, err = svc.SubmitIssue(context.Background(), citizenEmail, req)
	require.NoError(t, err)
	c, _ = store.GetComplaintByID(issue.ID)
	assert.False(t, c.AssignedDepartment.Valid)
}

func TestIssueProjectionFollowsLifecycle(t *testing.T) {
	store := newFakeComplaintStore()
	issueSvc, _, _, _ := newIssueService(store)
	complaintSvc := NewComplaintService(store, store, &fakeNotificationStore{}, &fakeFeed{})
	official := municipalOfficial()
	ctx := context.Background()

	issue, err := issueSvc.SubmitIssue(ctx, citizenEmail, submitRequest())
	require.NoError(t, err)
	id := issue.ID

	status := func() models.IssueStatus {
		got, err := issueSvc.GetIssue(ctx, citizenEmail, id)
		require.NoError(t, err)
		return got.Status
	}

	assert.Equal(t, models.IssuePending, status())

	require.NoError(t, complaintSvc.Accept(ctx, id, official))
	assert.Equal(t, models.IssueSeen, status())

	require.NoError(t, complaintSvc.AdvanceStage(ctx, id, official, models.StageProgress))
	assert.Equal(t, models.IssueProgress, status())

	require.NoError(t, complaintSvc.Complete(ctx, id, official, "mem://solution.jpg"))
	assert.Equal(t, models.IssueCompleted, status())

	final, err := issueSvc.GetIssue(ctx, citizenEmail, id)
	require.NoError(t, err)
	assert.Equal(t, "mem://solution.jpg", final.SolutionImage)
	assert.NotEmpty(t, final.ResolvedAt)
}

func TestGetIssueOwnership(t *testing.T) {
	store := newFakeComplaintStore()
	svc, _, _, _ := newIssueService(store)
	ctx := context.Background()

	issue, err := svc.SubmitIssue(ctx, citizenEmail, submitRequest())
	require.NoError(t, err)

	_, err = svc.GetIssue(ctx, "someone-else@example.com", issue.ID)
	assert.ErrorIs(t, err, ErrNotVisible)
}

func TestListIssuesByStatus(t *testing.T) {
	store := newFakeComplaintStore()
	svc, _, _, _ := newIssueService(store)
	complaintSvc := NewComplaintService(store, store, &fakeNotificationStore{}, &fakeFeed{})
	ctx := context.Background()

	first, err := svc.SubmitIssue(ctx, citizenEmail, submitRequest())
	require.NoError(t, err)
	_, err = svc.SubmitIssue(ctx, citizenEmail, submitRequest())
	require.NoError(t, err)

	require.NoError(t, complaintSvc.Accept(ctx, first.ID, municipalOfficial()))

	pending, err := svc.ListIssuesByStatus(ctx, citizenEmail, models.IssuePending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	seen, err := svc.ListIssuesByStatus(ctx, citizenEmail, models.IssueSeen)
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, first.ID, seen[0].ID)

	both, err := svc.ListIssuesByStatus(ctx, citizenEmail, models.IssuePending, models.IssueSeen)
	require.NoError(t, err)
	assert.Len(t, both, 2)
}

func TestAnalyzeIssueImageCoercesVocabulary(t *testing.T) {
	store := newFakeComplaintStore()
	classifier := &fakeClassifier{analysis: &models.IssueAnalysis{
		Problem:       "Collapsed wall",
		GoverningBody: "federal_government",
		Category:      "masonry",
		Location:      "near the market",
		Reason:        "public safety hazard",
	}}
	svc := NewIssueService(store, &fakeNotificationStore{}, &fakeUploader{}, classifier, &fakeFeed{})

	analysis, err := svc.AnalyzeIssueImage(context.Background(), &models.AnalyzeIssueRequest{
		ImageBase64: testImage(),
		Description: "wall collapsed",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.IssueOther), analysis.Category)
	assert.Equal(t, string(models.DeptMunicipal), analysis.GoverningBody)
	assert.Equal(t, "Collapsed wall", analysis.Problem)
}

func TestAnalyzeIssueImageWithoutClassifier(t *testing.T) {
	store := newFakeComplaintStore()
	svc, _, _, _ := newIssueService(store)

	_, err := svc.AnalyzeIssueImage(context.Background(), &models.AnalyzeIssueRequest{ImageBase64: testImage()})
	require.Error(t, err)
	// Missing configuration is a server problem, not a request problem.
	var verr ValidationError
	assert.False(t, errors.As(err, &verr))
}
