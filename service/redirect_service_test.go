package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cims/models"
	"cims/repository"
)

func newImageComplaint(t *testing.T, store *fakeComplaintStore, title, description string) string {
	t.Helper()
	c := &models.Complaint{
		Title:           title,
		Description:     description,
		Status:          models.StatusNew,
		Location:        "T Nagar",
		ComplaintImages: []string{"https://img.example/issue.jpg"},
	}
	require.NoError(t, store.CreateComplaint(c))
	return c.ID
}

func TestRedirectUsesClassifierAnswer(t *testing.T) {
	store := newFakeComplaintStore()
	classifier := &fakeClassifier{target: models.DeptWater}
	svc := NewRedirectService(store, classifier, &fakeFeed{})

	id := newImageComplaint(t, store, "Leaking pipe", "Water everywhere")
	redirect, err := svc.Redirect(context.Background(), id, municipalOfficial(), "")
	require.NoError(t, err)

	assert.Equal(t, models.DeptWater, redirect.ToDepartment)
	assert.Equal(t, models.DeptMunicipal, redirect.FromDepartment)
	assert.Equal(t, "AI-categorized as water", redirect.Reason.String)
	assert.Equal(t, 1, classifier.calls)

	c, _ := store.GetComplaintByID(id)
	assert.Equal(t, string(models.DeptWater), c.AssignedDepartment.String)
	assert.Equal(t, models.StatusInProgress, c.Status)
	assert.Equal(t, string(models.StageNotified), c.ProgressStage.String)
}

func TestRedirectRetriesThenFallsBack(t *testing.T) {
	store := newFakeComplaintStore()
	classifier := &fakeClassifier{err: errors.New("api unavailable")}
	svc := NewRedirectService(store, classifier, &fakeFeed{})

	id := newImageComplaint(t, store, "Transformer sparking", "The electricity pole is sparking at night")
	redirect, err := svc.Redirect(context.Background(), id, municipalOfficial(), "")
	require.NoError(t, err)

	// Two classifier attempts, then the keyword categorizer decides.
	assert.Equal(t, 2, classifier.calls)
	assert.Equal(t, models.DeptEnergy, redirect.ToDepartment)
}

func TestRedirectWithoutImageUsesKeywords(t *testing.T) {
	store := newFakeComplaintStore()
	classifier := &fakeClassifier{target: models.DeptWater}
	svc := NewRedirectService(store, classifier, &fakeFeed{})

	c := &models.Complaint{
		Title:       "Huge pothole",
		Description: "The road near the school is damaged",
		Status:      models.StatusNew,
		Location:    "Velachery",
	}
	require.NoError(t, store.CreateComplaint(c))

	redirect, err := svc.Redirect(context.Background(), c.ID, municipalOfficial(), "")
	require.NoError(t, err)

	assert.Zero(t, classifier.calls, "classifier must not run without an image")
	assert.Equal(t, models.DeptPWD, redirect.ToDepartment)
	assert.Equal(t, "AI-categorized as pwd", redirect.Reason.String)
}

func TestRedirectDefaultsToMunicipal(t *testing.T) {
	store := newFakeComplaintStore()
	svc := NewRedirectService(store, nil, &fakeFeed{})

	c := &models.Complaint{
		Title:       "Stray dogs",
		Description: "A pack of stray dogs in the park",
		Status:      models.StatusNew,
	}
	require.NoError(t, store.CreateComplaint(c))

	redirect, err := svc.Redirect(context.Background(), c.ID, municipalOfficial(), "")
	require.NoError(t, err)
	assert.Equal(t, models.DeptMunicipal, redirect.ToDepartment)
}

func TestRedirectKeepsOperatorReason(t *testing.T) {
	store := newFakeComplaintStore()
	svc := NewRedirectService(store, nil, &fakeFeed{})

	id := newImageComplaint(t, store, "Leaking pipe", "Water everywhere")
	redirect, err := svc.Redirect(context.Background(), id, municipalOfficial(), "duplicate of ticket 42")
	require.NoError(t, err)
	assert.Equal(t, "duplicate of ticket 42", redirect.Reason.String)
}

func TestRestrictedDepartmentsCannotRedirect(t *testing.T) {
	store := newFakeComplaintStore()
	svc := NewRedirectService(store, nil, &fakeFeed{})
	id := newImageComplaint(t, store, "Leaking pipe", "Water everywhere")

	for _, dept := range []models.DepartmentType{models.DeptWater, models.DeptEnergy, models.DeptPWD} {
		official := &models.Profile{ID: "o", Department: dept}
		_, err := svc.Redirect(context.Background(), id, official, "")
		assert.ErrorIs(t, err, ErrRedirectRestricted, string(dept))
	}
	// No audit rows from rejected redirects.
	redirects, _ := store.GetRedirectsByComplaint(id)
	assert.Empty(t, redirects)
}

func TestEachRedirectAppendsOneAuditRow(t *testing.T) {
	store := newFakeComplaintStore()
	svc := NewRedirectService(store, nil, &fakeFeed{})
	ctx := context.Background()

	id := newImageComplaint(t, store, "Leaking pipe", "Water everywhere near the pump")
	_, err := svc.Redirect(ctx, id, municipalOfficial(), "first")
	require.NoError(t, err)

	corporation := &models.Profile{ID: "official-2", Department: models.DeptCorporation}
	_, err = svc.Redirect(ctx, id, corporation, "second")
	require.NoError(t, err)

	redirects, err := store.GetRedirectsByComplaint(id)
	require.NoError(t, err)
	require.Len(t, redirects, 2)
	// Newest first.
	assert.Equal(t, "second", redirects[0].Reason.String)
	assert.Equal(t, models.DeptCorporation, redirects[0].FromDepartment)
	assert.Equal(t, "first", redirects[1].Reason.String)
}

func TestRedirectCompletedComplaintRejected(t *testing.T) {
	store := newFakeComplaintStore()
	redirects := NewRedirectService(store, nil, &fakeFeed{})
	lifecycle := NewComplaintService(store, store, &fakeNotificationStore{}, &fakeFeed{})
	official := municipalOfficial()
	ctx := context.Background()

	id := newComplaint(t, store, nil)
	require.NoError(t, lifecycle.Accept(ctx, id, official))
	require.NoError(t, lifecycle.AdvanceStage(ctx, id, official, models.StageProgress))
	require.NoError(t, lifecycle.Complete(ctx, id, official, "https://img.example/solution.jpg"))

	_, err := redirects.Redirect(ctx, id, official, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Completed is terminal: status, stage and resolved_at are untouched and
	// no audit row was appended.
	c, _ := store.GetComplaintByID(id)
	assert.Equal(t, models.StatusCompleted, c.Status)
	assert.Equal(t, string(models.StageCompleted), c.ProgressStage.String)
	assert.True(t, c.ResolvedAt.Valid)
	rows, _ := store.GetRedirectsByComplaint(id)
	assert.Empty(t, rows)

	// Same guard at the store level, bypassing the service pre-check.
	err = store.RedirectComplaint(&models.ComplaintRedirect{
		ComplaintID:    id,
		FromDepartment: models.DeptMunicipal,
		ToDepartment:   models.DeptWater,
		RedirectedBy:   official.ID,
	})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestDecideIsDeterministicWithoutClassifier(t *testing.T) {
	svc := NewRedirectService(newFakeComplaintStore(), nil, &fakeFeed{})
	c := &models.Complaint{Title: "No water", Description: "water supply stopped"}

	first := svc.Decide(context.Background(), c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, svc.Decide(context.Background(), c))
	}
	assert.Equal(t, models.DeptWater, first)
}
