package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"cims/ai"
	"cims/models"
	"cims/realtime"
)

// RedirectService is the redirection decision engine. Given a complaint's first
// image and its text it picks exactly one target department and records the
// decision as an immutable audit row.
//
// Decision order: multimodal classifier over the image (one bounded-timeout
// attempt plus a single retry), then the deterministic keyword categorizer over
// title+description. Classifier failures are non-fatal; only the persistence
// call surfaces an error to the caller.
type RedirectService struct {
	complaints ComplaintStore
	classifier ai.Classifier // nil disables the image path
	categorize func(string) models.ComplaintCategory
	feed       realtime.Feed
}

// NewRedirectService creates the decision engine. classifier may be nil, in
// which case every decision uses the keyword fallback.
func NewRedirectService(complaints ComplaintStore, classifier ai.Classifier, feed realtime.Feed) *RedirectService {
	return &RedirectService{
		complaints: complaints,
		classifier: classifier,
		categorize: ai.CategorizeText,
		feed:       feed,
	}
}

// Redirect decides the target department for a complaint and applies the
// reassignment plus its audit row atomically. Officials of restricted
// departments (water, energy, pwd) may only accept, never redirect; that check
// comes before any decision work.
func (s *RedirectService) Redirect(ctx context.Context, complaintID string, official *models.Profile, reason string) (*models.ComplaintRedirect, error) {
	if models.IsRestrictedDepartment(official.Department) {
		return nil, ErrRedirectRestricted
	}

	complaint, err := s.complaints.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.Status == models.StatusCompleted {
		return nil, fmt.Errorf("%w: cannot redirect a completed complaint", ErrInvalidTransition)
	}

	target := s.Decide(ctx, complaint)

	if reason == "" {
		reason = fmt.Sprintf("AI-categorized as %s", target)
	}

	redirect := &models.ComplaintRedirect{
		ComplaintID:    complaintID,
		FromDepartment: official.Department,
		ToDepartment:   target,
		RedirectedBy:   official.ID,
		Reason:         nullString(reason),
	}
	if err := s.complaints.RedirectComplaint(redirect); err != nil {
		return nil, err
	}

	log.Info().
		Str("complaint_id", complaintID).
		Str("from", string(official.Department)).
		Str("to", string(target)).
		Msg("complaint redirected")

	if s.feed != nil {
		if err := s.feed.PublishComplaintChanged(ctx, complaintID); err != nil {
			log.Warn().Err(err).Str("complaint_id", complaintID).Msg("change feed publish failed")
		}
	}
	return redirect, nil
}

// Decide picks the target department. It never fails: when both the classifier
// and every keyword match come up empty the target defaults to municipal.
func (s *RedirectService) Decide(ctx context.Context, complaint *models.Complaint) models.DepartmentType {
	if image := complaint.FirstImage(); image != "" && s.classifier != nil {
		if target, ok := s.classifyWithRetry(ctx, image, complaint.Description); ok {
			return target
		}
	}
	return s.fallbackTarget(complaint)
}

// classifyWithRetry runs the multimodal classifier with one retry. Each attempt
// carries its own timeout inside the classifier.
func (s *RedirectService) classifyWithRetry(ctx context.Context, image, description string) (models.DepartmentType, bool) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		target, err := s.classifier.ClassifyDepartment(ctx, image, description)
		if err == nil {
			return target, true
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	log.Warn().Err(lastErr).Msg("image classification failed, falling back to keyword categorizer")
	return "", false
}

// fallbackTarget maps the keyword category onto a department. The unmatched
// case routes to municipal, which is outside the three specialist targets the
// dashboard offers; the original behaves this way and it is preserved here.
func (s *RedirectService) fallbackTarget(complaint *models.Complaint) models.DepartmentType {
	text := strings.TrimSpace(complaint.Title + " " + complaint.Description)
	switch s.categorize(text) {
	case models.CategoryWater:
		return models.DeptWater
	case models.CategoryElectricity:
		return models.DeptEnergy
	case models.CategoryPWD:
		return models.DeptPWD
	default:
		return models.DeptMunicipal
	}
}
