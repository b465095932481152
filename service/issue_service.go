package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"cims/ai"
	"cims/models"
	"cims/realtime"
	"cims/storage"
)

// maxImageBytes bounds uploaded complaint photos.
const maxImageBytes = 10 << 20

// IssueService is the citizen-facing side: submission, tracking, and AI
// pre-fill. Tracking is a pure projection of the complaint store computed on
// every read; nothing citizen-visible is cached or persisted separately.
type IssueService struct {
	complaints    ComplaintStore
	notifications NotificationStore
	uploader      storage.Uploader
	classifier    ai.Classifier // nil disables AnalyzeIssueImage
	feed          realtime.Feed
}

// NewIssueService creates a new citizen issue service
func NewIssueService(
	complaints ComplaintStore,
	notifications NotificationStore,
	uploader storage.Uploader,
	classifier ai.Classifier,
	feed realtime.Feed,
) *IssueService {
	return &IssueService{
		complaints:    complaints,
		notifications: notifications,
		uploader:      uploader,
		classifier:    classifier,
		feed:          feed,
	}
}

// SubmitIssue validates the submission, uploads the photo, and creates the
// complaint with status new. The citizen category is mapped onto the backend
// vocabulary; the mapping is lossy by design (drainage and water_supply both
// land on water).
func (s *IssueService) SubmitIssue(ctx context.Context, citizenEmail string, req *models.SubmitIssueRequest) (*models.Issue, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ValidationError("title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ValidationError("description is required")
	}
	if strings.TrimSpace(req.Location) == "" {
		return nil, ValidationError("location is required")
	}
	if req.ImageBase64 == "" {
		return nil, ValidationError("complaint image is required")
	}

	imageURL, err := s.uploadImage(ctx, req.ImageBase64, "complaint")
	if err != nil {
		return nil, fmt.Errorf("upload complaint image: %w", err)
	}

	complaint := &models.Complaint{
		Title:           req.Title,
		Description:     req.Description,
		Category:        nullString(string(models.MapIssueCategory(req.Category))),
		Status:          models.StatusNew,
		CitizenName:     req.CitizenName,
		CitizenPhone:    "0000000000", // submission form does not collect a phone number
		CitizenEmail:    nullString(citizenEmail),
		Location:        req.Location,
		ComplaintImages: []string{imageURL},
	}
	if dept := models.DepartmentType(req.Department); models.ValidDepartment(dept) {
		complaint.AssignedDepartment = nullString(string(dept))
	}
	if req.Latitude != nil {
		complaint.Latitude.Float64, complaint.Latitude.Valid = *req.Latitude, true
	}
	if req.Longitude != nil {
		complaint.Longitude.Float64, complaint.Longitude.Valid = *req.Longitude, true
	}

	if err := s.complaints.CreateComplaint(complaint); err != nil {
		return nil, err
	}

	if s.feed != nil {
		if err := s.feed.PublishComplaintChanged(ctx, complaint.ID); err != nil {
			log.Warn().Err(err).Str("complaint_id", complaint.ID).Msg("change feed publish failed")
		}
	}

	issue := models.ProjectIssue(complaint)
	return &issue, nil
}

// ListIssues returns all of the citizen's issues, projected, newest first.
func (s *IssueService) ListIssues(ctx context.Context, citizenEmail string) ([]models.Issue, error) {
	complaints, err := s.complaints.GetComplaintsByCitizenEmail(citizenEmail)
	if err != nil {
		return nil, err
	}
	issues := make([]models.Issue, 0, len(complaints))
	for i := range complaints {
		issues = append(issues, models.ProjectIssue(&complaints[i]))
	}
	return issues, nil
}

// ListIssuesByStatus filters the citizen's issues by projected status.
func (s *IssueService) ListIssuesByStatus(ctx context.Context, citizenEmail string, statuses ...models.IssueStatus) ([]models.Issue, error) {
	issues, err := s.ListIssues(ctx, citizenEmail)
	if err != nil {
		return nil, err
	}
	filtered := issues[:0]
	for _, issue := range issues {
		for _, status := range statuses {
			if issue.Status == status {
				filtered = append(filtered, issue)
				break
			}
		}
	}
	return filtered, nil
}

// GetIssue returns one of the citizen's issues by complaint id.
func (s *IssueService) GetIssue(ctx context.Context, citizenEmail, id string) (*models.Issue, error) {
	complaint, err := s.complaints.GetComplaintByID(id)
	if err != nil {
		return nil, err
	}
	if !complaint.CitizenEmail.Valid || complaint.CitizenEmail.String != citizenEmail {
		return nil, ErrNotVisible
	}
	issue := models.ProjectIssue(complaint)
	return &issue, nil
}

// GetNotifications returns the citizen's notification inbox, newest first.
func (s *IssueService) GetNotifications(ctx context.Context, citizenEmail string) ([]models.Notification, error) {
	return s.notifications.GetNotificationsByEmail(citizenEmail)
}

// MarkNotificationRead marks one inbox entry as read.
func (s *IssueService) MarkNotificationRead(ctx context.Context, citizenEmail string, id int64) error {
	return s.notifications.MarkNotificationRead(id, citizenEmail)
}

// AnalyzeIssueImage asks the classifier to pre-fill submission fields from a
// photo. Out-of-vocabulary suggestions are coerced to safe defaults so the
// client never sees values it cannot submit.
func (s *IssueService) AnalyzeIssueImage(ctx context.Context, req *models.AnalyzeIssueRequest) (*models.IssueAnalysis, error) {
	if s.classifier == nil {
		return nil, errors.New("image analysis is not configured")
	}
	if req.ImageBase64 == "" {
		return nil, ValidationError("image is required")
	}
	if len(req.ImageBase64) > maxImageBytes*4/3 {
		return nil, ValidationError("image too large, maximum size is 10MB")
	}

	analysis, err := s.classifier.AnalyzeIssueImage(ctx, req.ImageBase64, req.Description)
	if err != nil {
		return nil, fmt.Errorf("analyze issue image: %w", err)
	}

	if _, ok := models.IssueCategoryLabels[models.IssueCategory(analysis.Category)]; !ok {
		analysis.Category = string(models.IssueOther)
	}
	if !models.ValidDepartment(models.DepartmentType(analysis.GoverningBody)) {
		analysis.GoverningBody = string(models.DeptMunicipal)
	}
	return analysis, nil
}

// uploadImage decodes a base64/data-URI payload and stores it, returning the
// public URL.
func (s *IssueService) uploadImage(ctx context.Context, imageBase64, prefix string) (string, error) {
	payload := imageBase64
	contentType := "image/png"
	if strings.HasPrefix(payload, "data:") {
		if semi := strings.Index(payload, ";"); semi > 5 {
			contentType = payload[5:semi]
		}
		if comma := strings.Index(payload, ","); comma != -1 {
			payload = payload[comma+1:]
		}
	}

	body, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ValidationError("invalid image encoding")
	}
	if len(body) == 0 {
		return "", ValidationError("empty image")
	}
	if len(body) > maxImageBytes {
		return "", ValidationError("image too large, maximum size is 10MB")
	}

	ext := "png"
	if idx := strings.Index(contentType, "/"); idx != -1 && idx+1 < len(contentType) {
		ext = contentType[idx+1:]
	}
	key := fmt.Sprintf("%s_%s.%s", prefix, uuid.New().String(), ext)

	result, err := s.uploader.Upload(ctx, storage.UploadInput{
		Key:         key,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return result.URL, nil
}
