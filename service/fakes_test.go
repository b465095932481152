package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cims/models"
	"cims/realtime"
	"cims/repository"
	"cims/storage"
)

// In-memory store fakes mirroring the repository semantics, including the
// atomic accept guard and the redirect transaction.

type fakeComplaintStore struct {
	mu         sync.Mutex
	nextID     int
	complaints map[string]*models.Complaint
	redirects  []models.ComplaintRedirect
}

func newFakeComplaintStore() *fakeComplaintStore {
	return &fakeComplaintStore{complaints: map[string]*models.Complaint{}}
}

func (s *fakeComplaintStore) CreateComplaint(c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		s.nextID++
		c.ID = fmt.Sprintf("complaint-%d", s.nextID)
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	clone := *c
	s.complaints[c.ID] = &clone
	return nil
}

func (s *fakeComplaintStore) GetComplaintByID(id string) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *fakeComplaintStore) GetComplaintsByDepartment(department models.DepartmentType) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Complaint
	for _, c := range s.complaints {
		if !c.AssignedDepartment.Valid || c.AssignedDepartment.String == string(department) {
			out = append(out, *c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *fakeComplaintStore) GetComplaintsByStatus(status models.ComplaintStatus, department models.DepartmentType) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Complaint
	for _, c := range s.complaints {
		if c.Status != status {
			continue
		}
		if !c.AssignedDepartment.Valid || c.AssignedDepartment.String == string(department) {
			out = append(out, *c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *fakeComplaintStore) GetComplaintsByCitizenEmail(email string) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Complaint
	for _, c := range s.complaints {
		if c.CitizenEmail.Valid && c.CitizenEmail.String == email {
			out = append(out, *c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *fakeComplaintStore) GetComplaintsInRange(start, end time.Time, department *models.DepartmentType) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Complaint
	for _, c := range s.complaints {
		if c.CreatedAt.Before(start) || !c.CreatedAt.Before(end) {
			continue
		}
		if department != nil &&
			(!c.AssignedDepartment.Valid || c.AssignedDepartment.String != string(*department)) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeComplaintStore) AcceptComplaint(id, officialID string, department models.DepartmentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return repository.ErrConflict
	}
	if c.Status != models.StatusNew {
		return repository.ErrConflict
	}
	if c.AssignedDepartment.Valid && c.AssignedDepartment.String != string(department) {
		return repository.ErrConflict
	}
	c.Status = models.StatusInProgress
	c.ProgressStage = nullString(string(models.StageNotified))
	c.AssignedTo = nullString(officialID)
	c.AssignedDepartment = nullString(string(department))
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *fakeComplaintStore) UpdateStatus(id string, status models.ComplaintStatus, stage models.ProgressStage, solutionImage *string, resolvedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = status
	c.ProgressStage = nullString(string(stage))
	if solutionImage != nil {
		c.SolutionImage = nullString(*solutionImage)
	}
	if resolvedAt != nil {
		c.ResolvedAt.Time, c.ResolvedAt.Valid = *resolvedAt, true
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *fakeComplaintStore) RedirectComplaint(redirect *models.ComplaintRedirect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[redirect.ComplaintID]
	if !ok {
		return repository.ErrNotFound
	}
	if c.Status == models.StatusCompleted {
		return repository.ErrConflict
	}
	if redirect.ID == "" {
		redirect.ID = fmt.Sprintf("redirect-%d", len(s.redirects)+1)
	}
	redirect.CreatedAt = time.Now().UTC()
	c.AssignedDepartment = nullString(string(redirect.ToDepartment))
	c.Status = models.StatusInProgress
	c.ProgressStage = nullString(string(models.StageNotified))
	c.UpdatedAt = redirect.CreatedAt
	s.redirects = append(s.redirects, *redirect)
	return nil
}

func (s *fakeComplaintStore) GetRedirectsByComplaint(complaintID string) ([]models.ComplaintRedirect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ComplaintRedirect
	for i := len(s.redirects) - 1; i >= 0; i-- {
		if s.redirects[i].ComplaintID == complaintID {
			out = append(out, s.redirects[i])
		}
	}
	return out, nil
}

func sortNewestFirst(complaints []models.Complaint) {
	sort.Slice(complaints, func(i, j int) bool {
		return complaints[i].CreatedAt.After(complaints[j].CreatedAt)
	})
}

type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
	failCreate    bool
}

func (s *fakeNotificationStore) CreateNotification(n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return fmt.Errorf("notification store down")
	}
	n.ID = int64(len(s.notifications) + 1)
	n.CreatedAt = time.Now().UTC()
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *fakeNotificationStore) GetNotificationsByEmail(email string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].UserEmail == email {
			out = append(out, s.notifications[i])
		}
	}
	return out, nil
}

func (s *fakeNotificationStore) MarkNotificationRead(id int64, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserEmail == email {
			s.notifications[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: map[string]*models.Profile{}}
}

func (s *fakeProfileStore) CreateProfile(p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = fmt.Sprintf("official-%d", len(s.profiles)+1)
	}
	p.CreatedAt = time.Now().UTC()
	clone := *p
	s.profiles[p.ID] = &clone
	return nil
}

func (s *fakeProfileStore) GetProfileByID(id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *fakeProfileStore) GetProfileByEmail(email string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Email == email {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeProfileStore) GetAllProfiles() ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Profile
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakeProfileStore) UpdateRole(id string, role models.UserRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Role = role
	return nil
}

func (s *fakeProfileStore) UpdateProfile(id string, fullName, location *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	if fullName != nil {
		p.FullName = *fullName
	}
	if location != nil {
		p.Location = *location
	}
	return nil
}

// fakeClassifier returns a canned answer or error and counts calls.
type fakeClassifier struct {
	mu       sync.Mutex
	target   models.DepartmentType
	err      error
	analysis *models.IssueAnalysis
	calls    int
}

func (c *fakeClassifier) ClassifyDepartment(ctx context.Context, imageRef, description string) (models.DepartmentType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.target, nil
}

func (c *fakeClassifier) AnalyzeIssueImage(ctx context.Context, imageBase64, description string) (*models.IssueAnalysis, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.analysis, nil
}

// fakeFeed records published complaint ids.
type fakeFeed struct {
	mu        sync.Mutex
	published []string
}

func (f *fakeFeed) PublishComplaintChanged(ctx context.Context, complaintID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, complaintID)
	return nil
}

func (f *fakeFeed) Subscribe(ctx context.Context) (<-chan realtime.ChangeEvent, func(), error) {
	ch := make(chan realtime.ChangeEvent)
	return ch, func() { close(ch) }, nil
}

// fakeUploader records uploads and returns deterministic URLs.
type fakeUploader struct {
	mu      sync.Mutex
	uploads []storage.UploadInput
}

func (u *fakeUploader) Upload(ctx context.Context, input storage.UploadInput) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads = append(u.uploads, input)
	return &storage.UploadResult{URL: "mem://" + input.Key, Key: input.Key}, nil
}
