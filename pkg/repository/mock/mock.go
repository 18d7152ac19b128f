package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blocniti/blocniti/pkg/models"
	"github.com/blocniti/blocniti/pkg/repository"
)

var _ repository.Store = (*Store)(nil)

// Store is an in-memory repository.Store for handler tests. Setting one of the
// *Err fields makes the matching operation fail.
type Store struct {
	mu sync.Mutex

	Users   map[string]*models.User
	Issues  map[int64]*models.RepairIssue
	Reports []models.HarassmentReport

	Classified []models.Classification

	nextID int64

	GetUserErr  error
	UpsertErr   error
	ListErr     error
	CreateErr   error
	ClassifyErr error
	DeleteErr   error
	ReportErr   error
	PingErr     error
}

func New() *Store {
	return &Store{
		Users:  map[string]*models.User{},
		Issues: map[int64]*models.RepairIssue{},
	}
}

func (m *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetUserErr != nil {
		return nil, m.GetUserErr
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *Store) UpsertUser(ctx context.Context, in *models.UpsertUser) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}
	now := time.Now().UTC()
	u, ok := m.Users[in.ID]
	if !ok {
		u = &models.User{ID: in.ID, CreatedAt: now}
		m.Users[in.ID] = u
	}
	setStr(&u.Email, in.Email)
	setStr(&u.FirstName, in.FirstName)
	setStr(&u.LastName, in.LastName)
	setStr(&u.ProfileImageURL, in.ProfileImageURL)
	setStr(&u.DateOfBirth, in.DateOfBirth)
	setStr(&u.Phone, in.Phone)
	setStr(&u.Address, in.Address)
	setStr(&u.Unit, in.Unit)
	setBool(&u.KnowsOrganizer, in.KnowsOrganizer)
	setBool(&u.Threatened, in.Threatened)
	setBool(&u.EvictionCase, in.EvictionCase)
	u.UpdatedAt = now
	cp := *u
	return &cp, nil
}

func (m *Store) UpdateUserProfile(ctx context.Context, id string, p *models.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	setStr(&u.DateOfBirth, p.DateOfBirth)
	setStr(&u.Phone, p.Phone)
	setStr(&u.Address, p.Address)
	setStr(&u.Unit, p.Unit)
	setBool(&u.KnowsOrganizer, p.KnowsOrganizer)
	setBool(&u.Threatened, p.Threatened)
	setBool(&u.EvictionCase, p.EvictionCase)
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (m *Store) ListRepairIssuesForUser(ctx context.Context, userID string) ([]models.RepairIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []models.RepairIssue{}
	for _, ri := range m.Issues {
		if ri.UserID == userID {
			out = append(out, *ri)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Store) GetRepairIssue(ctx context.Context, id int64) (*models.RepairIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ri, ok := m.Issues[id]
	if !ok {
		return nil, nil
	}
	cp := *ri
	return &cp, nil
}

func (m *Store) CreateRepairIssue(ctx context.Context, userID string, in *models.NewRepairIssue) (*models.RepairIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.nextID++
	now := time.Now().UTC()
	ri := &models.RepairIssue{
		ID:                  m.nextID,
		UserID:              userID,
		RoomNumber:          in.RoomNumber,
		RoomName:            in.RoomName,
		Area:                in.Area,
		Status:              in.Status,
		IssueDescription:    in.IssueDescription,
		ProposedRemediation: in.ProposedRemediation,
		FirstRequestDate:    in.FirstRequestDate,
		IssueBegan:          in.IssueBegan,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	m.Issues[ri.ID] = ri
	cp := *ri
	return &cp, nil
}

func (m *Store) ApplyClassification(ctx context.Context, id int64, c models.Classification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClassifyErr != nil {
		return m.ClassifyErr
	}
	m.Classified = append(m.Classified, c)
	ri, ok := m.Issues[id]
	if !ok {
		return nil
	}
	ri.HPDViolationClass = &c.ViolationClass
	ri.CorrectionDeadline = &c.Deadline
	ri.AIAnalysis = &c.Analysis
	ri.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Store) DeleteRepairIssue(ctx context.Context, id int64, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	ri, ok := m.Issues[id]
	if !ok || ri.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(m.Issues, id)
	return nil
}

func (m *Store) ListHarassmentReportsForUser(ctx context.Context, userID string) ([]models.HarassmentReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReportErr != nil {
		return nil, m.ReportErr
	}
	out := []models.HarassmentReport{}
	for i := len(m.Reports) - 1; i >= 0; i-- {
		if m.Reports[i].UserID == userID {
			out = append(out, m.Reports[i])
		}
	}
	return out, nil
}

func (m *Store) CreateHarassmentReport(ctx context.Context, userID string, in *models.NewHarassmentReport) (*models.HarassmentReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReportErr != nil {
		return nil, m.ReportErr
	}
	m.nextID++
	hr := models.HarassmentReport{
		ID:                m.nextID,
		UserID:            userID,
		HarassmentTypes:   append([]models.HarassmentType(nil), in.HarassmentTypes...),
		AdditionalDetails: in.AdditionalDetails,
		CreatedAt:         time.Now().UTC(),
	}
	m.Reports = append(m.Reports, hr)
	return &hr, nil
}

func (m *Store) Ping(ctx context.Context) error { return m.PingErr }

func (m *Store) Close() error { return nil }

func setStr(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
