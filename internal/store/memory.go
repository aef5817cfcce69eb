package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/task-manager/backend/internal/models"
	"github.com/ayush/task-manager/backend/internal/query"
)

// Memory is an in-process store for both services. It backs local runs
// without databases and the service tests. Records are kept in insertion
// order, which is the natural order ties resolve to.
type Memory struct {
	mu sync.Mutex

	accounts    map[models.Role][]models.Account
	assignments []models.Assignment

	profiles []models.Profile
	tasks    []models.Task

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[models.Role][]models.Account),
		now:      time.Now,
	}
}

// SetClock replaces the time source used for server timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// ── team board ──────────────────────────────────────────────

func (m *Memory) CreateAccount(_ context.Context, acc *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts[acc.Role] {
		if a.Email == acc.Email {
			return models.ErrDuplicateEmail
		}
	}
	now := m.now().UTC()
	acc.ID = primitive.NewObjectID()
	acc.CreatedAt, acc.UpdatedAt = now, now
	m.accounts[acc.Role] = append(m.accounts[acc.Role], *acc)
	return nil
}

func (m *Memory) findAccount(role models.Role, match func(models.Account) bool) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts[role] {
		if match(a) {
			a.Role = role
			return &a, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Memory) FindAccountByEmail(_ context.Context, role models.Role, email string) (*models.Account, error) {
	return m.findAccount(role, func(a models.Account) bool { return a.Email == email })
}

func (m *Memory) GetAccount(_ context.Context, role models.Role, id primitive.ObjectID) (*models.Account, error) {
	return m.findAccount(role, func(a models.Account) bool { return a.ID == id })
}

func (m *Memory) ListUsersByAdmin(_ context.Context, adminID primitive.ObjectID) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Account
	for _, a := range m.accounts[models.RoleUser] {
		if a.AdminID != nil && *a.AdminID == adminID {
			a.Role = models.RoleUser
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) InsertAssignment(_ context.Context, a *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	a.ID = primitive.NewObjectID()
	a.CreatedAt, a.UpdatedAt = now, now
	m.assignments = append(m.assignments, *a)
	return nil
}

func inScope(a models.Assignment, scope models.AssignmentScope) bool {
	if scope.AdminID != nil && a.AdminID != *scope.AdminID {
		return false
	}
	if scope.UserID != nil && (a.UserID == nil || *a.UserID != *scope.UserID) {
		return false
	}
	return true
}

// ListAssignments returns newest first, matching the Mongo adapter.
func (m *Memory) ListAssignments(_ context.Context, scope models.AssignmentScope) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Assignment
	for i := len(m.assignments) - 1; i >= 0; i-- {
		if inScope(m.assignments[i], scope) {
			out = append(out, m.assignments[i])
		}
	}
	return out, nil
}

func (m *Memory) UpdateAssignment(_ context.Context, scope models.AssignmentScope, id primitive.ObjectID, patch models.AssignmentPatch) (*models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.assignments {
		a := &m.assignments[i]
		if a.ID != id || !inScope(*a, scope) {
			continue
		}
		if patch.TaskName != nil {
			a.TaskName = *patch.TaskName
		}
		if patch.DueDate != nil {
			a.DueDate = *patch.DueDate
		}
		if patch.Status != nil {
			a.Status = *patch.Status
		}
		a.UpdatedAt = m.now().UTC()
		out := *a
		return &out, nil
	}
	return nil, models.ErrNotFound
}

func (m *Memory) DeleteAssignment(_ context.Context, scope models.AssignmentScope, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range m.assignments {
		if a.ID == id && inScope(a, scope) {
			m.assignments = slices.Delete(m.assignments, i, i+1)
			return nil
		}
	}
	return models.ErrNotFound
}

// ── personal task list ──────────────────────────────────────

func (m *Memory) CreateProfile(_ context.Context, email, hashedPassword string, fullName *string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.profiles {
		if strings.EqualFold(p.Email, email) {
			return nil, models.ErrDuplicateEmail
		}
	}
	now := m.now().UTC()
	p := models.Profile{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  hashedPassword,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.profiles = append(m.profiles, p)
	return &p, nil
}

func (m *Memory) profile(match func(models.Profile) bool) (*models.Profile, error) {
	for i := range m.profiles {
		if match(m.profiles[i]) {
			return &m.profiles[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Memory) GetProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.profile(func(p models.Profile) bool { return p.Email == email })
	if err != nil {
		return nil, err
	}
	out := *p
	return &out, nil
}

func (m *Memory) GetProfileByID(_ context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.profile(func(p models.Profile) bool { return p.ID == id })
	if err != nil {
		return nil, err
	}
	out := *p
	return &out, nil
}

func (m *Memory) UpdateProfile(_ context.Context, id string, fullName, avatarURL *string, now time.Time) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.profile(func(p models.Profile) bool { return p.ID == id })
	if err != nil {
		return nil, err
	}
	p.FullName, p.AvatarURL, p.UpdatedAt = fullName, avatarURL, now
	out := *p
	return &out, nil
}

func (m *Memory) SetAvatar(_ context.Context, id, key, url string, now time.Time) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.profile(func(p models.Profile) bool { return p.ID == id })
	if err != nil {
		return nil, err
	}
	p.AvatarKey, p.AvatarURL, p.UpdatedAt = key, &url, now
	out := *p
	return &out, nil
}

func (m *Memory) CreateTask(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt, t.UpdatedAt = now, now
	m.tasks = append(m.tasks, *t)
	return nil
}

func (m *Memory) ListTasks(_ context.Context, ownerID string, f query.Filter, s query.Sort) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Task
	for _, t := range m.tasks {
		if t.UserID == ownerID && f.Match(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return s.Less(out[i], out[j]) })
	return out, nil
}

func (m *Memory) task(ownerID, id string) (int, error) {
	for i, t := range m.tasks {
		if t.ID == id && t.UserID == ownerID {
			return i, nil
		}
	}
	return -1, models.ErrNotFound
}

func (m *Memory) GetTask(_ context.Context, ownerID, id string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.task(ownerID, id)
	if err != nil {
		return nil, err
	}
	out := m.tasks[i]
	return &out, nil
}

func (m *Memory) UpdateTask(_ context.Context, ownerID, id string, patch models.TaskPatch, now time.Time) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.task(ownerID, id)
	if err != nil {
		return nil, err
	}
	t := &m.tasks[i]
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	switch {
	case patch.ClearDescription:
		t.Description = nil
	case patch.Description != nil:
		d := *patch.Description
		t.Description = &d
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	switch {
	case patch.ClearDueDate:
		t.DueDate = nil
	case patch.DueDate != nil:
		d := *patch.DueDate
		t.DueDate = &d
	}
	t.UpdatedAt = now
	out := *t
	return &out, nil
}

func (m *Memory) DeleteTask(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.task(ownerID, id)
	if err != nil {
		return err
	}
	m.tasks = slices.Delete(m.tasks, i, i+1)
	return nil
}
