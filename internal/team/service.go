package team

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/auth"
	"github.com/ayush/task-manager/backend/internal/models"
)

// Store defines persistence for team-board accounts and tasks.
type Store interface {
	CreateAccount(ctx context.Context, acc *models.Account) error
	FindAccountByEmail(ctx context.Context, role models.Role, email string) (*models.Account, error)
	GetAccount(ctx context.Context, role models.Role, id primitive.ObjectID) (*models.Account, error)
	ListUsersByAdmin(ctx context.Context, adminID primitive.ObjectID) ([]models.Account, error)

	InsertAssignment(ctx context.Context, a *models.Assignment) error
	ListAssignments(ctx context.Context, scope models.AssignmentScope) ([]models.Assignment, error)
	UpdateAssignment(ctx context.Context, scope models.AssignmentScope, id primitive.ObjectID, patch models.AssignmentPatch) (*models.Assignment, error)
	DeleteAssignment(ctx context.Context, scope models.AssignmentScope, id primitive.ObjectID) error
}

// TokenIssuer mints bearer tokens.
type TokenIssuer interface {
	Issue(p auth.Principal) (string, error)
}

// Service implements the team board: admins sign up, add users and assign
// them tasks; users see and update the tasks assigned to them.
type Service struct {
	store  Store
	tokens TokenIssuer
	guard  auth.LoginGuard
}

func NewService(store Store, tokens TokenIssuer, guard auth.LoginGuard) *Service {
	if guard == nil {
		guard = auth.NoopGuard{}
	}
	return &Service{store: store, tokens: tokens, guard: guard}
}

// Session is the result of a successful signup or login.
type Session struct {
	User  *models.Account
	Token string
	Type  models.Role
}

// Signup creates an admin account.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*Session, error) {
	acc, err := s.createAccount(ctx, models.RoleAdmin, nil, req)
	if err != nil {
		return nil, err
	}
	token, err := s.issue(acc)
	if err != nil {
		return nil, err
	}
	return &Session{User: acc, Token: token, Type: models.RoleAdmin}, nil
}

// AddUser creates a user owned by adminID.
func (s *Service) AddUser(ctx context.Context, adminID string, req models.SignupRequest) (*models.Account, error) {
	oid, err := objectID(adminID)
	if err != nil {
		return nil, apperr.New(apperr.Forbidden, "invalid subject")
	}
	return s.createAccount(ctx, models.RoleUser, &oid, req)
}

func (s *Service) createAccount(ctx context.Context, role models.Role, adminID *primitive.ObjectID, req models.SignupRequest) (*models.Account, error) {
	if err := validateSignup(&req); err != nil {
		return nil, err
	}

	_, err := s.store.FindAccountByEmail(ctx, role, req.Email)
	switch {
	case err == nil:
		return nil, apperr.New(apperr.Conflict, "User already exists")
	case !errors.Is(err, models.ErrNotFound):
		return nil, apperr.Wrap(apperr.Internal, "find account", err)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	acc := &models.Account{
		AdminID:   adminID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashed,
		Role:      role,
	}
	if err := s.store.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, apperr.New(apperr.Conflict, "User already exists")
		}
		return nil, apperr.Wrap(apperr.Internal, "User could not be created", err)
	}
	return acc, nil
}

// Login looks the email up among users first and admins second.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperr.Validationf("Email and password are required")
	}
	if err := s.guard.Check(ctx, email); err != nil {
		return nil, err
	}

	acc, err := s.lookup(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			s.recordFailure(ctx, email)
		}
		return nil, err
	}

	ok, err := auth.CheckPassword(acc.Password, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.recordFailure(ctx, email)
		return nil, apperr.New(apperr.InvalidCredential, "Invalid Password")
	}

	if err := s.guard.Reset(ctx, email); err != nil {
		slog.Warn("login_throttle_reset_failed", "error", err)
	}
	token, err := s.issue(acc)
	if err != nil {
		return nil, err
	}
	return &Session{User: acc, Token: token, Type: acc.Role}, nil
}

func (s *Service) lookup(ctx context.Context, email string) (*models.Account, error) {
	for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
		acc, err := s.store.FindAccountByEmail(ctx, role, email)
		if err == nil {
			return acc, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, apperr.Wrap(apperr.Internal, "find account", err)
		}
	}
	return nil, apperr.New(apperr.NotFound, "You are not signed up. Sign up first")
}

func (s *Service) recordFailure(ctx context.Context, email string) {
	slog.Info("login_failed", "email", email)
	if err := s.guard.Fail(ctx, email); err != nil {
		slog.Warn("login_throttle_record_failed", "error", err)
	}
}

func (s *Service) issue(acc *models.Account) (string, error) {
	return s.tokens.Issue(auth.Principal{ID: acc.ID.Hex(), Role: acc.Role, Email: acc.Email})
}

// ListUsers returns the users created by adminID.
func (s *Service) ListUsers(ctx context.Context, adminID string) ([]models.Account, error) {
	oid, err := objectID(adminID)
	if err != nil {
		return nil, apperr.New(apperr.Forbidden, "invalid subject")
	}
	users, err := s.store.ListUsersByAdmin(ctx, oid)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list users", err)
	}
	if users == nil {
		users = []models.Account{}
	}
	return users, nil
}

// AssignmentRequest is the JSON body for POST /task/add_task.
type AssignmentRequest struct {
	TaskName string `json:"task_name"`
	DueDate  string `json:"due_date"`
	Status   string `json:"status"`
	UserID   string `json:"userId"`
	AssignTo string `json:"assign_to"`
}

// AddTask creates a task owned by adminID, optionally assigned to one of the
// admin's users.
func (s *Service) AddTask(ctx context.Context, adminID string, req AssignmentRequest) (*models.Assignment, error) {
	owner, err := objectID(adminID)
	if err != nil {
		return nil, apperr.New(apperr.Forbidden, "invalid subject")
	}

	a := &models.Assignment{
		AdminID:  owner,
		TaskName: strings.TrimSpace(req.TaskName),
		Status:   strings.TrimSpace(req.Status),
		AssignTo: strings.TrimSpace(req.AssignTo),
	}
	if a.TaskName == "" {
		return nil, apperr.Validationf("task_name is required")
	}
	if a.DueDate, err = parseDueDate(req.DueDate); err != nil {
		return nil, err
	}
	if a.Status == "" {
		a.Status = models.StatusToDo
	} else if !validStatus(a.Status) {
		return nil, apperr.Validationf("Invalid status")
	}

	if req.UserID != "" {
		user, err := s.ownedUser(ctx, owner, req.UserID)
		if err != nil {
			return nil, err
		}
		a.UserID = &user.ID
		if a.AssignTo == "" {
			a.AssignTo = user.Email
		}
	}

	if err := s.store.InsertAssignment(ctx, a); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "insert task", err)
	}
	return a, nil
}

func (s *Service) ownedUser(ctx context.Context, adminID primitive.ObjectID, userID string) (*models.Account, error) {
	invalid := apperr.Validationf("userId does not belong to this admin")
	oid, err := objectID(userID)
	if err != nil {
		return nil, invalid
	}
	user, err := s.store.GetAccount(ctx, models.RoleUser, oid)
	if errors.Is(err, models.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "get user", err)
	}
	if user.AdminID == nil || *user.AdminID != adminID {
		return nil, invalid
	}
	return user, nil
}

// ListTasks returns the tasks visible to p: those it created when p is an
// admin, those assigned to it when p is a user.
func (s *Service) ListTasks(ctx context.Context, p auth.Principal) ([]models.Assignment, error) {
	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListAssignments(ctx, scope)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list tasks", err)
	}
	if tasks == nil {
		tasks = []models.Assignment{}
	}
	return tasks, nil
}

// UpdateRequest is the JSON body for the update endpoints. Absent fields are kept.
type UpdateRequest struct {
	TaskID   string  `json:"taskId"`
	TaskName *string `json:"task_name"`
	DueDate  *string `json:"due_date"`
	Status   *string `json:"status"`
}

// UpdateTask replaces the supplied fields of a task within p's scope.
func (s *Service) UpdateTask(ctx context.Context, p auth.Principal, req UpdateRequest) (*models.Assignment, error) {
	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}
	id, err := taskID(req.TaskID)
	if err != nil {
		return nil, err
	}

	var patch models.AssignmentPatch
	if req.TaskName != nil {
		name := strings.TrimSpace(*req.TaskName)
		if name == "" {
			return nil, apperr.Validationf("task_name must not be empty")
		}
		patch.TaskName = &name
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		patch.DueDate = &due
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, apperr.Validationf("Invalid status")
		}
		patch.Status = req.Status
	}

	a, err := s.store.UpdateAssignment(ctx, scope, id, patch)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Task not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "update task", err)
	}
	return a, nil
}

// DeleteTask removes a task created by adminID.
func (s *Service) DeleteTask(ctx context.Context, adminID, rawTaskID string) error {
	owner, err := objectID(adminID)
	if err != nil {
		return apperr.New(apperr.Forbidden, "invalid subject")
	}
	id, err := taskID(rawTaskID)
	if err != nil {
		return err
	}

	err = s.store.DeleteAssignment(ctx, models.AssignmentScope{AdminID: &owner}, id)
	if errors.Is(err, models.ErrNotFound) {
		return apperr.New(apperr.NotFound, "Task not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "delete task", err)
	}
	return nil
}

func scopeFor(p auth.Principal) (models.AssignmentScope, error) {
	oid, err := objectID(p.ID)
	if err != nil {
		return models.AssignmentScope{}, apperr.New(apperr.Forbidden, "invalid subject")
	}
	if p.Role == models.RoleAdmin {
		return models.AssignmentScope{AdminID: &oid}, nil
	}
	return models.AssignmentScope{UserID: &oid}, nil
}

// taskID parses a client-supplied id. Malformed ids cannot match any task.
func taskID(raw string) (primitive.ObjectID, error) {
	if strings.TrimSpace(raw) == "" {
		return primitive.NilObjectID, apperr.Validationf("taskId is required")
	}
	id, err := objectID(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.NotFound, "Task not found")
	}
	return id, nil
}

func objectID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(strings.TrimSpace(hex))
}
