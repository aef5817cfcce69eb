package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/auth"
	"github.com/ayush/task-manager/backend/internal/models"
)

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ProfileStore defines the interface for profile persistence.
type ProfileStore interface {
	CreateProfile(ctx context.Context, email, hashedPassword string, fullName *string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, fullName, avatarURL *string, now time.Time) (*models.Profile, error)
	SetAvatar(ctx context.Context, id, key, url string, now time.Time) (*models.Profile, error)
}

// FileStore defines the interface for avatar storage.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
}

type TokenIssuer interface {
	Issue(p auth.Principal) (string, error)
}

// Service implements signup, login and profile management for the personal
// task list.
type Service struct {
	profiles ProfileStore
	files    FileStore
	tokens   TokenIssuer
	guard    auth.LoginGuard
	now      func() time.Time
}

// NewService wires the account service. files may be nil, which disables avatars.
func NewService(profiles ProfileStore, files FileStore, tokens TokenIssuer, guard auth.LoginGuard) *Service {
	if guard == nil {
		guard = auth.NoopGuard{}
	}
	return &Service{profiles: profiles, files: files, tokens: tokens, guard: guard, now: time.Now}
}

// SignupRequest is the JSON body for POST /api/auth/signup.
type SignupRequest struct {
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirmPassword"`
	FullName        *string `json:"full_name"`
}

// Session is returned by signup and login.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func validateCredentials(email, password string) error {
	if !emailPattern.MatchString(email) {
		return apperr.Validationf("Invalid email format")
	}
	if len(password) < minPasswordLen {
		return apperr.Validationf("Password must be at least 6 characters")
	}
	return nil
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*models.Profile, *Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, nil, apperr.Validationf("All fields are required")
	}
	if req.Password != req.ConfirmPassword {
		return nil, nil, apperr.Validationf("Passwords do not match")
	}
	if err := validateCredentials(email, req.Password); err != nil {
		return nil, nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.profiles.CreateProfile(ctx, email, hashed, trimmedOrNil(req.FullName))
	if errors.Is(err, models.ErrDuplicateEmail) {
		return nil, nil, apperr.New(apperr.Conflict, "User already registered")
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "create profile", err)
	}

	sess, err := s.session(profile)
	if err != nil {
		return nil, nil, err
	}
	return profile, sess, nil
}

// Login never reveals whether the email exists.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.Profile, *Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, nil, apperr.Validationf("Email and password are required")
	}
	if err := validateCredentials(email, req.Password); err != nil {
		return nil, nil, err
	}
	if err := s.guard.Check(ctx, email); err != nil {
		return nil, nil, err
	}

	invalid := apperr.New(apperr.InvalidCredential, "Invalid credentials")
	profile, err := s.profiles.GetProfileByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		s.recordFailure(ctx, email)
		return nil, nil, invalid
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "find profile", err)
	}

	ok, err := auth.CheckPassword(profile.Password, req.Password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		s.recordFailure(ctx, email)
		return nil, nil, invalid
	}

	if err := s.guard.Reset(ctx, email); err != nil {
		slog.Warn("login_throttle_reset_failed", "error", err)
	}
	sess, err := s.session(profile)
	if err != nil {
		return nil, nil, err
	}
	return profile, sess, nil
}

func (s *Service) recordFailure(ctx context.Context, email string) {
	slog.Info("login_failed", "email", email)
	if err := s.guard.Fail(ctx, email); err != nil {
		slog.Warn("login_throttle_record_failed", "error", err)
	}
}

func (s *Service) session(p *models.Profile) (*Session, error) {
	token, err := s.tokens.Issue(auth.Principal{ID: p.ID, Role: models.RoleUser, Email: p.Email})
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *Service) Profile(ctx context.Context, id string) (*models.Profile, error) {
	p, err := s.profiles.GetProfileByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "get profile", err)
	}
	return p, nil
}

// ProfileUpdate is the JSON body for PUT /api/profile.
type ProfileUpdate struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// UpdateProfile replaces full_name and avatar_url; empty values become null.
func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*models.Profile, error) {
	p, err := s.profiles.UpdateProfile(ctx, id, trimmedOrNil(in.FullName), trimmedOrNil(in.AvatarURL), s.now().UTC())
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to update profile", err)
	}
	return p, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
