package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/models"
)

const (
	MaxAvatarBytes = 2 << 20
	avatarURL      = "/api/profile/avatar"
)

var errAvatarsDisabled = apperr.New(apperr.Unavailable, "avatar storage is not configured")

// SetAvatar stores an image for profile id and points avatar_url at it. The
// previous object, if any, is removed afterwards.
func (s *Service) SetAvatar(ctx context.Context, id string, body io.Reader, size int64, contentType string) (*models.Profile, error) {
	if s.files == nil {
		return nil, errAvatarsDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validationf("avatar must be an image")
	}
	if size <= 0 || size > MaxAvatarBytes {
		return nil, apperr.Validationf("avatar must be between 1 byte and 2 MiB")
	}

	old, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	key := "avatars/" + id + "/" + uuid.NewString()
	if err := s.files.Put(ctx, key, io.LimitReader(body, size), size, contentType); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "upload avatar", err)
	}

	p, err := s.profiles.SetAvatar(ctx, id, key, avatarURL, s.now().UTC())
	if err != nil {
		if rmErr := s.files.Remove(ctx, key); rmErr != nil {
			slog.Warn("avatar_rollback_failed", "key", key, "error", rmErr)
		}
		return nil, apperr.Wrap(apperr.Internal, "save avatar", err)
	}

	if old.AvatarKey != "" {
		if err := s.files.Remove(ctx, old.AvatarKey); err != nil {
			slog.Warn("avatar_cleanup_failed", "key", old.AvatarKey, "error", err)
		}
	}
	return p, nil
}

// Avatar opens the stored image for profile id. The caller closes it.
func (s *Service) Avatar(ctx context.Context, id string) (io.ReadCloser, string, error) {
	if s.files == nil {
		return nil, "", errAvatarsDisabled
	}
	p, err := s.Profile(ctx, id)
	if err != nil {
		return nil, "", err
	}
	notFound := apperr.New(apperr.NotFound, "avatar not available")
	if p.AvatarKey == "" {
		return nil, "", notFound
	}

	rc, ct, err := s.files.Open(ctx, p.AvatarKey)
	if errors.Is(err, models.ErrNotFound) {
		return nil, "", notFound
	}
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "download avatar", err)
	}
	return rc, ct, nil
}
