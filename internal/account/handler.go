package account

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/auth"
	"github.com/ayush/task-manager/backend/internal/middleware"
	"github.com/ayush/task-manager/backend/internal/models"
	"github.com/ayush/task-manager/backend/internal/render"
)

// Handler holds auth and profile HTTP handlers for the personal task list.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Mount registers /api/auth and /api/profile. login wraps the credential
// endpoints and may be nil.
func (h *Handler) Mount(r chi.Router, v middleware.Verifier, login func(http.Handler) http.Handler) {
	if login == nil {
		login = func(next http.Handler) http.Handler { return next }
	}
	authed := middleware.RequireRole(v)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(login).Post("/signup", h.Signup)
		r.With(login).Post("/login", h.Login)
		r.With(authed).Post("/logout", h.Logout)
		r.With(authed).Get("/me", h.Me)
	})

	r.Route("/api/profile", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", h.GetProfile)
		r.Put("/", h.UpdateProfile)
		r.Get("/avatar", h.GetAvatar)
		r.Put("/avatar", h.PutAvatar)
	})
}

func callerID(r *http.Request) (string, error) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return "", apperr.New(apperr.Unauthorized, "No token provided")
	}
	return p.ID, nil
}

type sessionResponse struct {
	User    *models.Profile `json:"user"`
	Session *Session        `json:"session"`
	Message string          `json:"message"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	profile, sess, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, sessionResponse{User: profile, Session: sess, Message: "Signup successful"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	profile, sess, err := h.svc.Login(r.Context(), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, sessionResponse{User: profile, Session: sess, Message: "Login successful"})
}

// Logout is acknowledged only; tokens stay valid until they expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, "user")
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, "profile")
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, field string) {
	id, err := callerID(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	p, err := h.svc.Profile(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{field: p})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := callerID(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var in ProfileUpdate
	if err := render.Decode(r, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	p, err := h.svc.UpdateProfile(r.Context(), id, in)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"profile": p})
}

// PutAvatar takes the raw image as the request body.
func (h *Handler) PutAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := callerID(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxAvatarBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.Error(w, r, apperr.Validationf("avatar must be between 1 byte and 2 MiB"))
			return
		}
		render.Error(w, r, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	p, err := h.svc.SetAvatar(r.Context(), id, bytes.NewReader(data), int64(len(data)), r.Header.Get("Content-Type"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"profile": p})
}

func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := callerID(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	rc, contentType, err := h.svc.Avatar(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("avatar_stream_failed",
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
	}
}
