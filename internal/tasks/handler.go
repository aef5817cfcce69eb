package tasks

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/auth"
	"github.com/ayush/task-manager/backend/internal/middleware"
	"github.com/ayush/task-manager/backend/internal/query"
	"github.com/ayush/task-manager/backend/internal/render"
)

// Handler holds task HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Mount registers /api/tasks behind bearer authentication.
func (h *Handler) Mount(r chi.Router, v middleware.Verifier) {
	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(middleware.RequireRole(v))
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func ownerID(r *http.Request) (string, error) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return "", apperr.New(apperr.Unauthorized, "No token provided")
	}
	return p.ID, nil
}

// List returns the caller's tasks, filtered and sorted by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	f, s, err := query.Parse(r.URL.Query())
	if err != nil {
		render.Error(w, r, err)
		return
	}
	tasks, err := h.svc.List(r.Context(), owner, f, s)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"tasks": tasks, "count": len(tasks)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var in Input
	if err := render.Decode(r, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	task, err := h.svc.Create(r.Context(), owner, in)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, map[string]any{"task": task})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	task, err := h.svc.Get(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"task": task})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var in Input
	if err := render.Decode(r, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	task, err := h.svc.Update(r.Context(), owner, chi.URLParam(r, "id"), in)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]any{"task": task})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}
