package team

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/auth"
	"github.com/ayush/task-manager/backend/internal/middleware"
	"github.com/ayush/task-manager/backend/internal/models"
	"github.com/ayush/task-manager/backend/internal/render"
)

// envelope is the success body shared by every team-board endpoint.
type envelope struct {
	Status  bool   `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func ok(w http.ResponseWriter, status int, data any, msg string) {
	render.JSON(w, status, envelope{Status: true, Data: data, Message: msg})
}

// Handler holds team-board HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Mount registers the /user and /task routes. login is wrapped around the
// unauthenticated credential endpoints (rate limiting).
func (h *Handler) Mount(r chi.Router, v middleware.Verifier, login func(http.Handler) http.Handler) {
	if login == nil {
		login = func(next http.Handler) http.Handler { return next }
	}
	adminOnly := middleware.RequireRole(v, models.RoleAdmin)
	userOnly := middleware.RequireRole(v, models.RoleUser)

	r.Route("/user", func(r chi.Router) {
		r.With(login).Post("/signup", h.Signup)
		r.With(login).Post("/login", h.Login)
		r.With(adminOnly).Post("/add_user", h.AddUser)
		r.With(adminOnly).Get("/get_users", h.GetUsers)
	})

	r.Route("/task", func(r chi.Router) {
		r.With(adminOnly).Post("/add_task", h.AddTask)
		r.With(adminOnly).Get("/get_task", h.GetTasks)
		r.With(adminOnly).Post("/update_task", h.UpdateTask)
		r.With(adminOnly).Post("/delete_task", h.DeleteTask)
		r.With(userOnly).Get("/get_user_task", h.GetTasks)
		r.With(userOnly).Post("/update_task_by_user", h.UpdateTask)
	})
}

func principal(r *http.Request) (auth.Principal, error) {
	p, found := auth.PrincipalFrom(r.Context())
	if !found {
		return auth.Principal{}, apperr.New(apperr.Unauthorized, "Unauthorized request")
	}
	return p, nil
}

// Signup creates an admin and returns a token for it.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	sess, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	ok(w, http.StatusCreated, map[string]any{"user": sess.User, "token": sess.Token}, "Signup successful")
}

// Login authenticates a user or admin.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	sess, err := h.svc.Login(r.Context(), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"user": sess.User, "token": sess.Token, "type": sess.Type}, "Login Successful")
}

// AddUser creates a user under the calling admin.
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var req models.SignupRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	user, err := h.svc.AddUser(r.Context(), p.ID, req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	ok(w, http.StatusCreated, map[string]any{"user": user}, "User Added successfully")
}

// GetUsers lists the calling admin's users.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	users, err := h.svc.ListUsers(r.Context(), p.ID)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	ok(w, http.StatusOK, users, "User fetch successfully")
}

func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var req AssignmentRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	task, err := h.svc.AddTask(r.Context(), p.ID, req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	ok(w, http.StatusCreated, task, "Task added successfully")
}

// GetTasks serves both /task/get_task and /task/get_user_task; the scope
// follows the caller's role.
func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	tasks, err := h.svc.ListTasks(r.Context(), p)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	ok(w, http.StatusOK, tasks, "Task fetched successfully")
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var req UpdateRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	task, err := h.svc.UpdateTask(r.Context(), p, req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	ok(w, http.StatusOK, task, "Task updated successfully")
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var req struct {
		TaskID string `json:"taskId"`
	}
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	if err := h.svc.DeleteTask(r.Context(), p.ID, req.TaskID); err != nil {
		render.Error(w, r, err)
		return
	}
	ok(w, http.StatusOK, nil, "Task deleted successfully")
}
