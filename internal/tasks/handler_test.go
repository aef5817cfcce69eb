package tasks

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/task-manager/backend/internal/auth"
	"github.com/ayush/task-manager/backend/internal/models"
	"github.com/ayush/task-manager/backend/internal/store"
)

type fixture struct {
	router http.Handler
	alice  string
	bob    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	iss := auth.NewIssuer("dev-secret", auth.AudienceTasks, 0)
	r := chi.NewRouter()
	NewHandler(NewService(store.NewMemory())).Mount(r, iss)

	alice, _ := iss.Issue(auth.Principal{ID: "alice", Role: models.RoleUser})
	bob, _ := iss.Issue(auth.Principal{ID: "bob", Role: models.RoleUser})
	return fixture{router: r, alice: alice, bob: bob}
}

func (f fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) models.Task {
	t.Helper()
	var payload struct {
		Task models.Task `json:"task"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal task: %v; body=%s", err, w.Body.String())
	}
	return payload.Task
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []models.Task {
	t.Helper()
	var payload struct {
		Tasks []models.Task `json:"tasks"`
		Count int           `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal list: %v; body=%s", err, w.Body.String())
	}
	if payload.Count != len(payload.Tasks) {
		t.Fatalf("count=%d len=%d", payload.Count, len(payload.Tasks))
	}
	return payload.Tasks
}

func TestTasksAPI_CRUD(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/tasks", f.alice, map[string]string{"title": "Buy milk", "priority": "high"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	task := decodeTask(t, w)

	w = f.do(t, http.MethodGet, "/api/tasks/"+task.ID, f.alice, nil)
	if w.Code != http.StatusOK || decodeTask(t, w).Title != "Buy milk" {
		t.Fatalf("get status=%d body=%s", w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodPut, "/api/tasks/"+task.ID, f.alice, map[string]string{"status": "in_progress"})
	if w.Code != http.StatusOK || decodeTask(t, w).Status != "in_progress" {
		t.Fatalf("put status=%d body=%s", w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodPatch, "/api/tasks/"+task.ID, f.alice, map[string]string{"title": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank title patch status=%d", w.Code)
	}

	if w = f.do(t, http.MethodDelete, "/api/tasks/"+task.ID, f.alice, nil); w.Code != http.StatusOK {
		t.Fatalf("delete status=%d", w.Code)
	}
	if w = f.do(t, http.MethodDelete, "/api/tasks/"+task.ID, f.alice, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", w.Code)
	}
}

func TestTasksAPI_OwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	task := decodeTask(t, f.do(t, http.MethodPost, "/api/tasks", f.alice, map[string]string{"title": "mine"}))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := f.do(t, method, "/api/tasks/"+task.ID, f.bob, map[string]string{"title": "theirs"})
		if w.Code != http.StatusNotFound {
			t.Errorf("%s by non-owner: status=%d", method, w.Code)
		}
	}
	if w := f.do(t, http.MethodGet, "/api/tasks/not-a-uuid", f.alice, nil); w.Code != http.StatusNotFound {
		t.Errorf("malformed id: status=%d", w.Code)
	}
}

func TestTasksAPI_ListQuery(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/tasks", f.alice, map[string]string{"title": "Write report", "status": "completed"})
	f.do(t, http.MethodPost, "/api/tasks", f.alice, map[string]string{"title": "Buy milk", "status": "pending"})

	got := decodeList(t, f.do(t, http.MethodGet, "/api/tasks?status=pending", f.alice, nil))
	if len(got) != 1 || got[0].Title != "Buy milk" {
		t.Errorf("status filter = %+v", got)
	}

	got = decodeList(t, f.do(t, http.MethodGet, "/api/tasks?search=report", f.alice, nil))
	if len(got) != 1 || got[0].Title != "Write report" {
		t.Errorf("search = %+v", got)
	}

	got = decodeList(t, f.do(t, http.MethodGet, "/api/tasks?sortField=title&sortDirection=asc", f.alice, nil))
	if len(got) != 2 || got[0].Title != "Buy milk" {
		t.Errorf("sort = %+v", got)
	}

	if w := f.do(t, http.MethodGet, "/api/tasks?sortField=password", f.alice, nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown sortField status=%d", w.Code)
	}
}

func TestTasksAPI_AuthErrors(t *testing.T) {
	f := newFixture(t)

	if w := f.do(t, http.MethodGet, "/api/tasks", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token status=%d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/tasks", "tampered.token.value", nil); w.Code != http.StatusForbidden {
		t.Errorf("invalid token status=%d", w.Code)
	}

	teamTok, _ := auth.NewIssuer("dev-secret", auth.AudienceTeam, 0).Issue(auth.Principal{ID: "alice", Role: models.RoleUser})
	if w := f.do(t, http.MethodGet, "/api/tasks", teamTok, nil); w.Code != http.StatusForbidden {
		t.Errorf("team-board token accepted: status=%d", w.Code)
	}
}
