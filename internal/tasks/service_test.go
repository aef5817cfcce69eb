package tasks

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/models"
	"github.com/ayush/task-manager/backend/internal/query"
	"github.com/ayush/task-manager/backend/internal/store"
)

func str(s string) *string { return &s }

func newTestService() *Service {
	clock := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	tick := func() time.Time { clock = clock.Add(time.Minute); return clock }

	m := store.NewMemory()
	m.SetClock(tick)
	svc := NewService(m)
	svc.now = tick
	return svc
}

func TestCreate_DefaultsAndRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", Input{
		Title:       str("  Buy milk  "),
		Description: str("  "),
		DueDate:     str("2026-10-20"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Title != "Buy milk" || created.Description != nil {
		t.Errorf("trim not applied: %+v", created)
	}
	if created.Status != models.TaskPending || created.Priority != models.PriorityMedium {
		t.Errorf("defaults = %s/%s", created.Status, created.Priority)
	}
	if created.UserID != "alice" || created.ID == "" {
		t.Errorf("owner/id = %q/%q", created.UserID, created.ID)
	}

	list, err := svc.List(ctx, "alice", query.Filter{}, query.DefaultSort)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d", len(list))
	}
	got := list[0]
	if got.ID != created.ID || got.Title != created.Title || got.Status != created.Status ||
		got.Priority != created.Priority || !got.DueDate.Equal(*created.DueDate) {
		t.Fatalf("listed %+v, created %+v", got, created)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService()
	cases := map[string]Input{
		"missing title":      {},
		"blank title":        {Title: str("   ")},
		"bad status":         {Title: str("x"), Status: str("done")},
		"bad priority":       {Title: str("x"), Priority: str("urgent")},
		"bad due date":       {Title: str("x"), DueDate: str("tomorrow")},
		"long desc":          {Title: str("x"), Description: str(strings.Repeat("x", 501))},
		"long accented desc": {Title: str("x"), Description: str(strings.Repeat("é", 501))},
	}
	for name, in := range cases {
		if _, err := svc.Create(context.Background(), "alice", in); !apperr.Is(err, apperr.Validation) {
			t.Errorf("%s: err = %v, want Validation", name, err)
		}
	}

	// Limits count characters, not bytes.
	for _, desc := range []string{strings.Repeat("é", 300), strings.Repeat("日", 500)} {
		created, err := svc.Create(context.Background(), "alice", Input{Title: str("x"), Description: str(desc)})
		if err != nil {
			t.Fatalf("Create with %d-rune description: %v", len([]rune(desc)), err)
		}
		if *created.Description != desc {
			t.Fatalf("description altered")
		}
	}
}

func TestOwnershipIsolation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	task, _ := svc.Create(ctx, "alice", Input{Title: str("private")})

	if _, err := svc.Get(ctx, "bob", task.ID); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("Get err = %v", err)
	}
	if _, err := svc.Update(ctx, "bob", task.ID, Input{Title: str("pwned")}); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("Update err = %v", err)
	}
	if err := svc.Delete(ctx, "bob", task.ID); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("Delete err = %v", err)
	}
	if list, _ := svc.List(ctx, "bob", query.Filter{}, query.DefaultSort); len(list) != 0 {
		t.Errorf("bob lists %d tasks", len(list))
	}

	still, err := svc.Get(ctx, "alice", task.ID)
	if err != nil || still.Title != "private" {
		t.Fatalf("alice's task changed: %+v, %v", still, err)
	}
}

func TestUpdate_PartialReplace(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	task, _ := svc.Create(ctx, "alice", Input{Title: str("Write report"), Description: str("Q3"), Priority: str("high")})

	updated, err := svc.Update(ctx, "alice", task.ID, Input{Status: str(models.TaskCompleted)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != models.TaskCompleted || updated.Title != "Write report" ||
		updated.Priority != "high" || updated.Description == nil || *updated.Description != "Q3" {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) {
		t.Fatalf("updated_at not refreshed: %v -> %v", task.UpdatedAt, updated.UpdatedAt)
	}

	// Any status is reachable from any other.
	back, err := svc.Update(ctx, "alice", task.ID, Input{Status: str(models.TaskPending), Description: str("")})
	if err != nil || back.Status != models.TaskPending || back.Description != nil {
		t.Fatalf("revert = %+v, %v", back, err)
	}

	if _, err := svc.Update(ctx, "alice", task.ID, Input{}); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("empty patch err = %v", err)
	}
}

func TestDelete_Twice(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	task, _ := svc.Create(ctx, "alice", Input{Title: str("once")})

	if err := svc.Delete(ctx, "alice", task.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(ctx, "alice", task.ID); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("second delete err = %v, want NotFound", err)
	}
}

func TestList_FilterSearchSort(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.Create(ctx, "alice", Input{Title: str("Buy milk"), Status: str("pending")})
	svc.Create(ctx, "alice", Input{Title: str("Write report"), Status: str("completed")})
	svc.Create(ctx, "bob", Input{Title: str("Bob's report"), Status: str("pending")})

	titles := func(ts []models.Task) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.Title)
		}
		return out
	}

	pending, _ := svc.List(ctx, "alice", query.Filter{Status: "pending"}, query.DefaultSort)
	if got := titles(pending); len(got) != 1 || got[0] != "Buy milk" {
		t.Errorf("status filter = %v", got)
	}

	found, _ := svc.List(ctx, "alice", query.Filter{Search: "REPORT"}, query.DefaultSort)
	if got := titles(found); len(got) != 1 || got[0] != "Write report" {
		t.Errorf("search = %v", got)
	}

	sorted, _ := svc.List(ctx, "alice", query.Filter{}, query.Sort{Field: "title"})
	if got := titles(sorted); len(got) != 2 || got[0] != "Buy milk" || got[1] != "Write report" {
		t.Errorf("title asc = %v", got)
	}

	newest, _ := svc.List(ctx, "alice", query.Filter{}, query.DefaultSort)
	if got := titles(newest); got[0] != "Write report" {
		t.Errorf("default sort = %v", got)
	}
}
