package goals_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/goals"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/txn"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memParent keeps one parent's goals in memory with a version counter.
type memParent struct {
	church   primitive.ObjectID
	id       primitive.ObjectID
	goals    []models.Goal
	conflict bool
}

func (m *memParent) load(_ context.Context, _ *http.Request, scope authz.Scope) (goals.Parent, error) {
	if scope.ChurchID != m.church {
		return goals.Parent{}, apierr.NotFound("group")
	}
	return goals.Parent{
		Kind:  "group",
		ID:    m.id,
		Goals: append([]models.Goal(nil), m.goals...),
		Save: func(_ context.Context, gs []models.Goal) error {
			if m.conflict {
				return txn.ErrVersionConflict
			}
			m.goals = gs
			return nil
		},
	}, nil
}

type fixture struct {
	h      *goals.Handler
	fx     *testutil.Fixtures
	parent *memParent
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	p := &memParent{church: primitive.NewObjectID(), id: primitive.NewObjectID()}
	return fixture{
		h:      goals.NewHandler(db, p.load, nil, zap.NewNop()),
		fx:     testutil.NewFixtures(t, db),
		parent: p,
	}
}

type goalJSON struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	CompletedAt *time.Time `json:"completedAt"`
	IsOverdue   bool       `json:"isOverdue"`
	HealthScore int        `json:"healthScore"`
	Assignees   []struct {
		FullName string `json:"fullName"`
	} `json:"assignees"`
}

func (f fixture) do(t *testing.T, handler http.HandlerFunc, method, target string, body any, church primitive.ObjectID, goalID string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, method, target, body)
	if goalID != "" {
		req = testutil.WithChiURLParam(req, "goalId", goalID)
	}
	req = testutil.WithPrincipal(req, testutil.Principal(church, "admin"))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func (f fixture) create(t *testing.T, body map[string]any) goalJSON {
	t.Helper()
	rec := f.do(t, f.h.Create, http.MethodPost, "/", body, f.parent.church, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var g goalJSON
	testutil.Decode(t, rec, &g)
	return g
}

func TestProgressLifecycle(t *testing.T) {
	f := newFixture(t)
	g := f.create(t, map[string]any{
		"title":      "Grow youth choir",
		"targetDate": time.Now().UTC().AddDate(0, 2, 0),
	})
	if g.Status != "planned" || g.Progress != 0 {
		t.Fatalf("new goal = %+v", g)
	}

	steps := []struct {
		progress int
		want     string
	}{
		{50, "in_progress"},
		{0, "planned"},
		{100, "completed"},
		{40, "completed"},
	}
	for _, s := range steps {
		rec := f.do(t, f.h.Update, http.MethodPut, "/", map[string]any{"progress": s.progress}, f.parent.church, g.ID)
		if rec.Code != http.StatusOK {
			t.Fatalf("progress %d: status = %d, body %s", s.progress, rec.Code, rec.Body.String())
		}
		var got goalJSON
		testutil.Decode(t, rec, &got)
		if got.Status != s.want || got.Progress != s.progress {
			t.Errorf("progress %d: got status %q progress %d, want %q", s.progress, got.Status, got.Progress, s.want)
		}
		if s.want == "completed" && got.CompletedAt == nil {
			t.Errorf("progress %d: completedAt not set", s.progress)
		}
	}
}

func TestUpdate_NoChangesDetected(t *testing.T) {
	f := newFixture(t)
	g := f.create(t, map[string]any{
		"title":      "Finish roof",
		"progress":   100,
		"targetDate": time.Now().UTC().AddDate(0, 1, 0),
	})
	if g.Status != "completed" {
		t.Fatalf("status = %q, want completed", g.Status)
	}

	rec := f.do(t, f.h.Update, http.MethodPut, "/", map[string]any{"progress": 100}, f.parent.church, g.ID)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env := testutil.Decode(t, rec, nil); env.Error != "no changes detected" {
		t.Errorf("error = %q", env.Error)
	}

	rec = f.do(t, f.h.Update, http.MethodPut, "/", map[string]any{}, f.parent.church, g.ID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", rec.Code)
	}
}

func TestUpdate_VersionConflict(t *testing.T) {
	f := newFixture(t)
	g := f.create(t, map[string]any{"title": "Buy chairs", "targetDate": time.Now().UTC().AddDate(0, 1, 0)})

	f.parent.conflict = true
	rec := f.do(t, f.h.Update, http.MethodPut, "/", map[string]any{"progress": 10}, f.parent.church, g.ID)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if f.parent.goals[0].Progress != 0 {
		t.Error("goal changed despite conflict")
	}
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(t)
	g := f.create(t, map[string]any{"title": "Outreach", "targetDate": time.Now().UTC().AddDate(0, 1, 0)})
	other := primitive.NewObjectID()

	if rec := f.do(t, f.h.Update, http.MethodPut, "/", map[string]any{"progress": 10}, other, g.ID); rec.Code != http.StatusNotFound {
		t.Errorf("update status = %d, want 404", rec.Code)
	}
	if rec := f.do(t, f.h.Delete, http.MethodDelete, "/", nil, other, g.ID); rec.Code != http.StatusNotFound {
		t.Errorf("delete status = %d, want 404", rec.Code)
	}
	if rec := f.do(t, f.h.List, http.MethodGet, "/", nil, other, ""); rec.Code != http.StatusNotFound {
		t.Errorf("list status = %d, want 404", rec.Code)
	}
}

func TestList_FiltersSortsAndPages(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := f.fx.CreateUser(ctx, f.parent.church, "Grace Achieng", "grace@example.com", "leader")

	now := time.Now().UTC()
	f.create(t, map[string]any{"title": "Late", "priority": "low", "targetDate": now.AddDate(0, 0, -3)})
	f.create(t, map[string]any{"title": "Soon", "priority": "high", "targetDate": now.AddDate(0, 0, 3), "assignedTo": []string{u.ID.Hex()}})
	f.create(t, map[string]any{"title": "Done", "progress": 100, "targetDate": now.AddDate(0, 1, 0)})

	var data struct {
		Goals []goalJSON `json:"goals"`
		Stats struct {
			Total     int `json:"total"`
			Completed int `json:"completed"`
			Overdue   int `json:"overdue"`
		} `json:"stats"`
		Pagination struct {
			Total   int  `json:"total"`
			Pages   int  `json:"pages"`
			HasNext bool `json:"hasNext"`
		} `json:"pagination"`
	}

	rec := f.do(t, f.h.List, http.MethodGet, "/?includeCompleted=false&limit=1", nil, f.parent.church, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	testutil.Decode(t, rec, &data)
	if data.Stats.Total != 3 || data.Stats.Completed != 1 || data.Stats.Overdue != 1 {
		t.Errorf("stats = %+v", data.Stats)
	}
	if data.Pagination.Total != 2 || data.Pagination.Pages != 2 || !data.Pagination.HasNext {
		t.Errorf("pagination = %+v", data.Pagination)
	}
	if len(data.Goals) != 1 || len(data.Goals[0].Assignees) != 1 || data.Goals[0].Assignees[0].FullName != "Grace Achieng" {
		t.Errorf("first page should be the high priority goal with its assignee: %+v", data.Goals)
	}

	rec = f.do(t, f.h.List, http.MethodGet, "/?overdue=true", nil, f.parent.church, "")
	testutil.Decode(t, rec, &data)
	if len(data.Goals) != 1 || !data.Goals[0].IsOverdue {
		t.Errorf("overdue filter = %+v", data.Goals)
	}

	for _, bad := range []string{"/?status=unknown", "/?sortBy=owner", "/?assignedTo=nope"} {
		if rec := f.do(t, f.h.List, http.MethodGet, bad, nil, f.parent.church, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", bad, rec.Code)
		}
	}
}

func TestCreate_RejectsUnknownAssignee(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, f.h.Create, http.MethodPost, "/", map[string]any{
		"title":      "Visit members",
		"targetDate": time.Now().UTC(),
		"assignedTo": []string{primitive.NewObjectID().Hex()},
	}, f.parent.church, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(f.parent.goals) != 0 {
		t.Error("goal saved despite unknown assignee")
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	g := f.create(t, map[string]any{"title": "Paint hall", "targetDate": time.Now().UTC()})

	if rec := f.do(t, f.h.Delete, http.MethodDelete, "/", nil, f.parent.church, g.ID); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := f.do(t, f.h.Delete, http.MethodDelete, "/", nil, f.parent.church, g.ID); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	f.create(t, map[string]any{"title": "A", "targetDate": now.AddDate(0, 0, 10)})
	f.create(t, map[string]any{"title": "B", "targetDate": now.AddDate(0, 0, 60)})
	f.create(t, map[string]any{"title": "C", "progress": 100, "targetDate": now.AddDate(0, 0, 5)})

	var rep struct {
		Summary struct {
			Total int `json:"total"`
		} `json:"summary"`
		Timeline     []goalJSON `json:"timeline"`
		TimelineDays int        `json:"timelineDays"`
	}
	rec := f.do(t, f.h.Report, http.MethodGet, "/?includeCompleted=false", nil, f.parent.church, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	testutil.Decode(t, rec, &rep)
	if rep.Summary.Total != 2 || rep.TimelineDays != 30 || len(rep.Timeline) != 1 {
		t.Errorf("report = %+v", rep)
	}

	rec = f.do(t, f.h.Report, http.MethodGet, "/?timelineDays=90", nil, f.parent.church, "")
	testutil.Decode(t, rec, &rep)
	if rep.Summary.Total != 3 || len(rep.Timeline) != 2 {
		t.Errorf("report with 90 days = %+v", rep)
	}

	if rec := f.do(t, f.h.Report, http.MethodGet, "/?timelineDays=400", nil, f.parent.church, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("timelineDays=400 status = %d, want 400", rec.Code)
	}
}
