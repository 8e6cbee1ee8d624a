package activities_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/activities"
	activitystore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fixture struct {
	h      *activities.Handler
	fx     *testutil.Fixtures
	church primitive.ObjectID
	branch primitive.ObjectID
}

// newFixture serves activities of one branch; any other church gets
// NotFound from the parent lookup.
func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	church, branch := primitive.NewObjectID(), primitive.NewObjectID()
	parent := func(_ context.Context, _ *http.Request, scope authz.Scope) (activitystore.Owner, error) {
		if scope.ChurchID != church {
			return activitystore.Owner{}, apierr.NotFound("branch")
		}
		return activitystore.BranchOwner(branch), nil
	}
	return fixture{
		h:      activities.NewHandler(db, parent, nil, zap.NewNop()),
		fx:     testutil.NewFixtures(t, db),
		church: church,
		branch: branch,
	}
}

type activityJSON struct {
	ID                  string `json:"id"`
	Status              string `json:"status"`
	IsCancelled         bool   `json:"isCancelled"`
	AttendanceRate      int    `json:"attendanceRate"`
	PlannedParticipants []struct {
		FullName string `json:"fullName"`
	} `json:"plannedParticipants"`
	Organizer *struct {
		FullName string `json:"fullName"`
	} `json:"organizer"`
}

type attendanceJSON struct {
	Attendance []struct {
		UserID string `json:"userId"`
		Status string `json:"status"`
	} `json:"attendance"`
	Summary struct {
		Total          int `json:"total"`
		Present        int `json:"present"`
		Late           int `json:"late"`
		AttendanceRate int `json:"attendanceRate"`
	} `json:"summary"`
}

func (f fixture) do(t *testing.T, handler http.HandlerFunc, method, target string, body any, role string, activityID string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, method, target, body)
	if activityID != "" {
		req = testutil.WithChiURLParam(req, "activityId", activityID)
	}
	req = testutil.WithPrincipal(req, testutil.Principal(f.church, role))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCreate_PopulatesParticipants(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u1 := f.fx.CreateUser(ctx, f.church, "Amina Wanjiru", "amina@example.com", "member")
	u2 := f.fx.CreateUser(ctx, f.church, "Brian Kiptoo", "brian@example.com", "member")

	rec := f.do(t, f.h.Create, http.MethodPost, "/", map[string]any{
		"title":               "Prayer night",
		"type":                "prayer",
		"date":                time.Now().UTC(),
		"startTime":           "18:00",
		"endTime":             "20:00",
		"organizerId":         u1.ID.Hex(),
		"plannedParticipants": []string{u1.ID.Hex(), u2.ID.Hex()},
	}, "admin", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got activityJSON
	testutil.Decode(t, rec, &got)
	if got.Status != "scheduled" || len(got.PlannedParticipants) != 2 {
		t.Errorf("unexpected activity: %+v", got)
	}
	if got.Organizer == nil || got.Organizer.FullName != "Amina Wanjiru" {
		t.Errorf("organizer not populated: %+v", got.Organizer)
	}
}

func TestCreate_RejectsUnknownUsersAndBadTimes(t *testing.T) {
	f := newFixture(t)
	base := map[string]any{"title": "Meeting", "type": "meeting", "date": time.Now().UTC()}

	unknown := map[string]any{}
	for k, v := range base {
		unknown[k] = v
	}
	unknown["plannedParticipants"] = []string{primitive.NewObjectID().Hex()}
	if rec := f.do(t, f.h.Create, http.MethodPost, "/", unknown, "admin", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown participant: status = %d", rec.Code)
	}

	times := map[string]any{"startTime": "20:00", "endTime": "19:00"}
	for k, v := range base {
		times[k] = v
	}
	if rec := f.do(t, f.h.Create, http.MethodPost, "/", times, "admin", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("end before start: status = %d", rec.Code)
	}
}

func TestAttendance_BulkThenUpsert(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u1 := f.fx.CreateUser(ctx, f.church, "Amina", "a@example.com", "member")
	u2 := f.fx.CreateUser(ctx, f.church, "Brian", "b@example.com", "member")
	u3 := f.fx.CreateUser(ctx, f.church, "Chege", "c@example.com", "member")
	u4 := f.fx.CreateUser(ctx, f.church, "Dorcas", "d@example.com", "member")
	a := f.fx.CreateActivity(ctx, f.church, "Bible study", time.Now().UTC(), func(a *models.Activity) {
		a.BranchID = &f.branch
		a.PlannedParticipants = []primitive.ObjectID{u1.ID, u2.ID, u3.ID, u4.ID}
	})

	rec := f.do(t, f.h.SetAttendance, http.MethodPost, "/", map[string]any{
		"records": []map[string]any{
			{"userId": u1.ID.Hex(), "status": "present"},
			{"userId": u2.ID.Hex(), "status": "late"},
			{"userId": u3.ID.Hex(), "status": "absent"},
		},
	}, "leader", a.ID.Hex())
	if rec.Code != http.StatusOK {
		t.Fatalf("bulk: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got attendanceJSON
	testutil.Decode(t, rec, &got)
	if got.Summary.Total != 3 || got.Summary.AttendanceRate != 50 {
		t.Errorf("after bulk: summary = %+v", got.Summary)
	}

	rec = f.do(t, f.h.UpsertAttendance, http.MethodPut, "/", map[string]any{
		"userId": u3.ID.Hex(), "status": "present",
	}, "leader", a.ID.Hex())
	testutil.Decode(t, rec, &got)
	if rec.Code != http.StatusOK || got.Summary.Total != 3 || got.Summary.AttendanceRate != 75 {
		t.Errorf("after upsert: status = %d, summary = %+v", rec.Code, got.Summary)
	}

	rec = f.do(t, f.h.ShowAttendance, http.MethodGet, "/", nil, "member", a.ID.Hex())
	testutil.Decode(t, rec, &got)
	if got.Summary.Present != 2 || got.Summary.Late != 1 {
		t.Errorf("show: summary = %+v", got.Summary)
	}
}

func TestShow_OtherChurchIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := f.fx.CreateActivity(ctx, f.church, "Choir practice", time.Now().UTC(), func(a *models.Activity) {
		a.BranchID = &f.branch
	})

	req := testutil.WithChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "activityId", a.ID.Hex())
	req = testutil.WithPrincipal(req, testutil.Principal(primitive.NewObjectID(), "admin"))
	rec := httptest.NewRecorder()
	f.h.Show(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDelete_CancelThenHardDelete(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := f.fx.CreateActivity(ctx, f.church, "Youth outing", time.Now().UTC(), func(a *models.Activity) {
		a.BranchID = &f.branch
	})

	rec := f.do(t, f.h.Delete, http.MethodDelete, "/?cancel=true", nil, "admin", a.ID.Hex())
	var got activityJSON
	testutil.Decode(t, rec, &got)
	if rec.Code != http.StatusOK || got.Status != "cancelled" || !got.IsCancelled {
		t.Fatalf("cancel: status = %d, got %+v", rec.Code, got)
	}

	rec = f.do(t, f.h.Delete, http.MethodDelete, "/?force=true", nil, "admin", a.ID.Hex())
	if rec.Code != http.StatusOK {
		t.Fatalf("force delete: status = %d", rec.Code)
	}
	rec = f.do(t, f.h.Show, http.MethodGet, "/", nil, "admin", a.ID.Hex())
	if rec.Code != http.StatusNotFound {
		t.Errorf("after delete: status = %d, want 404", rec.Code)
	}
}

func TestReport_JSONAndXLSX(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	day := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	for i, typ := range []models.ActivityType{models.ActivityMeeting, models.ActivityMeeting, models.ActivityPrayer} {
		f.fx.CreateActivity(ctx, f.church, "Session", day.AddDate(0, 0, i), func(a *models.Activity) {
			a.BranchID = &f.branch
			a.Type = typ
		})
	}

	rec := f.do(t, f.h.Report, http.MethodGet, "/?groupBy=type&startDate=2026-03-01&endDate=2026-03-31", nil, "admin", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("json: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var rep struct {
		Summary struct {
			Total int `json:"totalActivities"`
		} `json:"summary"`
		Groups []struct {
			Key   string `json:"key"`
			Count int    `json:"count"`
		} `json:"groups"`
	}
	testutil.Decode(t, rec, &rep)
	if rep.Summary.Total != 3 || len(rep.Groups) != 2 || rep.Groups[0].Key != "meeting" || rep.Groups[0].Count != 2 {
		t.Errorf("unexpected report: %+v", rep)
	}

	rec = f.do(t, f.h.Report, http.MethodGet, "/?format=xlsx", nil, "admin", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") == "application/json; charset=utf-8" || rec.Body.Len() == 0 {
		t.Errorf("xlsx: status = %d, type = %q, %d bytes", rec.Code, rec.Header().Get("Content-Type"), rec.Body.Len())
	}

	if rec := f.do(t, f.h.Report, http.MethodGet, "/?groupBy=weekday", nil, "admin", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad groupBy: status = %d", rec.Code)
	}
	if rec := f.do(t, f.h.Report, http.MethodGet, "/?startDate=2026-04-01&endDate=2026-03-01", nil, "admin", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("reversed range: status = %d", rec.Code)
	}
}
