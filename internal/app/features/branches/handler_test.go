package branches_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/branches"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/indexes"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*branches.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return branches.NewHandler(db, nil, zap.NewNop()), testutil.NewFixtures(t, db)
}

func call(t *testing.T, fn http.HandlerFunc, req *http.Request, p auth.Principal, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	for k, v := range params {
		req = testutil.WithChiURLParam(req, k, v)
	}
	req = testutil.WithPrincipal(req, p)
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func TestCreateSchedule_ConflictReportsExisting(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fx.Church()
	b := fx.CreateBranch(ctx, church, "Westlands")
	existing := fx.CreateSchedule(ctx, b, "First Service", models.Sunday, "09:00")
	admin := testutil.Principal(church, "admin")
	params := map[string]string{"branchId": b.ID.Hex()}

	body := map[string]any{"serviceName": "Youth Service", "day": "sunday", "time": "09:00"}
	rec := call(t, h.CreateSchedule, testutil.JSONRequest(t, http.MethodPost, "/", body), admin, params)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
	env := testutil.Decode(t, rec, nil)
	conflict, _ := env.Details["conflict"].(map[string]any)
	if conflict["id"] != existing.ID.Hex() || conflict["serviceName"] != "First Service" ||
		conflict["day"] != "sunday" || conflict["time"] != "09:00" {
		t.Errorf("conflict details = %v", env.Details)
	}

	body["time"] = "11:00"
	rec = call(t, h.CreateSchedule, testutil.JSONRequest(t, http.MethodPost, "/", body), admin, params)
	if rec.Code != http.StatusCreated {
		t.Fatalf("non-conflicting create: status = %d", rec.Code)
	}
	var second models.ServiceSchedule
	testutil.Decode(t, rec, &second)
	if second.DurationMinutes != 90 {
		t.Errorf("default duration = %d", second.DurationMinutes)
	}

	// moving the second schedule onto the first collides; saving it in place does not
	params["scheduleId"] = second.ID.Hex()
	rec = call(t, h.UpdateSchedule, testutil.JSONRequest(t, http.MethodPut, "/", map[string]any{"time": "09:00"}), admin, params)
	if rec.Code != http.StatusConflict {
		t.Errorf("update onto existing: status = %d, want 409", rec.Code)
	}
	rec = call(t, h.UpdateSchedule, testutil.JSONRequest(t, http.MethodPut, "/", map[string]any{"time": "11:00", "location": "Hall B"}), admin, params)
	if rec.Code != http.StatusOK {
		t.Errorf("self update: status = %d, want 200", rec.Code)
	}
}

func TestCreateSchedule_InactiveDoesNotConflict(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fx.Church()
	b := fx.CreateBranch(ctx, church, "Karen")
	old := fx.CreateSchedule(ctx, b, "Old Service", models.Sunday, "08:00")
	admin := testutil.Principal(church, "admin")
	params := map[string]string{"branchId": b.ID.Hex(), "scheduleId": old.ID.Hex()}

	rec := call(t, h.DeleteSchedule, httptest.NewRequest(http.MethodDelete, "/", nil), admin, params)
	var soft models.ServiceSchedule
	testutil.Decode(t, rec, &soft)
	if rec.Code != http.StatusOK || soft.IsActive {
		t.Fatalf("soft delete: status = %d, active = %v", rec.Code, soft.IsActive)
	}

	body := map[string]any{"serviceName": "New Service", "day": "sunday", "time": "08:00"}
	rec = call(t, h.CreateSchedule, testutil.JSONRequest(t, http.MethodPost, "/", body), admin, map[string]string{"branchId": b.ID.Hex()})
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestBranchAdmin_OnlyOwnBranch(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fx.Church()
	mine := fx.CreateBranch(ctx, church, "Mine")
	other := fx.CreateBranch(ctx, church, "Other")
	p := testutil.Principal(church, "branch_admin")
	p.BranchID = &mine.ID

	rec := call(t, h.Show, httptest.NewRequest(http.MethodGet, "/", nil), p, map[string]string{"branchId": other.ID.Hex()})
	if rec.Code != http.StatusNotFound {
		t.Errorf("other branch: status = %d, want 404", rec.Code)
	}

	rec = call(t, h.List, httptest.NewRequest(http.MethodGet, "/", nil), p, nil)
	var data struct {
		Branches []struct {
			ID string `json:"id"`
		} `json:"branches"`
	}
	testutil.Decode(t, rec, &data)
	if len(data.Branches) != 1 || data.Branches[0].ID != mine.ID.Hex() {
		t.Errorf("list = %+v", data.Branches)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, fx.DB()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	admin := testutil.Principal(fx.Church(), "pastor")
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		rec := call(t, h.Create, testutil.JSONRequest(t, http.MethodPost, "/", map[string]any{"name": "Kilimani"}), admin, nil)
		if rec.Code != want {
			t.Errorf("create #%d: status = %d, want %d", i, rec.Code, want)
		}
	}
}

func TestDelete_SoftThenForceCascades(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fx.Church()
	b := fx.CreateBranch(ctx, church, "Thika")
	fx.CreateSchedule(ctx, b, "Main", models.Sunday, "10:00")
	fx.CreateActivity(ctx, church, "Outreach", time.Now().UTC(), func(a *models.Activity) { a.BranchID = &b.ID })
	admin := testutil.Principal(church, "admin")
	params := map[string]string{"branchId": b.ID.Hex()}

	rec := call(t, h.Delete, httptest.NewRequest(http.MethodDelete, "/", nil), admin, params)
	var soft models.Branch
	testutil.Decode(t, rec, &soft)
	if rec.Code != http.StatusOK || soft.IsActive {
		t.Fatalf("soft delete: status = %d, %+v", rec.Code, soft)
	}
	n, _ := fx.DB().Collection("service_schedules").CountDocuments(ctx, bson.M{"branch_id": b.ID, "is_active": true})
	if n != 0 {
		t.Errorf("active schedules after soft delete = %d", n)
	}

	rec = call(t, h.Delete, httptest.NewRequest(http.MethodDelete, "/?force=true", nil), admin, params)
	if rec.Code != http.StatusOK {
		t.Fatalf("force delete: status = %d, body %s", rec.Code, rec.Body.String())
	}
	for _, coll := range []string{"service_schedules", "activities"} {
		n, _ := fx.DB().Collection(coll).CountDocuments(ctx, bson.M{"branch_id": b.ID})
		if n != 0 {
			t.Errorf("%s left after force delete: %d", coll, n)
		}
	}
	rec = call(t, h.Show, httptest.NewRequest(http.MethodGet, "/", nil), admin, params)
	if rec.Code != http.StatusNotFound {
		t.Errorf("after force delete: status = %d", rec.Code)
	}
}

func TestShow_OtherChurch(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b := fx.CreateBranch(ctx, fx.Church(), "Ruiru")
	rec := call(t, h.Show, httptest.NewRequest(http.MethodGet, "/", nil),
		testutil.Principal(primitive.NewObjectID(), "admin"), map[string]string{"branchId": b.ID.Hex()})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
