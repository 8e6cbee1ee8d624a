package auditlog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	syslog "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type eventJSON struct {
	EventType  string `json:"eventType"`
	TargetKind string `json:"targetKind"`
	Actor      *struct {
		FullName string `json:"fullName"`
	} `json:"actor"`
}

type pageJSON struct {
	Events     []eventJSON `json:"events"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func seed(t *testing.T) (chi.Router, auth.Principal) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	church := primitive.NewObjectID()
	pastor := fx.CreateUser(ctx, church, "Grace Wanjiru", "grace@example.com", "pastor")
	logger := syslog.New(audit.New(db), zap.NewNop(), syslog.Config{Auth: "db", Admin: "db"})

	actor := syslog.Actor{ChurchID: church, UserID: pastor.ID, Role: pastor.Role}
	req := httptest.NewRequest(http.MethodPost, "/church/departments", nil)
	logger.Admin(ctx, req, actor, audit.EventDepartmentCreated, syslog.Target{Kind: "department", ID: primitive.NewObjectID()}, nil)
	logger.Admin(ctx, req, actor, audit.EventExpenseCreated, syslog.Target{Kind: "expense", ID: primitive.NewObjectID()}, nil)
	logger.Admin(ctx, req, actor, audit.EventExpenseCreated, syslog.Target{Kind: "expense", ID: primitive.NewObjectID()}, nil)

	stranger := syslog.Actor{ChurchID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Role: "admin"}
	logger.Admin(ctx, req, stranger, audit.EventExpenseCreated, syslog.Target{Kind: "expense", ID: primitive.NewObjectID()}, nil)

	h := auditlog.NewHandler(db, zap.NewNop())
	return auditlog.Routes(h, testutil.Guard()), auth.Principal{
		SubjectID: pastor.ID, ChurchID: church, Role: pastor.Role, Name: pastor.FullName,
	}
}

func TestList_ScopedToChurch(t *testing.T) {
	router, pastor := seed(t)

	var page pageJSON
	rec := testutil.Serve(t, router, pastor, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	testutil.Decode(t, rec, &page)
	if page.Pagination.Total != 3 || len(page.Events) != 3 {
		t.Fatalf("total = %d events = %d, want 3", page.Pagination.Total, len(page.Events))
	}
	if page.Events[0].Actor == nil || page.Events[0].Actor.FullName != "Grace Wanjiru" {
		t.Errorf("actor not resolved: %+v", page.Events[0])
	}

	rec = testutil.Serve(t, router, pastor, http.MethodGet, "/?category=admin&eventType=expense_created&limit=1", nil)
	testutil.Decode(t, rec, &page)
	if page.Pagination.Total != 2 || len(page.Events) != 1 || page.Events[0].TargetKind != "expense" {
		t.Errorf("filtered page = %+v", page)
	}
}

func TestList_RejectsBadFilters(t *testing.T) {
	router, pastor := seed(t)
	for _, target := range []string{
		"/?category=billing",
		"/?eventType=nope",
		"/?category=auth&eventType=expense_created",
		"/?startDate=18-10-2026",
		"/?startDate=2026-10-18&endDate=2026-10-01",
		"/?actorId=xyz",
	} {
		if rec := testutil.Serve(t, router, pastor, http.MethodGet, target, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestList_ManagersOnly(t *testing.T) {
	router, pastor := seed(t)
	for _, role := range []string{"branch_admin", "leader", "member"} {
		p := testutil.Principal(pastor.ChurchID, role)
		if rec := testutil.Serve(t, router, p, http.MethodGet, "/", nil); rec.Code != http.StatusForbidden {
			t.Errorf("%s: status = %d, want 403", role, rec.Code)
		}
	}
}

func TestEventTypes(t *testing.T) {
	router, pastor := seed(t)
	var cats []struct {
		Value  string   `json:"value"`
		Events []string `json:"events"`
	}
	rec := testutil.Serve(t, router, pastor, http.MethodGet, "/event-types", nil)
	testutil.Decode(t, rec, &cats)
	if len(cats) != 2 || cats[1].Value != "admin" || len(cats[1].Events) == 0 {
		t.Errorf("categories = %+v", cats)
	}
}
