package dashboard_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/dashboard"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type overview struct {
	Role   string `json:"role"`
	Scope  string `json:"scope"`
	Counts *struct {
		Branches int64 `json:"branches"`
		Groups   int64 `json:"groups"`
		Members  int64 `json:"members"`
	} `json:"counts"`
	Personal *struct {
		Groups             int64 `json:"groups"`
		UpcomingActivities int64 `json:"upcomingActivities"`
	} `json:"personal"`
}

func TestOverview_ChurchAndBranchScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	church := primitive.NewObjectID()

	west := fx.CreateBranch(ctx, church, "Westlands")
	fx.CreateBranch(ctx, church, "Karen")
	fx.CreateUser(ctx, church, "Ann", "ann@example.com", "member")

	h := dashboard.Routes(dashboard.NewHandler(db, zap.NewNop()), testutil.Guard())

	rec := testutil.Serve(t, h, testutil.Principal(church, "pastor"), http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got overview
	testutil.Decode(t, rec, &got)
	if got.Scope != "church" || got.Counts == nil || got.Counts.Branches != 2 || got.Counts.Members != 1 {
		t.Errorf("church overview = %+v", got)
	}

	p := testutil.Principal(church, "branch_admin")
	p.BranchID = &west.ID
	rec = testutil.Serve(t, h, p, http.MethodGet, "/", nil)
	got = overview{}
	testutil.Decode(t, rec, &got)
	if got.Scope != "branch" || got.Counts == nil || got.Counts.Branches != 1 || got.Counts.Members != 0 {
		t.Errorf("branch overview = %+v", got)
	}
}

func TestOverview_Personal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	church := primitive.NewObjectID()

	p := testutil.Principal(church, "member")
	fx.CreateGroup(ctx, church, "Youth", p.SubjectID)
	fx.CreateActivity(ctx, church, "Past", time.Now().Add(-time.Hour), nil)

	h := dashboard.Routes(dashboard.NewHandler(db, zap.NewNop()), testutil.Guard())
	rec := testutil.Serve(t, h, p, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got overview
	testutil.Decode(t, rec, &got)
	if got.Scope != "personal" || got.Counts != nil || got.Personal == nil {
		t.Fatalf("personal overview = %+v", got)
	}
	if got.Personal.Groups != 1 || got.Personal.UpcomingActivities != 0 {
		t.Errorf("personal = %+v", *got.Personal)
	}
}
