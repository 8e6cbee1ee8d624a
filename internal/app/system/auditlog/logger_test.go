package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	// must not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.AccessDenied(ctx, req, 401, "invalid token")
	logger.Admin(ctx, req, auditlog.Actor{}, audit.EventBranchCreated, auditlog.Target{}, nil)
}

func TestLogger_LogOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: "log", Admin: "log"})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := httptest.NewRequest("DELETE", "/church/branches/x", nil)
	req.RemoteAddr = "10.0.0.7:52100"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	actor := auditlog.Actor{ChurchID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Role: "admin"}
	target := auditlog.Target{Kind: "branch", ID: primitive.NewObjectID()}
	logger.Admin(ctx, req, actor, audit.EventBranchDeleted, target, map[string]string{"force": "true"})

	entries := logs.FilterMessage("audit event").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 zap entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != audit.EventBranchDeleted || fields["ip"] != "10.0.0.7" || fields["detail_force"] != "true" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if fields["target_id"] != target.ID.Hex() {
		t.Errorf("target_id = %v", fields["target_id"])
	}
}

func TestLogger_Off(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: "off", Admin: "off"})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.AccessDenied(ctx, httptest.NewRequest("GET", "/", nil), 401, "authentication required")
	if logs.Len() != 0 {
		t.Errorf("expected nothing logged, got %d entries", logs.Len())
	}
}

func TestLogger_DB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db", Admin: "db"})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := auditlog.Actor{ChurchID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Role: "pastor"}
	logger.Admin(ctx, httptest.NewRequest("POST", "/church/departments", nil), actor,
		audit.EventDepartmentCreated, auditlog.Target{Kind: "department", ID: primitive.NewObjectID()}, nil)

	events, err := store.Query(ctx, audit.QueryFilter{ChurchID: &actor.ChurchID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ActorRole != "pastor" || events[0].TargetKind != "department" || !events[0].Success {
		t.Errorf("unexpected event: %+v", events[0])
	}
}
