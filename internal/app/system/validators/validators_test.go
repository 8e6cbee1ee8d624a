package validators_test

import (
	"testing"
	"time"

	departmentstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/departments"
	groupstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/groups"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/validators"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setup(t *testing.T) *mongo.Database {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"users", "branches", "service_schedules", "announcements",
		"activities", "departments", "groups", "content", "audit_events"} {
		if !have[want] {
			t.Errorf("collection %q not created", want)
		}
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestValidators_RejectBadDocuments(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	church := primitive.NewObjectID()

	tests := []struct {
		name string
		coll string
		doc  bson.M
	}{
		{"user without role", "users", bson.M{"church_id": church, "full_name": "Ann"}},
		{"user with unknown role", "users", bson.M{"church_id": church, "full_name": "Ann", "role": "superadmin"}},
		{"blank branch name", "branches", bson.M{"church_id": church, "name": "   ", "name_ci": "x", "is_active": true}},
		{"schedule at 25:00", "service_schedules", bson.M{
			"church_id": church, "branch_id": primitive.NewObjectID(), "service_name": "Late", "day": "sunday", "time": "25:00",
		}},
		{"negative expense", "departments", bson.M{
			"church_id": church, "name": "Music", "name_ci": "music", "total_budget": 100, "version": 1,
			"expenses": bson.A{bson.M{"_id": primitive.NewObjectID(), "category": "equipment", "amount": -5, "date": time.Now()}},
		}},
		{"goal progress over 100", "groups", bson.M{
			"church_id": church, "name": "Youth", "name_ci": "youth", "version": 1,
			"goals": bson.A{bson.M{"_id": primitive.NewObjectID(), "title": "Grow", "status": "planned",
				"priority": "low", "progress": 120, "target_date": time.Now()}},
		}},
		{"bad slug", "content", bson.M{
			"church_id": church, "title": "Hi", "slug": "Hi There", "type": "article", "status": "draft", "author_id": primitive.NewObjectID(),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc); err == nil {
				t.Errorf("insert into %s succeeded, want validation error", tt.coll)
			}
		})
	}
}

func TestValidators_AcceptStoreWrites(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	church := primitive.NewObjectID()

	if _, err := departmentstore.New(db).Create(ctx, models.Department{ChurchID: church, Name: "Music", TotalBudget: 1000}); err != nil {
		t.Errorf("department create rejected: %v", err)
	}
	if _, err := groupstore.New(db).Create(ctx, models.Group{ChurchID: church, Name: "Youth"}); err != nil {
		t.Errorf("group create rejected: %v", err)
	}
	fx := testutil.NewFixtures(t, db)
	fx.CreateUser(ctx, church, "Ann Wambui", "ann@example.com", "member")
}
