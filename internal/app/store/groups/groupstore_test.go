package groupstore_test

import (
	"errors"
	"testing"
	"time"

	groupstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/groups"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/indexes"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Group{ChurchID: church, Name: "Young Adults"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() || created.NameCI != "young adults" {
		t.Errorf("unexpected group: %+v", created)
	}
	if !created.IsActive || created.Version != 1 || created.Goals == nil || created.Members == nil {
		t.Errorf("defaults not applied: %+v", created)
	}
}

func TestStore_Create_DuplicateNameInSameChurch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	church := primitive.NewObjectID()
	if _, err := store.Create(ctx, models.Group{ChurchID: church, Name: "Choir"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Group{ChurchID: church, Name: "choir"}); err != groupstore.ErrDuplicateGroupName {
		t.Errorf("expected ErrDuplicateGroupName, got %v", err)
	}
}

func TestStore_GetByID_OtherChurch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, fx.Church(), "Men's Fellowship")
	if _, err := store.GetByID(ctx, fx.Church(), g.ID); err != groupstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Save_GoalsAndConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := primitive.NewObjectID()
	g, _ := store.Create(ctx, models.Group{ChurchID: church, Name: "Outreach"})
	stale := g

	g.Goals = append(g.Goals, models.Goal{
		ID: primitive.NewObjectID(), Title: "Visit 10 homes",
		Status: models.GoalPlanned, Priority: models.PriorityHigh,
		TargetDate: time.Now().UTC().AddDate(0, 1, 0), AssignedTo: []primitive.ObjectID{},
	})
	if err := store.Save(ctx, &g); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, _ := store.GetByID(ctx, church, g.ID)
	if len(got.Goals) != 1 {
		t.Fatalf("goals not saved: %+v", got.Goals)
	}

	stale.Goals = nil
	if err := store.Save(ctx, &stale); !errors.Is(err, groupstore.ErrVersionConflict) {
		t.Errorf("stale save: expected ErrVersionConflict, got %v", err)
	}
}

func TestStore_List_MemberFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fx.Church()
	member := primitive.NewObjectID()
	fx.CreateGroup(ctx, church, "Alpha", member)
	fx.CreateGroup(ctx, church, "Beta")

	got, total, err := store.List(ctx, church, groupstore.ListFilter{MemberID: &member}, paging.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || got[0].Name != "Alpha" {
		t.Errorf("List = %d %+v", total, got)
	}
}
