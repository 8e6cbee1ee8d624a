package branchstore_test

import (
	"testing"

	branchstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/branches"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/indexes"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_DuplicateNameInSameChurch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := branchstore.New(db)
	church := primitive.NewObjectID()

	if _, err := store.Create(ctx, models.Branch{ChurchID: church, Name: "Westlands"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Branch{ChurchID: church, Name: "WESTLANDS"}); err != branchstore.ErrDuplicateName {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := store.Create(ctx, models.Branch{ChurchID: primitive.NewObjectID(), Name: "Westlands"}); err != nil {
		t.Errorf("same name in another church should succeed: %v", err)
	}
}

func TestStore_List_ActiveAndPrefix(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := branchstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fx.Church()
	fx.CreateBranch(ctx, church, "Karen")
	kas := fx.CreateBranch(ctx, church, "Kasarani")
	fx.CreateBranch(ctx, church, "Ruaka")
	if _, err := store.Update(ctx, church, kas.ID, bson.M{"is_active": false}); err != nil {
		t.Fatal(err)
	}

	got, total, err := store.List(ctx, church, branchstore.ListFilter{Search: "ka"}, paging.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || got[0].Name != "Karen" {
		t.Errorf("active prefix list = %d %+v", total, got)
	}

	_, total, _ = store.List(ctx, church, branchstore.ListFilter{Search: "ka", IncludeInactive: true}, paging.Params{Page: 1, Limit: 10})
	if total != 2 {
		t.Errorf("with inactive total = %d, want 2", total)
	}
}
