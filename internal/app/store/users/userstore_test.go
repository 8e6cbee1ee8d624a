package userstore_test

import (
	"testing"

	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Summaries_TenantScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	churchA, churchB := fx.Church(), fx.Church()
	alice := fx.CreateUser(ctx, churchA, "Alice Njeri", "alice@a.org", "member")
	bob := fx.CreateUser(ctx, churchB, "Bob Otieno", "bob@b.org", "member")

	got, err := store.Summaries(ctx, churchA, []primitive.ObjectID{alice.ID, bob.ID, alice.ID})
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(got))
	}
	if s := got[alice.ID]; s.FullName != "Alice Njeri" || s.Email != "alice@a.org" {
		t.Errorf("unexpected summary: %+v", s)
	}
}

func TestStore_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fx.Church()
	u := fx.CreateUser(ctx, church, "Grace", "grace@c.org", "leader")
	ghost := primitive.NewObjectID()

	missing, err := store.Missing(ctx, church, []primitive.ObjectID{u.ID, ghost})
	if err != nil {
		t.Fatalf("Missing failed: %v", err)
	}
	if len(missing) != 1 || missing[0] != ghost {
		t.Errorf("Missing = %v, want [%v]", missing, ghost)
	}
}

func TestStore_GetByID_OtherChurch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, fx.Church(), "Peter", "peter@c.org", "pastor")
	if _, err := store.GetByID(ctx, fx.Church(), u.ID); err != userstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if got, err := store.GetByID(ctx, u.ChurchID, u.ID); err != nil || got.Email != u.Email {
		t.Errorf("GetByID = %+v, %v", got, err)
	}
}
