package schedulestore_test

import (
	"testing"

	schedulestore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/schedules"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
)

func TestStore_FindConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schedulestore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fx.Church()
	b := fx.CreateBranch(ctx, church, "Main")
	other := fx.CreateBranch(ctx, church, "East")
	first := fx.CreateSchedule(ctx, b, "First Service", models.Sunday, "09:00")

	c, err := store.FindConflict(ctx, church, b.ID, models.Sunday, "09:00", nil)
	if err != nil {
		t.Fatalf("FindConflict failed: %v", err)
	}
	if c == nil || c.ID != first.ID {
		t.Fatalf("expected conflict with %v, got %+v", first.ID, c)
	}

	// Editing the same schedule is not a conflict with itself.
	if c, _ := store.FindConflict(ctx, church, b.ID, models.Sunday, "09:00", &first.ID); c != nil {
		t.Errorf("self conflict: %+v", c)
	}
	// Other branches are independent.
	if c, _ := store.FindConflict(ctx, church, other.ID, models.Sunday, "09:00", nil); c != nil {
		t.Errorf("cross-branch conflict: %+v", c)
	}
	// Inactive schedules do not block.
	if _, err := store.Deactivate(ctx, church, b.ID, first.ID); err != nil {
		t.Fatal(err)
	}
	if c, _ := store.FindConflict(ctx, church, b.ID, models.Sunday, "09:00", nil); c != nil {
		t.Errorf("inactive schedule conflicted: %+v", c)
	}
}

func TestStore_List_WeekdayOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schedulestore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fx.Church()
	b := fx.CreateBranch(ctx, church, "Main")
	fx.CreateSchedule(ctx, b, "Midweek", models.Wednesday, "18:00")
	fx.CreateSchedule(ctx, b, "Second", models.Sunday, "11:00")
	fx.CreateSchedule(ctx, b, "First", models.Sunday, "08:00")

	got, err := store.List(ctx, church, b.ID, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"First", "Second", "Midweek"}
	if len(got) != len(want) {
		t.Fatalf("got %d schedules", len(got))
	}
	for i := range want {
		if got[i].ServiceName != want[i] {
			t.Errorf("[%d] = %s, want %s", i, got[i].ServiceName, want[i])
		}
	}
}
