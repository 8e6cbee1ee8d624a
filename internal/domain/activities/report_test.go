package activities_test

import (
	"errors"
	"testing"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseRange(t *testing.T) {
	r, err := activities.ParseRange("2025-01-01", "2025-01-31")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if !r.From.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("From = %v", r.From)
	}
	wantTo := time.Date(2025, 1, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if !r.To.Equal(wantTo) {
		t.Errorf("To = %v, want %v", r.To, wantTo)
	}
	if !r.Contains(time.Date(2025, 1, 31, 19, 30, 0, 0, time.UTC)) {
		t.Error("same-day activity on end date excluded")
	}
	if !r.Contains(*r.From) {
		t.Error("start boundary excluded")
	}
	if r.Contains(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("day after end included")
	}
}

func TestParseRange_Errors(t *testing.T) {
	if _, err := activities.ParseRange("2025-02-01", "2025-01-01"); !errors.Is(err, activities.ErrRangeOrder) {
		t.Errorf("reversed range err = %v, want ErrRangeOrder", err)
	}
	if _, err := activities.ParseRange("yesterday", ""); err == nil {
		t.Error("expected parse error for startDate")
	}
	if _, err := activities.ParseRange("", "31/01/2025"); err == nil {
		t.Error("expected parse error for endDate")
	}
	r, err := activities.ParseRange("2025-01-05", "2025-01-05")
	if err != nil {
		t.Fatalf("single-day range: %v", err)
	}
	if !r.Contains(time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)) {
		t.Error("single-day range excludes midday")
	}
	open, err := activities.ParseRange("", "")
	if err != nil || open.From != nil || open.To != nil {
		t.Errorf("empty range = %+v, %v", open, err)
	}
}

func TestParseDimension(t *testing.T) {
	for in, want := range map[string]activities.Dimension{
		"":          activities.ByMonth,
		"month":     activities.ByMonth,
		"TYPE":      activities.ByType,
		"organizer": activities.ByOrganizer,
	} {
		got, err := activities.ParseDimension(in)
		if err != nil || got != want {
			t.Errorf("ParseDimension(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := activities.ParseDimension("week"); err == nil {
		t.Error("expected error for groupBy=week")
	}
}

func activity(date time.Time, typ models.ActivityType, org *primitive.ObjectID, planned, actual int) models.Activity {
	return models.Activity{
		ID:                  primitive.NewObjectID(),
		Type:                typ,
		Date:                date,
		OrganizerID:         org,
		PlannedParticipants: ids(planned),
		ActualParticipants:  ids(actual),
		Status:              models.ActivityScheduled,
		IsActive:            true,
	}
}

func TestBuildReport_ByMonth(t *testing.T) {
	jan := time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 2, 9, 0, 0, 0, time.UTC)

	a1 := activity(feb, models.ActivityService, nil, 10, 8)
	a2 := activity(jan, models.ActivityMeeting, nil, 4, 2)
	a2.IsCompleted = true
	a2.Status = models.ActivityCompleted
	a3 := activity(jan, models.ActivityMeeting, nil, 4, 1)
	a3.Status = models.ActivityCancelled

	r := activities.BuildReport([]models.Activity{a1, a2, a3}, activities.ByMonth)
	if len(r.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(r.Groups))
	}
	j := r.Groups[0]
	if j.Key != "2025-01" {
		t.Fatalf("first bucket = %q, want 2025-01", j.Key)
	}
	if j.Count != 2 || j.Completed != 1 || j.Cancelled != 1 {
		t.Errorf("jan counts = %+v", j)
	}
	if j.AverageParticipants != 1.5 || j.CompletionRate != 50 {
		t.Errorf("jan avg/rate = %v/%d", j.AverageParticipants, j.CompletionRate)
	}
	if j.ByType["meeting"] != 2 {
		t.Errorf("jan byType = %v", j.ByType)
	}
	if r.Totals.Activities != 3 || r.Totals.ActualParticipants != 11 {
		t.Errorf("totals = %+v", r.Totals)
	}
	if r.Totals.CompletionRate != 33 {
		t.Errorf("totals completion = %d, want 33", r.Totals.CompletionRate)
	}
	// 11 of 18 planned
	if r.Totals.AttendanceRate != 61 {
		t.Errorf("totals attendance = %d, want 61", r.Totals.AttendanceRate)
	}
}

func TestBuildReport_ByTypeAndOrganizer(t *testing.T) {
	day := time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC)
	o1, o2 := primitive.NewObjectID(), primitive.NewObjectID()

	acts := []models.Activity{
		activity(day, models.ActivityPrayer, &o1, 2, 2),
		activity(day, models.ActivityPrayer, &o2, 2, 1),
		activity(day, models.ActivityPrayer, &o1, 2, 0),
		activity(day, models.ActivityOutreach, nil, 2, 2),
	}

	byType := activities.BuildReport(acts, activities.ByType)
	if byType.Groups[0].Key != "prayer" || byType.Groups[0].Count != 3 {
		t.Fatalf("first type bucket = %+v", byType.Groups[0])
	}
	if u := byType.Groups[0].UniqueOrganizers; u == nil || *u != 2 {
		t.Errorf("prayer unique organizers = %v, want 2", u)
	}
	if u := byType.Groups[1].UniqueOrganizers; u == nil || *u != 0 {
		t.Errorf("outreach unique organizers = %v, want 0", u)
	}

	byOrg := activities.BuildReport(acts, activities.ByOrganizer)
	if len(byOrg.Groups) != 3 {
		t.Fatalf("organizer buckets = %d, want 3", len(byOrg.Groups))
	}
	if byOrg.Groups[0].Key != o1.Hex() || byOrg.Groups[0].Count != 2 {
		t.Errorf("top organizer = %+v", byOrg.Groups[0])
	}
	found := false
	for _, g := range byOrg.Groups {
		if g.Key == activities.Unassigned {
			found = true
			if g.ByType["outreach"] != 1 {
				t.Errorf("unassigned byType = %v", g.ByType)
			}
		}
	}
	if !found {
		t.Error("missing unassigned organizer bucket")
	}
}

func TestBuildReport_Empty(t *testing.T) {
	r := activities.BuildReport(nil, activities.ByMonth)
	if len(r.Groups) != 0 || r.Totals != (activities.Totals{}) {
		t.Errorf("empty report = %+v", r)
	}
}

func TestSelect(t *testing.T) {
	in := activity(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), models.ActivityEvent, nil, 0, 0)
	out := activity(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), models.ActivityEvent, nil, 0, 0)
	inactive := in
	inactive.IsActive = false

	rng, _ := activities.ParseRange("2025-01-01", "2025-01-31")
	if got := activities.Select([]models.Activity{in, out, inactive}, rng, false); len(got) != 1 {
		t.Errorf("Select = %d, want 1", len(got))
	}
	if got := activities.Select([]models.Activity{in, out, inactive}, rng, true); len(got) != 2 {
		t.Errorf("Select includeInactive = %d, want 2", len(got))
	}
}
