package activities

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dimension selects how the activity report buckets activities.
type Dimension string

const (
	ByMonth     Dimension = "month"
	ByType      Dimension = "type"
	ByOrganizer Dimension = "organizer"
)

var Dimensions = []Dimension{ByMonth, ByType, ByOrganizer}

// ParseDimension validates a groupBy value. Empty means by month.
func ParseDimension(s string) (Dimension, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ByMonth, nil
	}
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid groupBy %q: must be month, type or organizer", s)
}

// Unassigned is the organizer bucket key for activities without an organizer.
const Unassigned = "unassigned"

// Bucket aggregates the activities sharing one key.
type Bucket struct {
	Key                 string         `json:"key"`
	Count               int            `json:"count"`
	Completed           int            `json:"completed"`
	Cancelled           int            `json:"cancelled"`
	PlannedParticipants int            `json:"plannedParticipants"`
	ActualParticipants  int            `json:"actualParticipants"`
	AverageParticipants float64        `json:"averageParticipants"`
	CompletionRate      int            `json:"completionRate"`
	ByType              map[string]int `json:"byType,omitempty"`
	UniqueOrganizers    *int           `json:"uniqueOrganizers,omitempty"`

	organizers map[primitive.ObjectID]struct{}
}

// Totals is the ungrouped summary over the whole filtered set.
type Totals struct {
	Activities          int     `json:"totalActivities"`
	Completed           int     `json:"completedActivities"`
	Cancelled           int     `json:"cancelledActivities"`
	ActualParticipants  int     `json:"totalParticipants"`
	AverageParticipants float64 `json:"averageParticipants"`
	CompletionRate      int     `json:"completionRate"`
	AttendanceRate      int     `json:"attendanceRate"`
}

// Report is the grouped activity report.
type Report struct {
	GroupBy Dimension `json:"groupBy"`
	Totals  Totals    `json:"summary"`
	Groups  []Bucket  `json:"groups"`
}

// Select returns the activities inside rng. Inactive activities are dropped
// unless includeInactive is set.
func Select(acts []models.Activity, rng Range, includeInactive bool) []models.Activity {
	out := make([]models.Activity, 0, len(acts))
	for _, a := range acts {
		if !includeInactive && !a.IsActive {
			continue
		}
		if !rng.Contains(a.Date) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// BuildReport buckets acts along dim. Buckets are ordered by month ascending
// for ByMonth and by count descending (then key) otherwise.
func BuildReport(acts []models.Activity, dim Dimension) Report {
	buckets := map[string]*Bucket{}
	var order []string
	var t Totals
	planned, attended := 0, 0

	for _, a := range acts {
		key := bucketKey(a, dim)
		b, ok := buckets[key]
		if !ok {
			b = &Bucket{Key: key}
			if dim != ByType {
				b.ByType = map[string]int{}
			} else {
				b.organizers = map[primitive.ObjectID]struct{}{}
			}
			buckets[key] = b
			order = append(order, key)
		}

		b.Count++
		done, cancelled := isCompleted(a), isCancelled(a)
		if done {
			b.Completed++
		}
		if cancelled {
			b.Cancelled++
		}
		b.PlannedParticipants += len(a.PlannedParticipants)
		b.ActualParticipants += len(a.ActualParticipants)
		if b.ByType != nil {
			b.ByType[string(a.Type)]++
		}
		if b.organizers != nil && a.OrganizerID != nil {
			b.organizers[*a.OrganizerID] = struct{}{}
		}

		t.Activities++
		if done {
			t.Completed++
		}
		if cancelled {
			t.Cancelled++
		}
		t.ActualParticipants += len(a.ActualParticipants)
		planned += len(a.PlannedParticipants)
		attended += len(a.ActualParticipants)
	}

	groups := make([]Bucket, 0, len(order))
	for _, k := range order {
		b := buckets[k]
		b.AverageParticipants = average(b.ActualParticipants, b.Count)
		b.CompletionRate = rate(b.Completed, b.Count)
		if b.organizers != nil {
			n := len(b.organizers)
			b.UniqueOrganizers = &n
		}
		groups = append(groups, *b)
	}

	if dim == ByMonth {
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	} else {
		sort.SliceStable(groups, func(i, j int) bool {
			if groups[i].Count != groups[j].Count {
				return groups[i].Count > groups[j].Count
			}
			return groups[i].Key < groups[j].Key
		})
	}

	t.AverageParticipants = average(t.ActualParticipants, t.Activities)
	t.CompletionRate = rate(t.Completed, t.Activities)
	t.AttendanceRate = rate(attended, planned)

	return Report{GroupBy: dim, Totals: t, Groups: groups}
}

func bucketKey(a models.Activity, dim Dimension) string {
	switch dim {
	case ByType:
		return string(a.Type)
	case ByOrganizer:
		if a.OrganizerID == nil {
			return Unassigned
		}
		return a.OrganizerID.Hex()
	}
	return a.Date.UTC().Format("2006-01")
}

func isCompleted(a models.Activity) bool {
	return a.IsCompleted || a.Status == models.ActivityCompleted
}

func isCancelled(a models.Activity) bool {
	return a.IsCancelled || a.Status == models.ActivityCancelled
}

// average is n/count rounded to two decimals, or 0 for an empty bucket.
func average(n, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(count)*100) / 100
}
