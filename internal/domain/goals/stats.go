package goals

import (
	"sort"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stats summarizes a set of goals. An empty set yields all zeros.
type Stats struct {
	Total           int `json:"total"`
	Planned         int `json:"planned"`
	InProgress      int `json:"inProgress"`
	Completed       int `json:"completed"`
	Cancelled       int `json:"cancelled"`
	OnHold          int `json:"onHold"`
	Overdue         int `json:"overdue"`
	DueSoon         int `json:"dueSoon"`
	AverageProgress int `json:"averageProgress"` // over planned + in_progress only
	CompletionRate  int `json:"completionRate"`
}

// Summarize counts goals by status and computes the averages.
func Summarize(gs []models.Goal, now time.Time) Stats {
	var s Stats
	activeSum, activeN := 0, 0

	for _, g := range gs {
		s.Total++
		switch g.Status {
		case models.GoalPlanned:
			s.Planned++
		case models.GoalInProgress:
			s.InProgress++
		case models.GoalCompleted:
			s.Completed++
		case models.GoalCancelled:
			s.Cancelled++
		case models.GoalOnHold:
			s.OnHold++
		}
		if g.Status == models.GoalPlanned || g.Status == models.GoalInProgress {
			activeSum += g.Progress
			activeN++
		}
		if IsOverdue(g, now) {
			s.Overdue++
		}
		if IsDueSoon(g, now) {
			s.DueSoon++
		}
	}

	if activeN > 0 {
		s.AverageProgress = int(float64(activeSum)/float64(activeN) + 0.5)
	}
	s.CompletionRate = percent(s.Completed, s.Total)
	return s
}

// StatusDistribution counts goals per status; every status is present.
func StatusDistribution(gs []models.Goal) map[models.GoalStatus]int {
	out := make(map[models.GoalStatus]int, len(models.GoalStatuses))
	for _, st := range models.GoalStatuses {
		out[st] = 0
	}
	for _, g := range gs {
		out[g.Status]++
	}
	return out
}

// PriorityDistribution counts goals per priority; every priority is present.
func PriorityDistribution(gs []models.Goal) map[models.GoalPriority]int {
	out := make(map[models.GoalPriority]int, len(models.GoalPriorities))
	for _, p := range models.GoalPriorities {
		out[p] = 0
	}
	for _, g := range gs {
		out[g.Priority]++
	}
	return out
}

// AssigneePerformance is one row of the team performance table.
type AssigneePerformance struct {
	UserID         primitive.ObjectID `json:"userId"`
	Total          int                `json:"total"`
	Completed      int                `json:"completed"`
	Overdue        int                `json:"overdue"`
	OnTime         int                `json:"onTime"`
	CompletionRate int                `json:"completionRate"`
	OnTimeRate     int                `json:"onTimeRate"` // of completed goals
}

// TeamPerformance credits every goal to each of its assignees. Overdue is
// computed from the goal itself at "now"; on time means the goal was
// completed no later than its target date. Rows are ordered by total goals
// descending, then user id.
func TeamPerformance(gs []models.Goal, now time.Time) []AssigneePerformance {
	rows := map[primitive.ObjectID]*AssigneePerformance{}
	for _, g := range gs {
		overdue := IsOverdue(g, now)
		onTime := g.Status == models.GoalCompleted && g.CompletedAt != nil && !g.CompletedAt.After(g.TargetDate)
		for _, uid := range g.AssignedTo {
			row, ok := rows[uid]
			if !ok {
				row = &AssigneePerformance{UserID: uid}
				rows[uid] = row
			}
			row.Total++
			if g.Status == models.GoalCompleted {
				row.Completed++
			}
			if overdue {
				row.Overdue++
			}
			if onTime {
				row.OnTime++
			}
		}
	}

	out := make([]AssigneePerformance, 0, len(rows))
	for _, row := range rows {
		row.CompletionRate = percent(row.Completed, row.Total)
		row.OnTimeRate = percent(row.OnTime, row.Completed)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].UserID.Hex() < out[j].UserID.Hex()
	})
	return out
}

// Timeline returns the open goals whose target falls within the next `days`
// days, nearest first.
func Timeline(gs []models.Goal, now time.Time, days int) []models.Goal {
	out := make([]models.Goal, 0)
	for _, g := range gs {
		if g.Status.Closed() {
			continue
		}
		d := DaysUntil(g.TargetDate, now)
		if d >= 0 && d <= days && !g.TargetDate.Before(now) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TargetDate.Before(out[j].TargetDate) })
	return out
}

// HealthEntry pairs a goal with its health score.
type HealthEntry struct {
	GoalID primitive.ObjectID `json:"goalId"`
	Title  string             `json:"title"`
	Score  int                `json:"score"`
}

// Report is the payload of the goals report endpoint.
type Report struct {
	Summary              Stats                       `json:"summary"`
	StatusDistribution   map[models.GoalStatus]int   `json:"statusDistribution"`
	PriorityDistribution map[models.GoalPriority]int `json:"priorityDistribution"`
	Overdue              []View                      `json:"overdueGoals"`
	DueSoon              []View                      `json:"dueSoonGoals"`
	HealthScores         []HealthEntry               `json:"healthScores"`
	TeamPerformance      []AssigneePerformance       `json:"teamPerformance"`
	Timeline             []View                      `json:"timeline"`
	TimelineDays         int                         `json:"timelineDays"`
}

// BuildReport computes every section of the goals report from one snapshot.
func BuildReport(gs []models.Goal, now time.Time, timelineDays int) Report {
	r := Report{
		Summary:              Summarize(gs, now),
		StatusDistribution:   StatusDistribution(gs),
		PriorityDistribution: PriorityDistribution(gs),
		Overdue:              []View{},
		DueSoon:              []View{},
		HealthScores:         make([]HealthEntry, 0, len(gs)),
		TeamPerformance:      TeamPerformance(gs, now),
		Timeline:             AnnotateAll(Timeline(gs, now, timelineDays), now),
		TimelineDays:         timelineDays,
	}
	for _, g := range gs {
		v := Annotate(g, now)
		if v.IsOverdue {
			r.Overdue = append(r.Overdue, v)
		}
		if v.IsDueSoon {
			r.DueSoon = append(r.DueSoon, v)
		}
		if !g.Status.Closed() {
			r.HealthScores = append(r.HealthScores, HealthEntry{GoalID: g.ID, Title: g.Title, Score: v.HealthScore})
		}
	}
	sort.SliceStable(r.HealthScores, func(i, j int) bool { return r.HealthScores[i].Score < r.HealthScores[j].Score })
	return r
}
