// Package goals holds the in-memory rules for goals embedded in groups and
// departments: progress-driven status transitions, overdue and due-soon
// classification, health scoring, filtering, sorting and report statistics.
//
// Everything here works on an already-fetched slice and never touches the
// database. Callers pass "now" explicitly so results are reproducible.
package goals

import (
	"errors"
	"math"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
)

// DueSoonDays is the window (inclusive) in which an open goal counts as due soon.
const DueSoonDays = 7

var ErrProgressRange = errors.New("progress must be between 0 and 100")

// ApplyProgress sets the goal's progress and applies the status transition
// rules against the status the goal had before the update. At most one rule
// fires:
//
//  1. progress == 100 and status != completed  -> completed, CompletedAt = now
//  2. progress > 0 and status == planned       -> in_progress
//  3. progress == 0 and status == in_progress  -> planned
//
// Nothing ever moves a goal out of completed. It returns true when the
// status changed.
func ApplyProgress(g *models.Goal, progress int, now time.Time) (bool, error) {
	if progress < 0 || progress > 100 {
		return false, ErrProgressRange
	}
	g.Progress = progress

	switch {
	case progress == 100 && g.Status != models.GoalCompleted:
		g.Status = models.GoalCompleted
		t := now.UTC()
		g.CompletedAt = &t
		return true, nil
	case progress > 0 && g.Status == models.GoalPlanned:
		g.Status = models.GoalInProgress
		return true, nil
	case progress == 0 && g.Status == models.GoalInProgress:
		g.Status = models.GoalPlanned
		return true, nil
	}
	return false, nil
}

// DaysUntil returns the whole days from now to target, rounded up.
// Negative values mean the target is in the past.
func DaysUntil(target, now time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}

// IsOverdue reports whether an open goal's target date has passed.
func IsOverdue(g models.Goal, now time.Time) bool {
	return !g.Status.Closed() && g.TargetDate.Before(now)
}

// IsDueSoon reports whether an open, not-overdue goal is due within DueSoonDays.
func IsDueSoon(g models.Goal, now time.Time) bool {
	if g.Status.Closed() || IsOverdue(g, now) {
		return false
	}
	d := DaysUntil(g.TargetDate, now)
	return d >= 0 && d <= DueSoonDays
}

// ExpectedProgress is the share of the goal's lifetime (createdAt to
// targetDate) that has elapsed, as a percentage. It is not clamped, so a goal
// past its target reports more than 100. A zero or negative lifetime yields 0.
func ExpectedProgress(g models.Goal, now time.Time) float64 {
	total := g.TargetDate.Sub(g.CreatedAt)
	if total <= 0 {
		return 0
	}
	elapsed := now.Sub(g.CreatedAt)
	return float64(elapsed) / float64(total) * 100
}

// HealthScore rates a goal from 0 (in trouble) to 100 (on track).
func HealthScore(g models.Goal, now time.Time) int {
	score := 100

	if IsOverdue(g, now) {
		score -= 30
	}

	diff := float64(g.Progress) - ExpectedProgress(g, now)
	switch {
	case diff < -20:
		score -= 25
	case diff < -10:
		score -= 15
	case diff > 10:
		score += 10
	}

	// Milestones only weigh in when the goal has some.
	if n := len(g.Milestones); n > 0 && g.Progress > 50 {
		done := 0
		for _, m := range g.Milestones {
			if m.Completed {
				done++
			}
		}
		if float64(done)/float64(n) < 0.5 {
			score -= 10
		}
	}

	return clamp(score, 0, 100)
}

// View is a goal annotated with the computed fields list endpoints return.
type View struct {
	models.Goal
	IsOverdue       bool `json:"isOverdue"`
	IsDueSoon       bool `json:"isDueSoon"`
	DaysUntilTarget int  `json:"daysUntilTarget"`
	HealthScore     int  `json:"healthScore"`
}

// Annotate computes the derived fields for one goal.
func Annotate(g models.Goal, now time.Time) View {
	return View{
		Goal:            g,
		IsOverdue:       IsOverdue(g, now),
		IsDueSoon:       IsDueSoon(g, now),
		DaysUntilTarget: DaysUntil(g.TargetDate, now),
		HealthScore:     HealthScore(g, now),
	}
}

// AnnotateAll annotates every goal in order.
func AnnotateAll(gs []models.Goal, now time.Time) []View {
	out := make([]View, 0, len(gs))
	for _, g := range gs {
		out = append(out, Annotate(g, now))
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// percent returns part/total*100 rounded to the nearest integer, or 0 when
// total is 0.
func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
