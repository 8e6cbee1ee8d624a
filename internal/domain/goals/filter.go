package goals

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter narrows a goal list. Zero values mean "no constraint".
type Filter struct {
	Status           models.GoalStatus
	Priority         models.GoalPriority
	Category         string
	AssignedTo       *primitive.ObjectID
	Search           string
	DueSoon          bool
	Overdue          bool
	ExcludeCompleted bool
}

// Validate rejects enum values outside the allow-lists.
func (f Filter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("invalid status %q: must be one of %s", f.Status, join(models.GoalStatuses))
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return fmt.Errorf("invalid priority %q: must be one of %s", f.Priority, join(models.GoalPriorities))
	}
	return nil
}

// Apply returns the goals matching f, preserving input order.
func (f Filter) Apply(gs []models.Goal, now time.Time) []models.Goal {
	needle := text.Fold(strings.TrimSpace(f.Search))
	out := make([]models.Goal, 0, len(gs))
	for _, g := range gs {
		if f.Status != "" && g.Status != f.Status {
			continue
		}
		if f.Priority != "" && g.Priority != f.Priority {
			continue
		}
		if f.Category != "" && !strings.EqualFold(g.Category, f.Category) {
			continue
		}
		if f.ExcludeCompleted && g.Status == models.GoalCompleted {
			continue
		}
		if f.AssignedTo != nil && !containsID(g.AssignedTo, *f.AssignedTo) {
			continue
		}
		if f.DueSoon && !IsDueSoon(g, now) {
			continue
		}
		if f.Overdue && !IsOverdue(g, now) {
			continue
		}
		if needle != "" &&
			!strings.Contains(text.Fold(g.Title), needle) &&
			!strings.Contains(text.Fold(g.Description), needle) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// SortField is one of the allow-listed goal sort keys.
type SortField string

const (
	SortCreatedAt  SortField = "createdAt"
	SortUpdatedAt  SortField = "updatedAt"
	SortTargetDate SortField = "targetDate"
	SortTitle      SortField = "title"
	SortProgress   SortField = "progress"
)

var SortFields = []SortField{SortCreatedAt, SortUpdatedAt, SortTargetDate, SortTitle, SortProgress}

// Sort describes the requested ordering. The zero Sort is the default listing
// order: priority high to low, then nearest target date first.
type Sort struct {
	Field SortField
	Desc  bool
}

// ParseSort validates the sortBy/sortOrder query values. Empty field means the
// default order; empty order means descending.
func ParseSort(field, order string) (Sort, error) {
	field = strings.TrimSpace(field)
	order = strings.ToLower(strings.TrimSpace(order))

	var s Sort
	if field != "" {
		ok := false
		for _, f := range SortFields {
			if string(f) == field {
				ok = true
				break
			}
		}
		if !ok {
			return Sort{}, fmt.Errorf("invalid sortBy %q: must be one of %s", field, join(SortFields))
		}
		s.Field = SortField(field)
	}

	switch order {
	case "", "desc":
		s.Desc = true
	case "asc":
		s.Desc = false
	default:
		return Sort{}, fmt.Errorf("invalid sortOrder %q: must be asc or desc", order)
	}
	return s, nil
}

// Apply sorts gs in place. Ties always fall back to newest createdAt first.
func (s Sort) Apply(gs []models.Goal) {
	sort.SliceStable(gs, func(i, j int) bool {
		a, b := gs[i], gs[j]
		if c := s.compare(a, b); c != 0 {
			return c < 0
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// compare returns <0 when a sorts before b.
func (s Sort) compare(a, b models.Goal) int {
	if s.Field == "" {
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return rb - ra
		}
		return cmpTime(a.TargetDate, b.TargetDate)
	}

	var c int
	switch s.Field {
	case SortCreatedAt:
		c = cmpTime(a.CreatedAt, b.CreatedAt)
	case SortUpdatedAt:
		c = cmpTime(a.UpdatedAt, b.UpdatedAt)
	case SortTargetDate:
		c = cmpTime(a.TargetDate, b.TargetDate)
	case SortTitle:
		c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortProgress:
		c = a.Progress - b.Progress
	}
	if s.Desc {
		c = -c
	}
	return c
}

func cmpTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func join[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
