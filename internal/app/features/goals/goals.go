// internal/app/features/goals/goals.go
package goals

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/txn"
	domain "github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/goals"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// List serves GET .../goals. Stats cover every goal of the parent; the page
// covers the filtered, sorted goals.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	f.Category = query.Get(r, "category")
	f.Search = query.Get(r, "search")
	if f.Overdue, err = inputval.Bool(r, "overdue", false); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	order, err := domain.ParseSort(query.Get(r, "sortBy"), query.Get(r, "sortOrder"))
	if err != nil {
		respond.Error(w, r, h.Log, apierr.Validation(err.Error()))
		return
	}
	pg := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Parent(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	now := h.now()
	matched := f.Apply(p.Goals, now)
	order.Apply(matched)

	views, err := h.views(ctx, scope.ChurchID, paging.Slice(matched, pg))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, listData{
		Goals:      views,
		Stats:      domain.Summarize(p.Goals, now),
		Pagination: paging.BuildMeta(pg, int64(len(matched))),
	})
}

// parseFilter reads the filters shared by the list and the report.
func parseFilter(r *http.Request) (domain.Filter, error) {
	var f domain.Filter
	var err error
	if f.Status, err = inputval.Enum(r, "status", models.GoalStatuses); err != nil {
		return f, err
	}
	if f.Priority, err = inputval.Enum(r, "priority", models.GoalPriorities); err != nil {
		return f, err
	}
	if f.AssignedTo, err = inputval.OptionalObjectID(r, "assignedTo"); err != nil {
		return f, err
	}
	if f.DueSoon, err = inputval.Bool(r, "dueSoon", false); err != nil {
		return f, err
	}
	includeCompleted, err := inputval.Bool(r, "includeCompleted", true)
	if err != nil {
		return f, err
	}
	f.ExcludeCompleted = !includeCompleted
	return f, nil
}

// Create serves POST .../goals. Goals start planned unless a status is
// given; an initial progress runs through the usual transition rules.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in createInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	assigned, err := inputval.ObjectIDs(in.AssignedTo, "assignee")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Parent(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.checkUsers(ctx, scope, assigned); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	now := h.now()
	g := models.Goal{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      models.GoalPlanned,
		Priority:    models.PriorityMedium,
		TargetDate:  in.TargetDate.UTC(),
		Category:    strings.TrimSpace(in.Category),
		AssignedTo:  assigned,
		Milestones:  milestones(in.Milestones, nil, now),
		CreatedBy:   scope.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Priority != "" {
		g.Priority = models.GoalPriority(in.Priority)
	}
	if in.Status != "" {
		setStatus(&g, models.GoalStatus(in.Status), now)
	}
	if in.Progress != nil {
		if _, err := domain.ApplyProgress(&g, *in.Progress, now); err != nil {
			respond.Error(w, r, h.Log, apierr.Validation(err.Error()))
			return
		}
	}

	if err := h.save(ctx, p, append(p.Goals, g)); err != nil {
		h.fail(w, r, p, "failed to create goal", err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventGoalCreated,
		auditlog.Target{Kind: "goal", ID: g.ID},
		map[string]string{"title": g.Title, p.Kind + "_id": p.ID.Hex()})

	v, err := h.view(ctx, scope.ChurchID, g)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, v, "Goal created successfully")
}

// Update serves PUT .../goals/{goalId}. A body that leaves the goal as it was
// is rejected.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in updateInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if in.empty() {
		respond.Error(w, r, h.Log, apierr.Validation("no fields to update"))
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var assigned []primitive.ObjectID
	if in.AssignedTo != nil {
		if assigned, err = inputval.ObjectIDs(in.AssignedTo, "assignee"); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, i, err := h.load(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.checkUsers(ctx, scope, assigned); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	g := p.Goals[i]
	before := g.Status
	changed, err := applyUpdate(&g, in, assigned, h.now())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if !changed {
		respond.Error(w, r, h.Log, apierr.Validation("no changes detected"))
		return
	}
	g.UpdatedAt = h.now()

	goals := append([]models.Goal(nil), p.Goals...)
	goals[i] = g
	if err := h.save(ctx, p, goals); err != nil {
		h.fail(w, r, p, "failed to update goal", err)
		return
	}
	details := map[string]string{p.Kind + "_id": p.ID.Hex()}
	if g.Status != before {
		details["status"] = string(before) + "->" + string(g.Status)
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventGoalUpdated,
		auditlog.Target{Kind: "goal", ID: g.ID}, details)

	v, err := h.view(ctx, scope.ChurchID, g)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OKMessage(w, v, "Goal updated successfully")
}

// Delete serves DELETE .../goals/{goalId}. Goals have no soft delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, i, err := h.load(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	g := p.Goals[i]
	goals := append(append([]models.Goal(nil), p.Goals[:i]...), p.Goals[i+1:]...)
	if err := h.save(ctx, p, goals); err != nil {
		h.fail(w, r, p, "failed to delete goal", err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventGoalDeleted,
		auditlog.Target{Kind: "goal", ID: g.ID},
		map[string]string{"title": g.Title, p.Kind + "_id": p.ID.Hex()})
	respond.OKMessage(w, nil, "Goal deleted successfully")
}

// applyUpdate merges in into g and reports whether anything changed.
// Progress runs through the transition rules first; an explicit status in
// the same body wins over the status those rules chose.
func applyUpdate(g *models.Goal, in updateInput, assigned []primitive.ObjectID, now time.Time) (bool, error) {
	changed := false
	if in.Title != nil {
		if t := strings.TrimSpace(*in.Title); t != g.Title {
			g.Title, changed = t, true
		}
	}
	if in.Description != nil && *in.Description != g.Description {
		g.Description, changed = *in.Description, true
	}
	if in.Priority != nil && models.GoalPriority(*in.Priority) != g.Priority {
		g.Priority, changed = models.GoalPriority(*in.Priority), true
	}
	if in.TargetDate != nil && !in.TargetDate.Equal(g.TargetDate) {
		g.TargetDate, changed = in.TargetDate.UTC(), true
	}
	if in.Category != nil {
		if c := strings.TrimSpace(*in.Category); c != g.Category {
			g.Category, changed = c, true
		}
	}
	if in.AssignedTo != nil && !sameIDs(g.AssignedTo, assigned) {
		g.AssignedTo, changed = assigned, true
	}
	if in.Milestones != nil {
		if ms := milestones(in.Milestones, g.Milestones, now); !sameMilestones(g.Milestones, ms) {
			g.Milestones, changed = ms, true
		}
	}
	if in.Progress != nil {
		progress, status := g.Progress, g.Status
		if _, err := domain.ApplyProgress(g, *in.Progress, now); err != nil {
			return false, apierr.Validation(err.Error())
		}
		if g.Progress != progress || g.Status != status {
			changed = true
		}
	}
	if in.Status != nil && models.GoalStatus(*in.Status) != g.Status {
		setStatus(g, models.GoalStatus(*in.Status), now)
		changed = true
	}
	return changed, nil
}

// setStatus moves g to st, keeping CompletedAt in step.
func setStatus(g *models.Goal, st models.GoalStatus, now time.Time) {
	g.Status = st
	switch {
	case st == models.GoalCompleted && g.CompletedAt == nil:
		t := now.UTC()
		g.CompletedAt = &t
	case st != models.GoalCompleted:
		g.CompletedAt = nil
	}
}

// milestones builds the stored milestones, keeping the completion time of
// milestones that were already completed under the same title.
func milestones(in []milestoneInput, prev []models.Milestone, now time.Time) []models.Milestone {
	if len(in) == 0 {
		return nil
	}
	done := map[string]*time.Time{}
	for _, m := range prev {
		if m.Completed {
			done[m.Title] = m.CompletedAt
		}
	}
	out := make([]models.Milestone, len(in))
	for i, m := range in {
		out[i] = models.Milestone{Title: strings.TrimSpace(m.Title), Completed: m.Completed}
		if !m.Completed {
			continue
		}
		if at, ok := done[out[i].Title]; ok && at != nil {
			out[i].CompletedAt = at
		} else {
			t := now.UTC()
			out[i].CompletedAt = &t
		}
	}
	return out
}

func sameMilestones(a, b []models.Milestone) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Title != b[i].Title || a[i].Completed != b[i].Completed {
			return false
		}
	}
	return true
}

func sameIDs(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// load resolves the parent and the index of {goalId} in its goals.
func (h *Handler) load(ctx context.Context, r *http.Request, scope authz.Scope) (Parent, int, error) {
	id, err := inputval.ParseObjectID(chi.URLParam(r, "goalId"), "goal")
	if err != nil {
		return Parent{}, -1, err
	}
	p, err := h.Parent(ctx, r, scope)
	if err != nil {
		return p, -1, err
	}
	i := models.FindGoal(p.Goals, id)
	if i < 0 {
		return p, -1, apierr.NotFound("goal")
	}
	return p, i, nil
}

func (h *Handler) save(ctx context.Context, p Parent, goals []models.Goal) error {
	err := p.Save(ctx, goals)
	if errors.Is(err, txn.ErrVersionConflict) {
		return apierr.Conflict(p.Kind+" was modified by another request; reload and retry", nil)
	}
	return err
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, p Parent, msg string, err error) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		h.Log.Error(msg, zap.Error(err),
			zap.String(p.Kind+"_id", p.ID.Hex()), zap.String("path", r.URL.Path))
	}
	respond.Error(w, r, h.Log, err)
}

// checkUsers rejects assignees outside the church.
func (h *Handler) checkUsers(ctx context.Context, scope authz.Scope, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := h.Users.Missing(ctx, scope.ChurchID, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		hex := make([]string, len(missing))
		for i, id := range missing {
			hex[i] = id.Hex()
		}
		return apierr.Invalid("unknown users referenced", map[string]string{"assignedTo": strings.Join(hex, ",")})
	}
	return nil
}
