// internal/app/features/activities/manage.go
package activities

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	activitystore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Show serves GET .../activities/{activityId}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, _, err := h.load(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	v, err := h.view(ctx, a)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, v)
}

// Create serves POST .../activities.
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
	if err := checkTimes(in.StartTime, in.EndTime); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	planned, err := inputval.ObjectIDs(in.PlannedParticipants, "participant")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	organizer := scope.UserID
	if in.OrganizerID != "" {
		organizer, _ = primitive.ObjectIDFromHex(in.OrganizerID)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	owner, err := h.Parent(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.checkUsers(ctx, scope, append([]primitive.ObjectID{organizer}, planned...)); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	a := models.Activity{
		ChurchID:            scope.ChurchID,
		Title:               strings.TrimSpace(in.Title),
		Description:         in.Description,
		Type:                models.ActivityType(in.Type),
		Date:                in.Date.UTC(),
		StartTime:           in.StartTime,
		EndTime:             in.EndTime,
		Location:            in.Location,
		OrganizerID:         &organizer,
		PlannedParticipants: planned,
		CreatedBy:           scope.UserID,
	}
	setOwner(&a, owner)

	created, err := h.Store.Create(ctx, a)
	if err != nil {
		h.Log.Error("failed to create activity", zap.Error(err),
			zap.String("church_id", scope.ChurchID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("activity created",
		zap.String("church_id", scope.ChurchID.Hex()),
		zap.String("activity_id", created.ID.Hex()),
		zap.String(owner.Field, owner.ID.Hex()))
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventActivityCreated,
		auditlog.Target{Kind: "activity", ID: created.ID},
		map[string]string{"title": created.Title, owner.Field: owner.ID.Hex()})

	v, err := h.view(ctx, created)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, v, "Activity created successfully")
}

// Update serves PUT .../activities/{activityId}.
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	current, owner, err := h.load(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	set, users, err := updateSet(in, current)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.checkUsers(ctx, scope, users); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	updated, err := h.Store.Update(ctx, scope.ChurchID, owner, current.ID, set)
	if err != nil {
		if errors.Is(err, activitystore.ErrNotFound) {
			respond.Error(w, r, h.Log, apierr.NotFound("activity"))
			return
		}
		h.Log.Error("failed to update activity", zap.Error(err),
			zap.String("activity_id", current.ID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventActivityUpdated,
		auditlog.Target{Kind: "activity", ID: updated.ID}, nil)

	v, err := h.view(ctx, updated)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OKMessage(w, v, "Activity updated successfully")
}

// updateSet turns a partial update into a $set document and lists the user
// ids it references.
func updateSet(in updateInput, current models.Activity) (bson.M, []primitive.ObjectID, error) {
	set := bson.M{}
	var users []primitive.ObjectID
	if in.Title != nil {
		set["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Type != nil {
		set["type"] = models.ActivityType(*in.Type)
	}
	if in.Date != nil {
		set["date"] = in.Date.UTC()
	}
	start, end := current.StartTime, current.EndTime
	if in.StartTime != nil {
		start = *in.StartTime
		set["start_time"] = start
	}
	if in.EndTime != nil {
		end = *in.EndTime
		set["end_time"] = end
	}
	if err := checkTimes(start, end); err != nil {
		return nil, nil, err
	}
	if in.Location != nil {
		set["location"] = *in.Location
	}
	if in.OrganizerID != nil {
		id, _ := primitive.ObjectIDFromHex(*in.OrganizerID)
		set["organizer_id"] = id
		users = append(users, id)
	}
	if in.PlannedParticipants != nil {
		planned, err := inputval.ObjectIDs(in.PlannedParticipants, "participant")
		if err != nil {
			return nil, nil, err
		}
		set["planned_participants"] = planned
		users = append(users, planned...)
	}
	if in.Status != nil {
		st := models.ActivityStatus(*in.Status)
		set["status"] = st
		set["is_completed"] = st == models.ActivityCompleted
		set["is_cancelled"] = st == models.ActivityCancelled
	}
	if in.IsActive != nil {
		set["is_active"] = *in.IsActive
	}
	return set, users, nil
}

// Delete serves DELETE .../activities/{activityId}. ?cancel=true marks the
// activity cancelled and keeps it; otherwise (including ?force=true) it is
// removed, since activities have no soft-delete state of their own.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	force, err := inputval.Bool(r, "force", false)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	cancelOnly, err := inputval.Bool(r, "cancel", false)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, owner, err := h.load(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if cancelOnly && !force {
		cancelled, err := h.Store.Cancel(ctx, scope.ChurchID, owner, a.ID)
		if err != nil {
			h.Log.Error("failed to cancel activity", zap.Error(err),
				zap.String("activity_id", a.ID.Hex()), zap.String("path", r.URL.Path))
			respond.Error(w, r, h.Log, err)
			return
		}
		h.Audit.Admin(ctx, r, scope.Actor(), audit.EventActivityCancelled,
			auditlog.Target{Kind: "activity", ID: a.ID}, nil)
		v, err := h.view(ctx, cancelled)
		if err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		respond.OKMessage(w, v, "Activity cancelled successfully")
		return
	}

	if err := h.Store.Delete(ctx, scope.ChurchID, owner, a.ID); err != nil {
		if errors.Is(err, activitystore.ErrNotFound) {
			respond.Error(w, r, h.Log, apierr.NotFound("activity"))
			return
		}
		h.Log.Error("failed to delete activity", zap.Error(err),
			zap.String("activity_id", a.ID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventActivityDeleted,
		auditlog.Target{Kind: "activity", ID: a.ID}, nil)
	respond.OKMessage(w, nil, "Activity deleted successfully")
}

// load resolves the parent and the {activityId} below it.
func (h *Handler) load(ctx context.Context, r *http.Request, scope authz.Scope) (models.Activity, activitystore.Owner, error) {
	id, err := inputval.ParseObjectID(chi.URLParam(r, "activityId"), "activity")
	if err != nil {
		return models.Activity{}, activitystore.Owner{}, err
	}
	owner, err := h.Parent(ctx, r, scope)
	if err != nil {
		return models.Activity{}, owner, err
	}
	a, err := h.Store.GetByID(ctx, scope.ChurchID, owner, id)
	if errors.Is(err, activitystore.ErrNotFound) {
		return a, owner, apierr.NotFound("activity")
	}
	return a, owner, err
}

// checkUsers rejects references to users outside the church.
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
		return apierr.Invalid("unknown users referenced", map[string]string{"users": strings.Join(hex, ",")})
	}
	return nil
}

func checkTimes(start, end string) error {
	if start != "" && end != "" && end <= start {
		return apierr.Validation("end time must be after start time")
	}
	return nil
}

func setOwner(a *models.Activity, o activitystore.Owner) {
	id := o.ID
	switch o.Field {
	case activitystore.OwnerBranch:
		a.BranchID = &id
	case activitystore.OwnerGroup:
		a.GroupID = &id
	case activitystore.OwnerDepartment:
		a.DepartmentID = &id
	}
}
