// internal/app/features/branches/schedules.go
package branches

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	schedulestore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/schedules"
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

// ListSchedules serves GET .../service-schedules?includeInactive, ordered
// by weekday then time.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	includeInactive, err := inputval.Bool(r, "includeInactive", false)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.loadBranch(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	items, err := h.Schedules.List(ctx, scope.ChurchID, b.ID, includeInactive && scope.IsStaff())
	if err != nil {
		h.Log.Error("failed to list service schedules", zap.Error(err),
			zap.String("branch_id", b.ID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, scheduleList{Schedules: items})
}

// ShowSchedule serves GET .../service-schedules/{scheduleId}.
func (h *Handler) ShowSchedule(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, err := h.loadSchedule(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, sc)
}

// CreateSchedule serves POST .../service-schedules.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in scheduleInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.loadBranch(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	day := models.Weekday(in.Day)
	if err := h.checkConflict(ctx, scope, b.ID, day, in.Time, nil); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = defaultDuration
	}
	created, err := h.Schedules.Create(ctx, models.ServiceSchedule{
		ChurchID:        scope.ChurchID,
		BranchID:        b.ID,
		ServiceName:     strings.TrimSpace(in.ServiceName),
		Day:             day,
		Time:            in.Time,
		DurationMinutes: duration,
		Location:        in.Location,
		Description:     in.Description,
	})
	if err != nil {
		h.Log.Error("failed to create service schedule", zap.Error(err),
			zap.String("branch_id", b.ID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventScheduleCreated,
		auditlog.Target{Kind: "service_schedule", ID: created.ID},
		map[string]string{"branch_id": b.ID.Hex(), "day": string(day), "time": in.Time})
	respond.Created(w, created, "Service schedule created successfully")
}

// UpdateSchedule serves PUT .../service-schedules/{scheduleId}. The
// resulting day and time must not collide with another active schedule.
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in scheduleUpdate
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

	current, err := h.loadSchedule(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	set := bson.M{}
	day, clock, active := current.Day, current.Time, current.IsActive
	if in.ServiceName != nil {
		set["service_name"] = strings.TrimSpace(*in.ServiceName)
	}
	if in.Day != nil {
		day = models.Weekday(*in.Day)
		set["day"] = day
	}
	if in.Time != nil {
		clock = *in.Time
		set["time"] = clock
	}
	if in.DurationMinutes != nil {
		set["duration_minutes"] = *in.DurationMinutes
	}
	if in.Location != nil {
		set["location"] = *in.Location
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.IsActive != nil {
		active = *in.IsActive
		set["is_active"] = active
	}
	if active {
		if err := h.checkConflict(ctx, scope, current.BranchID, day, clock, &current.ID); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
	}

	updated, err := h.Schedules.Update(ctx, scope.ChurchID, current.BranchID, current.ID, set)
	if err != nil {
		if errors.Is(err, schedulestore.ErrNotFound) {
			respond.Error(w, r, h.Log, apierr.NotFound("service schedule"))
			return
		}
		h.Log.Error("failed to update service schedule", zap.Error(err),
			zap.String("schedule_id", current.ID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventScheduleUpdated,
		auditlog.Target{Kind: "service_schedule", ID: current.ID}, nil)
	respond.OKMessage(w, updated, "Service schedule updated successfully")
}

// DeleteSchedule serves DELETE .../service-schedules/{scheduleId}: a soft
// delete unless ?force=true.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
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
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sc, err := h.loadSchedule(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	details := map[string]string{"force": "false"}
	var data any
	msg := "Service schedule deactivated successfully"
	if force {
		details["force"] = "true"
		msg = "Service schedule deleted permanently"
		err = h.Schedules.Delete(ctx, scope.ChurchID, sc.BranchID, sc.ID)
	} else {
		data, err = h.Schedules.Deactivate(ctx, scope.ChurchID, sc.BranchID, sc.ID)
	}
	if err != nil {
		if errors.Is(err, schedulestore.ErrNotFound) {
			respond.Error(w, r, h.Log, apierr.NotFound("service schedule"))
			return
		}
		h.Log.Error("failed to delete service schedule", zap.Error(err),
			zap.String("schedule_id", sc.ID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventScheduleDeleted,
		auditlog.Target{Kind: "service_schedule", ID: sc.ID}, details)
	respond.OKMessage(w, data, msg)
}

func (h *Handler) loadSchedule(ctx context.Context, r *http.Request, scope authz.Scope) (models.ServiceSchedule, error) {
	id, err := inputval.ParseObjectID(chi.URLParam(r, "scheduleId"), "service schedule")
	if err != nil {
		return models.ServiceSchedule{}, err
	}
	b, err := h.loadBranch(ctx, r, scope)
	if err != nil {
		return models.ServiceSchedule{}, err
	}
	sc, err := h.Schedules.GetByID(ctx, scope.ChurchID, b.ID, id)
	if errors.Is(err, schedulestore.ErrNotFound) {
		return sc, apierr.NotFound("service schedule")
	}
	return sc, err
}

// checkConflict answers 409 with the colliding schedule when another active
// schedule of the branch already runs at day and clock.
func (h *Handler) checkConflict(ctx context.Context, scope authz.Scope, branchID primitive.ObjectID, day models.Weekday, clock string, exclude *primitive.ObjectID) error {
	other, err := h.Schedules.FindConflict(ctx, scope.ChurchID, branchID, day, clock, exclude)
	if err != nil {
		return err
	}
	if other == nil {
		return nil
	}
	return apierr.Conflict("a service is already scheduled at this day and time", map[string]any{
		"conflict": map[string]any{
			"id":          other.ID.Hex(),
			"serviceName": other.ServiceName,
			"day":         other.Day,
			"time":        other.Time,
		},
	})
}
