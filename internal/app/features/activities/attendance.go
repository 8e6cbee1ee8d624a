// internal/app/features/activities/attendance.go
package activities

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	activitystore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	domain "github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ShowAttendance serves GET .../activities/{activityId}/attendance.
func (h *Handler) ShowAttendance(w http.ResponseWriter, r *http.Request) {
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
	data, err := h.attendance(ctx, a)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, data)
}

// SetAttendance serves POST .../attendance. The records replace whatever
// attendance the activity had.
func (h *Handler) SetAttendance(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in bulkAttendanceInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	now := time.Now().UTC()
	records := make([]models.AttendanceRecord, len(in.Records))
	users := make([]primitive.ObjectID, len(in.Records))
	for i, rec := range in.Records {
		records[i] = toRecord(rec, scope.UserID, now)
		users[i] = records[i].UserID
	}

	h.saveAttendance(w, r, scope, users, "Attendance recorded successfully", func(a *models.Activity) {
		domain.ReplaceAll(a, records)
	})
}

// UpsertAttendance serves PUT .../attendance: one user's record is replaced
// or added.
func (h *Handler) UpsertAttendance(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in attendanceInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	rec := toRecord(in, scope.UserID, time.Now().UTC())

	h.saveAttendance(w, r, scope, []primitive.ObjectID{rec.UserID}, "Attendance updated successfully", func(a *models.Activity) {
		domain.Upsert(a, rec)
	})
}

// saveAttendance loads the activity, applies mutate and saves it with a
// version check. A concurrent change answers 409.
func (h *Handler) saveAttendance(w http.ResponseWriter, r *http.Request, scope authz.Scope, users []primitive.ObjectID, msg string, mutate func(*models.Activity)) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, _, err := h.load(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if a.IsCancelled {
		respond.Error(w, r, h.Log, apierr.Validation("cannot record attendance for a cancelled activity"))
		return
	}
	if err := h.checkUsers(ctx, scope, users); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	mutate(&a)
	if err := h.Store.Save(ctx, &a); err != nil {
		if errors.Is(err, activitystore.ErrVersionConflict) {
			respond.Error(w, r, h.Log, apierr.Conflict("activity was modified by another request; reload and retry", nil))
			return
		}
		h.Log.Error("failed to save attendance", zap.Error(err),
			zap.String("activity_id", a.ID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventAttendanceRecorded,
		auditlog.Target{Kind: "activity", ID: a.ID},
		map[string]string{"records": strconv.Itoa(len(a.Attendance))})

	data, err := h.attendance(ctx, a)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OKMessage(w, data, msg)
}

func toRecord(in attendanceInput, by primitive.ObjectID, now time.Time) models.AttendanceRecord {
	user, _ := primitive.ObjectIDFromHex(in.UserID)
	var arrival *time.Time
	if in.ArrivalTime != nil {
		t := in.ArrivalTime.UTC()
		arrival = &t
	}
	return domain.Record(user, models.AttendanceStatus(in.Status), arrival, in.Notes, by, now)
}
