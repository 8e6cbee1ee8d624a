// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"slices"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// List handles GET /church/audit-events?category&eventType&actorId&targetId&startDate&endDate&page&limit.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	filter.ChurchID = &scope.ChurchID
	pg := paging.Parse(r)
	filter.Limit = int64(pg.Limit)
	filter.Offset = pg.Skip()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit event list")
	defer cancel()

	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		respond.Error(w, r, h.Log, err)
		return
	}
	total, err := h.Store.Count(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		respond.Error(w, r, h.Log, err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(events))
	for _, e := range events {
		if e.ActorID != nil {
			ids = append(ids, *e.ActorID)
		}
	}
	// Actor names are cosmetic; a lookup failure still returns the trail.
	people, err := h.Users.Summaries(ctx, scope.ChurchID, ids)
	if err != nil {
		h.Log.Warn("failed to resolve audit actors", zap.Error(err))
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:         e.ID,
			Timestamp:  e.Timestamp,
			Category:   e.Category,
			EventType:  e.EventType,
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			TargetKind: e.TargetKind,
			TargetID:   e.TargetID,
			IP:         e.IP,
			RequestID:  e.RequestID,
			Success:    e.Success,
			Reason:     e.FailureReason,
			Details:    e.Details,
		}
		if e.ActorID != nil {
			if s, ok := people[*e.ActorID]; ok {
				item.Actor = &s
			}
		}
		items = append(items, item)
	}

	respond.OK(w, listData{Events: items, Pagination: paging.BuildMeta(pg, total)})
}

// EventTypes handles GET /church/audit-events/event-types.
func (h *Handler) EventTypes(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, allCategories())
}

func parseFilter(r *http.Request) (audit.QueryFilter, error) {
	f := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "eventType"),
	}
	if f.Category != "" && eventTypesForCategory(f.Category) == nil {
		return f, apierr.Validationf("invalid category %q", f.Category)
	}
	if f.EventType != "" && !slices.Contains(eventTypesForCategory(f.Category), f.EventType) {
		return f, apierr.Validationf("invalid eventType %q", f.EventType)
	}
	var err error
	if f.ActorID, err = inputval.OptionalObjectID(r, "actorId"); err != nil {
		return f, err
	}
	if f.TargetID, err = inputval.OptionalObjectID(r, "targetId"); err != nil {
		return f, err
	}
	if f.StartTime, err = date(r, "startDate", 0); err != nil {
		return f, err
	}
	// endDate covers the whole day.
	if f.EndTime, err = date(r, "endDate", 24*time.Hour-time.Nanosecond); err != nil {
		return f, err
	}
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		return f, apierr.Validation("endDate must not be before startDate")
	}
	return f, nil
}

func date(r *http.Request, key string, shift time.Duration) (*time.Time, error) {
	s := query.Get(r, key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, apierr.Validationf("%s must be YYYY-MM-DD", key)
	}
	t = t.Add(shift)
	return &t, nil
}
