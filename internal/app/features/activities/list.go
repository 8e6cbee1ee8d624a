// internal/app/features/activities/list.go
package activities

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	activitystore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	domain "github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.uber.org/zap"
)

// List serves GET .../activities?type&status&from&to&includeInactive&page&limit.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	f, err := parseListFilter(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	pg := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	owner, err := h.Parent(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	items, total, err := h.Store.List(ctx, scope.ChurchID, owner, f, pg)
	if err != nil {
		h.Log.Error("failed to list activities", zap.Error(err),
			zap.String("church_id", scope.ChurchID.Hex()),
			zap.String(owner.Field, owner.ID.Hex()),
			zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	views, err := h.views(ctx, scope.ChurchID, items)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, listData{Activities: views, Pagination: paging.BuildMeta(pg, total)})
}

func parseListFilter(r *http.Request) (activitystore.ListFilter, error) {
	var f activitystore.ListFilter
	var err error
	if f.Type, err = inputval.Enum(r, "type", models.ActivityTypes); err != nil {
		return f, err
	}
	if f.Status, err = inputval.Enum(r, "status", models.ActivityStatuses); err != nil {
		return f, err
	}
	if f.IncludeInactive, err = inputval.Bool(r, "includeInactive", false); err != nil {
		return f, err
	}
	rng, err := domain.ParseRange(query.Get(r, "from"), query.Get(r, "to"))
	if err != nil {
		return f, apierr.Validation(err.Error())
	}
	f.From, f.To = rng.From, rng.To
	return f, nil
}
