// internal/app/features/announcements/list.go
package announcements

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	announcementstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/announcements"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.uber.org/zap"
)

// List serves GET /church/announcements. Callers outside church staff see
// only published announcements.
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
	if !scope.IsStaff() {
		f.Status = models.StatusPublished
	}
	if scope.BranchRestricted() || (!scope.IsStaff() && scope.BranchID != nil) {
		f.BranchID = scope.BranchID
	}
	pg := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, total, err := h.Store.List(ctx, scope.ChurchID, f, pg)
	if err != nil {
		h.Log.Error("failed to list announcements", zap.Error(err),
			zap.String("church_id", scope.ChurchID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	views, err := h.views(ctx, scope.ChurchID, items)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, listData{Announcements: views, Pagination: paging.BuildMeta(pg, total)})
}

func parseListFilter(r *http.Request) (announcementstore.ListFilter, error) {
	f := announcementstore.ListFilter{
		Search: query.Get(r, "search"),
		Now:    time.Now().UTC(),
	}
	var err error
	if f.Category, err = inputval.Enum(r, "category", models.AnnouncementCategories); err != nil {
		return f, err
	}
	if f.Priority, err = inputval.Enum(r, "priority", models.AnnouncementPriorities); err != nil {
		return f, err
	}
	if f.Status, err = inputval.Enum(r, "status", models.PublishStatuses); err != nil {
		return f, err
	}
	if f.IncludeExpired, err = inputval.Bool(r, "includeExpired", false); err != nil {
		return f, err
	}
	return f, nil
}
