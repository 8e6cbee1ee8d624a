// internal/app/features/branches/parent.go
package branches

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	activitystore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/activities"
	branchstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/branches"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
)

// loadBranch resolves {branchId} within the caller's church. Branch admins
// only reach their own branch; anything else reads as missing.
func (h *Handler) loadBranch(ctx context.Context, r *http.Request, scope authz.Scope) (models.Branch, error) {
	id, err := inputval.ParseObjectID(chi.URLParam(r, "branchId"), "branch")
	if err != nil {
		return models.Branch{}, err
	}
	if !scope.CanAccessBranch(id) {
		return models.Branch{}, apierr.NotFound("branch")
	}
	b, err := h.Store.GetByID(ctx, scope.ChurchID, id)
	if errors.Is(err, branchstore.ErrNotFound) {
		return b, apierr.NotFound("branch")
	}
	return b, err
}

func (h *Handler) activityParent(ctx context.Context, r *http.Request, scope authz.Scope) (activitystore.Owner, error) {
	b, err := h.loadBranch(ctx, r, scope)
	if err != nil {
		return activitystore.Owner{}, err
	}
	return activitystore.BranchOwner(b.ID), nil
}
