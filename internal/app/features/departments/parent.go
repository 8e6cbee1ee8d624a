// internal/app/features/departments/parent.go
package departments

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/features/goals"
	activitystore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/activities"
	departmentstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/departments"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
)

// loadDepartment resolves {departmentId} within the caller's church. Branch
// admins only reach departments of their own branch.
func (h *Handler) loadDepartment(ctx context.Context, r *http.Request, scope authz.Scope) (models.Department, error) {
	id, err := inputval.ParseObjectID(chi.URLParam(r, "departmentId"), "department")
	if err != nil {
		return models.Department{}, err
	}
	d, err := h.Store.GetByID(ctx, scope.ChurchID, id)
	if errors.Is(err, departmentstore.ErrNotFound) {
		return d, apierr.NotFound("department")
	}
	if err != nil {
		return d, err
	}
	if scope.BranchRestricted() && (d.BranchID == nil || !scope.CanAccessBranch(*d.BranchID)) {
		return models.Department{}, apierr.NotFound("department")
	}
	return d, nil
}

func (h *Handler) goalParent(ctx context.Context, r *http.Request, scope authz.Scope) (goals.Parent, error) {
	d, err := h.loadDepartment(ctx, r, scope)
	if err != nil {
		return goals.Parent{}, err
	}
	return goals.Parent{
		Kind:  "department",
		ID:    d.ID,
		Goals: d.Goals,
		Save: func(ctx context.Context, gs []models.Goal) error {
			d.Goals = gs
			return h.Store.Save(ctx, &d)
		},
	}, nil
}

func (h *Handler) activityParent(ctx context.Context, r *http.Request, scope authz.Scope) (activitystore.Owner, error) {
	d, err := h.loadDepartment(ctx, r, scope)
	if err != nil {
		return activitystore.Owner{}, err
	}
	return activitystore.DepartmentOwner(d.ID), nil
}
