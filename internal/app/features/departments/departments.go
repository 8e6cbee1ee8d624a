// internal/app/features/departments/departments.go
package departments

import (
	"context"
	"errors"
	"net/http"
	"strings"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	branchstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/branches"
	departmentstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/departments"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/budget"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// List serves GET /church/departments?search&branchId&includeInactive&page&limit.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	f := departmentstore.ListFilter{Search: query.Get(r, "search")}
	if f.IncludeInactive, err = inputval.Bool(r, "includeInactive", false); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if f.BranchID, err = inputval.OptionalObjectID(r, "branchId"); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if scope.BranchRestricted() {
		f.BranchID = scope.BranchID
	}
	pg := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, total, err := h.Store.List(ctx, scope.ChurchID, f, pg)
	if err != nil {
		h.Log.Error("failed to list departments", zap.Error(err),
			zap.String("church_id", scope.ChurchID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	views, err := h.views(ctx, scope.ChurchID, items)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, listData{Departments: views, Pagination: paging.BuildMeta(pg, total)})
}

// Show serves GET /church/departments/{departmentId}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.loadDepartment(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	v, err := h.view(ctx, d)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, v)
}

// Create serves POST /church/departments. Branch admins always create in
// their own branch.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in departmentInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	cats, err := allocations(in.BudgetCategories)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d := models.Department{
		ChurchID:         scope.ChurchID,
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		TotalBudget:      in.TotalBudget,
		BudgetCategories: cats,
	}
	switch {
	case scope.BranchRestricted():
		d.BranchID = scope.BranchID
	case in.BranchID != "":
		id, _ := primitive.ObjectIDFromHex(in.BranchID)
		if err := h.checkBranch(ctx, scope, id); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		d.BranchID = &id
	}
	if in.LeaderID != "" {
		id, _ := primitive.ObjectIDFromHex(in.LeaderID)
		if err := h.checkLeader(ctx, scope, id); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		d.LeaderID = &id
	}

	created, err := h.Store.Create(ctx, d)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}
	h.Log.Info("department created",
		zap.String("church_id", scope.ChurchID.Hex()), zap.String("department_id", created.ID.Hex()))
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventDepartmentCreated,
		auditlog.Target{Kind: "department", ID: created.ID}, map[string]string{"name": created.Name})

	v, err := h.view(ctx, created)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, v, "Department created successfully")
}

// Update serves PUT /church/departments/{departmentId}. Plain fields go
// through a direct update; budget changes are saved with the version check
// alongside the expenses they govern.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in departmentUpdate
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
	var cats []models.BudgetCategory
	if in.BudgetCategories != nil {
		if cats, err = allocations(in.BudgetCategories); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.loadDepartment(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	set := bson.M{}
	if in.Name != nil {
		set["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.LeaderID != nil {
		id, _ := primitive.ObjectIDFromHex(*in.LeaderID)
		if err := h.checkLeader(ctx, scope, id); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		set["leader_id"] = id
	}
	if in.IsActive != nil {
		set["is_active"] = *in.IsActive
	}

	var updated models.Department
	if in.TotalBudget == nil && in.BudgetCategories == nil {
		updated, err = h.Store.UpdateInfo(ctx, scope.ChurchID, d.ID, set)
	} else {
		updated, err = h.saveBudget(ctx, d, set, in.TotalBudget, cats)
	}
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventDepartmentUpdated,
		auditlog.Target{Kind: "department", ID: updated.ID}, nil)

	v, err := h.view(ctx, updated)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OKMessage(w, v, "Department updated successfully")
}

// saveBudget applies the info fields in set and the new budget to d, then
// saves the whole document with its version check.
func (h *Handler) saveBudget(ctx context.Context, d models.Department, set bson.M, total *float64, cats []models.BudgetCategory) (models.Department, error) {
	if v, ok := set["name"].(string); ok {
		d.Name, d.NameCI = v, text.Fold(v)
	}
	if v, ok := set["description"].(string); ok {
		d.Description = v
	}
	if v, ok := set["leader_id"].(primitive.ObjectID); ok {
		d.LeaderID = &v
	}
	if v, ok := set["is_active"].(bool); ok {
		d.IsActive = v
	}
	if total != nil {
		d.TotalBudget = *total
	}
	if cats != nil {
		d.BudgetCategories = cats
	}
	budget.Reconcile(&d)
	if err := h.Store.Save(ctx, &d); err != nil {
		return d, err
	}
	return d, nil
}

// allocations turns the requested categories into budget entries with no
// spend yet. Each category may appear once.
func allocations(in []categoryInput) ([]models.BudgetCategory, error) {
	out := make([]models.BudgetCategory, 0, len(in))
	seen := map[models.ExpenseCategory]bool{}
	for _, c := range in {
		cat := models.ExpenseCategory(c.Category)
		if seen[cat] {
			return nil, apierr.Validationf("budget category %q listed more than once", cat)
		}
		seen[cat] = true
		out = append(out, models.BudgetCategory{Category: cat, AllocatedAmount: c.AllocatedAmount})
	}
	return out, nil
}

func (h *Handler) checkBranch(ctx context.Context, scope authz.Scope, id primitive.ObjectID) error {
	_, err := h.Branches.GetByID(ctx, scope.ChurchID, id)
	if errors.Is(err, branchstore.ErrNotFound) {
		return apierr.Invalid("branch not found", map[string]string{"branchId": "not a branch of this church"})
	}
	return err
}

func (h *Handler) checkLeader(ctx context.Context, scope authz.Scope, id primitive.ObjectID) error {
	missing, err := h.Users.Missing(ctx, scope.ChurchID, []primitive.ObjectID{id})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apierr.Invalid("leader not found", map[string]string{"leaderId": "not a user of this church"})
	}
	return nil
}

// storeErr maps department store errors onto API errors.
func storeErr(err error) error {
	switch {
	case errors.Is(err, departmentstore.ErrNotFound):
		return apierr.NotFound("department")
	case errors.Is(err, departmentstore.ErrDuplicateName), wafflemongo.IsDup(err):
		return apierr.Conflict(departmentstore.ErrDuplicateName.Error(), nil)
	case errors.Is(err, departmentstore.ErrVersionConflict):
		return apierr.Conflict("department was modified by another request; reload and retry", nil)
	}
	return err
}
