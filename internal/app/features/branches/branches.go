// internal/app/features/branches/branches.go
package branches

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	activitystore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	branchstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/branches"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/txn"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// List serves GET /church/branches?search&includeInactive&page&limit.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
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
	f := branchstore.ListFilter{Search: query.Get(r, "search"), IncludeInactive: includeInactive}
	if scope.BranchRestricted() {
		f.OnlyID = scope.BranchID
	}
	pg := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, total, err := h.Store.List(ctx, scope.ChurchID, f, pg)
	if err != nil {
		h.Log.Error("failed to list branches", zap.Error(err),
			zap.String("church_id", scope.ChurchID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	views, err := h.views(ctx, scope.ChurchID, items)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, listData{Branches: views, Pagination: paging.BuildMeta(pg, total)})
}

// Show serves GET /church/branches/{branchId}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
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
	v, err := h.view(ctx, b)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, v)
}

// Create serves POST /church/branches.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in branchInput
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

	b := models.Branch{
		ChurchID: scope.ChurchID,
		Name:     strings.TrimSpace(in.Name),
		Address:  in.Address,
		City:     in.City,
		Phone:    in.Phone,
	}
	if in.PastorID != "" {
		id, _ := primitive.ObjectIDFromHex(in.PastorID)
		if err := h.checkPastor(ctx, scope, id); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		b.PastorID = &id
	}

	created, err := h.Store.Create(ctx, b)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}
	h.Log.Info("branch created",
		zap.String("church_id", scope.ChurchID.Hex()), zap.String("branch_id", created.ID.Hex()))
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventBranchCreated,
		auditlog.Target{Kind: "branch", ID: created.ID}, map[string]string{"name": created.Name})

	v, err := h.view(ctx, created)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, v, "Branch created successfully")
}

// Update serves PUT /church/branches/{branchId}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in branchUpdate
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
	if in.IsActive != nil && !scope.IsChurchManager() {
		respond.Error(w, r, h.Log, apierr.Forbidden("only church administrators can activate or deactivate branches"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.loadBranch(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	set := bson.M{}
	if in.Name != nil {
		set["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		set["address"] = *in.Address
	}
	if in.City != nil {
		set["city"] = *in.City
	}
	if in.Phone != nil {
		set["phone"] = *in.Phone
	}
	if in.PastorID != nil {
		id, _ := primitive.ObjectIDFromHex(*in.PastorID)
		if err := h.checkPastor(ctx, scope, id); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		set["pastor_id"] = id
	}
	if in.IsActive != nil {
		set["is_active"] = *in.IsActive
	}

	updated, err := h.Store.Update(ctx, scope.ChurchID, b.ID, set)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventBranchUpdated,
		auditlog.Target{Kind: "branch", ID: b.ID}, nil)

	v, err := h.view(ctx, updated)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OKMessage(w, v, "Branch updated successfully")
}

// Delete serves DELETE /church/branches/{branchId}. By default the branch
// and its schedules are deactivated; ?force=true removes the branch with its
// schedules and activities in one transaction.
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	b, err := h.loadBranch(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if !force {
		var updated models.Branch
		err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
			var err error
			if updated, err = h.Store.Update(ctx, scope.ChurchID, b.ID, bson.M{"is_active": false}); err != nil {
				return err
			}
			_, err = h.Schedules.DeactivateByBranch(ctx, scope.ChurchID, b.ID)
			return err
		})
		if err != nil {
			respond.Error(w, r, h.Log, storeErr(err))
			return
		}
		h.Audit.Admin(ctx, r, scope.Actor(), audit.EventBranchDeactivated,
			auditlog.Target{Kind: "branch", ID: b.ID}, nil)
		respond.OKMessage(w, updated, "Branch deactivated successfully")
		return
	}

	var schedules, acts int64
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		var err error
		if schedules, err = h.Schedules.DeleteByBranch(ctx, scope.ChurchID, b.ID); err != nil {
			return err
		}
		if acts, err = h.Activities.DeleteByOwner(ctx, scope.ChurchID, activitystore.BranchOwner(b.ID)); err != nil {
			return err
		}
		return h.Store.Delete(ctx, scope.ChurchID, b.ID)
	})
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}
	h.Log.Info("branch deleted",
		zap.String("church_id", scope.ChurchID.Hex()),
		zap.String("branch_id", b.ID.Hex()),
		zap.Int64("schedules", schedules),
		zap.Int64("activities", acts))
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventBranchDeleted,
		auditlog.Target{Kind: "branch", ID: b.ID},
		map[string]string{
			"schedules":  strconv.FormatInt(schedules, 10),
			"activities": strconv.FormatInt(acts, 10),
		})
	respond.OKMessage(w, map[string]int64{
		"deletedSchedules":  schedules,
		"deletedActivities": acts,
	}, "Branch deleted permanently")
}

func (h *Handler) checkPastor(ctx context.Context, scope authz.Scope, id primitive.ObjectID) error {
	missing, err := h.Users.Missing(ctx, scope.ChurchID, []primitive.ObjectID{id})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apierr.Invalid("pastor not found", map[string]string{"pastorId": "Pastor must be a user of this church."})
	}
	return nil
}

// storeErr maps branch store errors to API errors. Anything else is left
// for respond.Error to log as internal.
func storeErr(err error) error {
	switch {
	case errors.Is(err, branchstore.ErrNotFound):
		return apierr.NotFound("branch")
	case errors.Is(err, branchstore.ErrDuplicateName):
		return apierr.Conflict(err.Error(), nil)
	}
	return err
}
