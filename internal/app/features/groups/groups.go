// internal/app/features/groups/groups.go
package groups

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
	groupstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/groups"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// List serves GET /church/groups?search&branchId&includeInactive&page&limit.
// Callers below staff only see groups they belong to or lead.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	f := groupstore.ListFilter{Search: query.Get(r, "search")}
	if f.IncludeInactive, err = inputval.Bool(r, "includeInactive", false); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if f.BranchID, err = inputval.OptionalObjectID(r, "branchId"); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	switch {
	case scope.BranchRestricted():
		f.BranchID = scope.BranchID
	case !scope.IsStaff():
		f.MemberID = &scope.UserID
		f.IncludeInactive = false
	}
	pg := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, total, err := h.Store.List(ctx, scope.ChurchID, f, pg)
	if err != nil {
		h.Log.Error("failed to list groups", zap.Error(err),
			zap.String("church_id", scope.ChurchID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	views, err := h.views(ctx, scope.ChurchID, items)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, listData{Groups: views, Pagination: paging.BuildMeta(pg, total)})
}

// Show serves GET /church/groups/{groupId}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.loadGroup(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	v, err := h.view(ctx, g)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, v)
}

// Create serves POST /church/groups.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in groupInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	members, err := inputval.ObjectIDs(in.Members, "member")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g := models.Group{
		ChurchID:    scope.ChurchID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Members:     members,
	}
	switch {
	case scope.BranchRestricted():
		g.BranchID = scope.BranchID
	case in.BranchID != "":
		id, _ := primitive.ObjectIDFromHex(in.BranchID)
		if err := h.checkBranch(ctx, scope, id); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		g.BranchID = &id
	}
	users := members
	if in.LeaderID != "" {
		id, _ := primitive.ObjectIDFromHex(in.LeaderID)
		g.LeaderID = &id
		users = append([]primitive.ObjectID{id}, members...)
	}
	if err := h.checkUsers(ctx, scope, users); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	created, err := h.Store.Create(ctx, g)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err))
		return
	}
	h.Log.Info("group created",
		zap.String("church_id", scope.ChurchID.Hex()), zap.String("group_id", created.ID.Hex()))
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventGroupCreated,
		auditlog.Target{Kind: "group", ID: created.ID}, map[string]string{"name": created.Name})

	v, err := h.view(ctx, created)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, v, "Group created successfully")
}

// Update serves PUT /church/groups/{groupId}. The group is saved whole with
// its version check so goal edits made meanwhile are not lost.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in groupUpdate
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

	g, err := h.loadGroup(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var users []primitive.ObjectID
	if in.Name != nil {
		g.Name = strings.TrimSpace(*in.Name)
		g.NameCI = text.Fold(g.Name)
	}
	if in.Description != nil {
		g.Description = *in.Description
	}
	if in.LeaderID != nil {
		id, _ := primitive.ObjectIDFromHex(*in.LeaderID)
		g.LeaderID = &id
		users = append(users, id)
	}
	if in.Members != nil {
		if g.Members, err = inputval.ObjectIDs(in.Members, "member"); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		users = append(users, g.Members...)
	}
	if in.IsActive != nil {
		g.IsActive = *in.IsActive
	}
	if err := h.checkUsers(ctx, scope, users); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if err := h.Store.Save(ctx, &g); err != nil {
		h.saveFailed(w, r, g, "failed to update group", err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventGroupUpdated,
		auditlog.Target{Kind: "group", ID: g.ID}, nil)

	v, err := h.view(ctx, g)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OKMessage(w, v, "Group updated successfully")
}

func (h *Handler) checkBranch(ctx context.Context, scope authz.Scope, id primitive.ObjectID) error {
	_, err := h.Branches.GetByID(ctx, scope.ChurchID, id)
	if errors.Is(err, branchstore.ErrNotFound) {
		return apierr.Invalid("branch not found", map[string]string{"branchId": "not a branch of this church"})
	}
	return err
}

// checkUsers rejects leaders or members outside the church.
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

func (h *Handler) saveFailed(w http.ResponseWriter, r *http.Request, g models.Group, msg string, err error) {
	mapped := storeErr(err)
	if mapped == err {
		h.Log.Error(msg, zap.Error(err),
			zap.String("group_id", g.ID.Hex()), zap.String("path", r.URL.Path))
	}
	respond.Error(w, r, h.Log, mapped)
}

// storeErr maps group store errors onto API errors.
func storeErr(err error) error {
	switch {
	case errors.Is(err, groupstore.ErrNotFound):
		return apierr.NotFound("group")
	case errors.Is(err, groupstore.ErrDuplicateGroupName), wafflemongo.IsDup(err):
		return apierr.Conflict(groupstore.ErrDuplicateGroupName.Error(), nil)
	case errors.Is(err, groupstore.ErrVersionConflict):
		return apierr.Conflict("group was modified by another request; reload and retry", nil)
	}
	return err
}
