// internal/app/features/groups/members.go
package groups

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddMember serves POST /church/groups/{groupId}/members. Adding someone who
// is already a member is a no-op.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in memberInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	user, _ := primitive.ObjectIDFromHex(in.UserID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.loadGroup(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if !canManageMembers(scope, g) {
		respond.Error(w, r, h.Log, apierr.Forbidden("only the group leader or staff can change members"))
		return
	}
	if err := h.checkUsers(ctx, scope, []primitive.ObjectID{user}); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if indexOf(g.Members, user) < 0 {
		g.Members = append(g.Members, user)
		if err := h.Store.Save(ctx, &g); err != nil {
			h.saveFailed(w, r, g, "failed to add group member", err)
			return
		}
		h.Audit.Admin(ctx, r, scope.Actor(), audit.EventGroupMemberAdded,
			auditlog.Target{Kind: "group", ID: g.ID}, map[string]string{"user_id": user.Hex()})
	}

	v, err := h.view(ctx, g)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OKMessage(w, v, "Member added successfully")
}

// RemoveMember serves DELETE /church/groups/{groupId}/members/{userId}.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	user, err := inputval.ParseObjectID(chi.URLParam(r, "userId"), "user")
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
	if !canManageMembers(scope, g) {
		respond.Error(w, r, h.Log, apierr.Forbidden("only the group leader or staff can change members"))
		return
	}
	i := indexOf(g.Members, user)
	if i < 0 {
		respond.Error(w, r, h.Log, apierr.NotFound("member"))
		return
	}
	g.Members = append(g.Members[:i:i], g.Members[i+1:]...)
	if err := h.Store.Save(ctx, &g); err != nil {
		h.saveFailed(w, r, g, "failed to remove group member", err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventGroupMemberRemoved,
		auditlog.Target{Kind: "group", ID: g.ID}, map[string]string{"user_id": user.Hex()})

	v, err := h.view(ctx, g)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OKMessage(w, v, "Member removed successfully")
}

func indexOf(ids []primitive.ObjectID, id primitive.ObjectID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// canManageMembers reports staff or the group's own leader.
func canManageMembers(scope authz.Scope, g models.Group) bool {
	if scope.IsStaff() {
		return true
	}
	return g.LeaderID != nil && *g.LeaderID == scope.UserID
}
