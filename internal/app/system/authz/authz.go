// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scope is the tenant context of an authorized request. Every store query
// starts from Scope.Filter so nothing crosses church boundaries.
type Scope struct {
	UserID   primitive.ObjectID
	ChurchID primitive.ObjectID
	BranchID *primitive.ObjectID
	Role     string
	Name     string
}

// ScopeFrom reads the principal placed by auth.Guard. A principal without a
// church is a bad request.
func ScopeFrom(r *http.Request) (Scope, error) {
	p, ok := auth.PrincipalFrom(r)
	if !ok {
		return Scope{}, apierr.Unauthenticated("authentication required")
	}
	if !p.HasTenant() {
		return Scope{}, apierr.Validation("church id is required")
	}
	return Scope{
		UserID:   p.SubjectID,
		ChurchID: p.ChurchID,
		BranchID: p.BranchID,
		Role:     p.Role,
		Name:     p.Name,
	}, nil
}

// Filter is the base tenant filter.
func (s Scope) Filter() bson.M {
	return bson.M{"church_id": s.ChurchID}
}

// With returns the tenant filter extended with kv pairs.
func (s Scope) With(kv bson.M) bson.M {
	f := s.Filter()
	for k, v := range kv {
		f[k] = v
	}
	return f
}

// IsChurchManager reports admin or pastor.
func (s Scope) IsChurchManager() bool {
	return s.Role == RoleAdmin || s.Role == RolePastor
}

// IsStaff reports admin, pastor or branch_admin.
func (s Scope) IsStaff() bool { return IsStaffRole(s.Role) }

// BranchRestricted reports whether the caller is limited to one branch.
func (s Scope) BranchRestricted() bool {
	return s.Role == RoleBranchAdmin && s.BranchID != nil
}

// CanAccessBranch reports whether the caller may touch records of branchID.
// Branch admins see only their own branch; other roles see every branch of
// their church (the church filter is applied separately).
func (s Scope) CanAccessBranch(branchID primitive.ObjectID) bool {
	if !s.BranchRestricted() {
		return true
	}
	return *s.BranchID == branchID
}

// BranchFilter narrows f to the caller's branch when restricted.
func (s Scope) BranchFilter(f bson.M) bson.M {
	if s.BranchRestricted() {
		f["branch_id"] = *s.BranchID
	}
	return f
}

// Actor is the caller in audit form.
func (s Scope) Actor() auditlog.Actor {
	return auditlog.Actor{ChurchID: s.ChurchID, UserID: s.UserID, Role: s.Role}
}
