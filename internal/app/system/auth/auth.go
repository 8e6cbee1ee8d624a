// Package auth resolves the caller of a request into a Principal.
//
// Credentials are HS256 bearer tokens issued by the church's identity
// service. Browser clients that cannot set headers may instead carry the
// token inside the signed session cookie. The guard never talks to the
// database.
package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated caller.
type Principal struct {
	SubjectID primitive.ObjectID
	ChurchID  primitive.ObjectID // NilObjectID when the token carries no tenant
	BranchID  *primitive.ObjectID
	Role      string // lowercased
	Name      string
}

// HasTenant reports whether the principal is scoped to a church.
func (p Principal) HasTenant() bool { return !p.ChurchID.IsZero() }

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal placed on the request by the guard.
func PrincipalFrom(r *http.Request) (Principal, bool) {
	p, ok := r.Context().Value(principalKey).(Principal)
	return p, ok
}

// DecisionKind discriminates a guard Decision.
type DecisionKind int

const (
	Allowed DecisionKind = iota + 1
	Rejected
)

// Decision is the guard's verdict: either Allowed with a Principal, or
// Rejected with a status code and message.
type Decision struct {
	Kind      DecisionKind
	Principal Principal
	Status    int
	Message   string
}

// Authorized builds an Allowed decision.
func Authorized(p Principal) Decision {
	return Decision{Kind: Allowed, Principal: p}
}

// Denied builds a Rejected decision.
func Denied(status int, msg string) Decision {
	return Decision{Kind: Rejected, Status: status, Message: msg}
}
