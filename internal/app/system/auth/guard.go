package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/normalize"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"go.uber.org/zap"
)

// SessionTokenKey is the session value holding a bearer token for cookie
// clients.
const SessionTokenKey = "access_token"

// Guard authorizes requests against role allow-lists.
type Guard struct {
	verifier    *Verifier
	store       sessions.Store // optional cookie fallback
	sessionName string
	log         *zap.Logger
	audit       *auditlog.Logger
}

// NewGuard builds a guard. store may be nil to accept bearer headers only.
func NewGuard(v *Verifier, store sessions.Store, sessionName string, log *zap.Logger) *Guard {
	return &Guard{verifier: v, store: store, sessionName: sessionName, log: log}
}

// WithAudit makes Require record rejections as auth audit events.
func (g *Guard) WithAudit(l *auditlog.Logger) *Guard {
	g.audit = l
	return g
}

// Authorize resolves the request's credential and checks its role against
// allowed. An empty allowed list admits any authenticated role.
func (g *Guard) Authorize(r *http.Request, allowed ...string) Decision {
	raw, err := g.credential(r)
	if err != nil {
		return Denied(http.StatusUnauthorized, "authentication required")
	}
	p, err := g.verifier.Verify(raw)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return Denied(http.StatusUnauthorized, "token expired")
		}
		g.log.Debug("token rejected", zap.Error(err), zap.String("path", r.URL.Path))
		return Denied(http.StatusUnauthorized, "invalid token")
	}
	if len(allowed) > 0 && !roleIn(p.Role, allowed) {
		return Denied(http.StatusForbidden, "insufficient permissions")
	}
	return Authorized(p)
}

// Require is middleware admitting only the allowed roles. The principal is
// placed on the request context for handlers.
func (g *Guard) Require(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Authorize(r, allowed...)
			switch d.Kind {
			case Allowed:
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), d.Principal)))
			case Rejected:
				g.audit.AccessDenied(r.Context(), r, d.Status, d.Message)
				respond.Error(w, r, g.log, rejection(d))
			default:
				respond.Error(w, r, g.log, apierr.Internal(fmt.Errorf("unknown decision kind %d", d.Kind)))
			}
		})
	}
}

func rejection(d Decision) *apierr.Error {
	if d.Status == http.StatusForbidden {
		return apierr.Forbidden(d.Message)
	}
	return apierr.Unauthenticated(d.Message)
}

// credential prefers the Authorization header and falls back to the session.
func (g *Guard) credential(r *http.Request) (string, error) {
	tok, err := ExtractBearer(r.Header.Get("Authorization"))
	if err == nil {
		return tok, nil
	}
	if !errors.Is(err, ErrNoToken) || g.store == nil {
		return "", err
	}
	sess, serr := g.store.Get(r, g.sessionName)
	if serr != nil {
		return "", ErrNoToken
	}
	if s, ok := sess.Values[SessionTokenKey].(string); ok && s != "" {
		return s, nil
	}
	return "", ErrNoToken
}

func roleIn(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == normalize.Role(a) {
			return true
		}
	}
	return false
}
