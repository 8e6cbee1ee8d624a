// Package requestid tags each request with an id for log correlation.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header carries the id in both directions.
const Header = "X-Request-ID"

type ctxKey struct{}

// Middleware reuses a well-formed incoming X-Request-ID or mints a UUID, echoes
// it on the response and stores it on the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// From returns the request id, or "".
func From(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Logger returns log with the request's id attached.
func Logger(r *http.Request, log *zap.Logger) *zap.Logger {
	if id := From(r.Context()); id != "" {
		return log.With(zap.String("request_id", id))
	}
	return log
}
