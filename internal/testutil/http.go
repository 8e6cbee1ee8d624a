package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Token settings shared by handler tests that go through a real guard.
const (
	TestJWTSecret = "churchhub-test-secret-at-least-32-bytes"
	TestJWTIssuer = "churchhub-test"
)

// Principal builds a principal of role in church.
func Principal(churchID primitive.ObjectID, role string) auth.Principal {
	return auth.Principal{
		SubjectID: primitive.NewObjectID(),
		ChurchID:  churchID,
		Role:      role,
		Name:      "Test " + role,
	}
}

// WithPrincipal places p on the request context, bypassing the guard.
func WithPrincipal(r *http.Request, p auth.Principal) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), p))
}

// BearerFor signs a one-hour token for p with the test secret.
func BearerFor(t *testing.T, p auth.Principal) string {
	t.Helper()
	tok, err := auth.NewSigner(TestJWTSecret, TestJWTIssuer).Sign(p, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + tok
}

// Guard is a bearer-only guard that accepts tokens from BearerFor.
func Guard() *auth.Guard {
	return auth.NewGuard(auth.NewVerifier(TestJWTSecret, TestJWTIssuer), nil, "", zap.NewNop())
}

// Serve sends a JSON request through h as p.
func Serve(t *testing.T, h http.Handler, p auth.Principal, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := JSONRequest(t, method, target, body)
	req.Header.Set("Authorization", BearerFor(t, p))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// JSONRequest builds a request with body encoded as JSON. A nil body sends
// no payload.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, target, rd)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// Envelope is the decoded response body.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Details map[string]any  `json:"details"`
}

// Decode reads the response envelope, and Data into dst when dst is non-nil.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	if dst != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decode data: %v (data %s)", err, env.Data)
		}
	}
	return env
}
