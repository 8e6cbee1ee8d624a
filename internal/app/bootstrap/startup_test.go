package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		JWTSecret:        strings.Repeat("s", minJWTSecret),
		SessionKey:       strings.Repeat("k", 32),
		AuditLogAuth:     "all",
		AuditLogAdmin:    "db",
		DefaultPageLimit: 20,
		MaxPageLimit:     100,
	}
}

func TestValidateApp(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "valid", env: "prod", mutate: func(*AppConfig) {}},
		{name: "missing jwt secret", env: "dev", mutate: func(c *AppConfig) { c.JWTSecret = "" }, wantErr: true},
		{name: "short secret in dev", env: "dev", mutate: func(c *AppConfig) { c.JWTSecret = "short" }},
		{name: "short secret in prod", env: "prod", mutate: func(c *AppConfig) { c.JWTSecret = "short" }, wantErr: true},
		{name: "no session key in prod", env: "prod", mutate: func(c *AppConfig) { c.SessionKey = "" }, wantErr: true},
		{name: "no session key in dev", env: "dev", mutate: func(c *AppConfig) { c.SessionKey = "" }},
		{name: "bad audit mode", env: "dev", mutate: func(c *AppConfig) { c.AuditLogAdmin = "verbose" }, wantErr: true},
		{name: "default above max", env: "dev", mutate: func(c *AppConfig) { c.DefaultPageLimit = 500 }, wantErr: true},
		{name: "seed without church", env: "dev", mutate: func(c *AppConfig) { c.SeedAdminEmail = "a@b.org" }, wantErr: true},
		{name: "seed with church", env: "dev", mutate: func(c *AppConfig) {
			c.SeedAdminEmail = "a@b.org"
			c.SeedChurchID = primitive.NewObjectID().Hex()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateApp(tt.env, cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateApp() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartup_ConfiguresLimits(t *testing.T) {
	t.Cleanup(timeouts.Reset)
	t.Cleanup(func() { paging.Configure(paging.DefaultLimit, paging.DefaultMax) })

	cfg := validConfig()
	cfg.TimeoutShort = 2 * time.Second
	cfg.DefaultPageLimit = 10
	cfg.MaxPageLimit = 50
	if err := Startup(t.Context(), &config.CoreConfig{Env: "test"}, cfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if timeouts.Short() != 2*time.Second {
		t.Errorf("Short = %v", timeouts.Short())
	}
	if def, max := paging.Limits(); def != 10 || max != 50 {
		t.Errorf("Limits = %d, %d", def, max)
	}
}

func TestEnsureChurchAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := primitive.NewObjectID()
	u, err := ensureChurchAdmin(ctx, DBDeps{MongoDatabase: db}, church, "admin@grace.org", "Grace Admin", testLogger())
	if err != nil {
		t.Fatalf("ensureChurchAdmin failed: %v", err)
	}

	var stored models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u.ID}).Decode(&stored); err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}
	if stored.Role != "admin" || stored.Status != "active" || stored.ChurchID != church {
		t.Errorf("stored = %+v", stored)
	}
	if stored.FullNameCI != "grace admin" {
		t.Errorf("FullNameCI = %q", stored.FullNameCI)
	}
}

func TestEnsureChurchAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := primitive.NewObjectID()
	existing := testutil.NewFixtures(t, db).CreateUser(ctx, church, "Existing User", "existing@grace.org", "member")

	u, err := ensureChurchAdmin(ctx, DBDeps{MongoDatabase: db}, church, "existing@grace.org", "ignored", testLogger())
	if err != nil {
		t.Fatalf("ensureChurchAdmin failed: %v", err)
	}
	if u.ID != existing.ID || u.Role != "admin" {
		t.Errorf("returned = %+v", u)
	}
	n, err := db.Collection("users").CountDocuments(ctx, bson.M{"church_id": church})
	if err != nil || n != 1 {
		t.Errorf("users in church = %d (%v), want 1", n, err)
	}
	var stored models.User
	_ = db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&stored)
	if stored.Role != "admin" || stored.FullName != "Existing User" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestBuildHandler_Routes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := validConfig()
	cfg.SessionName = "churchhub-session"
	cfg.JWTSecret = testutil.TestJWTSecret
	cfg.JWTIssuer = testutil.TestJWTIssuer
	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, DBDeps{MongoClient: db.Client(), MongoDatabase: db}, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	tests := []struct {
		method, target string
		auth           bool
		want           int
	}{
		{http.MethodGet, "/health", false, http.StatusOK},
		{http.MethodGet, "/nowhere", false, http.StatusNotFound},
		{http.MethodGet, "/church/groups", false, http.StatusUnauthorized},
		{http.MethodGet, "/church/groups", true, http.StatusOK},
		{http.MethodGet, "/church/departments", true, http.StatusOK},
		{http.MethodGet, "/church/announcements", true, http.StatusOK},
		{http.MethodGet, "/church/branches", true, http.StatusOK},
		{http.MethodGet, "/church/audit-events", true, http.StatusOK},
		{http.MethodGet, "/content", true, http.StatusOK},
		{http.MethodGet, "/church/overview", true, http.StatusOK},
		{http.MethodGet, "/me", true, http.StatusOK},
	}
	admin := testutil.Principal(primitive.NewObjectID(), "admin")
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.target, nil)
		if tt.auth {
			req.Header.Set("Authorization", testutil.BearerFor(t, admin))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.target, rec.Code, tt.want, rec.Body.String())
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s %s: missing X-Request-ID", tt.method, tt.target)
		}
	}
}
