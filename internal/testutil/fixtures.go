package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context. Calls may
// be chained to set several parameters.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create test %s: %v", coll, err)
	}
}

// Church returns a fresh tenant id. Churches are owned by the identity
// service; only the id matters here.
func (f *Fixtures) Church() primitive.ObjectID {
	return primitive.NewObjectID()
}

// CreateUser creates a user in church.
func (f *Fixtures) CreateUser(ctx context.Context, churchID primitive.ObjectID, fullName, email, role string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		ChurchID:   churchID,
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateBranch creates an active branch.
func (f *Fixtures) CreateBranch(ctx context.Context, churchID primitive.ObjectID, name string) models.Branch {
	f.t.Helper()
	now := time.Now().UTC()
	b := models.Branch{
		ID:        primitive.NewObjectID(),
		ChurchID:  churchID,
		Name:      name,
		NameCI:    text.Fold(name),
		City:      "Nairobi",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "branches", b)
	return b
}

// CreateSchedule creates an active service schedule in a branch.
func (f *Fixtures) CreateSchedule(ctx context.Context, b models.Branch, name string, day models.Weekday, clock string) models.ServiceSchedule {
	f.t.Helper()
	now := time.Now().UTC()
	s := models.ServiceSchedule{
		ID:              primitive.NewObjectID(),
		ChurchID:        b.ChurchID,
		BranchID:        b.ID,
		ServiceName:     name,
		Day:             day,
		Time:            clock,
		DurationMinutes: 90,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.insert(ctx, "service_schedules", s)
	return s
}

// CreateDepartment creates an active department with the given total budget.
func (f *Fixtures) CreateDepartment(ctx context.Context, churchID primitive.ObjectID, name string, totalBudget float64) models.Department {
	f.t.Helper()
	now := time.Now().UTC()
	d := models.Department{
		ID:               primitive.NewObjectID(),
		ChurchID:         churchID,
		Name:             name,
		NameCI:           text.Fold(name),
		TotalBudget:      totalBudget,
		BudgetCategories: []models.BudgetCategory{},
		Expenses:         []models.Expense{},
		Goals:            []models.Goal{},
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.insert(ctx, "departments", d)
	return d
}

// CreateGroup creates an active group with the given members.
func (f *Fixtures) CreateGroup(ctx context.Context, churchID primitive.ObjectID, name string, members ...primitive.ObjectID) models.Group {
	f.t.Helper()
	now := time.Now().UTC()
	if members == nil {
		members = []primitive.ObjectID{}
	}
	g := models.Group{
		ID:        primitive.NewObjectID(),
		ChurchID:  churchID,
		Name:      name,
		NameCI:    text.Fold(name),
		Members:   members,
		Goals:     []models.Goal{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "groups", g)
	return g
}

// CreateActivity stores a scheduled meeting. mutate, when non-nil, adjusts
// the activity (scope ids, participants) before insert.
func (f *Fixtures) CreateActivity(ctx context.Context, churchID primitive.ObjectID, title string, date time.Time, mutate func(*models.Activity)) models.Activity {
	f.t.Helper()
	now := time.Now().UTC()
	a := models.Activity{
		ID:                  primitive.NewObjectID(),
		ChurchID:            churchID,
		Title:               title,
		Type:                models.ActivityMeeting,
		Date:                date,
		PlannedParticipants: []primitive.ObjectID{},
		ActualParticipants:  []primitive.ObjectID{},
		Attendance:          []models.AttendanceRecord{},
		Status:              models.ActivityScheduled,
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if mutate != nil {
		mutate(&a)
	}
	f.insert(ctx, "activities", a)
	return a
}
