// internal/app/store/activities/activitystore.go
package activitystore

import (
	"context"
	"errors"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/txn"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound        = errors.New("activity not found")
	ErrVersionConflict = txn.ErrVersionConflict
)

// Owner identifies what an activity belongs to.
type Owner struct {
	Field string // "branch_id", "group_id" or "department_id"
	ID    primitive.ObjectID
}

// Owner fields.
const (
	OwnerBranch     = "branch_id"
	OwnerGroup      = "group_id"
	OwnerDepartment = "department_id"
)

func BranchOwner(id primitive.ObjectID) Owner     { return Owner{Field: OwnerBranch, ID: id} }
func GroupOwner(id primitive.ObjectID) Owner      { return Owner{Field: OwnerGroup, ID: id} }
func DepartmentOwner(id primitive.ObjectID) Owner { return Owner{Field: OwnerDepartment, ID: id} }

func scope(churchID primitive.ObjectID, o Owner) bson.M {
	return bson.M{"church_id": churchID, o.Field: o.ID}
}

// ListFilter narrows List.
type ListFilter struct {
	Type            models.ActivityType
	Status          models.ActivityStatus
	From, To        *time.Time // inclusive
	IncludeInactive bool
}

func (f ListFilter) apply(q bson.M) bson.M {
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if !f.IncludeInactive {
		q["is_active"] = bson.M{"$ne": false}
	}
	if f.From != nil || f.To != nil {
		dq := bson.M{}
		if f.From != nil {
			dq["$gte"] = *f.From
		}
		if f.To != nil {
			dq["$lte"] = *f.To
		}
		q["date"] = dq
	}
	return q
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activities")}
}

// List returns one page of the owner's activities, newest date first.
func (s *Store) List(ctx context.Context, churchID primitive.ObjectID, o Owner, f ListFilter, p paging.Params) ([]models.Activity, int64, error) {
	q := f.apply(scope(churchID, o))
	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.c.Find(ctx, q, p.FindOptions().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.Activity{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// All returns every activity of the owner matching f, oldest first. Used by
// reports, which aggregate in memory.
func (s *Store) All(ctx context.Context, churchID primitive.ObjectID, o Owner, f ListFilter) ([]models.Activity, error) {
	cur, err := s.c.Find(ctx, f.apply(scope(churchID, o)),
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Activity{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads an activity of the owner.
func (s *Store) GetByID(ctx context.Context, churchID primitive.ObjectID, o Owner, id primitive.ObjectID) (models.Activity, error) {
	q := scope(churchID, o)
	q["_id"] = id
	var a models.Activity
	err := s.c.FindOne(ctx, q).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return a, ErrNotFound
	}
	return a, err
}

// Create inserts a scheduled, active activity.
func (s *Store) Create(ctx context.Context, a models.Activity) (models.Activity, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	if a.Status == "" {
		a.Status = models.ActivityScheduled
	}
	a.IsActive = true
	a.Version = 1
	if a.PlannedParticipants == nil {
		a.PlannedParticipants = []primitive.ObjectID{}
	}
	if a.ActualParticipants == nil {
		a.ActualParticipants = []primitive.ObjectID{}
	}
	if a.Attendance == nil {
		a.Attendance = []models.AttendanceRecord{}
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

// Update applies set and bumps the version so in-flight attendance saves
// based on the old state fail.
func (s *Store) Update(ctx context.Context, churchID primitive.ObjectID, o Owner, id primitive.ObjectID, set bson.M) (models.Activity, error) {
	set["updated_at"] = time.Now().UTC()
	q := scope(churchID, o)
	q["_id"] = id
	var a models.Activity
	err := s.c.FindOneAndUpdate(ctx, q,
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return a, ErrNotFound
	}
	return a, err
}

// Cancel marks the activity cancelled.
func (s *Store) Cancel(ctx context.Context, churchID primitive.ObjectID, o Owner, id primitive.ObjectID) (models.Activity, error) {
	return s.Update(ctx, churchID, o, id, bson.M{
		"status":       models.ActivityCancelled,
		"is_cancelled": true,
		"is_completed": false,
	})
}

// Save replaces a whole activity (attendance writes) if its version is
// unchanged since it was read. On success a.Version is advanced.
func (s *Store) Save(ctx context.Context, a *models.Activity) error {
	prev := a.Version
	a.Version = prev + 1
	a.UpdatedAt = time.Now().UTC()
	err := txn.SaveVersioned(ctx, s.c, bson.M{"_id": a.ID, "church_id": a.ChurchID}, prev, a)
	if err != nil {
		a.Version = prev
	}
	return err
}

// Delete removes an activity of the owner.
func (s *Store) Delete(ctx context.Context, churchID primitive.ObjectID, o Owner, id primitive.ObjectID) error {
	q := scope(churchID, o)
	q["_id"] = id
	res, err := s.c.DeleteOne(ctx, q)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOwner removes every activity of the owner.
func (s *Store) DeleteByOwner(ctx context.Context, churchID primitive.ObjectID, o Owner) (int64, error) {
	res, err := s.c.DeleteMany(ctx, scope(churchID, o))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
