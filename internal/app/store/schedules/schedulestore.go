// internal/app/store/schedules/schedulestore.go
package schedulestore

import (
	"context"
	"errors"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("service schedule not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("service_schedules")}
}

func scope(churchID, branchID primitive.ObjectID) bson.M {
	return bson.M{"church_id": churchID, "branch_id": branchID}
}

// List returns a branch's schedules ordered by weekday then time.
func (s *Store) List(ctx context.Context, churchID, branchID primitive.ObjectID, includeInactive bool) ([]models.ServiceSchedule, error) {
	q := scope(churchID, branchID)
	if !includeInactive {
		q["is_active"] = true
	}
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "time", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.ServiceSchedule{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	sortByWeekday(out)
	return out, nil
}

// weekday names do not sort alphabetically, so order in memory.
func sortByWeekday(ss []models.ServiceSchedule) {
	rank := make(map[models.Weekday]int, len(models.Weekdays))
	for i, d := range models.Weekdays {
		rank[d] = i
	}
	// insertion sort keeps the time order from the query for equal days
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && rank[ss[j].Day] < rank[ss[j-1].Day]; j-- {
			ss[j], ss[j-1] = ss[j-1], ss[j]
		}
	}
}

// GetByID loads a schedule of the branch.
func (s *Store) GetByID(ctx context.Context, churchID, branchID, id primitive.ObjectID) (models.ServiceSchedule, error) {
	var sc models.ServiceSchedule
	q := scope(churchID, branchID)
	q["_id"] = id
	err := s.c.FindOne(ctx, q).Decode(&sc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sc, ErrNotFound
	}
	return sc, err
}

// FindConflict returns another active schedule of the branch at the same day
// and time, or nil. exclude skips the schedule being edited.
func (s *Store) FindConflict(ctx context.Context, churchID, branchID primitive.ObjectID, day models.Weekday, clock string, exclude *primitive.ObjectID) (*models.ServiceSchedule, error) {
	q := scope(churchID, branchID)
	q["is_active"] = true
	q["day"] = day
	q["time"] = clock
	if exclude != nil {
		q["_id"] = bson.M{"$ne": *exclude}
	}
	var sc models.ServiceSchedule
	err := s.c.FindOne(ctx, q).Decode(&sc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// Create inserts an active schedule.
func (s *Store) Create(ctx context.Context, sc models.ServiceSchedule) (models.ServiceSchedule, error) {
	now := time.Now().UTC()
	sc.ID = primitive.NewObjectID()
	sc.IsActive = true
	sc.CreatedAt = now
	sc.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, sc); err != nil {
		return models.ServiceSchedule{}, err
	}
	return sc, nil
}

// Update applies set and returns the stored schedule.
func (s *Store) Update(ctx context.Context, churchID, branchID, id primitive.ObjectID, set bson.M) (models.ServiceSchedule, error) {
	set["updated_at"] = time.Now().UTC()
	q := scope(churchID, branchID)
	q["_id"] = id
	var sc models.ServiceSchedule
	err := s.c.FindOneAndUpdate(ctx, q, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&sc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sc, ErrNotFound
	}
	return sc, err
}

// Deactivate soft-deletes a schedule.
func (s *Store) Deactivate(ctx context.Context, churchID, branchID, id primitive.ObjectID) (models.ServiceSchedule, error) {
	return s.Update(ctx, churchID, branchID, id, bson.M{"is_active": false})
}

// Delete removes a schedule permanently.
func (s *Store) Delete(ctx context.Context, churchID, branchID, id primitive.ObjectID) error {
	q := scope(churchID, branchID)
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

// DeleteByBranch removes every schedule of a branch. Returns the number deleted.
func (s *Store) DeleteByBranch(ctx context.Context, churchID, branchID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, scope(churchID, branchID))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeactivateByBranch soft-deletes every schedule of a branch.
func (s *Store) DeactivateByBranch(ctx context.Context, churchID, branchID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx, scope(churchID, branchID),
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
