// internal/app/store/announcements/announcementstore.go
package announcementstore

import (
	"context"
	"errors"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/search"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no announcement matches in the church.
var ErrNotFound = errors.New("announcement not found")

// ListFilter narrows List. Zero values mean "any".
type ListFilter struct {
	Search         string
	Category       models.AnnouncementCategory
	Priority       models.AnnouncementPriority
	Status         models.PublishStatus
	IncludeExpired bool
	BranchID       *primitive.ObjectID // restricts to church-wide plus this branch
	Now            time.Time
}

func (f ListFilter) bson(churchID primitive.ObjectID) bson.M {
	q := bson.M{"church_id": churchID}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	var and bson.A
	if !f.IncludeExpired {
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"expiry_date": bson.M{"$exists": false}},
			bson.M{"expiry_date": nil},
			bson.M{"expiry_date": bson.M{"$gte": f.Now}},
		}})
	}
	if f.BranchID != nil {
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"branch_id": bson.M{"$exists": false}},
			bson.M{"branch_id": *f.BranchID},
		}})
	}
	if q := search.Clean(f.Search); q != "" {
		and = append(and, search.AnyField(bson.M{}, q, "title", "content"))
	}
	if len(and) > 0 {
		q["$and"] = and
	}
	return q
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("announcements")}
}

// List returns one page of announcements, most urgent first and then newest
// publish date, plus the total number of matches.
func (s *Store) List(ctx context.Context, churchID primitive.ObjectID, f ListFilter, p paging.Params) ([]models.Announcement, int64, error) {
	q := f.bson(churchID)
	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := p.FindOptions().SetSort(bson.D{
		{Key: "priority_rank", Value: -1},
		{Key: "publish_date", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.Announcement{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID loads an announcement of the church.
func (s *Store) GetByID(ctx context.Context, churchID, id primitive.ObjectID) (models.Announcement, error) {
	var a models.Announcement
	err := s.c.FindOne(ctx, bson.M{"_id": id, "church_id": churchID}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return a, ErrNotFound
	}
	return a, err
}

// Create inserts a. ID, PriorityRank and timestamps are set here.
func (s *Store) Create(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.PriorityRank = a.Priority.Rank()
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

// Update applies set to the announcement and returns the stored result.
// A priority in set also refreshes the stored rank.
func (s *Store) Update(ctx context.Context, churchID, id primitive.ObjectID, set bson.M) (models.Announcement, error) {
	if p, ok := set["priority"].(models.AnnouncementPriority); ok {
		set["priority_rank"] = p.Rank()
	}
	set["updated_at"] = time.Now().UTC()
	var a models.Announcement
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "church_id": churchID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return a, ErrNotFound
	}
	return a, err
}

// Delete removes an announcement of the church.
func (s *Store) Delete(ctx context.Context, churchID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "church_id": churchID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
