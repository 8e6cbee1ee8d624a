// internal/app/store/content/contentstore.go
package contentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/search"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("content not found")
	// ErrSlugExhausted means every suffixed variant of a slug was taken.
	ErrSlugExhausted = errors.New("could not allocate a unique slug")
)

// maxSlugAttempts bounds the -2, -3, ... suffixes tried by Create.
const maxSlugAttempts = 50

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("content")}
}

// ListFilter narrows List. PublicOnly restricts to published public items
// regardless of Status.
type ListFilter struct {
	Type       models.ContentType
	Status     models.PublishStatus
	Tag        string
	Search     string
	PublicOnly bool
	BranchID   *primitive.ObjectID // church-wide plus this branch
}

func (f ListFilter) bson(churchID primitive.ObjectID) bson.M {
	q := bson.M{"church_id": churchID}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.PublicOnly {
		q["status"] = models.StatusPublished
		q["is_public"] = true
	}
	if f.Tag != "" {
		q["tags"] = f.Tag
	}
	var and bson.A
	if f.BranchID != nil {
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"branch_id": bson.M{"$exists": false}},
			bson.M{"branch_id": *f.BranchID},
		}})
	}
	if term := search.Clean(f.Search); term != "" {
		and = append(and, search.AnyField(bson.M{}, term, "title", "body"))
	}
	if len(and) > 0 {
		q["$and"] = and
	}
	return q
}

// List returns one page of content, newest first.
func (s *Store) List(ctx context.Context, churchID primitive.ObjectID, f ListFilter, p paging.Params) ([]models.Content, int64, error) {
	q := f.bson(churchID)
	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := p.FindOptions().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.Content{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) GetByID(ctx context.Context, churchID, id primitive.ObjectID) (models.Content, error) {
	var c models.Content
	err := s.c.FindOne(ctx, bson.M{"_id": id, "church_id": churchID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c, ErrNotFound
	}
	return c, err
}

// Create inserts c under a slug unique within its church. c.Slug is the
// base; on collision "-2", "-3", ... are appended. The unique index on
// (church_id, slug) arbitrates concurrent creates.
func (s *Store) Create(ctx context.Context, c models.Content) (models.Content, error) {
	now := time.Now().UTC()
	c.TitleCI = text.Fold(c.Title)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Status == models.StatusPublished && c.PublishedAt == nil {
		c.PublishedAt = &now
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	base := c.Slug
	for i := 1; i <= maxSlugAttempts; i++ {
		c.ID = primitive.NewObjectID()
		if i > 1 {
			c.Slug = fmt.Sprintf("%s-%d", base, i)
		}
		_, err := s.c.InsertOne(ctx, c)
		if err == nil {
			return c, nil
		}
		if !wafflemongo.IsDup(err) {
			return models.Content{}, err
		}
	}
	return models.Content{}, ErrSlugExhausted
}
