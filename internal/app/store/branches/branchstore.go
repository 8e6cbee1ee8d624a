// internal/app/store/branches/branchstore.go
package branchstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/search"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound      = errors.New("branch not found")
	ErrDuplicateName = errors.New("a branch with this name already exists in the church")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("branches")}
}

// ListFilter narrows List.
type ListFilter struct {
	Search          string // name prefix
	IncludeInactive bool
	OnlyID          *primitive.ObjectID // branch admins see their own branch
}

// List returns one page of branches ordered by name.
func (s *Store) List(ctx context.Context, churchID primitive.ObjectID, f ListFilter, p paging.Params) ([]models.Branch, int64, error) {
	q := bson.M{"church_id": churchID}
	if !f.IncludeInactive {
		q["is_active"] = true
	}
	if f.OnlyID != nil {
		q["_id"] = *f.OnlyID
	}
	if term := search.Clean(f.Search); term != "" {
		q["name_ci"] = search.Prefix(term)
	}
	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.c.Find(ctx, q, p.FindOptions().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.Branch{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID loads a branch of the church, active or not.
func (s *Store) GetByID(ctx context.Context, churchID, id primitive.ObjectID) (models.Branch, error) {
	var b models.Branch
	err := s.c.FindOne(ctx, bson.M{"_id": id, "church_id": churchID}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return b, ErrNotFound
	}
	return b, err
}

// Create inserts an active branch.
func (s *Store) Create(ctx context.Context, b models.Branch) (models.Branch, error) {
	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	b.NameCI = text.Fold(b.Name)
	b.IsActive = true
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Branch{}, ErrDuplicateName
		}
		return models.Branch{}, err
	}
	return b, nil
}

// Update applies set and returns the stored branch. A name in set also
// refreshes name_ci.
func (s *Store) Update(ctx context.Context, churchID, id primitive.ObjectID, set bson.M) (models.Branch, error) {
	if name, ok := set["name"].(string); ok {
		set["name_ci"] = text.Fold(name)
	}
	set["updated_at"] = time.Now().UTC()
	var b models.Branch
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "church_id": churchID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return b, ErrNotFound
	case wafflemongo.IsDup(err):
		return b, ErrDuplicateName
	}
	return b, err
}

// Delete removes a branch of the church.
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
