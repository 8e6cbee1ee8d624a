// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/search"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/txn"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound           = errors.New("group not found")
	ErrDuplicateGroupName = errors.New("a group with this name already exists in the church")
	ErrVersionConflict    = txn.ErrVersionConflict
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

// ListFilter narrows List.
type ListFilter struct {
	Search          string
	BranchID        *primitive.ObjectID
	MemberID        *primitive.ObjectID // groups the user leads or belongs to
	IncludeInactive bool
}

// List returns one page of groups by name, without their goals.
func (s *Store) List(ctx context.Context, churchID primitive.ObjectID, f ListFilter, p paging.Params) ([]models.Group, int64, error) {
	q := bson.M{"church_id": churchID}
	if !f.IncludeInactive {
		q["is_active"] = true
	}
	if f.BranchID != nil {
		q["branch_id"] = *f.BranchID
	}
	if f.MemberID != nil {
		q["$or"] = bson.A{bson.M{"leader_id": *f.MemberID}, bson.M{"members": *f.MemberID}}
	}
	if term := search.Clean(f.Search); term != "" {
		q["name_ci"] = search.Prefix(term)
	}
	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := p.FindOptions().
		SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"goals": 0})
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.Group{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) GetByID(ctx context.Context, churchID, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"_id": id, "church_id": churchID}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return g, ErrNotFound
	}
	return g, err
}

func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.IsActive = true
	g.Version = 1
	if g.Members == nil {
		g.Members = []primitive.ObjectID{}
	}
	g.Goals = []models.Goal{}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroupName
		}
		return models.Group{}, err
	}
	return g, nil
}

// Save replaces the whole group (goal edits) if its version is unchanged
// since it was read. On success g.Version is advanced.
func (s *Store) Save(ctx context.Context, g *models.Group) error {
	prev := g.Version
	g.Version = prev + 1
	g.UpdatedAt = time.Now().UTC()
	err := txn.SaveVersioned(ctx, s.c, bson.M{"_id": g.ID, "church_id": g.ChurchID}, prev, g)
	if err != nil {
		g.Version = prev
	}
	return err
}
