// internal/app/store/departments/departmentstore.go
package departmentstore

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound        = errors.New("department not found")
	ErrDuplicateName   = errors.New("a department with this name already exists in the church")
	ErrVersionConflict = txn.ErrVersionConflict
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("departments")}
}

// ListFilter narrows List.
type ListFilter struct {
	Search          string
	BranchID        *primitive.ObjectID
	IncludeInactive bool
}

// listProjection leaves out the embedded arrays, which can be large.
var listProjection = bson.M{"expenses": 0, "goals": 0}

// List returns one page of departments by name. Expenses and goals are not
// loaded.
func (s *Store) List(ctx context.Context, churchID primitive.ObjectID, f ListFilter, p paging.Params) ([]models.Department, int64, error) {
	q := bson.M{"church_id": churchID}
	if !f.IncludeInactive {
		q["is_active"] = true
	}
	if f.BranchID != nil {
		q["branch_id"] = *f.BranchID
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
		SetProjection(listProjection)
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.Department{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID loads a whole department of the church.
func (s *Store) GetByID(ctx context.Context, churchID, id primitive.ObjectID) (models.Department, error) {
	var d models.Department
	err := s.c.FindOne(ctx, bson.M{"_id": id, "church_id": churchID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return d, ErrNotFound
	}
	return d, err
}

// Create inserts an active department with empty expense and goal lists.
func (s *Store) Create(ctx context.Context, d models.Department) (models.Department, error) {
	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.NameCI = text.Fold(d.Name)
	d.IsActive = true
	d.Version = 1
	if d.BudgetCategories == nil {
		d.BudgetCategories = []models.BudgetCategory{}
	}
	d.Expenses = []models.Expense{}
	d.Goals = []models.Goal{}
	d.CreatedAt = now
	d.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Department{}, ErrDuplicateName
		}
		return models.Department{}, err
	}
	return d, nil
}

// UpdateInfo applies set to top-level fields and bumps the version.
func (s *Store) UpdateInfo(ctx context.Context, churchID, id primitive.ObjectID, set bson.M) (models.Department, error) {
	if name, ok := set["name"].(string); ok {
		set["name_ci"] = text.Fold(name)
	}
	set["updated_at"] = time.Now().UTC()
	var d models.Department
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "church_id": churchID},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return d, ErrNotFound
	case wafflemongo.IsDup(err):
		return d, ErrDuplicateName
	}
	return d, err
}

// Save replaces the whole department (expense and goal edits) if its version
// is unchanged since it was read. On success d.Version is advanced.
func (s *Store) Save(ctx context.Context, d *models.Department) error {
	prev := d.Version
	d.Version = prev + 1
	d.UpdatedAt = time.Now().UTC()
	err := txn.SaveVersioned(ctx, s.c, bson.M{"_id": d.ID, "church_id": d.ChurchID}, prev, d)
	if err != nil {
		d.Version = prev
	}
	return err
}
