package userstore

import (
	"context"
	"errors"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no user matches in the church.
var ErrNotFound = errors.New("user not found")

// Summary is the populated form of a user reference in API responses.
type Summary struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"full_name" json:"fullName"`
	Email    string             `bson:"email" json:"email"`
}

var summaryProjection = bson.M{"_id": 1, "full_name": 1, "email": 1}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user of the church.
func (s *Store) GetByID(ctx context.Context, churchID, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id, "church_id": churchID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// Summaries returns the summaries of ids that belong to the church, keyed by
// id. Unknown ids are simply absent.
func (s *Store) Summaries(ctx context.Context, churchID primitive.ObjectID, ids []primitive.ObjectID) (map[primitive.ObjectID]Summary, error) {
	out := make(map[primitive.ObjectID]Summary, len(ids))
	ids = unique(ids)
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx,
		bson.M{"church_id": churchID, "_id": bson.M{"$in": ids}},
		options.Find().SetProjection(summaryProjection))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var sum Summary
		if err := cur.Decode(&sum); err != nil {
			return nil, err
		}
		out[sum.ID] = sum
	}
	return out, cur.Err()
}

// Missing returns the ids that are not users of the church, in input order.
func (s *Store) Missing(ctx context.Context, churchID primitive.ObjectID, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	found, err := s.Summaries(ctx, churchID, ids)
	if err != nil {
		return nil, err
	}
	var missing []primitive.ObjectID
	for _, id := range unique(ids) {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func unique(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
