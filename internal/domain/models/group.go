// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a small group or ministry team inside a church.
//
// NOTE:
//   - Goals are embedded (goals[]) and saved with the group's version check.
//   - Activities live in the activities collection with group_id set.
type Group struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	ChurchID    primitive.ObjectID   `bson:"church_id" json:"churchId"`
	BranchID    *primitive.ObjectID  `bson:"branch_id,omitempty" json:"branchId,omitempty"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"`
	Description string               `bson:"description" json:"description"`
	LeaderID    *primitive.ObjectID  `bson:"leader_id,omitempty" json:"leaderId,omitempty"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	Goals       []Goal               `bson:"goals" json:"goals"`

	IsActive  bool      `bson:"is_active" json:"isActive"`
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
