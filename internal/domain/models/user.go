// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a church member or staff account. Credentials are issued by the
// external auth service; this collection only backs name/email lookups and
// tenant membership checks.
type User struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ChurchID   primitive.ObjectID  `bson:"church_id" json:"churchId"`
	BranchID   *primitive.ObjectID `bson:"branch_id,omitempty" json:"branchId,omitempty"`
	FullName   string              `bson:"full_name" json:"fullName"`
	FullNameCI string              `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email      string              `bson:"email" json:"email"`
	Role       string              `bson:"role" json:"role"` // admin | pastor | branch_admin | leader | member
	Status     string              `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
