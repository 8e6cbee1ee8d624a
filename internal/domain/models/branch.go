// internal/domain/models/branch.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Branch is a physical or organizational subdivision of a church. It scopes
// activities and service schedules.
type Branch struct {
	ID       primitive.ObjectID  `bson:"_id" json:"id"`
	ChurchID primitive.ObjectID  `bson:"church_id" json:"churchId"`
	Name     string              `bson:"name" json:"name"`
	NameCI   string              `bson:"name_ci" json:"-"`
	Address  string              `bson:"address,omitempty" json:"address,omitempty"`
	City     string              `bson:"city,omitempty" json:"city,omitempty"`
	Phone    string              `bson:"phone,omitempty" json:"phone,omitempty"`
	PastorID *primitive.ObjectID `bson:"pastor_id,omitempty" json:"pastorId,omitempty"`
	IsActive bool                `bson:"is_active" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ServiceSchedule is a recurring weekly service in a branch. Two active
// schedules in one branch may not share day and time.
type ServiceSchedule struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	ChurchID        primitive.ObjectID `bson:"church_id" json:"churchId"`
	BranchID        primitive.ObjectID `bson:"branch_id" json:"branchId"`
	ServiceName     string             `bson:"service_name" json:"serviceName"`
	Day             Weekday            `bson:"day" json:"day"`
	Time            string             `bson:"time" json:"time"` // HH:MM, 24h
	DurationMinutes int                `bson:"duration_minutes" json:"durationMinutes"`
	Location        string             `bson:"location,omitempty" json:"location,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive        bool               `bson:"is_active" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
