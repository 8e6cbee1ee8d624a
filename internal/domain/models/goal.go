// internal/domain/models/goal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GoalStatus string

const (
	GoalPlanned    GoalStatus = "planned"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalCancelled  GoalStatus = "cancelled"
	GoalOnHold     GoalStatus = "on_hold"
)

var GoalStatuses = []GoalStatus{GoalPlanned, GoalInProgress, GoalCompleted, GoalCancelled, GoalOnHold}

func (s GoalStatus) Valid() bool { return oneOf(s, GoalStatuses) }

// Closed reports whether the goal no longer counts toward overdue/due-soon.
func (s GoalStatus) Closed() bool { return s == GoalCompleted || s == GoalCancelled }

type GoalPriority string

const (
	PriorityLow    GoalPriority = "low"
	PriorityMedium GoalPriority = "medium"
	PriorityHigh   GoalPriority = "high"
)

var GoalPriorities = []GoalPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (p GoalPriority) Valid() bool { return oneOf(p, GoalPriorities) }

// Rank orders priorities high > medium > low. Unknown values rank lowest.
func (p GoalPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Milestone is a checkpoint inside a goal.
type Milestone struct {
	Title       string     `bson:"title" json:"title"`
	Completed   bool       `bson:"completed" json:"completed"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}

// Goal is embedded in a group or department document (goals[]).
type Goal struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Status      GoalStatus           `bson:"status" json:"status"`
	Priority    GoalPriority         `bson:"priority" json:"priority"`
	Progress    int                  `bson:"progress" json:"progress"` // 0..100
	TargetDate  time.Time            `bson:"target_date" json:"targetDate"`
	Category    string               `bson:"category,omitempty" json:"category,omitempty"`
	AssignedTo  []primitive.ObjectID `bson:"assigned_to" json:"assignedTo"`
	Milestones  []Milestone          `bson:"milestones,omitempty" json:"milestones,omitempty"`
	CreatedBy   primitive.ObjectID   `bson:"created_by" json:"createdBy"`
	CompletedAt *time.Time           `bson:"completed_at,omitempty" json:"completedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// FindGoal returns the index of the goal with the given id, or -1.
func FindGoal(goals []Goal, id primitive.ObjectID) int {
	for i := range goals {
		if goals[i].ID == id {
			return i
		}
	}
	return -1
}
