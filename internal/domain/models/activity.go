// internal/domain/models/activity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityType string

const (
	ActivityService    ActivityType = "service"
	ActivityMeeting    ActivityType = "meeting"
	ActivityEvent      ActivityType = "event"
	ActivityOutreach   ActivityType = "outreach"
	ActivityTraining   ActivityType = "training"
	ActivityFellowship ActivityType = "fellowship"
	ActivityPrayer     ActivityType = "prayer"
	ActivityOther      ActivityType = "other"
)

var ActivityTypes = []ActivityType{
	ActivityService, ActivityMeeting, ActivityEvent, ActivityOutreach,
	ActivityTraining, ActivityFellowship, ActivityPrayer, ActivityOther,
}

func (t ActivityType) Valid() bool { return oneOf(t, ActivityTypes) }

type ActivityStatus string

const (
	ActivityScheduled ActivityStatus = "scheduled"
	ActivityCompleted ActivityStatus = "completed"
	ActivityCancelled ActivityStatus = "cancelled"
)

var ActivityStatuses = []ActivityStatus{ActivityScheduled, ActivityCompleted, ActivityCancelled}

func (s ActivityStatus) Valid() bool { return oneOf(s, ActivityStatuses) }

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

var AttendanceStatuses = []AttendanceStatus{AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused}

func (s AttendanceStatus) Valid() bool { return oneOf(s, AttendanceStatuses) }

// Attended reports whether the status counts as taking part.
func (s AttendanceStatus) Attended() bool { return s == AttendancePresent || s == AttendanceLate }

// AttendanceRecord is embedded in an activity (attendance[]).
// At most one record exists per user.
type AttendanceRecord struct {
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Status      AttendanceStatus   `bson:"status" json:"status"`
	ArrivalTime *time.Time         `bson:"arrival_time,omitempty" json:"arrivalTime,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	RecordedBy  primitive.ObjectID `bson:"recorded_by" json:"recordedBy"`
	RecordedAt  time.Time          `bson:"recorded_at" json:"recordedAt"`
}

// Activity belongs to a branch, department, or group (at least one scope id set).
//
// ActualParticipants is derived from Attendance and is rewritten on every
// attendance change; never edit it directly.
type Activity struct {
	ID           primitive.ObjectID  `bson:"_id" json:"id"`
	ChurchID     primitive.ObjectID  `bson:"church_id" json:"churchId"`
	BranchID     *primitive.ObjectID `bson:"branch_id,omitempty" json:"branchId,omitempty"`
	DepartmentID *primitive.ObjectID `bson:"department_id,omitempty" json:"departmentId,omitempty"`
	GroupID      *primitive.ObjectID `bson:"group_id,omitempty" json:"groupId,omitempty"`

	Title       string       `bson:"title" json:"title"`
	Description string       `bson:"description,omitempty" json:"description,omitempty"`
	Type        ActivityType `bson:"type" json:"type"`
	Date        time.Time    `bson:"date" json:"date"`
	StartTime   string       `bson:"start_time,omitempty" json:"startTime,omitempty"`
	EndTime     string       `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Location    string       `bson:"location,omitempty" json:"location,omitempty"`

	OrganizerID         *primitive.ObjectID  `bson:"organizer_id,omitempty" json:"organizerId,omitempty"`
	PlannedParticipants []primitive.ObjectID `bson:"planned_participants" json:"plannedParticipants"`
	ActualParticipants  []primitive.ObjectID `bson:"actual_participants" json:"actualParticipants"`
	Attendance          []AttendanceRecord   `bson:"attendance" json:"attendance"`

	Status      ActivityStatus `bson:"status" json:"status"`
	IsCompleted bool           `bson:"is_completed" json:"isCompleted"`
	IsCancelled bool           `bson:"is_cancelled" json:"isCancelled"`
	IsActive    bool           `bson:"is_active" json:"isActive"`

	Version   int64              `bson:"version" json:"version"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}
