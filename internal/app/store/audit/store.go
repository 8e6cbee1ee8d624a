// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventAccessDenied = "access_denied"
)

// Admin event types
const (
	EventAnnouncementCreated = "announcement_created"
	EventAnnouncementUpdated = "announcement_updated"
	EventAnnouncementDeleted = "announcement_deleted"
	EventBranchCreated       = "branch_created"
	EventBranchUpdated       = "branch_updated"
	EventBranchDeactivated   = "branch_deactivated"
	EventBranchDeleted       = "branch_deleted"
	EventScheduleCreated     = "service_schedule_created"
	EventScheduleUpdated     = "service_schedule_updated"
	EventScheduleDeleted     = "service_schedule_deleted"
	EventActivityCreated     = "activity_created"
	EventActivityUpdated     = "activity_updated"
	EventActivityCancelled   = "activity_cancelled"
	EventActivityDeleted     = "activity_deleted"
	EventAttendanceRecorded  = "attendance_recorded"
	EventDepartmentCreated   = "department_created"
	EventDepartmentUpdated   = "department_updated"
	EventExpenseCreated      = "expense_created"
	EventExpenseUpdated      = "expense_updated"
	EventExpenseDeleted      = "expense_deleted"
	EventGoalCreated         = "goal_created"
	EventGoalUpdated         = "goal_updated"
	EventGoalDeleted         = "goal_deleted"
	EventGroupCreated        = "group_created"
	EventGroupUpdated        = "group_updated"
	EventGroupMemberAdded    = "group_member_added"
	EventGroupMemberRemoved  = "group_member_removed"
	EventContentCreated      = "content_created"
)

// Event is one audit trail entry.
type Event struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time           `bson:"timestamp" json:"timestamp"`
	ChurchID  *primitive.ObjectID `bson:"church_id,omitempty" json:"churchId,omitempty"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"eventType"`

	ActorID    *primitive.ObjectID `bson:"actor_id,omitempty" json:"actorId,omitempty"`
	ActorRole  string              `bson:"actor_role,omitempty" json:"actorRole,omitempty"`
	TargetID   *primitive.ObjectID `bson:"target_id,omitempty" json:"targetId,omitempty"` // record acted on
	TargetKind string              `bson:"target_kind,omitempty" json:"targetKind,omitempty"`

	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	RequestID string `bson:"request_id,omitempty" json:"requestId,omitempty"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failureReason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter narrows Query and Count.
type QueryFilter struct {
	ChurchID  *primitive.ObjectID
	ActorID   *primitive.ObjectID
	TargetID  *primitive.ObjectID
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) bson() bson.M {
	q := bson.M{}
	if f.ChurchID != nil {
		q["church_id"] = *f.ChurchID
	}
	if f.ActorID != nil {
		q["actor_id"] = *f.ActorID
	}
	if f.TargetID != nil {
		q["target_id"] = *f.TargetID
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	if f.StartTime != nil || f.EndTime != nil {
		tq := bson.M{}
		if f.StartTime != nil {
			tq["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			tq["$lte"] = *f.EndTime
		}
		q["timestamp"] = tq
	}
	return q
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query returns events matching the filter, newest first. Limit defaults to 100.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cur, err := s.c.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns the number of events matching the filter.
func (s *Store) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.bson())
}

// DeleteBefore removes events older than cutoff and returns how many went.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
