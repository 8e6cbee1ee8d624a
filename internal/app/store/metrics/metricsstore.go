// internal/app/store/metrics/metricsstore.go
package metricsstore

import (
	"context"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of church-wide totals shown on the staff overview.
type Counts struct {
	Branches            int64 `json:"branches"`
	Departments         int64 `json:"departments"`
	Groups              int64 `json:"groups"`
	Leaders             int64 `json:"leaders"`
	Members             int64 `json:"members"`
	UpcomingActivities  int64 `json:"upcomingActivities"`
	ActiveAnnouncements int64 `json:"activeAnnouncements"`
	PublishedContent    int64 `json:"publishedContent"`
}

// Personal is what a leader or member sees about their own involvement.
type Personal struct {
	Groups             int64 `json:"groups"`
	GroupsLed          int64 `json:"groupsLed"`
	UpcomingActivities int64 `json:"upcomingActivities"`
}

// Scope pins counts to one church and, for branch admins, one branch.
type Scope struct {
	ChurchID primitive.ObjectID
	BranchID *primitive.ObjectID
}

func (s Scope) filter(kv bson.M) bson.M {
	f := bson.M{"church_id": s.ChurchID}
	if s.BranchID != nil {
		f["branch_id"] = *s.BranchID
	}
	for k, v := range kv {
		f[k] = v
	}
	return f
}

// FetchChurchCounts returns the overview totals.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchChurchCounts(ctx context.Context, db *mongo.Database, s Scope, now time.Time) Counts {
	var out Counts
	count := func(dst *int64, coll string, f bson.M) {
		if n, err := db.Collection(coll).CountDocuments(ctx, f); err == nil {
			*dst = n
		}
	}

	branchFilter := bson.M{"church_id": s.ChurchID, "is_active": true}
	if s.BranchID != nil {
		branchFilter["_id"] = *s.BranchID
	}
	count(&out.Branches, "branches", branchFilter)
	count(&out.Departments, "departments", s.filter(bson.M{"is_active": true}))
	count(&out.Groups, "groups", s.filter(bson.M{"is_active": true}))
	count(&out.Leaders, "users", s.filter(bson.M{"role": "leader"}))
	count(&out.Members, "users", s.filter(bson.M{"role": "member"}))
	count(&out.UpcomingActivities, "activities", s.filter(bson.M{
		"status": models.ActivityScheduled,
		"date":   bson.M{"$gte": now},
	}))
	count(&out.ActiveAnnouncements, "announcements", s.filter(bson.M{
		"status":       models.StatusPublished,
		"publish_date": bson.M{"$lte": now},
		"$or": bson.A{
			bson.M{"expiry_date": bson.M{"$exists": false}},
			bson.M{"expiry_date": bson.M{"$gte": now}},
		},
	}))
	count(&out.PublishedContent, "content", s.filter(bson.M{"status": models.StatusPublished}))
	return out
}

// FetchPersonalCounts returns userID's involvement within churchID.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchPersonalCounts(ctx context.Context, db *mongo.Database, churchID, userID primitive.ObjectID, now time.Time) Personal {
	var out Personal
	count := func(dst *int64, coll string, f bson.M) {
		f["church_id"] = churchID
		if n, err := db.Collection(coll).CountDocuments(ctx, f); err == nil {
			*dst = n
		}
	}
	count(&out.Groups, "groups", bson.M{"is_active": true, "$or": bson.A{
		bson.M{"members": userID},
		bson.M{"leader_id": userID},
	}})
	count(&out.GroupsLed, "groups", bson.M{"is_active": true, "leader_id": userID})
	count(&out.UpcomingActivities, "activities", bson.M{
		"status": models.ActivityScheduled,
		"date":   bson.M{"$gte": now},
		"$or": bson.A{
			bson.M{"planned_participants": userID},
			bson.M{"organizer_id": userID},
		},
	})
	return out
}
