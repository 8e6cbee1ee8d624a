// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
//
// Validation level is "moderate": documents written before a schema change
// are left alone until they are next updated.
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, log); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, log); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				log.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("branches", branchesSchema())
	ensure("service_schedules", schedulesSchema())
	ensure("announcements", announcementsSchema())
	ensure("activities", activitiesSchema())
	ensure("departments", departmentsSchema())
	ensure("groups", groupsSchema())
	ensure("content", contentSchema())

	// The audit trail is append-only and written by one code path.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, log *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		log.Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			log.Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		log.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	log.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	log.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	objectID = bson.M{"bsonType": "objectId"}
	number   = bson.M{"bsonType": "number", "minimum": 0}
	clock    = bson.M{"bsonType": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"}
)

func enum[T ~string](vals []T) bson.M {
	a := make(bson.A, len(vals))
	for i, v := range vals {
		a[i] = string(v)
	}
	return bson.M{"enum": a}
}

// arrayOf admits null because the driver encodes a nil slice as null.
func arrayOf(items bson.M) bson.M {
	return bson.M{"bsonType": bson.A{"array", "null"}, "items": items}
}

func object(required bson.A, props bson.M) bson.M {
	return bson.M{"bsonType": "object", "required": required, "properties": props}
}

func schema(required bson.A, props bson.M) bson.M {
	return bson.M{"$jsonSchema": object(required, props)}
}

func goalSchema() bson.M {
	return object(bson.A{"_id", "title", "status", "priority", "progress", "target_date"}, bson.M{
		"title":       nonBlank,
		"status":      enum(models.GoalStatuses),
		"priority":    enum(models.GoalPriorities),
		"progress":    bson.M{"bsonType": "number", "minimum": 0, "maximum": 100},
		"target_date": bson.M{"bsonType": "date"},
	})
}

func usersSchema() bson.M {
	return schema(bson.A{"church_id", "full_name", "role"}, bson.M{
		"church_id": objectID,
		"full_name": nonBlank,
		"role":      bson.M{"enum": bson.A{"admin", "pastor", "branch_admin", "leader", "member"}},
	})
}

func branchesSchema() bson.M {
	return schema(bson.A{"church_id", "name", "name_ci", "is_active"}, bson.M{
		"church_id": objectID,
		"name":      nonBlank,
		"name_ci":   nonBlank,
		"is_active": bson.M{"bsonType": "bool"},
	})
}

func schedulesSchema() bson.M {
	return schema(bson.A{"church_id", "branch_id", "service_name", "day", "time"}, bson.M{
		"church_id":    objectID,
		"branch_id":    objectID,
		"service_name": nonBlank,
		"day":          enum(models.Weekdays),
		"time":         clock,
	})
}

func announcementsSchema() bson.M {
	return schema(bson.A{"church_id", "title", "content", "category", "priority", "status", "publish_date"}, bson.M{
		"church_id":    objectID,
		"title":        nonBlank,
		"content":      nonBlank,
		"category":     enum(models.AnnouncementCategories),
		"priority":     enum(models.AnnouncementPriorities),
		"status":       enum(models.PublishStatuses),
		"publish_date": bson.M{"bsonType": "date"},
	})
}

func activitiesSchema() bson.M {
	return schema(bson.A{"church_id", "title", "type", "date", "status", "version"}, bson.M{
		"church_id": objectID,
		"title":     nonBlank,
		"type":      enum(models.ActivityTypes),
		"date":      bson.M{"bsonType": "date"},
		"status":    enum(models.ActivityStatuses),
		"attendance": arrayOf(object(bson.A{"user_id", "status"}, bson.M{
			"user_id": objectID,
			"status":  enum(models.AttendanceStatuses),
		})),
	})
}

func departmentsSchema() bson.M {
	return schema(bson.A{"church_id", "name", "name_ci", "total_budget", "version"}, bson.M{
		"church_id":    objectID,
		"name":         nonBlank,
		"name_ci":      nonBlank,
		"total_budget": number,
		"budget_categories": arrayOf(object(bson.A{"category", "allocated_amount", "spent_amount"}, bson.M{
			"category":         enum(models.ExpenseCategories),
			"allocated_amount": number,
			"spent_amount":     number,
		})),
		"expenses": arrayOf(object(bson.A{"_id", "category", "amount", "date"}, bson.M{
			"category": enum(models.ExpenseCategories),
			"amount":   bson.M{"bsonType": "number", "minimum": 0, "exclusiveMinimum": true},
			"date":     bson.M{"bsonType": "date"},
		})),
		"goals": arrayOf(goalSchema()),
	})
}

func groupsSchema() bson.M {
	return schema(bson.A{"church_id", "name", "name_ci", "version"}, bson.M{
		"church_id": objectID,
		"name":      nonBlank,
		"name_ci":   nonBlank,
		"members":   arrayOf(objectID),
		"goals":     arrayOf(goalSchema()),
	})
}

func contentSchema() bson.M {
	return schema(bson.A{"church_id", "title", "slug", "type", "status", "author_id"}, bson.M{
		"church_id": objectID,
		"title":     nonBlank,
		"slug":      bson.M{"bsonType": "string", "pattern": "^[a-z0-9]+(-[a-z0-9]+)*$"},
		"type":      enum(models.ContentTypes),
		"status":    enum(models.PublishStatuses),
		"author_id": objectID,
		"tags":      arrayOf(bson.M{"bsonType": "string"}),
	})
}
