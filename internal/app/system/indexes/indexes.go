// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"branches", ensureBranches},
		{"announcements", ensureAnnouncements},
		{"service_schedules", ensureServiceSchedules},
		{"activities", ensureActivities},
		{"departments", ensureDepartments},
		{"groups", ensureGroups},
		{"content", ensureContent},
		{"audit_events", ensureAuditEvents},
	}

	var problems []string
	for _, s := range sets {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av, bv := a != nil && *a, b != nil && *b
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB return IndexOptionsConflict when an index with the same keys
// already exists under a different name or with different options.
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

// desired is the normalized view of one IndexModel.
type desired struct {
	model  mongo.IndexModel
	name   string
	unique *bool
	sig    string
}

func describe(m mongo.IndexModel) desired {
	d := desired{model: m, sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = m.Options.Unique
	}
	return d
}

func (d desired) isUnique() bool { return d.unique != nil && *d.unique }

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

// createError explains a failed create. Unique indexes that cannot be built
// because of existing duplicates get a finder query for the offending keys.
func createError(coll *mongo.Collection, d desired, err error) string {
	if isDuplicateKeyErr(err) && d.isUnique() {
		group := make([]string, 0)
		for _, kv := range d.model.Keys.(bson.D) {
			group = append(group, fmt.Sprintf("%s: \"$%s\"", kv.Key, kv.Key))
		}
		return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present); finder: "+
			"db.%s.aggregate([{ $group: { _id: { %s }, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])",
			coll.Name(), d.name, coll.Name(), strings.Join(group, ", "))
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), d.name, err)
}

// replace drops ex and creates d in its place.
func replace(ctx context.Context, coll *mongo.Collection, ex existingIndex, d desired) error {
	if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
		zap.L().Warn("drop existing index failed",
			zap.String("collection", coll.Name()),
			zap.String("name", ex.Name),
			zap.Error(err))
		return fmt.Errorf("%s(%s): drop %s failed: %v", coll.Name(), d.name, ex.Name, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, d.model); err != nil {
		return errors.New(createError(coll, d, err))
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		d := describe(m)
		start := time.Now()
		logFields := func(extra ...zap.Field) []zap.Field {
			return append([]zap.Field{
				zap.String("collection", coll.Name()),
				zap.String("name", d.name),
				zap.String("keys", d.sig),
				zap.Bool("unique", d.isUnique()),
				zap.String("took", time.Since(start).String()),
			}, extra...)
		}

		ex, found := listExisting(ctx, coll)[d.sig]
		if !found {
			_, err := coll.Indexes().CreateOne(ctx, m)
			if err == nil {
				zap.L().Info("index ensured", logFields()...)
				continue
			}
			if !isOptionsConflictErr(err) {
				zap.L().Warn("index ensure failed", logFields(zap.Error(err))...)
				errs = append(errs, createError(coll, d, err))
				continue
			}
			// Raced with another creator or the key set was renamed; re-read.
			ex, found = listExisting(ctx, coll)[d.sig]
			if !found {
				zap.L().Warn("index ensure failed", logFields(zap.Error(err))...)
				errs = append(errs, createError(coll, d, err))
				continue
			}
		}

		switch {
		case !sameBoolPtr(d.unique, ex.Unique):
			// Options differ (e.g. upgrading to unique): drop & recreate.
			if err := replace(ctx, coll, ex, d); err != nil {
				errs = append(errs, err.Error())
				continue
			}
			zap.L().Info("index dropped and recreated", logFields()...)
		case d.name != "" && ex.Name != d.name:
			if err := replace(ctx, coll, ex, d); err != nil {
				errs = append(errs, err.Error())
				continue
			}
			zap.L().Info("index renamed", logFields(zap.String("from", ex.Name))...)
		default:
			zap.L().Debug("reusing existing index", logFields()...)
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		// Summaries are looked up by _id inside a church.
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_church__id"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_church_email"),
		},
	})
}

func ensureBranches(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("branches"), []mongo.IndexModel{
		// No two branches of a church share a (folded) name.
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_branches_church_nameci"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "is_active", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_branches_church_active_nameci"),
		},
	})
}

func ensureAnnouncements(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("announcements"), []mongo.IndexModel{
		// Default listing: status filter, then priority/publish date sort.
		{
			Keys: bson.D{
				{Key: "church_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "priority_rank", Value: -1},
				{Key: "publish_date", Value: -1},
			},
			Options: options.Index().SetName("idx_ann_church_status_priority_publish"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "expiry_date", Value: 1}},
			Options: options.Index().SetName("idx_ann_church_expiry"),
		},
	})
}

func ensureServiceSchedules(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("service_schedules"), []mongo.IndexModel{
		// Conflict lookup: active schedule at the same day/time in a branch.
		{
			Keys: bson.D{
				{Key: "church_id", Value: 1},
				{Key: "branch_id", Value: 1},
				{Key: "is_active", Value: 1},
				{Key: "day", Value: 1},
				{Key: "time", Value: 1},
			},
			Options: options.Index().SetName("idx_sched_church_branch_active_day_time"),
		},
	})
}

func ensureActivities(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("activities")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "branch_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_act_church_branch_date"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "group_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_act_church_group_date"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "department_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_act_church_dept_date"),
		},
	})
}

func ensureDepartments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("departments"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_dept_church_nameci"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "branch_id", Value: 1}},
			Options: options.Index().SetName("idx_dept_church_branch"),
		},
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("groups"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_group_church_nameci"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "branch_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("idx_groups_church_branch_active"),
		},
	})
}

func ensureContent(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("content"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_content_church_slug"),
		},
		// Public listing: published + public, newest first.
		{
			Keys: bson.D{
				{Key: "church_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "is_public", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_content_church_status_public_created"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "tags", Value: 1}},
			Options: options.Index().SetName("idx_content_church_tags"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_ts"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_church_ts"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_type_ts"),
		},
	})
}
