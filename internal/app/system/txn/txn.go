// Package txn runs multi-document writes in a MongoDB transaction when the
// deployment supports one, and provides the versioned save used by parent
// aggregates that embed arrays.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrVersionConflict means the document changed (or vanished) since it was
// read.
var ErrVersionConflict = errors.New("document was modified concurrently")

// Run executes fn inside a transaction. Standalone servers cannot run
// transactions; in that case fn runs once without one and the fallback is
// logged.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return runPlain(ctx, log, fn, err)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return runPlain(ctx, log, fn, err)
	}
	return err
}

func runPlain(ctx context.Context, log *zap.Logger, fn func(ctx context.Context) error, cause error) error {
	if log != nil {
		log.Warn("transactions unavailable; running without one", zap.Error(cause))
	}
	return fn(ctx)
}

// IsNotSupported reports whether err says the server cannot run sessions or
// transactions (standalone mongod, some managed services).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, IllegalOperation (legacy), OperationNotSupportedInTransaction
			return true
		}
	}
	s := strings.ToLower(err.Error())
	has := func(k string) bool { return strings.Contains(s, k) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation") && has("transaction"):
		return true
	}
	return false
}

// SaveVersioned replaces the document matched by filter only while its
// version field still equals version, and bumps the stored version by one.
// doc must already carry version+1. A miss yields ErrVersionConflict; the
// caller decides whether the document is gone or was raced.
func SaveVersioned(ctx context.Context, c *mongo.Collection, filter bson.M, version int64, doc any) error {
	f := bson.M{"version": version}
	for k, v := range filter {
		f[k] = v
	}
	res, err := c.ReplaceOne(ctx, f, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}
