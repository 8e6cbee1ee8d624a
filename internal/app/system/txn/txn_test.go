package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("connection reset"), false},
		{"illegal operation code", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"not in transaction code", mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"}, true},
		{"duplicate key code", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"standalone message", errors.New("Transaction numbers are only allowed on a REPLICA SET member"), true},
		{"transaction alone", errors.New("transaction aborted"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRunPlain_CallsOnce(t *testing.T) {
	calls := 0
	err := runPlain(context.Background(), zap.NewNop(), func(ctx context.Context) error {
		calls++
		return nil
	}, errors.New("no transactions"))
	if err != nil || calls != 1 {
		t.Fatalf("runPlain: err=%v calls=%d", err, calls)
	}
}

func TestRun_CommitsOrFallsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := db.Collection("txn_probe")

	err := Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		_, err := c.InsertOne(ctx, bson.M{"_id": primitive.NewObjectID(), "n": 1})
		return err
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n, _ := c.CountDocuments(ctx, bson.M{}); n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
}

func TestSaveVersioned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := db.Collection("txn_probe")
	id := primitive.NewObjectID()
	if _, err := c.InsertOne(ctx, bson.M{"_id": id, "name": "a", "version": int64(1)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := SaveVersioned(ctx, c, bson.M{"_id": id}, 1, bson.M{"_id": id, "name": "b", "version": int64(2)}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	// a writer that read version 1 has lost the race
	err := SaveVersioned(ctx, c, bson.M{"_id": id}, 1, bson.M{"_id": id, "name": "c", "version": int64(2)})
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale save: err = %v, want ErrVersionConflict", err)
	}

	var got struct {
		Name    string `bson:"name"`
		Version int64  `bson:"version"`
	}
	if err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&got); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != "b" || got.Version != 2 {
		t.Errorf("stored = %+v", got)
	}
}
