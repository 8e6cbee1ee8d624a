// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"go.uber.org/zap"
)

// AuditRetentionJob deletes audit events older than keep. It runs hourly.
func AuditRetentionJob(store *audit.Store, logger *zap.Logger, keep time.Duration) Job {
	return Job{
		Name:     "audit-retention",
		Interval: time.Hour,
		Timeout:  time.Minute,
		Run: func(ctx context.Context) error {
			count, err := store.DeleteBefore(ctx, time.Now().UTC().Add(-keep))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("pruned audit events",
					zap.Int64("count", count),
					zap.Duration("retention", keep))
			}
			return nil
		},
	}
}
