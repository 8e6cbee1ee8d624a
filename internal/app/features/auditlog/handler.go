// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Store *audit.Store
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs the audit trail handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Store: audit.New(db),
		Users: userstore.New(db),
		Log:   logger,
	}
}
