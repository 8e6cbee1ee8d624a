// internal/app/features/content/handler.go
package content

import (
	contentstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/content"
	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves /content.
type Handler struct {
	Store *contentstore.Store
	Users *userstore.Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Store: contentstore.New(db),
		Users: userstore.New(db),
		Audit: audit,
		Log:   logger,
	}
}
