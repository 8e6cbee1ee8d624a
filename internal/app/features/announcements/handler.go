// internal/app/features/announcements/handler.go
package announcements

import (
	announcementstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/announcements"
	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all announcement endpoints.
type Handler struct {
	DB    *mongo.Database
	Store *announcementstore.Store
	Users *userstore.Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

// NewHandler constructs an announcements Handler.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:    db,
		Store: announcementstore.New(db),
		Users: userstore.New(db),
		Audit: audit,
		Log:   logger,
	}
}
