// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auth"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/normalize"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/ratelimit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/tasks"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// background holds process-lifetime workers stopped by Shutdown.
var background struct {
	runner  *tasks.Runner
	limiter *ratelimit.Limiter
}

// devTokenTTL is the lifetime of the bearer token logged for the seeded
// admin in dev.
const devTokenTTL = 24 * time.Hour

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	paging.Configure(appCfg.DefaultPageLimit, appCfg.MaxPageLimit)
	t := timeouts.Current()
	def, max := paging.Limits()
	logger.Info("request limits configured",
		zap.Duration("timeout_short", t.Short),
		zap.Duration("timeout_medium", t.Medium),
		zap.Duration("timeout_long", t.Long),
		zap.Int("page_default", def),
		zap.Int("page_max", max))

	if appCfg.AuditRetentionDays > 0 && deps.MongoDatabase != nil {
		keep := time.Duration(appCfg.AuditRetentionDays) * 24 * time.Hour
		background.runner = tasks.NewRunner(logger, tasks.AuditRetentionJob(audit.New(deps.MongoDatabase), logger, keep))
		background.runner.Start()
	}

	if appCfg.SeedAdminEmail == "" {
		return nil
	}
	churchID, err := primitive.ObjectIDFromHex(appCfg.SeedChurchID)
	if err != nil {
		return err
	}
	admin, err := ensureChurchAdmin(ctx, deps, churchID, appCfg.SeedAdminEmail, appCfg.SeedAdminName, logger)
	if err != nil {
		return err
	}
	if coreCfg.Env == "dev" {
		token, err := auth.NewSigner(appCfg.JWTSecret, appCfg.JWTIssuer).Sign(auth.Principal{
			SubjectID: admin.ID,
			ChurchID:  admin.ChurchID,
			Role:      admin.Role,
			Name:      admin.FullName,
		}, devTokenTTL)
		if err != nil {
			return err
		}
		logger.Info("dev bearer token for seeded admin",
			zap.String("email", admin.Email), zap.String("token", token))
	}
	return nil
}

// ensureChurchAdmin makes sure email is an active admin of churchID,
// promoting an existing account or creating a new one.
func ensureChurchAdmin(ctx context.Context, deps DBDeps, churchID primitive.ObjectID, email, name string, logger *zap.Logger) (models.User, error) {
	users := deps.MongoDatabase.Collection("users")
	now := time.Now().UTC()
	email, name = normalize.Email(email), normalize.Name(name)

	var u models.User
	err := users.FindOne(ctx, bson.M{"church_id": churchID, "email": email}).Decode(&u)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		u = models.User{
			ID:         primitive.NewObjectID(),
			ChurchID:   churchID,
			FullName:   name,
			FullNameCI: text.Fold(name),
			Email:      email,
			Role:       authz.RoleAdmin,
			Status:     "active",
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := users.InsertOne(ctx, u); err != nil {
			return models.User{}, err
		}
		logger.Info("created seed admin", zap.String("email", email), zap.String("church_id", churchID.Hex()))
		return u, nil
	case err != nil:
		return models.User{}, err
	}

	if u.Role == authz.RoleAdmin && u.Status == "active" {
		return u, nil
	}
	_, err = users.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"role":       authz.RoleAdmin,
		"status":     "active",
		"updated_at": now,
	}})
	if err != nil {
		return models.User{}, err
	}
	logger.Info("promoted seed admin", zap.String("email", email), zap.String("previous_role", u.Role))
	u.Role, u.Status, u.UpdatedAt = authz.RoleAdmin, "active", now
	return u, nil
}
