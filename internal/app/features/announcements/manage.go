// internal/app/features/announcements/manage.go
package announcements

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	announcementstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/announcements"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/htmlsanitize"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Create serves POST /church/announcements.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in createInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if in.ExpiryDate != nil && !in.ExpiryDate.After(*in.PublishDate) {
		respond.Error(w, r, h.Log, apierr.Validation("expiry date must be after publish date"))
		return
	}

	a := models.Announcement{
		ChurchID:    scope.ChurchID,
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		ContentHTML: htmlsanitize.PrepareForDisplay(in.Content),
		Category:    models.AnnouncementCategory(in.Category),
		Priority:    models.AnnouncementPriority(in.Priority),
		Status:      models.PublishStatus(in.Status),
		PublishDate: in.PublishDate.UTC(),
		CreatedBy:   scope.UserID,
	}
	if in.ExpiryDate != nil {
		exp := in.ExpiryDate.UTC()
		a.ExpiryDate = &exp
	}
	if in.BranchID != "" {
		id, _ := primitive.ObjectIDFromHex(in.BranchID)
		a.BranchID = &id
	}
	if scope.BranchRestricted() {
		a.BranchID = scope.BranchID
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, a)
	if err != nil {
		h.Log.Error("failed to create announcement", zap.Error(err),
			zap.String("church_id", scope.ChurchID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("announcement created",
		zap.String("church_id", scope.ChurchID.Hex()),
		zap.String("announcement_id", created.ID.Hex()))
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventAnnouncementCreated,
		auditlog.Target{Kind: "announcement", ID: created.ID},
		map[string]string{"title": created.Title})

	v, err := h.view(ctx, created)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, v, "Announcement created successfully")
}

// Update serves PUT /church/announcements?id=.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	id, err := inputval.ParseObjectID(query.Get(r, "id"), "announcement")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in updateInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if in.empty() {
		respond.Error(w, r, h.Log, apierr.Validation("no fields to update"))
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	current, err := h.load(ctx, scope, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	set := bson.M{}
	if in.Title != nil {
		set["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		set["content"] = *in.Content
		set["content_html"] = htmlsanitize.PrepareForDisplay(*in.Content)
	}
	if in.Category != nil {
		set["category"] = models.AnnouncementCategory(*in.Category)
	}
	if in.Priority != nil {
		set["priority"] = models.AnnouncementPriority(*in.Priority)
	}
	if in.Status != nil {
		set["status"] = models.PublishStatus(*in.Status)
	}
	publish := current.PublishDate
	if in.PublishDate != nil {
		publish = in.PublishDate.UTC()
		set["publish_date"] = publish
	}
	expiry := current.ExpiryDate
	if in.ExpiryDate != nil {
		e := in.ExpiryDate.UTC()
		expiry = &e
		set["expiry_date"] = e
	}
	if expiry != nil && !expiry.After(publish) {
		respond.Error(w, r, h.Log, apierr.Validation("expiry date must be after publish date"))
		return
	}

	updated, err := h.Store.Update(ctx, scope.ChurchID, id, set)
	if err != nil {
		if errors.Is(err, announcementstore.ErrNotFound) {
			respond.Error(w, r, h.Log, apierr.NotFound("announcement"))
			return
		}
		h.Log.Error("failed to update announcement", zap.Error(err),
			zap.String("announcement_id", id.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventAnnouncementUpdated,
		auditlog.Target{Kind: "announcement", ID: id}, nil)

	v, err := h.view(ctx, updated)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OKMessage(w, v, "Announcement updated successfully")
}

// Delete serves DELETE /church/announcements?id=.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	id, err := inputval.ParseObjectID(query.Get(r, "id"), "announcement")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.load(ctx, scope, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.Store.Delete(ctx, scope.ChurchID, id); err != nil {
		if errors.Is(err, announcementstore.ErrNotFound) {
			respond.Error(w, r, h.Log, apierr.NotFound("announcement"))
			return
		}
		h.Log.Error("failed to delete announcement", zap.Error(err),
			zap.String("announcement_id", id.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventAnnouncementDeleted,
		auditlog.Target{Kind: "announcement", ID: id}, nil)
	respond.OKMessage(w, nil, "Announcement deleted successfully")
}

// load fetches an announcement the caller may modify. Branch admins may only
// touch their own branch's announcements; anything else reads as missing.
func (h *Handler) load(ctx context.Context, scope authz.Scope, id primitive.ObjectID) (models.Announcement, error) {
	a, err := h.Store.GetByID(ctx, scope.ChurchID, id)
	if errors.Is(err, announcementstore.ErrNotFound) {
		return a, apierr.NotFound("announcement")
	}
	if err != nil {
		return a, err
	}
	if scope.BranchRestricted() && (a.BranchID == nil || !scope.CanAccessBranch(*a.BranchID)) {
		return a, apierr.NotFound("announcement")
	}
	return a, nil
}
