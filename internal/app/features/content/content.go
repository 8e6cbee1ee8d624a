// internal/app/features/content/content.go
package content

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	contentstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/content"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/markdown"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/normalize"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// List serves GET /content?type&status&tag&search&page&limit. Callers below
// staff only ever see published public content; their status filter is
// ignored.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	f := contentstore.ListFilter{
		Tag:    strings.ToLower(query.Get(r, "tag")),
		Search: query.Get(r, "search"),
	}
	if f.Type, err = inputval.Enum(r, "type", models.ContentTypes); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if f.Status, err = inputval.Enum(r, "status", models.PublishStatuses); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if !scope.IsStaff() {
		f.PublicOnly = true
	}
	if scope.BranchID != nil && !scope.IsChurchManager() {
		f.BranchID = scope.BranchID
	}
	pg := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, total, err := h.Store.List(ctx, scope.ChurchID, f, pg)
	if err != nil {
		h.Log.Error("failed to list content", zap.Error(err),
			zap.String("church_id", scope.ChurchID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	views, err := h.views(ctx, scope.ChurchID, items)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, listData{Content: views, Pagination: paging.BuildMeta(pg, total)})
}

// Show serves GET /content/{contentId} with the same visibility as List.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	id, err := inputval.ParseObjectID(chi.URLParam(r, "contentId"), "content")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.GetByID(ctx, scope.ChurchID, id)
	if errors.Is(err, contentstore.ErrNotFound) || (err == nil && !visible(scope, c)) {
		respond.Error(w, r, h.Log, apierr.NotFound("content"))
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	vs, err := h.views(ctx, scope.ChurchID, []models.Content{c})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, vs[0])
}

func visible(scope authz.Scope, c models.Content) bool {
	if !scope.IsStaff() && (c.Status != models.StatusPublished || !c.IsPublic) {
		return false
	}
	if c.BranchID != nil && scope.BranchID != nil && !scope.IsChurchManager() {
		return *c.BranchID == *scope.BranchID
	}
	return true
}

// Create serves POST /content. The markdown body is rendered to sanitized
// HTML and the slug is derived from the title, unique per church.
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
	html, err := markdown.Render(in.Body)
	if err != nil {
		respond.Error(w, r, h.Log, apierr.Validation("body is not valid markdown"))
		return
	}

	c := models.Content{
		ChurchID: scope.ChurchID,
		Title:    normalize.Name(in.Title),
		Slug:     markdown.Slugify(in.Title),
		Body:     in.Body,
		BodyHTML: html,
		MediaURL: in.MediaURL,
		Type:     models.ContentType(in.Type),
		Status:   models.StatusDraft,
		IsPublic: true,
		Tags:     normalize.Tags(in.Tags),
		AuthorID: scope.UserID,
	}
	if in.Status != "" {
		c.Status = models.PublishStatus(in.Status)
	}
	if in.IsPublic != nil {
		c.IsPublic = *in.IsPublic
	}
	switch {
	case scope.BranchRestricted():
		c.BranchID = scope.BranchID
	case in.BranchID != "":
		id, _ := primitive.ObjectIDFromHex(in.BranchID)
		c.BranchID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Store.Create(ctx, c)
	if err != nil {
		if errors.Is(err, contentstore.ErrSlugExhausted) {
			respond.Error(w, r, h.Log, apierr.Conflict("too much content shares this title; choose another", nil))
			return
		}
		h.Log.Error("failed to create content", zap.Error(err),
			zap.String("church_id", scope.ChurchID.Hex()), zap.String("path", r.URL.Path))
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventContentCreated,
		auditlog.Target{Kind: "content", ID: created.ID},
		map[string]string{"title": created.Title, "slug": created.Slug})

	vs, err := h.views(ctx, scope.ChurchID, []models.Content{created})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, vs[0], "Content created successfully")
}
