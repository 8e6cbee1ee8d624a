// internal/app/features/announcements/types.go
package announcements

import (
	"context"
	"time"

	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createInput struct {
	Title       string     `json:"title" validate:"required,max=200" label:"Title"`
	Content     string     `json:"content" validate:"required,max=20000" label:"Content"`
	Category    string     `json:"category" validate:"required,ann_category" label:"Category"`
	Priority    string     `json:"priority" validate:"required,ann_priority" label:"Priority"`
	Status      string     `json:"status" validate:"required,publish_status" label:"Status"`
	PublishDate *time.Time `json:"publishDate" validate:"required" label:"Publish date"`
	ExpiryDate  *time.Time `json:"expiryDate" label:"Expiry date"`
	BranchID    string     `json:"branchId" validate:"omitempty,objectid" label:"Branch"`
}

// updateInput is a partial update; nil fields are left alone.
type updateInput struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200" label:"Title"`
	Content     *string    `json:"content" validate:"omitempty,min=1,max=20000" label:"Content"`
	Category    *string    `json:"category" validate:"omitempty,ann_category" label:"Category"`
	Priority    *string    `json:"priority" validate:"omitempty,ann_priority" label:"Priority"`
	Status      *string    `json:"status" validate:"omitempty,publish_status" label:"Status"`
	PublishDate *time.Time `json:"publishDate" label:"Publish date"`
	ExpiryDate  *time.Time `json:"expiryDate" label:"Expiry date"`
}

func (in updateInput) empty() bool {
	return in.Title == nil && in.Content == nil && in.Category == nil &&
		in.Priority == nil && in.Status == nil && in.PublishDate == nil && in.ExpiryDate == nil
}

// announcementView is an announcement with its author populated.
type announcementView struct {
	models.Announcement
	Author *userstore.Summary `json:"author,omitempty"`
}

type listData struct {
	Announcements []announcementView `json:"announcements"`
	Pagination    paging.Meta        `json:"pagination"`
}

func (h *Handler) views(ctx context.Context, churchID primitive.ObjectID, items []models.Announcement) ([]announcementView, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.CreatedBy)
	}
	people, err := h.Users.Summaries(ctx, churchID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]announcementView, len(items))
	for i, a := range items {
		out[i] = announcementView{Announcement: a}
		if s, ok := people[a.CreatedBy]; ok {
			out[i].Author = &s
		}
	}
	return out, nil
}

func (h *Handler) view(ctx context.Context, a models.Announcement) (announcementView, error) {
	vs, err := h.views(ctx, a.ChurchID, []models.Announcement{a})
	if err != nil {
		return announcementView{}, err
	}
	return vs[0], nil
}
