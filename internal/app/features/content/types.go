// internal/app/features/content/types.go
package content

import (
	"context"

	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createInput struct {
	Title    string   `json:"title" validate:"required,max=200" label:"Title"`
	Body     string   `json:"body" validate:"required,max=100000" label:"Body"`
	Type     string   `json:"type" validate:"required,content_type" label:"Type"`
	Status   string   `json:"status" validate:"omitempty,publish_status" label:"Status"`
	IsPublic *bool    `json:"isPublic" label:"Public"`
	MediaURL string   `json:"mediaUrl" validate:"omitempty,httpurl" label:"Media URL"`
	Tags     []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=40" label:"Tags"`
	BranchID string   `json:"branchId" validate:"omitempty,objectid" label:"Branch"`
}

type contentView struct {
	models.Content
	Author *userstore.Summary `json:"author,omitempty"`
}

type listData struct {
	Content    []contentView `json:"content"`
	Pagination paging.Meta   `json:"pagination"`
}

func (h *Handler) views(ctx context.Context, churchID primitive.ObjectID, cs []models.Content) ([]contentView, error) {
	ids := make([]primitive.ObjectID, len(cs))
	for i, c := range cs {
		ids[i] = c.AuthorID
	}
	people, err := h.Users.Summaries(ctx, churchID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]contentView, len(cs))
	for i, c := range cs {
		out[i] = contentView{Content: c}
		if s, ok := people[c.AuthorID]; ok {
			out[i].Author = &s
		}
	}
	return out, nil
}
