// internal/app/features/groups/types.go
package groups

import (
	"context"

	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type groupInput struct {
	Name        string   `json:"name" validate:"required,max=120" label:"Name"`
	Description string   `json:"description" validate:"max=1000" label:"Description"`
	BranchID    string   `json:"branchId" validate:"omitempty,objectid" label:"Branch"`
	LeaderID    string   `json:"leaderId" validate:"omitempty,objectid" label:"Leader"`
	Members     []string `json:"members" validate:"omitempty,dive,objectid" label:"Members"`
}

// groupUpdate is a partial update. A non-nil Members replaces the list.
type groupUpdate struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=120" label:"Name"`
	Description *string  `json:"description" validate:"omitempty,max=1000" label:"Description"`
	LeaderID    *string  `json:"leaderId" validate:"omitempty,objectid" label:"Leader"`
	Members     []string `json:"members" validate:"omitempty,dive,objectid" label:"Members"`
	IsActive    *bool    `json:"isActive" label:"Active"`
}

func (in groupUpdate) empty() bool {
	return in.Name == nil && in.Description == nil && in.LeaderID == nil &&
		in.Members == nil && in.IsActive == nil
}

type memberInput struct {
	UserID string `json:"userId" validate:"required,objectid" label:"User"`
}

// groupView is a group with its leader and members populated. Lists carry
// no goals; the goals endpoint filters and annotates them.
type groupView struct {
	models.Group
	Leader      *userstore.Summary  `json:"leader,omitempty"`
	MemberList  []userstore.Summary `json:"memberDetails"`
	MemberCount int                 `json:"memberCount"`
}

type listData struct {
	Groups     []groupView `json:"groups"`
	Pagination paging.Meta `json:"pagination"`
}

func (h *Handler) views(ctx context.Context, churchID primitive.ObjectID, gs []models.Group) ([]groupView, error) {
	var ids []primitive.ObjectID
	for _, g := range gs {
		if g.LeaderID != nil {
			ids = append(ids, *g.LeaderID)
		}
		ids = append(ids, g.Members...)
	}
	people, err := h.Users.Summaries(ctx, churchID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]groupView, len(gs))
	for i, g := range gs {
		if g.Members == nil {
			g.Members = []primitive.ObjectID{}
		}
		if g.Goals == nil {
			g.Goals = []models.Goal{}
		}
		v := groupView{
			Group:       g,
			MemberList:  make([]userstore.Summary, 0, len(g.Members)),
			MemberCount: len(g.Members),
		}
		if g.LeaderID != nil {
			if s, ok := people[*g.LeaderID]; ok {
				v.Leader = &s
			}
		}
		for _, id := range g.Members {
			if s, ok := people[id]; ok {
				v.MemberList = append(v.MemberList, s)
			}
		}
		out[i] = v
	}
	return out, nil
}

func (h *Handler) view(ctx context.Context, g models.Group) (groupView, error) {
	vs, err := h.views(ctx, g.ChurchID, []models.Group{g})
	if err != nil {
		return groupView{}, err
	}
	return vs[0], nil
}
