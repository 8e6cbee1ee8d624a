// internal/app/features/goals/types.go
package goals

import (
	"context"
	"time"

	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	domain "github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/goals"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type milestoneInput struct {
	Title     string `json:"title" validate:"required,max=200" label:"Milestone title"`
	Completed bool   `json:"completed" label:"Milestone completed"`
}

type createInput struct {
	Title       string           `json:"title" validate:"required,max=200" label:"Title"`
	Description string           `json:"description" validate:"max=2000" label:"Description"`
	Status      string           `json:"status" validate:"omitempty,goal_status" label:"Status"`
	Priority    string           `json:"priority" validate:"omitempty,goal_priority" label:"Priority"`
	Progress    *int             `json:"progress" validate:"omitempty,min=0,max=100" label:"Progress"`
	TargetDate  *time.Time       `json:"targetDate" validate:"required" label:"Target date"`
	Category    string           `json:"category" validate:"max=100" label:"Category"`
	AssignedTo  []string         `json:"assignedTo" validate:"omitempty,dive,objectid" label:"Assigned to"`
	Milestones  []milestoneInput `json:"milestones" validate:"omitempty,dive" label:"Milestones"`
}

// updateInput is a partial update. Non-nil slices (even empty) replace the
// stored list.
type updateInput struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200" label:"Title"`
	Description *string          `json:"description" validate:"omitempty,max=2000" label:"Description"`
	Status      *string          `json:"status" validate:"omitempty,goal_status" label:"Status"`
	Priority    *string          `json:"priority" validate:"omitempty,goal_priority" label:"Priority"`
	Progress    *int             `json:"progress" validate:"omitempty,min=0,max=100" label:"Progress"`
	TargetDate  *time.Time       `json:"targetDate" label:"Target date"`
	Category    *string          `json:"category" validate:"omitempty,max=100" label:"Category"`
	AssignedTo  []string         `json:"assignedTo" validate:"omitempty,dive,objectid" label:"Assigned to"`
	Milestones  []milestoneInput `json:"milestones" validate:"omitempty,dive" label:"Milestones"`
}

func (in updateInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil && in.Priority == nil &&
		in.Progress == nil && in.TargetDate == nil && in.Category == nil &&
		in.AssignedTo == nil && in.Milestones == nil
}

// goalView is an annotated goal with its people populated.
type goalView struct {
	domain.View
	Assignees []userstore.Summary `json:"assignees"`
	Creator   *userstore.Summary  `json:"creator,omitempty"`
}

type listData struct {
	Goals      []goalView   `json:"goals"`
	Stats      domain.Stats `json:"stats"`
	Pagination paging.Meta  `json:"pagination"`
}

func (h *Handler) views(ctx context.Context, churchID primitive.ObjectID, gs []models.Goal) ([]goalView, error) {
	var ids []primitive.ObjectID
	for _, g := range gs {
		ids = append(ids, g.AssignedTo...)
		ids = append(ids, g.CreatedBy)
	}
	people, err := h.Users.Summaries(ctx, churchID, ids)
	if err != nil {
		return nil, err
	}
	now := h.now()
	out := make([]goalView, len(gs))
	for i, g := range gs {
		v := goalView{View: domain.Annotate(g, now), Assignees: make([]userstore.Summary, 0, len(g.AssignedTo))}
		for _, id := range g.AssignedTo {
			if s, ok := people[id]; ok {
				v.Assignees = append(v.Assignees, s)
			}
		}
		if s, ok := people[g.CreatedBy]; ok {
			v.Creator = &s
		}
		out[i] = v
	}
	return out, nil
}

func (h *Handler) view(ctx context.Context, churchID primitive.ObjectID, g models.Goal) (goalView, error) {
	vs, err := h.views(ctx, churchID, []models.Goal{g})
	if err != nil {
		return goalView{}, err
	}
	return vs[0], nil
}
