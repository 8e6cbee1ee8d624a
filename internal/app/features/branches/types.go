// internal/app/features/branches/types.go
package branches

import (
	"context"

	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type branchInput struct {
	Name     string `json:"name" validate:"required,max=120" label:"Name"`
	Address  string `json:"address" validate:"max=300" label:"Address"`
	City     string `json:"city" validate:"max=120" label:"City"`
	Phone    string `json:"phone" validate:"max=40" label:"Phone"`
	PastorID string `json:"pastorId" validate:"omitempty,objectid" label:"Pastor"`
}

type branchUpdate struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120" label:"Name"`
	Address  *string `json:"address" validate:"omitempty,max=300" label:"Address"`
	City     *string `json:"city" validate:"omitempty,max=120" label:"City"`
	Phone    *string `json:"phone" validate:"omitempty,max=40" label:"Phone"`
	PastorID *string `json:"pastorId" validate:"omitempty,objectid" label:"Pastor"`
	IsActive *bool   `json:"isActive" label:"Active"`
}

func (in branchUpdate) empty() bool {
	return in.Name == nil && in.Address == nil && in.City == nil &&
		in.Phone == nil && in.PastorID == nil && in.IsActive == nil
}

type scheduleInput struct {
	ServiceName     string `json:"serviceName" validate:"required,max=120" label:"Service name"`
	Day             string `json:"day" validate:"required,weekday" label:"Day"`
	Time            string `json:"time" validate:"required,hhmm" label:"Time"`
	DurationMinutes int    `json:"durationMinutes" validate:"omitempty,min=1,max=1440" label:"Duration"`
	Location        string `json:"location" validate:"max=200" label:"Location"`
	Description     string `json:"description" validate:"max=1000" label:"Description"`
}

type scheduleUpdate struct {
	ServiceName     *string `json:"serviceName" validate:"omitempty,min=1,max=120" label:"Service name"`
	Day             *string `json:"day" validate:"omitempty,weekday" label:"Day"`
	Time            *string `json:"time" validate:"omitempty,hhmm" label:"Time"`
	DurationMinutes *int    `json:"durationMinutes" validate:"omitempty,min=1,max=1440" label:"Duration"`
	Location        *string `json:"location" validate:"omitempty,max=200" label:"Location"`
	Description     *string `json:"description" validate:"omitempty,max=1000" label:"Description"`
	IsActive        *bool   `json:"isActive" label:"Active"`
}

func (in scheduleUpdate) empty() bool {
	return in.ServiceName == nil && in.Day == nil && in.Time == nil && in.DurationMinutes == nil &&
		in.Location == nil && in.Description == nil && in.IsActive == nil
}

// defaultDuration applies when a schedule is created without one.
const defaultDuration = 90

type branchView struct {
	models.Branch
	Pastor *userstore.Summary `json:"pastor,omitempty"`
}

type listData struct {
	Branches   []branchView `json:"branches"`
	Pagination paging.Meta  `json:"pagination"`
}

type scheduleList struct {
	Schedules []models.ServiceSchedule `json:"schedules"`
}

func (h *Handler) views(ctx context.Context, churchID primitive.ObjectID, bs []models.Branch) ([]branchView, error) {
	var ids []primitive.ObjectID
	for _, b := range bs {
		if b.PastorID != nil {
			ids = append(ids, *b.PastorID)
		}
	}
	people, err := h.Users.Summaries(ctx, churchID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]branchView, len(bs))
	for i, b := range bs {
		out[i] = branchView{Branch: b}
		if b.PastorID != nil {
			if s, ok := people[*b.PastorID]; ok {
				out[i].Pastor = &s
			}
		}
	}
	return out, nil
}

func (h *Handler) view(ctx context.Context, b models.Branch) (branchView, error) {
	vs, err := h.views(ctx, b.ChurchID, []models.Branch{b})
	if err != nil {
		return branchView{}, err
	}
	return vs[0], nil
}
