// internal/app/features/activities/types.go
package activities

import (
	"context"
	"time"

	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	domain "github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/activities"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createInput struct {
	Title               string     `json:"title" validate:"required,max=200" label:"Title"`
	Description         string     `json:"description" validate:"max=2000" label:"Description"`
	Type                string     `json:"type" validate:"required,activity_type" label:"Type"`
	Date                *time.Time `json:"date" validate:"required" label:"Date"`
	StartTime           string     `json:"startTime" validate:"omitempty,hhmm" label:"Start time"`
	EndTime             string     `json:"endTime" validate:"omitempty,hhmm" label:"End time"`
	Location            string     `json:"location" validate:"max=200" label:"Location"`
	OrganizerID         string     `json:"organizerId" validate:"omitempty,objectid" label:"Organizer"`
	PlannedParticipants []string   `json:"plannedParticipants" validate:"omitempty,dive,objectid" label:"Planned participants"`
}

// updateInput is a partial update. A non-nil PlannedParticipants (even
// empty) replaces the list.
type updateInput struct {
	Title               *string    `json:"title" validate:"omitempty,min=1,max=200" label:"Title"`
	Description         *string    `json:"description" validate:"omitempty,max=2000" label:"Description"`
	Type                *string    `json:"type" validate:"omitempty,activity_type" label:"Type"`
	Date                *time.Time `json:"date" label:"Date"`
	StartTime           *string    `json:"startTime" validate:"omitempty,hhmm" label:"Start time"`
	EndTime             *string    `json:"endTime" validate:"omitempty,hhmm" label:"End time"`
	Location            *string    `json:"location" validate:"omitempty,max=200" label:"Location"`
	OrganizerID         *string    `json:"organizerId" validate:"omitempty,objectid" label:"Organizer"`
	PlannedParticipants []string   `json:"plannedParticipants" validate:"omitempty,dive,objectid" label:"Planned participants"`
	Status              *string    `json:"status" validate:"omitempty,activity_status" label:"Status"`
	IsActive            *bool      `json:"isActive" label:"Active"`
}

func (in updateInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Type == nil && in.Date == nil &&
		in.StartTime == nil && in.EndTime == nil && in.Location == nil && in.OrganizerID == nil &&
		in.PlannedParticipants == nil && in.Status == nil && in.IsActive == nil
}

type attendanceInput struct {
	UserID      string     `json:"userId" validate:"required,objectid" label:"User"`
	Status      string     `json:"status" validate:"required,attendance_status" label:"Status"`
	ArrivalTime *time.Time `json:"arrivalTime" label:"Arrival time"`
	Notes       string     `json:"notes" validate:"max=500" label:"Notes"`
}

type bulkAttendanceInput struct {
	Records []attendanceInput `json:"records" validate:"required,dive" label:"Records"`
}

// activityView is an activity with every user reference populated.
type activityView struct {
	models.Activity
	Organizer           *userstore.Summary  `json:"organizer,omitempty"`
	PlannedParticipants []userstore.Summary `json:"plannedParticipants"`
	ActualParticipants  []userstore.Summary `json:"actualParticipants"`
	AttendanceRate      int                 `json:"attendanceRate"`
}

type listData struct {
	Activities []activityView `json:"activities"`
	Pagination paging.Meta    `json:"pagination"`
}

type attendanceRow struct {
	models.AttendanceRecord
	User *userstore.Summary `json:"user,omitempty"`
}

type attendanceData struct {
	ActivityID primitive.ObjectID `json:"activityId"`
	Records    []attendanceRow    `json:"attendance"`
	Summary    domain.Summary     `json:"summary"`
}

func activityUsers(a models.Activity) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, 1+len(a.PlannedParticipants)+len(a.Attendance))
	if a.OrganizerID != nil {
		ids = append(ids, *a.OrganizerID)
	}
	ids = append(ids, a.PlannedParticipants...)
	ids = append(ids, a.ActualParticipants...)
	for _, rec := range a.Attendance {
		ids = append(ids, rec.UserID)
	}
	return ids
}

func pick(people map[primitive.ObjectID]userstore.Summary, ids []primitive.ObjectID) []userstore.Summary {
	out := make([]userstore.Summary, 0, len(ids))
	for _, id := range ids {
		if s, ok := people[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func viewOf(a models.Activity, people map[primitive.ObjectID]userstore.Summary) activityView {
	v := activityView{
		Activity:            a,
		PlannedParticipants: pick(people, a.PlannedParticipants),
		ActualParticipants:  pick(people, a.ActualParticipants),
		AttendanceRate:      domain.AttendanceRate(a.Attendance, len(a.PlannedParticipants)),
	}
	if a.OrganizerID != nil {
		if s, ok := people[*a.OrganizerID]; ok {
			v.Organizer = &s
		}
	}
	return v
}

func (h *Handler) views(ctx context.Context, churchID primitive.ObjectID, acts []models.Activity) ([]activityView, error) {
	var ids []primitive.ObjectID
	for _, a := range acts {
		ids = append(ids, activityUsers(a)...)
	}
	people, err := h.Users.Summaries(ctx, churchID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]activityView, len(acts))
	for i, a := range acts {
		out[i] = viewOf(a, people)
	}
	return out, nil
}

func (h *Handler) view(ctx context.Context, a models.Activity) (activityView, error) {
	vs, err := h.views(ctx, a.ChurchID, []models.Activity{a})
	if err != nil {
		return activityView{}, err
	}
	return vs[0], nil
}

func (h *Handler) attendance(ctx context.Context, a models.Activity) (attendanceData, error) {
	ids := make([]primitive.ObjectID, len(a.Attendance))
	for i, rec := range a.Attendance {
		ids[i] = rec.UserID
	}
	people, err := h.Users.Summaries(ctx, a.ChurchID, ids)
	if err != nil {
		return attendanceData{}, err
	}
	rows := make([]attendanceRow, len(a.Attendance))
	for i, rec := range a.Attendance {
		rows[i] = attendanceRow{AttendanceRecord: rec}
		if s, ok := people[rec.UserID]; ok {
			rows[i].User = &s
		}
	}
	return attendanceData{
		ActivityID: a.ID,
		Records:    rows,
		Summary:    domain.Summarize(a.Attendance, len(a.PlannedParticipants)),
	}, nil
}
