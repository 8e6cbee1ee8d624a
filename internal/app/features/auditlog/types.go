// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listItem is one audit event with its actor resolved.
type listItem struct {
	ID         primitive.ObjectID  `json:"id"`
	Timestamp  time.Time           `json:"timestamp"`
	Category   string              `json:"category"`
	EventType  string              `json:"eventType"`
	Actor      *userstore.Summary  `json:"actor,omitempty"`
	ActorID    *primitive.ObjectID `json:"actorId,omitempty"`
	ActorRole  string              `json:"actorRole,omitempty"`
	TargetKind string              `json:"targetKind,omitempty"`
	TargetID   *primitive.ObjectID `json:"targetId,omitempty"`
	IP         string              `json:"ip"`
	RequestID  string              `json:"requestId,omitempty"`
	Success    bool                `json:"success"`
	Reason     string              `json:"failureReason,omitempty"`
	Details    map[string]string   `json:"details,omitempty"`
}

type listData struct {
	Events     []listItem  `json:"events"`
	Pagination paging.Meta `json:"pagination"`
}

type categoryOption struct {
	Value  string   `json:"value"`
	Label  string   `json:"label"`
	Events []string `json:"events"`
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication", Events: eventTypesForCategory(audit.CategoryAuth)},
		{Value: audit.CategoryAdmin, Label: "Administration", Events: eventTypesForCategory(audit.CategoryAdmin)},
	}
}

// eventTypesForCategory returns the event types of category, or all of
// them when category is empty. Unknown categories yield nil.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventAccessDenied,
	}

	adminEvents := []string{
		audit.EventAnnouncementCreated,
		audit.EventAnnouncementUpdated,
		audit.EventAnnouncementDeleted,
		audit.EventBranchCreated,
		audit.EventBranchUpdated,
		audit.EventBranchDeactivated,
		audit.EventBranchDeleted,
		audit.EventScheduleCreated,
		audit.EventScheduleUpdated,
		audit.EventScheduleDeleted,
		audit.EventActivityCreated,
		audit.EventActivityUpdated,
		audit.EventActivityCancelled,
		audit.EventActivityDeleted,
		audit.EventAttendanceRecorded,
		audit.EventDepartmentCreated,
		audit.EventDepartmentUpdated,
		audit.EventExpenseCreated,
		audit.EventExpenseUpdated,
		audit.EventExpenseDeleted,
		audit.EventGoalCreated,
		audit.EventGoalUpdated,
		audit.EventGoalDeleted,
		audit.EventGroupCreated,
		audit.EventGroupUpdated,
		audit.EventGroupMemberAdded,
		audit.EventGroupMemberRemoved,
		audit.EventContentCreated,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		return all
	default:
		return nil
	}
}
