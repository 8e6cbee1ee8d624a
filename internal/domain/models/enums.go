// internal/domain/models/enums.go
package models

// Enumerated values are declared once per entity in this package. Create,
// update and filter parsing all validate against the same allow-lists
// (inputval registers a validator tag per enum).

func oneOf[T ~string](v T, allowed []T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func toStrings[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

// PublishStatus is the lifecycle of announcements and content.
type PublishStatus string

const (
	StatusDraft     PublishStatus = "draft"
	StatusPublished PublishStatus = "published"
	StatusArchived  PublishStatus = "archived"
)

var PublishStatuses = []PublishStatus{StatusDraft, StatusPublished, StatusArchived}

func (s PublishStatus) Valid() bool { return oneOf(s, PublishStatuses) }

// Weekday is a lowercase day name used by service schedules.
type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

var Weekdays = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

func (d Weekday) Valid() bool { return oneOf(d, Weekdays) }

// Enums maps a validation tag to the allow-list it checks. inputval
// registers one validator tag per entry.
var Enums = map[string][]string{
	"publish_status":    toStrings(PublishStatuses),
	"weekday":           toStrings(Weekdays),
	"goal_status":       toStrings(GoalStatuses),
	"goal_priority":     toStrings(GoalPriorities),
	"activity_type":     toStrings(ActivityTypes),
	"activity_status":   toStrings(ActivityStatuses),
	"attendance_status": toStrings(AttendanceStatuses),
	"expense_category":  toStrings(ExpenseCategories),
	"ann_category":      toStrings(AnnouncementCategories),
	"ann_priority":      toStrings(AnnouncementPriorities),
	"content_type":      toStrings(ContentTypes),
}
