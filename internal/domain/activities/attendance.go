// Package activities computes attendance facts and grouped activity reports
// over activities that have already been loaded.
package activities

import (
	"math"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Summary is the attendance breakdown for one activity.
type Summary struct {
	Total          int `json:"total"`
	Present        int `json:"present"`
	Absent         int `json:"absent"`
	Late           int `json:"late"`
	Excused        int `json:"excused"`
	AttendanceRate int `json:"attendanceRate"`
}

// Summarize counts records by status. The rate is measured against the
// planned participant count, not the number of records.
func Summarize(records []models.AttendanceRecord, planned int) Summary {
	var s Summary
	for _, r := range records {
		s.Total++
		switch r.Status {
		case models.AttendancePresent:
			s.Present++
		case models.AttendanceAbsent:
			s.Absent++
		case models.AttendanceLate:
			s.Late++
		case models.AttendanceExcused:
			s.Excused++
		}
	}
	s.AttendanceRate = rate(s.Present+s.Late, planned)
	return s
}

// AttendanceRate is round(100 * (present + late) / planned), or 0 when
// nobody was planned.
func AttendanceRate(records []models.AttendanceRecord, planned int) int {
	return Summarize(records, planned).AttendanceRate
}

func rate(attended, planned int) int {
	if planned <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(attended) / float64(planned)))
}

// ActualParticipants lists, in record order, the users marked present or late.
func ActualParticipants(records []models.AttendanceRecord) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(records))
	for _, r := range records {
		if r.Status.Attended() {
			out = append(out, r.UserID)
		}
	}
	return out
}

// Dedupe keeps one record per user; a later record for the same user
// replaces the earlier one in place.
func Dedupe(records []models.AttendanceRecord) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, len(records))
	at := make(map[primitive.ObjectID]int, len(records))
	for _, r := range records {
		if i, ok := at[r.UserID]; ok {
			out[i] = r
			continue
		}
		at[r.UserID] = len(out)
		out = append(out, r)
	}
	return out
}

// ReplaceAll swaps the activity's attendance for records and recomputes the
// actual participants from scratch.
func ReplaceAll(a *models.Activity, records []models.AttendanceRecord) {
	a.Attendance = Dedupe(records)
	a.ActualParticipants = ActualParticipants(a.Attendance)
}

// Upsert replaces the record for rec.UserID, or appends it when the user has
// none, then recomputes the actual participants. It reports whether an
// existing record was replaced.
func Upsert(a *models.Activity, rec models.AttendanceRecord) bool {
	replaced := false
	for i := range a.Attendance {
		if a.Attendance[i].UserID == rec.UserID {
			a.Attendance[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		a.Attendance = append(a.Attendance, rec)
	}
	a.ActualParticipants = ActualParticipants(a.Attendance)
	return replaced
}

// Record builds an attendance record stamped with the recorder and time.
func Record(user primitive.ObjectID, status models.AttendanceStatus, arrival *time.Time, notes string, by primitive.ObjectID, now time.Time) models.AttendanceRecord {
	return models.AttendanceRecord{
		UserID:      user,
		Status:      status,
		ArrivalTime: arrival,
		Notes:       notes,
		RecordedBy:  by,
		RecordedAt:  now.UTC(),
	}
}
