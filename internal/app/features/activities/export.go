// internal/app/features/activities/export.go
package activities

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	domain "github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/activities"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	summarySheet = "Summary"
	groupsSheet  = "Groups"
	xlsxType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var groupHeaders = []string{
	"Key", "Activities", "Completed", "Cancelled",
	"Planned participants", "Actual participants", "Average participants",
	"Completion rate (%)", "By type",
}

// writeXLSX streams rep as a two-sheet workbook.
func (h *Handler) writeXLSX(w http.ResponseWriter, r *http.Request, rep domain.Report) {
	f, err := buildWorkbook(rep)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", `attachment; filename="activity-report-`+string(rep.GroupBy)+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		h.Log.Warn("failed to write activity report", zap.Error(err), zap.String("path", r.URL.Path))
	}
}

func buildWorkbook(rep domain.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	summary := [][2]any{
		{"Grouped by", string(rep.GroupBy)},
		{"Total activities", rep.Totals.Activities},
		{"Completed activities", rep.Totals.Completed},
		{"Cancelled activities", rep.Totals.Cancelled},
		{"Total participants", rep.Totals.ActualParticipants},
		{"Average participants", rep.Totals.AverageParticipants},
		{"Completion rate (%)", rep.Totals.CompletionRate},
		{"Attendance rate (%)", rep.Totals.AttendanceRate},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row[:]); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(groupsSheet); err != nil {
		return nil, err
	}
	header := make([]any, len(groupHeaders))
	for i, hdr := range groupHeaders {
		header[i] = hdr
	}
	if err := setRow(f, groupsSheet, 1, header); err != nil {
		return nil, err
	}
	for i, b := range rep.Groups {
		row := []any{
			b.Key, b.Count, b.Completed, b.Cancelled,
			b.PlannedParticipants, b.ActualParticipants, b.AverageParticipants,
			b.CompletionRate, typeBreakdown(b.ByType),
		}
		if err := setRow(f, groupsSheet, i+2, row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	for col, v := range vals {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// typeBreakdown renders {"meeting":2,"prayer":1} as "meeting: 2, prayer: 1".
func typeBreakdown(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += k + ": " + strconv.Itoa(m[k])
	}
	return out
}
