package activities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrRangeOrder = errors.New("startDate must not be after endDate")

// Range is an inclusive date window. A nil bound is open.
type Range struct {
	From *time.Time
	To   *time.Time
}

// ParseRange parses startDate/endDate query values. Either may be empty.
// Accepted forms are YYYY-MM-DD and RFC 3339. The end bound is moved to the
// last millisecond of its day so activities later that day are included.
func ParseRange(start, end string) (Range, error) {
	var r Range
	if s := strings.TrimSpace(start); s != "" {
		t, err := parseDay(s)
		if err != nil {
			return Range{}, fmt.Errorf("invalid startDate %q: %w", s, err)
		}
		r.From = &t
	}
	if s := strings.TrimSpace(end); s != "" {
		t, err := parseDay(s)
		if err != nil {
			return Range{}, fmt.Errorf("invalid endDate %q: %w", s, err)
		}
		t = EndOfDay(t)
		r.To = &t
	}
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return Range{}, ErrRangeOrder
	}
	return r, nil
}

// EndOfDay returns 23:59:59.999 on t's calendar day, in UTC.
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("expected YYYY-MM-DD or RFC 3339")
	}
	return t.UTC(), nil
}
