package calendar

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for every date in the upstream and
// downstream contracts.
const DateLayout = "2006-01-02"

// parseDate parses a contract date string. The zero time plus false signals
// a malformed or absent value; callers drop the record and continue.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// midnight truncates t to UTC midnight so day arithmetic stays exact.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns b minus a in whole days.
func daysBetween(a, b time.Time) int {
	return int(midnight(b).Sub(midnight(a)) / (24 * time.Hour))
}

// mondayWeekday maps time.Weekday onto Monday=0..Sunday=6, the convention
// all of the bridging and pattern rules are written in.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func isWeekend(t time.Time) bool {
	return mondayWeekday(t) >= 5
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// nthWeekdayOfMonth returns the nth occurrence (1-indexed) of a weekday in
// the given month, or false when the month has no nth occurrence.
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) (time.Time, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := 1 + offset + (n-1)*7
	if day > lastDayOfMonth(year, month) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// lastWeekdayOfMonth returns the final occurrence of a weekday in the month.
func lastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) time.Time {
	last := time.Date(year, month, lastDayOfMonth(year, month), 0, 0, 0, 0, time.UTC)
	back := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -back)
}

// firstFullWeekMonday returns the day-of-month of the Monday starting the
// first full week of the month. A full week is a Monday-Friday span lying
// entirely inside the month.
func firstFullWeekMonday(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	fw := mondayWeekday(first)
	monday := 1
	if fw != 0 {
		monday = 1 + (7 - fw)
	}
	if monday+4 > lastDayOfMonth(year, month) {
		monday += 7
	}
	return monday
}

// nthFullWeek determines which full week of its month the date falls in,
// counting the week containing the date by its Monday. Dates before the
// first full week count as week 1.
func nthFullWeek(t time.Time) int {
	weekStart := t.Day() - mondayWeekday(t)
	if weekStart < 1 {
		weekStart = 1
	}
	diff := weekStart - firstFullWeekMonday(t.Year(), t.Month())
	if diff < 0 {
		return 1
	}
	return diff/7 + 1
}

// nthFullWeekStart returns the Monday of the nth full week of the month.
// When the month has no nth full week the previous full week is used, and as
// a last resort the first full week's Monday.
func nthFullWeekStart(year int, month time.Month, n int) time.Time {
	monday := firstFullWeekMonday(year, month)
	last := lastDayOfMonth(year, month)
	target := monday + (n-1)*7
	if target > last {
		prev := n - 2
		if prev < 0 {
			prev = 0
		}
		target = monday + prev*7
	}
	if target < 1 || target > last {
		target = monday
	}
	return time.Date(year, month, target, 0, 0, 0, 0, time.UTC)
}

// trimWeekendEnd walks an end date backward off Saturday/Sunday, never
// crossing the start date.
func trimWeekendEnd(start, end time.Time) time.Time {
	for isWeekend(end) && end.After(start) {
		end = end.AddDate(0, 0, -1)
	}
	return end
}

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func lower(s string) string {
	return strings.ToLower(s)
}

// containsAny reports whether s contains any of the given fragments,
// ignoring case.
func containsAny(s string, fragments ...string) bool {
	return containsAnyOf(s, fragments)
}

func containsAnyOf(s string, fragments []string) bool {
	for _, f := range fragments {
		if containsFold(s, f) {
			return true
		}
	}
	return false
}

// splitSchoolYear parses "YYYY-YYYY" or "YYYY-YY" into fall and spring years.
func splitSchoolYear(s string) (fall, spring int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	fall, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || fall < 1000 {
		return 0, 0, false
	}
	springPart := strings.TrimSpace(parts[1])
	spring, err = strconv.Atoi(springPart)
	if err != nil {
		return 0, 0, false
	}
	if len(springPart) == 2 {
		spring += 2000
	}
	return fall, spring, true
}

// normalizeName lowercases a holiday name and strips apostrophes so
// "Presidents' Day" and "Presidents Day" key identically.
func normalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "'", "")
	n = strings.ReplaceAll(n, "’", "")
	return n
}
