package calendar

import (
	"log/slog"
	"sort"
	"time"
)

// MergerOptions configures day-off resolution. District terminology varies,
// so the marker and indicator lists are options with the stock lists as
// defaults rather than hardcoded tables.
type MergerOptions struct {
	// CalendarMarkers are label fragments that mark grading-period and
	// schedule milestones rather than days off.
	CalendarMarkers []string
	// DayOffIndicators rescue a calendar-marker entry that is co-labeled
	// with an actual day off.
	DayOffIndicators []string
	// ClosureIndicators are the explicit-closure phrases required before a
	// Columbus/Indigenous Peoples' Day entry counts as a day off.
	ClosureIndicators []string
	Logger            *slog.Logger
}

// DefaultMergerOptions returns the stock rule lists.
func DefaultMergerOptions() MergerOptions {
	return MergerOptions{
		CalendarMarkers: []string{
			"end of nine weeks", "end of 1st nine weeks", "end of 2nd nine weeks",
			"end of 3rd nine weeks", "end of 4th nine weeks", "end of first nine weeks",
			"end of second nine weeks", "end of third nine weeks", "end of fourth nine weeks",
			"first day of school", "last day of school", "last day of semester",
			"end of semester", "report card", "progress report",
		},
		DayOffIndicators: []string{
			"teacher work day", "teacher workday", "student holiday",
			"student day off", "professional development", "planning day",
			"teacher planning", "staff development", "students out",
		},
		ClosureIndicators: []string{
			"students do not report", "schools closed", "student holiday",
			"school holiday", "day off", "no school", "shaded", "gray", "orange",
		},
	}
}

// Merger coalesces raw day-off annotations into contiguous break ranges,
// bridging weekends and month boundaries.
type Merger struct {
	opts   MergerOptions
	logger *slog.Logger
}

// NewMerger creates a merger. Zero-valued option lists fall back to the
// defaults.
func NewMerger(opts MergerOptions) *Merger {
	defaults := DefaultMergerOptions()
	if opts.CalendarMarkers == nil {
		opts.CalendarMarkers = defaults.CalendarMarkers
	}
	if opts.DayOffIndicators == nil {
		opts.DayOffIndicators = defaults.DayOffIndicators
	}
	if opts.ClosureIndicators == nil {
		opts.ClosureIndicators = defaults.ClosureIndicators
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{opts: opts, logger: logger}
}

// resolvedEntry is a raw entry that survived day-off resolution.
type resolvedEntry struct {
	start    time.Time
	end      time.Time
	label    string
	category Category
}

// Merge resolves day-off status per entry, sorts, and greedily accumulates
// contiguous runs. A lone surviving entry yields a one-day break; an input
// with no day-off entries yields an empty slice, not an error.
func (m *Merger) Merge(entries []RawDateEntry) []MergedBreak {
	resolved := m.resolve(entries)
	if len(resolved) == 0 {
		return nil
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].start.Before(resolved[j].start)
	})

	var merged []MergedBreak
	current := MergedBreak{
		Start:        resolved[0].start,
		End:          resolved[0].end,
		SourceLabels: []string{resolved[0].label},
		Categories:   []Category{resolved[0].category},
	}
	for _, entry := range resolved[1:] {
		if m.shouldJoin(current.End, entry.start) {
			if entry.end.After(current.End) {
				current.End = entry.end
			}
			current.SourceLabels = append(current.SourceLabels, entry.label)
			current.Categories = append(current.Categories, entry.category)
			continue
		}
		merged = append(merged, current)
		current = MergedBreak{
			Start:        entry.start,
			End:          entry.end,
			SourceLabels: []string{entry.label},
			Categories:   []Category{entry.category},
		}
	}
	merged = append(merged, current)

	m.logger.Debug("merged day-off entries", "entries", len(resolved), "breaks", len(merged))
	return merged
}

// shouldJoin decides whether an entry starting at next belongs to the run
// ending at end: adjacent days, weekend bridges, and late-month to
// early-next-month gaps (chiefly December into January).
func (m *Merger) shouldJoin(end, next time.Time) bool {
	gap := daysBetween(end, next)
	if gap <= 1 {
		return true
	}
	if gap <= 3 {
		ew, nw := mondayWeekday(end), mondayWeekday(next)
		switch {
		case ew == 4 && (nw == 0 || nw == 1): // Fri -> Mon/Tue
			return true
		case ew == 5 && nw == 0: // Sat -> Mon
			return true
		case ew == 6 && nw == 0: // Sun -> Mon
			return true
		case nw == 0: // anything -> Mon within 3 days
			return true
		}
	}
	if end.Month() != next.Month() && end.Day() >= 28 && next.Day() <= 5 && gap <= 5 {
		return true
	}
	return false
}

// resolve applies the day-off heuristics to each raw entry and keeps only
// entries that resolve to an actual student day off. Malformed start dates
// drop the single record.
func (m *Merger) resolve(entries []RawDateEntry) []resolvedEntry {
	var firstDayOfSchool time.Time
	for _, e := range entries {
		if containsFold(e.Label, "first day") && containsFold(e.Label, "school") {
			if start, ok := parseDate(e.Date); ok {
				firstDayOfSchool = start
			}
		}
	}

	var resolved []resolvedEntry
	for _, e := range entries {
		start, ok := parseDate(e.Date)
		if !ok {
			m.logger.Warn("dropping entry with malformed date", "date", e.Date, "label", e.Label)
			continue
		}
		end, ok := parseDate(e.EndDate)
		if !ok || end.Before(start) {
			end = start
		}

		label := lower(e.Label)
		combined := label + " " + lower(e.Notes)
		dayOff := e.DayOff()

		// Columbus Day is rarely a student holiday; require explicit
		// closure language before trusting the extraction.
		if containsAny(label, "columbus", "indigenous") {
			if !containsAnyOf(combined, m.opts.ClosureIndicators) {
				m.logger.Debug("dropping entry without closure evidence", "label", e.Label, "date", e.Date)
				continue
			}
		}

		if containsAnyOf(label, m.opts.CalendarMarkers) {
			if !containsAnyOf(combined, m.opts.DayOffIndicators) {
				continue
			}
		}

		if e.Category == CategoryEarlyRelease {
			dayOff = false
		}
		if containsFold(label, "early release") {
			continue
		}

		if containsAny(label, "digital learning", "independent learning", "virtual learning") {
			if !hasStudentHolidayColabel(combined) {
				continue
			}
		}

		// Pre-planning and staff-only days before the school year begins
		// are teacher time, not student holidays.
		if !firstDayOfSchool.IsZero() && start.Before(firstDayOfSchool) {
			if containsAny(label, "pre-planning", "preplanning") {
				continue
			}
			if containsFold(label, "staff development") && !containsFold(combined, "student holiday") {
				continue
			}
		}

		switch {
		case containsAny(combined, "student holiday", "student day off"):
			dayOff = true
		case containsAny(combined, "students do not report", "student do not report"):
			dayOff = true
		case e.Category == CategoryTeacherDay:
			if (e.IsStudentDayOff != nil && *e.IsStudentDayOff) ||
				containsFold(combined, "student holiday") ||
				containsAny(label, "workday", "work day") {
				dayOff = true
			}
		}

		if !dayOff {
			continue
		}
		resolved = append(resolved, resolvedEntry{
			start:    start,
			end:      end,
			label:    e.Label,
			category: e.Category,
		})
	}
	return resolved
}

// hasStudentHolidayColabel reports whether a digital/independent learning day
// is simultaneously labeled a student holiday.
func hasStudentHolidayColabel(combined string) bool {
	if containsFold(combined, "student") && containsFold(combined, "holiday") {
		return true
	}
	return containsAny(combined, "student day off", "school holiday")
}
