package calendar

import (
	"log/slog"
	"sort"
	"time"
)

var monthsByName = map[string]time.Month{
	"January": time.January, "February": time.February, "March": time.March,
	"April": time.April, "May": time.May, "June": time.June,
	"July": time.July, "August": time.August, "September": time.September,
	"October": time.October, "November": time.November, "December": time.December,
}

// SynthesizeFromShading adds breaks that are visible only as shaded calendar
// cells: when label extraction under-detects a known pattern (chiefly the
// February break), a multi-day run of shaded days becomes a break of its
// own. Only months with at least a two-day run are considered.
func SynthesizeFromShading(holidays []CanonicalHoliday, shading []ShadingObservation, ctx SchoolYearContext, logger *slog.Logger) []CanonicalHoliday {
	if len(shading) == 0 {
		return holidays
	}
	if logger == nil {
		logger = slog.Default()
	}
	fallYear, fok := ctx.FallYear()
	springYear, sok := ctx.SpringYear()
	if !fok || !sok {
		return holidays
	}

	existing := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		existing[h.Name] = true
	}

	byMonth := make(map[string][]int)
	for _, s := range shading {
		if s.Month == "" || s.Day <= 0 {
			continue
		}
		byMonth[s.Month] = append(byMonth[s.Month], s.Day)
	}

	for monthName, days := range byMonth {
		month, ok := monthsByName[monthName]
		if !ok {
			continue
		}
		days = distinctSortedInts(days)
		if len(days) < 2 {
			continue
		}
		year := fallYear
		if month <= time.June {
			year = springYear
		}

		for _, run := range shadedRuns(year, month, days) {
			// February is the break most often visible only via shading:
			// synthesize it when nothing in February was extracted.
			if month != time.February || existing[NameWinterBreak] || existing[NamePresidentsDay] {
				continue
			}
			endDay := run.end
			if last := lastDayOfMonth(year, month); endDay > last {
				endDay = last
			}
			start := time.Date(year, month, run.start, 0, 0, 0, 0, time.UTC)
			end := time.Date(year, month, endDay, 0, 0, 0, 0, time.UTC)

			winter := CanonicalHoliday{
				Name:      NameWinterBreak,
				StartDate: formatDate(start),
				EndDate:   formatDate(end),
				Notes:     "Detected from visual shading in calendar",
			}
			presidents := winter
			presidents.Name = NamePresidentsDay
			presidents.Notes = "Also interpreted as Presidents Day (overlapping with Winter Break)"

			holidays = append(holidays, winter, presidents)
			existing[NameWinterBreak] = true
			existing[NamePresidentsDay] = true
			logger.Info("added break from shading",
				"name", NameWinterBreak, "start", winter.StartDate, "end", winter.EndDate)
		}
	}
	return holidays
}

type dayRun struct{ start, end int }

// shadedRuns groups shaded day numbers into runs that are consecutive or
// separated only by weekend days. Single-day runs are discarded.
func shadedRuns(year int, month time.Month, days []int) []dayRun {
	var runs []dayRun
	start, end := days[0], days[0]
	for _, d := range days[1:] {
		if d == end+1 || isWeekendGap(year, month, end, d) {
			end = d
			continue
		}
		if end > start {
			runs = append(runs, dayRun{start, end})
		}
		start, end = d, d
	}
	if end > start {
		runs = append(runs, dayRun{start, end})
	}
	return runs
}

// isWeekendGap reports whether every day strictly between d1 and d2 is a
// Saturday or Sunday.
func isWeekendGap(year int, month time.Month, d1, d2 int) bool {
	if d2 <= d1+1 {
		return true
	}
	last := lastDayOfMonth(year, month)
	for d := d1 + 1; d < d2; d++ {
		if d > last {
			return false
		}
		if !isWeekend(time.Date(year, month, d, 0, 0, 0, 0, time.UTC)) {
			return false
		}
	}
	return true
}

func distinctSortedInts(values []int) []int {
	seen := make(map[int]bool, len(values))
	var out []int
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
