package calendar

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// DefaultWindowDays is the rolling forward window for inference: 24 months
// from the effective date.
const DefaultWindowDays = 731

// federalRule binds holiday-name fragments to the official calculation rule.
// Thanksgiving is anchor-only: the fourth Thursday fixes the week, but the
// source instance's start-weekday offset and duration are preserved.
type federalRule struct {
	any        []string
	all        []string
	holiday    *cal.Holiday
	anchorOnly bool
}

var federalRules = []federalRule{
	{all: []string{"labor", "day"}, holiday: us.LaborDay},
	{any: []string{"thanksgiving"}, holiday: us.ThanksgivingDay, anchorOnly: true},
	{any: []string{"mlk", "martin luther king"}, holiday: us.MlkDay},
	{any: []string{"president"}, holiday: us.PresidentsDay},
	{all: []string{"memorial", "day"}, holiday: us.MemorialDay},
	{any: []string{"independence", "july 4", "4th of july"}, holiday: us.IndependenceDay},
}

func matchFederalRule(name string) (federalRule, bool) {
	for _, rule := range federalRules {
		for _, f := range rule.any {
			if strings.Contains(name, f) {
				return rule, true
			}
		}
		if len(rule.all) == 0 {
			continue
		}
		matched := true
		for _, f := range rule.all {
			if !strings.Contains(name, f) {
				matched = false
				break
			}
		}
		if matched {
			return rule, true
		}
	}
	return federalRule{}, false
}

// InferenceOptions configures the multi-year inference engine.
type InferenceOptions struct {
	// WindowDays is the forward window length; zero means DefaultWindowDays.
	WindowDays int
	Logger     *slog.Logger
}

// InferenceEngine projects one verified instance per holiday type across the
// rolling window, using federal-holiday rules where one applies and
// structural pattern matching otherwise.
type InferenceEngine struct {
	windowDays int
	logger     *slog.Logger
}

// NewInferenceEngine creates an engine with defaults applied.
func NewInferenceEngine(opts InferenceOptions) *InferenceEngine {
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultWindowDays
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &InferenceEngine{windowDays: opts.WindowDays, logger: logger}
}

type nameYear struct {
	name string
	year int
}

// Extend returns the input list plus one synthesized holiday per missing
// (name, target-year) pair inside the window. Existing pairs are never
// duplicated, so re-running with the same input and effective date is a
// no-op. Candidates fully in the past are discarded; one straddling the
// effective date keeps its original start.
func (e *InferenceEngine) Extend(holidays []CanonicalHoliday, ctx SchoolYearContext) []CanonicalHoliday {
	if len(holidays) == 0 {
		return holidays
	}
	today := ctx.EffectiveDate()
	windowEnd := today.AddDate(0, 0, e.windowDays)

	existing := make(map[nameYear]bool, len(holidays))
	for _, h := range holidays {
		if start, ok := parseDate(h.StartDate); ok {
			existing[nameYear{normalizeName(h.Name), start.Year()}] = true
		}
	}

	// First chronological instance per distinct name is the source pattern.
	seen := make(map[string]bool)
	var sources []CanonicalHoliday
	for _, h := range holidays {
		name := normalizeName(h.Name)
		if seen[name] {
			continue
		}
		seen[name] = true
		sources = append(sources, h)
	}

	out := append(make([]CanonicalHoliday, 0, len(holidays)), holidays...)

	for _, source := range sources {
		if source.IsOmitted {
			continue
		}
		sourceStart, ok := parseDate(source.StartDate)
		if !ok {
			continue
		}
		sourceEnd, ok := parseDate(source.EndDate)
		if !ok {
			continue
		}
		name := normalizeName(source.Name)
		sourceYear := sourceStart.Year()
		duration := daysBetween(sourceStart, sourceEnd)

		for year := today.Year(); year <= windowEnd.Year(); year++ {
			if year == sourceYear || existing[nameYear{name, year}] {
				continue
			}
			start, end, ok := e.project(name, sourceStart, sourceEnd, duration, year)
			if !ok {
				e.logger.Warn("could not infer holiday for target year",
					"name", source.Name, "year", year, "source", source.StartDate)
				continue
			}
			if end.Before(today) {
				continue
			}
			if start.After(windowEnd) {
				continue
			}
			if end.After(windowEnd) {
				end = windowEnd
			}
			out = append(out, CanonicalHoliday{
				Name:       source.Name,
				StartDate:  formatDate(start),
				EndDate:    formatDate(end),
				Inferred:   true,
				SourceYear: sourceYear,
				Notes:      fmt.Sprintf("Inferred from %d calendar", sourceYear),
			})
			existing[nameYear{name, year}] = true
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate < out[j].StartDate
	})
	return out
}

// project computes the candidate range for one target year.
func (e *InferenceEngine) project(name string, sourceStart, sourceEnd time.Time, duration, targetYear int) (time.Time, time.Time, bool) {
	if duration < 0 {
		return time.Time{}, time.Time{}, false
	}
	if rule, ok := matchFederalRule(name); ok {
		anchor, _ := rule.holiday.Calc(targetYear)
		anchor = midnight(anchor)
		if anchor.IsZero() {
			return time.Time{}, time.Time{}, false
		}
		if rule.anchorOnly {
			offset := ((3-mondayWeekday(sourceStart))%7 + 7) % 7
			start := anchor.AddDate(0, 0, -offset)
			return start, start.AddDate(0, 0, duration), true
		}
		return anchor, anchor.AddDate(0, 0, duration), true
	}
	if strings.Contains(name, "christmas") ||
		(strings.Contains(name, "winter") && sourceStart.Month() == time.December) {
		return inferChristmasBreak(targetYear, sourceStart, sourceEnd, duration)
	}
	return inferBreakByPattern(targetYear, sourceStart, duration)
}

// inferChristmasBreak places the source's December start day in the target
// year, nudged to the source's weekday, and forces the end to at least
// January 1 whenever the source instance also spilled into January.
func inferChristmasBreak(targetYear int, sourceStart, sourceEnd time.Time, duration int) (time.Time, time.Time, bool) {
	start := time.Date(targetYear, time.December, sourceStart.Day(), 0, 0, 0, 0, time.UTC)
	if start.Weekday() != sourceStart.Weekday() {
		diff := mondayWeekday(sourceStart) - mondayWeekday(start)
		start = start.AddDate(0, 0, diff)
		if start.Day() > 25 {
			start = start.AddDate(0, 0, -7)
		}
	}
	if start.Month() != time.December {
		return time.Time{}, time.Time{}, false
	}
	end := start.AddDate(0, 0, duration)
	if sourceEnd.Month() == time.January {
		newYears := time.Date(targetYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)
		if end.Before(newYears) {
			end = newYears
		}
	}
	return start, end, true
}

// inferBreakByPattern reproduces the source's (nth full week, weekday
// offset, duration) triple in the target year.
func inferBreakByPattern(targetYear int, sourceStart time.Time, duration int) (time.Time, time.Time, bool) {
	n := nthFullWeek(sourceStart)
	monday := nthFullWeekStart(targetYear, sourceStart.Month(), n)
	if monday.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	start := monday.AddDate(0, 0, mondayWeekday(sourceStart))
	return start, start.AddDate(0, 0, duration), true
}
