package calendar

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2/us"
)

// keywordRule maps label fragments to a canonical holiday name. The table is
// deliberately explicit and ordered: extracted labels are unreliable, and the
// matching rules need to be inspectable rather than buried in string soup.
type keywordRule struct {
	name string
	any  []string // match when any fragment is present
	all  []string // match when every fragment is present
}

var keywordRules = []keywordRule{
	{name: NameMLKDay, any: []string{"mlk", "martin luther", "king"}},
	{name: NamePresidentsDay, any: []string{"president"}},
	{name: NameMemorialDay, any: []string{"memorial"}},
	{name: NameLaborDay, any: []string{"labor"}},
	{name: NameVeteransDay, any: []string{"veteran"}},
	{name: NameEaster, any: []string{"easter"}},
	{name: NameIndependenceDay, any: []string{"independence", "july 4", "4th of july"}},
	{name: NameThanksgivingBreak, any: []string{"thanksgiving", "thank"}},
	{name: NameChristmasBreak, any: []string{"christmas"}},
	{name: NameSpringBreak, all: []string{"spring", "break"}},
	{name: NameFallBreak, all: []string{"fall", "break"}},
	// "winter break" starting in December is the Christmas break in this
	// jurisdiction; the February one is the real Winter Break.
	{name: NameWinterBreak, all: []string{"winter", "break"}},
}

func (r keywordRule) matches(label string) bool {
	for _, f := range r.any {
		if containsFold(label, f) {
			return true
		}
	}
	if len(r.all) == 0 {
		return false
	}
	for _, f := range r.all {
		if !containsFold(label, f) {
			return false
		}
	}
	return true
}

// monthFallback names an unlabeled multi-day span purely from its starting
// month.
var monthFallback = map[time.Month]string{
	time.December: NameChristmasBreak,
	time.February: NameWinterBreak,
	time.October:  NameFallBreak,
	time.March:    NameSpringBreak,
	time.April:    NameSpringBreak,
	time.November: NameThanksgivingBreak,
}

// breakName resolves a canonical name: keyword match first, then month
// inference for multi-day spans, then the verbatim label.
func breakName(month time.Month, label string, multiDay bool) string {
	for _, rule := range keywordRules {
		if !rule.matches(label) {
			continue
		}
		if rule.name == NameWinterBreak && month == time.December {
			return NameChristmasBreak
		}
		return rule.name
	}
	if multiDay {
		if name, ok := monthFallback[month]; ok {
			return name
		}
	}
	if month == time.October {
		return NameFallBreak
	}
	if label != "" {
		return label
	}
	return NameStudentHoliday
}

// Normalizer re-labels merged break ranges with jurisdiction-specific
// canonical names and consolidates fragments that belong to the same break.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. A nil logger falls back to
// slog.Default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize converts merged breaks into canonical holidays: names each range,
// duplicates February ranges that double as Presidents Day, demotes extra
// Fall Breaks, consolidates December/January, February, and November
// fragments, and returns the deduplicated list sorted by start date.
func (n *Normalizer) Normalize(breaks []MergedBreak, ctx SchoolYearContext) []CanonicalHoliday {
	holidays, sourceLabels := n.nameBreaks(breaks)
	holidays = n.demoteExtraFallBreaks(holidays, sourceLabels)
	holidays = n.consolidateChristmas(holidays)
	holidays = n.consolidateFebruary(holidays, ctx)
	holidays = n.consolidateNovember(holidays, ctx)
	holidays = n.ensureThanksgiving(holidays, ctx)
	holidays = dedupeHolidays(holidays)
	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].StartDate < holidays[j].StartDate
	})
	return holidays
}

// nameBreaks emits one canonical holiday per merged break, plus the
// Presidents Day / Winter Break duplicate for multi-day February ranges.
// The returned label slice parallels the holidays for later demotion.
func (n *Normalizer) nameBreaks(breaks []MergedBreak) ([]CanonicalHoliday, []string) {
	var holidays []CanonicalHoliday
	var sourceLabels []string
	for _, b := range breaks {
		label := b.PrimaryLabel()
		multiDay := b.DurationDays() >= 2
		name := breakName(b.Start.Month(), label, multiDay)

		h := CanonicalHoliday{
			Name:      name,
			StartDate: formatDate(b.Start),
			EndDate:   formatDate(b.End),
			Notes:     mergedNote(b.SourceLabels),
		}
		holidays = append(holidays, h)
		sourceLabels = append(sourceLabels, label)

		// A February break week and the Presidents Day weekend are the
		// same days on these calendars; report the range under both names.
		if b.Start.Month() == time.February && multiDay {
			switch name {
			case NameWinterBreak:
				dup := h
				dup.Name = NamePresidentsDay
				dup.Notes = "Also interpreted as Presidents Day Weekend (overlapping with Winter Break)"
				holidays = append(holidays, dup)
				sourceLabels = append(sourceLabels, label)
			case NamePresidentsDay:
				dup := h
				dup.Name = NameWinterBreak
				dup.Notes = "Also interpreted as Winter Break (overlapping with Presidents Day)"
				holidays = append(holidays, dup)
				sourceLabels = append(sourceLabels, label)
			}
		}
	}
	return holidays, sourceLabels
}

func mergedNote(labels []string) string {
	distinct := distinctStrings(labels)
	if len(distinct) < 2 {
		return ""
	}
	return "Merged from: " + strings.Join(distinct, ", ")
}

// demoteExtraFallBreaks keeps only the longest Fall Break of a school year
// under that name; the rest revert to their source labels. This is a known
// approximation: a district with two legitimate fall breaks loses one name.
func (n *Normalizer) demoteExtraFallBreaks(holidays []CanonicalHoliday, sourceLabels []string) []CanonicalHoliday {
	longest, count := -1, 0
	longestSpan := -1
	for i, h := range holidays {
		if h.Name != NameFallBreak {
			continue
		}
		count++
		start, ok1 := parseDate(h.StartDate)
		end, ok2 := parseDate(h.EndDate)
		if !ok1 || !ok2 {
			continue
		}
		if span := daysBetween(start, end); span > longestSpan {
			longestSpan = span
			longest = i
		}
	}
	if count < 2 {
		return holidays
	}
	for i := range holidays {
		if holidays[i].Name != NameFallBreak || i == longest {
			continue
		}
		label := ""
		if i < len(sourceLabels) {
			label = sourceLabels[i]
		}
		switch {
		case label != "" && containsFold(label, "teacher"):
			holidays[i].Name = NameTeacherWorkDay
		case label != "":
			holidays[i].Name = label
		default:
			holidays[i].Name = NameStudentHoliday
		}
		n.logger.Warn("demoted extra fall break",
			"start", holidays[i].StartDate, "renamed", holidays[i].Name)
	}
	return holidays
}

// consolidateChristmas folds every December-starting range into a single
// Christmas Break and absorbs early-January stragglers: a range ending
// Dec 28-31 absorbs one starting Jan 1-5 within a 5-day gap.
func (n *Normalizer) consolidateChristmas(holidays []CanonicalHoliday) []CanonicalHoliday {
	var out []CanonicalHoliday
	var christmas *CanonicalHoliday
	var christmasEnd time.Time
	for _, h := range holidays {
		start, ok := parseDate(h.StartDate)
		if !ok {
			n.logger.Warn("dropping holiday with malformed start date", "name", h.Name, "start", h.StartDate)
			continue
		}
		end, ok := parseDate(h.EndDate)
		if !ok {
			end = start
		}

		if start.Month() == time.December || (start.Month() == time.November && end.Month() == time.December) {
			if christmas == nil {
				c := h
				c.Name = NameChristmasBreak
				christmas = &c
				christmasEnd = end
			} else if end.After(christmasEnd) {
				christmas.EndDate = h.EndDate
				christmasEnd = end
			}
			continue
		}

		if christmas != nil && start.Month() == time.January && start.Day() <= 5 &&
			christmasEnd.Month() == time.December && christmasEnd.Day() >= 28 &&
			daysBetween(christmasEnd, start) <= 5 {
			if end.After(christmasEnd) {
				christmas.EndDate = formatDate(end)
				christmasEnd = end
			}
			continue
		}

		out = append(out, h)
	}
	if christmas != nil {
		out = append(out, *christmas)
	}
	return out
}

// consolidateFebruary merges every February range starting on day >= 14 of
// the school year's spring year into one Winter Break, trimmed of a trailing
// weekend. Presidents Day listed apart from the February break collapses
// into the same span.
func (n *Normalizer) consolidateFebruary(holidays []CanonicalHoliday, ctx SchoolYearContext) []CanonicalHoliday {
	springYear, ok := ctx.SpringYear()
	if !ok {
		return holidays
	}
	var rest, feb []CanonicalHoliday
	var minStart, maxEnd time.Time
	for _, h := range holidays {
		start, sok := parseDate(h.StartDate)
		if !sok || start.Month() != time.February || start.Year() != springYear || start.Day() < 14 {
			rest = append(rest, h)
			continue
		}
		end, eok := parseDate(h.EndDate)
		if !eok {
			end = start
		}
		if feb == nil || start.Before(minStart) {
			minStart = start
		}
		if feb == nil || end.After(maxEnd) {
			maxEnd = end
		}
		feb = append(feb, h)
	}
	if len(feb) == 0 {
		return holidays
	}
	maxEnd = trimWeekendEnd(minStart, maxEnd)

	names := make([]string, 0, len(feb))
	for _, h := range feb {
		names = append(names, h.Name)
	}
	notes := ""
	if distinct := distinctStrings(names); len(distinct) > 1 {
		notes = "Consolidated from: " + strings.Join(distinct, ", ")
	}
	return append(rest, CanonicalHoliday{
		Name:      NameWinterBreak,
		StartDate: formatDate(minStart),
		EndDate:   formatDate(maxEnd),
		Notes:     notes,
	})
}

// consolidateNovember merges November ranges starting on day >= 22 of the
// fall year into one Thanksgiving Break, but only when the merged span is at
// least 3 days and contains the actual fourth-Thursday Thanksgiving date.
// A failed sanity check abandons the merge and keeps the originals.
func (n *Normalizer) consolidateNovember(holidays []CanonicalHoliday, ctx SchoolYearContext) []CanonicalHoliday {
	fallYear, ok := ctx.FallYear()
	if !ok {
		return holidays
	}
	var rest, nov []CanonicalHoliday
	var minStart, maxEnd time.Time
	for _, h := range holidays {
		start, sok := parseDate(h.StartDate)
		if !sok || start.Month() != time.November || start.Year() != fallYear || start.Day() < 22 {
			rest = append(rest, h)
			continue
		}
		end, eok := parseDate(h.EndDate)
		if !eok {
			end = start
		}
		if nov == nil || start.Before(minStart) {
			minStart = start
		}
		if nov == nil || end.After(maxEnd) {
			maxEnd = end
		}
		nov = append(nov, h)
	}
	if len(nov) < 2 {
		return holidays
	}
	maxEnd = trimWeekendEnd(minStart, maxEnd)

	thanksgiving, _ := us.ThanksgivingDay.Calc(fallYear)
	thanksgiving = midnight(thanksgiving)
	span := daysBetween(minStart, maxEnd) + 1
	if span < 3 || minStart.After(thanksgiving) || maxEnd.Before(thanksgiving) {
		n.logger.Warn("rejecting november consolidation",
			"start", formatDate(minStart), "end", formatDate(maxEnd),
			"thanksgiving", formatDate(thanksgiving))
		return holidays
	}

	names := make([]string, 0, len(nov))
	for _, h := range nov {
		names = append(names, h.Name)
	}
	notes := ""
	if distinct := distinctStrings(names); len(distinct) > 1 {
		notes = "Consolidated from: " + strings.Join(distinct, ", ")
	}
	return append(rest, CanonicalHoliday{
		Name:      NameThanksgivingBreak,
		StartDate: formatDate(minStart),
		EndDate:   formatDate(maxEnd),
		Notes:     notes,
	})
}

// ensureThanksgiving synthesizes a Monday-Friday Thanksgiving week when the
// extraction produced none at all, anchored to the fourth Thursday of the
// fall year.
func (n *Normalizer) ensureThanksgiving(holidays []CanonicalHoliday, ctx SchoolYearContext) []CanonicalHoliday {
	for _, h := range holidays {
		if h.Name == NameThanksgivingBreak {
			return holidays
		}
	}
	fallYear, ok := ctx.FallYear()
	if !ok {
		return holidays
	}
	thanksgiving, _ := us.ThanksgivingDay.Calc(fallYear)
	thanksgiving = midnight(thanksgiving)
	monday := thanksgiving.AddDate(0, 0, -mondayWeekday(thanksgiving))
	friday := monday.AddDate(0, 0, 4)
	n.logger.Info("synthesizing missing thanksgiving break",
		"start", formatDate(monday), "end", formatDate(friday))
	return append(holidays, CanonicalHoliday{
		Name:      NameThanksgivingBreak,
		StartDate: formatDate(monday),
		EndDate:   formatDate(friday),
		Notes:     "Inferred from school year (extraction may have missed this)",
	})
}

// dedupeHolidays removes exact (start, end, name) duplicates, keeping the
// first occurrence.
func dedupeHolidays(holidays []CanonicalHoliday) []CanonicalHoliday {
	type key struct{ start, end, name string }
	seen := make(map[key]bool, len(holidays))
	out := holidays[:0]
	for _, h := range holidays {
		k := key{h.StartDate, h.EndDate, h.Name}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, h)
	}
	return out
}

func distinctStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
