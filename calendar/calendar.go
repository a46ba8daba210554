// Package calendar turns noisy, AI/OCR-extracted day-off annotations from
// school calendar documents into a canonical multi-year holiday list.
//
// The package is a pure batch-transform library: the extraction collaborator
// hands over an ordered sequence of raw annotated date entries, and the
// pipeline merges them into contiguous break ranges, applies jurisdiction
// naming rules, validates the result, and projects it across a rolling
// forward window. No stage performs I/O.
package calendar

import (
	"time"

	"github.com/pkg/errors"
)

// ErrMissingInput is returned when a required input is absent.
// Data-quality problems never surface as errors; only contract violations do.
var ErrMissingInput = errors.New("calendar: missing required input")

// Canonical holiday names. Labels that match a keyword or month rule are
// normalized to one of these; everything else keeps its verbatim label.
const (
	NameMLKDay            = "MLK Day"
	NamePresidentsDay     = "Presidents Day"
	NameMemorialDay       = "Memorial Day"
	NameLaborDay          = "Labor Day"
	NameVeteransDay       = "Veterans Day"
	NameEaster            = "Easter"
	NameIndependenceDay   = "Independence Day"
	NameFallBreak         = "Fall Break"
	NameThanksgivingBreak = "Thanksgiving Break"
	NameChristmasBreak    = "Christmas Break"
	NameWinterBreak       = "Winter Break"
	NameSpringBreak       = "Spring Break"
	NameStudentHoliday    = "Student Holiday"
	NameTeacherWorkDay    = "Teacher Work Day"
)

// StandardHolidays is the closed set of holiday types the downstream
// consumer expects. Types with no verified or inferred instance are reported
// in the omitted list, except Christmas Break which is treated as mandatory.
var StandardHolidays = []string{
	NameMLKDay,
	NamePresidentsDay,
	NameSpringBreak,
	NameEaster,
	NameMemorialDay,
	NameLaborDay,
	NameFallBreak,
	NameVeteransDay,
	NameThanksgivingBreak,
	NameChristmasBreak,
	NameWinterBreak,
}

// Category classifies a raw annotation as reported by the extractor.
type Category string

const (
	CategoryHoliday        Category = "holiday"
	CategoryBreak          Category = "break"
	CategoryTeacherDay     Category = "teacher_day"
	CategoryStudentHoliday Category = "student_holiday"
	CategoryEarlyRelease   Category = "early_release"
	CategoryOther          Category = "other"
)

// RawDateEntry is a single annotated date as extracted from a calendar
// document. It is immutable external input: the merger consumes it once and
// discards it. IsStudentDayOff is a pointer because the extractor may omit
// the flag entirely, which is treated as true.
type RawDateEntry struct {
	Date            string   `json:"date"`
	EndDate         string   `json:"endDate,omitempty"`
	Label           string   `json:"label"`
	Category        Category `json:"category"`
	IsStudentDayOff *bool    `json:"isStudentDayOff,omitempty"`
	Month           string   `json:"month,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	VisualIndicator string   `json:"visualIndicator,omitempty"`
}

// DayOff reports the extractor's day-off flag, defaulting to true when the
// extractor omitted it.
func (e RawDateEntry) DayOff() bool {
	if e.IsStudentDayOff == nil {
		return true
	}
	return *e.IsStudentDayOff
}

// MergedBreak is a contiguous run of consecutive no-school days derived from
// one or more raw annotations. Invariant: Start <= End.
type MergedBreak struct {
	Start        time.Time
	End          time.Time
	SourceLabels []string
	Categories   []Category
}

// DurationDays returns End minus Start in days.
func (b MergedBreak) DurationDays() int {
	return daysBetween(b.Start, b.End)
}

// PrimaryLabel picks the best candidate label for naming: the first source
// label containing "break", otherwise the first label.
func (b MergedBreak) PrimaryLabel() string {
	for _, label := range b.SourceLabels {
		if label != "" && containsFold(label, "break") {
			return label
		}
	}
	if len(b.SourceLabels) > 0 {
		return b.SourceLabels[0]
	}
	return ""
}

// CanonicalHoliday is one normalized holiday or break range. Dates stay in
// YYYY-MM-DD string form at this boundary because the downstream contract is
// string-based and malformed values must only ever cost the single record.
type CanonicalHoliday struct {
	Name       string `json:"name"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	IsOmitted  bool   `json:"isOmitted"`
	Inferred   bool   `json:"inferred"`
	SourceYear int    `json:"sourceYear,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// ShadingObservation is a visual shading hit reported by the extractor:
// a colored calendar cell that may indicate a day off even when the label
// extraction missed it.
type ShadingObservation struct {
	Month string `json:"month"`
	Day   int    `json:"day"`
	Color string `json:"color"`
}

// Input is the upstream contract from the extraction collaborator.
type Input struct {
	SchoolName string               `json:"schoolName"`
	SchoolYear string               `json:"schoolYear"`
	Confidence string               `json:"confidence"`
	RawDates   []RawDateEntry       `json:"rawDates"`
	Shading    []ShadingObservation `json:"shading,omitempty"`
	LegendInfo string               `json:"legendInfo,omitempty"`
}

// Result is the downstream contract: the ordered canonical holiday list plus
// the companion omitted list.
type Result struct {
	SchoolName      string             `json:"schoolName"`
	SchoolYear      string             `json:"schoolYear"`
	Holidays        []CanonicalHoliday `json:"holidays"`
	OmittedHolidays []string           `json:"omittedHolidays"`
	Confidence      string             `json:"confidence"`
	Notes           string             `json:"notes,omitempty"`
}

// SchoolYearContext carries the school-year label and the effective "today"
// used for truncation. The effective date is an explicit value rather than an
// ambient clock lookup so the inference engine stays a pure function of its
// arguments.
type SchoolYearContext struct {
	SchoolYear    string
	effectiveDate time.Time
}

// NewSchoolYearContext builds a context for a "YYYY-YYYY" school year label.
func NewSchoolYearContext(schoolYear string) SchoolYearContext {
	return SchoolYearContext{SchoolYear: schoolYear}
}

// WithEffectiveDate overrides the effective current date. The zero value
// falls back to real time.
func (c SchoolYearContext) WithEffectiveDate(t time.Time) SchoolYearContext {
	c.effectiveDate = midnight(t)
	return c
}

// EffectiveDate returns the effective current date at UTC midnight.
func (c SchoolYearContext) EffectiveDate() time.Time {
	if c.effectiveDate.IsZero() {
		return midnight(time.Now().UTC())
	}
	return c.effectiveDate
}

// FallYear parses the first year of the "YYYY-YYYY" school year label.
func (c SchoolYearContext) FallYear() (int, bool) {
	fall, _, ok := splitSchoolYear(c.SchoolYear)
	return fall, ok
}

// SpringYear parses the second year of the school year label. Two-digit
// suffixes ("2026-27") are accepted.
func (c SchoolYearContext) SpringYear() (int, bool) {
	_, spring, ok := splitSchoolYear(c.SchoolYear)
	return spring, ok
}
