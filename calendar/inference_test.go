package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findByNameYear(holidays []CanonicalHoliday, name string, year int) *CanonicalHoliday {
	for i, h := range holidays {
		start, ok := parseDate(h.StartDate)
		if ok && h.Name == name && start.Year() == year {
			return &holidays[i]
		}
	}
	return nil
}

func TestInference_FederalRuleMLK(t *testing.T) {
	e := NewInferenceEngine(InferenceOptions{})
	ctx := NewSchoolYearContext("2025-2026").WithEffectiveDate(date(2026, time.June, 1))
	holidays := e.Extend([]CanonicalHoliday{{
		Name:      NameMLKDay,
		StartDate: "2026-01-19",
		EndDate:   "2026-01-19",
	}}, ctx)

	inferred := findByNameYear(holidays, NameMLKDay, 2027)
	require.NotNil(t, inferred)
	assert.Equal(t, "2027-01-18", inferred.StartDate)
	assert.Equal(t, "2027-01-18", inferred.EndDate)
	assert.True(t, inferred.Inferred)
	assert.Equal(t, 2026, inferred.SourceYear)
}

func TestInference_LaborAndMemorial(t *testing.T) {
	e := NewInferenceEngine(InferenceOptions{})
	ctx := NewSchoolYearContext("2025-2026").WithEffectiveDate(date(2026, time.January, 2))
	holidays := e.Extend([]CanonicalHoliday{
		{Name: NameLaborDay, StartDate: "2025-09-01", EndDate: "2025-09-01"},
		{Name: NameMemorialDay, StartDate: "2026-05-25", EndDate: "2026-05-25"},
	}, ctx)

	labor := findByNameYear(holidays, NameLaborDay, 2026)
	require.NotNil(t, labor)
	assert.Equal(t, "2026-09-07", labor.StartDate) // first Monday of September

	memorial := findByNameYear(holidays, NameMemorialDay, 2027)
	require.NotNil(t, memorial)
	assert.Equal(t, "2027-05-31", memorial.StartDate) // last Monday of May
}

func TestInference_ThanksgivingPreservesOffsetAndDuration(t *testing.T) {
	e := NewInferenceEngine(InferenceOptions{})
	ctx := NewSchoolYearContext("2025-2026").WithEffectiveDate(date(2026, time.January, 2))
	// Source runs Monday through Friday around Thursday Nov 27 2025.
	holidays := e.Extend([]CanonicalHoliday{{
		Name:      NameThanksgivingBreak,
		StartDate: "2025-11-24",
		EndDate:   "2025-11-28",
	}}, ctx)

	inferred := findByNameYear(holidays, NameThanksgivingBreak, 2026)
	require.NotNil(t, inferred)
	// Thanksgiving 2026 is Thursday Nov 26; Monday of that week is the 23rd.
	assert.Equal(t, "2026-11-23", inferred.StartDate)
	assert.Equal(t, "2026-11-27", inferred.EndDate)
}

func TestInference_PatternPreservesTriple(t *testing.T) {
	e := NewInferenceEngine(InferenceOptions{})
	ctx := NewSchoolYearContext("2025-2026").WithEffectiveDate(date(2025, time.November, 1))
	holidays := e.Extend([]CanonicalHoliday{{
		Name:      NameFallBreak,
		StartDate: "2025-10-06",
		EndDate:   "2025-10-10",
	}}, ctx)

	inferred := findByNameYear(holidays, NameFallBreak, 2026)
	require.NotNil(t, inferred)
	start, ok := parseDate(inferred.StartDate)
	require.True(t, ok)
	end, ok := parseDate(inferred.EndDate)
	require.True(t, ok)

	source := date(2025, time.October, 6)
	assert.Equal(t, source.Weekday(), start.Weekday())
	assert.Equal(t, nthFullWeek(source), nthFullWeek(start))
	assert.Equal(t, 4, daysBetween(start, end))
	assert.Equal(t, time.October, start.Month())
}

func TestInference_ChristmasForcesNewYears(t *testing.T) {
	e := NewInferenceEngine(InferenceOptions{})
	ctx := NewSchoolYearContext("2025-2026").WithEffectiveDate(date(2026, time.June, 1))
	// Source spills into January, so every projection must cover Jan 1.
	holidays := e.Extend([]CanonicalHoliday{{
		Name:      NameChristmasBreak,
		StartDate: "2025-12-20",
		EndDate:   "2026-01-02",
	}}, ctx)

	inferred := findByNameYear(holidays, NameChristmasBreak, 2026)
	require.NotNil(t, inferred)
	start, ok := parseDate(inferred.StartDate)
	require.True(t, ok)
	end, ok := parseDate(inferred.EndDate)
	require.True(t, ok)
	assert.Equal(t, time.December, start.Month())
	assert.Equal(t, date(2025, time.December, 20).Weekday(), start.Weekday())
	newYears := date(2027, time.January, 1)
	assert.False(t, end.Before(newYears), "projection must reach January 1")
}

func TestInference_TruncationExcludesFullyPast(t *testing.T) {
	e := NewInferenceEngine(InferenceOptions{})
	ctx := NewSchoolYearContext("2025-2026").WithEffectiveDate(date(2026, time.October, 1))
	holidays := e.Extend([]CanonicalHoliday{{
		Name:      NameLaborDay,
		StartDate: "2025-09-01",
		EndDate:   "2025-09-01",
	}}, ctx)

	// Labor Day 2026 (Sep 7) ended before the effective date and is skipped;
	// 2027 is inside the window and appears.
	assert.Nil(t, findByNameYear(holidays, NameLaborDay, 2026))
	require.NotNil(t, findByNameYear(holidays, NameLaborDay, 2027))
}

func TestInference_StraddlingKeepsOriginalStart(t *testing.T) {
	e := NewInferenceEngine(InferenceOptions{})
	// Effective date falls inside the projected 2026 Christmas Break.
	ctx := NewSchoolYearContext("2025-2026").WithEffectiveDate(date(2026, time.December, 28))
	holidays := e.Extend([]CanonicalHoliday{{
		Name:      NameChristmasBreak,
		StartDate: "2025-12-20",
		EndDate:   "2026-01-02",
	}}, ctx)

	inferred := findByNameYear(holidays, NameChristmasBreak, 2026)
	require.NotNil(t, inferred)
	start, ok := parseDate(inferred.StartDate)
	require.True(t, ok)
	assert.True(t, start.Before(date(2026, time.December, 28)),
		"start stays in the past when the break straddles the effective date")
}

func TestInference_WindowClampsEndDate(t *testing.T) {
	e := NewInferenceEngine(InferenceOptions{WindowDays: 365})
	ctx := NewSchoolYearContext("2025-2026").WithEffectiveDate(date(2025, time.December, 25))
	holidays := e.Extend([]CanonicalHoliday{{
		Name:      NameChristmasBreak,
		StartDate: "2025-12-20",
		EndDate:   "2026-01-02",
	}}, ctx)

	windowEnd := date(2025, time.December, 25).AddDate(0, 0, 365)
	inferred := findByNameYear(holidays, NameChristmasBreak, 2026)
	require.NotNil(t, inferred)
	end, ok := parseDate(inferred.EndDate)
	require.True(t, ok)
	assert.False(t, end.After(windowEnd))
}

func TestInference_Idempotent(t *testing.T) {
	e := NewInferenceEngine(InferenceOptions{})
	ctx := NewSchoolYearContext("2025-2026").WithEffectiveDate(date(2026, time.June, 1))
	source := []CanonicalHoliday{
		{Name: NameMLKDay, StartDate: "2026-01-19", EndDate: "2026-01-19"},
		{Name: NameFallBreak, StartDate: "2025-10-06", EndDate: "2025-10-10"},
	}
	once := e.Extend(source, ctx)
	twice := e.Extend(once, ctx)
	assert.Equal(t, once, twice, "re-running inference must not add duplicates")
}

func TestInference_SkipsOmittedSource(t *testing.T) {
	e := NewInferenceEngine(InferenceOptions{})
	ctx := NewSchoolYearContext("2025-2026").WithEffectiveDate(date(2026, time.June, 1))
	holidays := e.Extend([]CanonicalHoliday{{
		Name:      NameFallBreak,
		StartDate: "2025-10-06",
		EndDate:   "2025-10-10",
		IsOmitted: true,
	}}, ctx)
	assert.Len(t, holidays, 1)
}

func TestInference_EmptyInput(t *testing.T) {
	e := NewInferenceEngine(InferenceOptions{})
	ctx := NewSchoolYearContext("2025-2026").WithEffectiveDate(date(2026, time.June, 1))
	assert.Empty(t, e.Extend(nil, ctx))
}
