package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeFromShading_FebruaryRun(t *testing.T) {
	ctx := NewSchoolYearContext("2025-2026")
	holidays := SynthesizeFromShading(nil, []ShadingObservation{
		{Month: "February", Day: 16, Color: "yellow"},
		{Month: "February", Day: 17, Color: "yellow"},
		{Month: "February", Day: 18, Color: "yellow"},
		{Month: "February", Day: 19, Color: "yellow"},
		{Month: "February", Day: 20, Color: "yellow"},
	}, ctx, nil)

	winter := findByName(holidays, NameWinterBreak)
	require.Len(t, winter, 1)
	assert.Equal(t, "2026-02-16", winter[0].StartDate)
	assert.Equal(t, "2026-02-20", winter[0].EndDate)

	presidents := findByName(holidays, NamePresidentsDay)
	require.Len(t, presidents, 1)
	assert.Equal(t, winter[0].StartDate, presidents[0].StartDate)
}

func TestSynthesizeFromShading_WeekendGapJoinsRun(t *testing.T) {
	ctx := NewSchoolYearContext("2025-2026")
	// Feb 14-15 2026 is a weekend; Friday the 13th joins Monday the 16th.
	holidays := SynthesizeFromShading(nil, []ShadingObservation{
		{Month: "February", Day: 13, Color: "blue"},
		{Month: "February", Day: 16, Color: "blue"},
		{Month: "February", Day: 17, Color: "blue"},
	}, ctx, nil)

	winter := findByName(holidays, NameWinterBreak)
	require.Len(t, winter, 1)
	assert.Equal(t, "2026-02-13", winter[0].StartDate)
	assert.Equal(t, "2026-02-17", winter[0].EndDate)
}

func TestSynthesizeFromShading_SkipsWhenBreakAlreadyKnown(t *testing.T) {
	ctx := NewSchoolYearContext("2025-2026")
	existing := []CanonicalHoliday{{
		Name:      NameWinterBreak,
		StartDate: "2026-02-16",
		EndDate:   "2026-02-20",
	}}
	holidays := SynthesizeFromShading(existing, []ShadingObservation{
		{Month: "February", Day: 16, Color: "yellow"},
		{Month: "February", Day: 17, Color: "yellow"},
	}, ctx, nil)
	assert.Len(t, holidays, 1)
}

func TestSynthesizeFromShading_IgnoresSingleDays(t *testing.T) {
	ctx := NewSchoolYearContext("2025-2026")
	holidays := SynthesizeFromShading(nil, []ShadingObservation{
		{Month: "February", Day: 16, Color: "yellow"},
	}, ctx, nil)
	assert.Empty(t, holidays)
}

func TestSynthesizeFromShading_UnparseableSchoolYear(t *testing.T) {
	ctx := NewSchoolYearContext("unknown")
	holidays := SynthesizeFromShading(nil, []ShadingObservation{
		{Month: "February", Day: 16, Color: "yellow"},
		{Month: "February", Day: 17, Color: "yellow"},
	}, ctx, nil)
	assert.Empty(t, holidays)
}

func TestShadedRuns(t *testing.T) {
	runs := shadedRuns(2026, time.February, []int{16, 17, 18, 23, 25})
	// 16-18 is a run; 23 and 25 are isolated weekdays (Feb 24 is a Tuesday).
	require.Len(t, runs, 1)
	assert.Equal(t, dayRun{16, 18}, runs[0])
}
