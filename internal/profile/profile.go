package profile

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/custodycalc/schoolcal/calendar"
)

// Profile is the runtime configuration for the schoolcal CLI.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// EffectiveDate overrides "today" for deterministic runs (YYYY-MM-DD).
	// Empty means real time.
	EffectiveDate string
	// WindowDays is the inference forward window; 0 uses the default.
	WindowDays int
	// ExtraCalendarMarkers extends the denylist of label fragments that
	// never count as a day off. District terminology varies, so the stock
	// list is extensible rather than closed.
	ExtraCalendarMarkers []string
	// Version is the current version of the CLI.
	Version string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from SCHOOLCAL_* environment variables.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("SCHOOLCAL_MODE", "dev")
	p.EffectiveDate = os.Getenv("SCHOOLCAL_EFFECTIVE_DATE")
	if v := os.Getenv("SCHOOLCAL_WINDOW_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			p.WindowDays = days
		}
	}
	if v := os.Getenv("SCHOOLCAL_EXTRA_CALENDAR_MARKERS"); v != "" {
		for _, marker := range strings.Split(v, ",") {
			if marker = strings.TrimSpace(marker); marker != "" {
				p.ExtraCalendarMarkers = append(p.ExtraCalendarMarkers, marker)
			}
		}
	}
}

// Validate normalizes the profile and rejects unusable values.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.WindowDays < 0 {
		return errors.Errorf("window days must not be negative, got %d", p.WindowDays)
	}
	if p.EffectiveDate != "" {
		if _, err := time.ParseInLocation(calendar.DateLayout, p.EffectiveDate, time.UTC); err != nil {
			return errors.Wrapf(err, "invalid effective date %q", p.EffectiveDate)
		}
	}
	return nil
}

// EffectiveTime parses the effective-date override. The second return is
// false when no override is set.
func (p *Profile) EffectiveTime() (time.Time, bool) {
	if p.EffectiveDate == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(calendar.DateLayout, p.EffectiveDate, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MergerOptions folds the profile's extra denylist entries into the stock
// merger options.
func (p *Profile) MergerOptions() calendar.MergerOptions {
	opts := calendar.DefaultMergerOptions()
	opts.CalendarMarkers = append(opts.CalendarMarkers, p.ExtraCalendarMarkers...)
	return opts
}
