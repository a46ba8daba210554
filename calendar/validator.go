package calendar

import (
	"log/slog"
)

// Validator corrects a canonical holiday list in place: breaks end on the
// last school day, so weekend-landing end dates are trimmed back, and
// low-confidence false positives are dropped.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a validator. A nil logger falls back to slog.Default.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate trims Saturday/Sunday end dates back toward Friday (never before
// the start date) and drops Columbus/Indigenous Peoples' Day entries lacking
// shading or closure evidence. A malformed date skips the single record,
// never the batch.
func (v *Validator) Validate(holidays []CanonicalHoliday) []CanonicalHoliday {
	validated := holidays[:0]
	for _, h := range holidays {
		if h.StartDate == "" {
			v.logger.Warn("dropping holiday without start date", "name", h.Name)
			continue
		}

		if containsAny(h.Name, "columbus", "indigenous") {
			if !containsAny(h.Notes, "shaded", "gray", "orange") {
				v.logger.Debug("dropping unshaded holiday", "name", h.Name, "start", h.StartDate)
				continue
			}
		}

		start, ok := parseDate(h.StartDate)
		if !ok {
			// Not parseable; leave the record untouched rather than fail.
			validated = append(validated, h)
			continue
		}
		end, ok := parseDate(h.EndDate)
		if !ok {
			end = start
		}
		h.EndDate = formatDate(trimWeekendEnd(start, end))
		validated = append(validated, h)
	}
	return validated
}
