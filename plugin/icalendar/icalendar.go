// Package icalendar exports a canonical holiday list as an iCalendar
// document, so downstream consumers that speak ICS (calendar apps, the
// parenting-time planner) can subscribe to the normalized calendar.
package icalendar

import (
	"log/slog"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/custodycalc/schoolcal/calendar"
)

// Config holds the export configuration.
type Config struct {
	// ProductID identifies the generator in the PRODID property.
	ProductID string
	// IncludeInferred controls whether projected future instances are
	// exported alongside verified ones.
	IncludeInferred bool
}

// DefaultConfig returns the default export configuration.
func DefaultConfig() *Config {
	return &Config{
		ProductID:       "-//schoolcal//holiday calendar//EN",
		IncludeInferred: true,
	}
}

// Exporter renders results as iCalendar text.
type Exporter struct {
	config *Config
	logger *slog.Logger
}

// NewExporter creates an exporter. A nil config uses DefaultConfig.
func NewExporter(config *Config) *Exporter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Exporter{config: config, logger: slog.Default()}
}

// SetLogger sets a custom logger.
func (e *Exporter) SetLogger(logger *slog.Logger) {
	e.logger = logger
}

// Export serializes the result's holiday list as an all-day-event calendar.
// Holidays with malformed dates are skipped individually, matching the
// pipeline's own error posture.
func (e *Exporter) Export(result *calendar.Result) (string, error) {
	if result == nil {
		return "", errors.New("icalendar: result is required")
	}

	c := ics.NewCalendar()
	c.SetMethod(ics.MethodPublish)
	c.SetProductId(e.config.ProductID)

	exported := 0
	for _, h := range result.Holidays {
		if h.Inferred && !e.config.IncludeInferred {
			continue
		}
		start, err := time.ParseInLocation(calendar.DateLayout, h.StartDate, time.UTC)
		if err != nil {
			e.logger.Warn("skipping holiday with malformed start date",
				"name", h.Name, "start", h.StartDate)
			continue
		}
		end, err := time.ParseInLocation(calendar.DateLayout, h.EndDate, time.UTC)
		if err != nil {
			end = start
		}

		event := c.AddEvent(uuid.NewString())
		event.SetDtStampTime(time.Now().UTC())
		event.SetAllDayStartAt(start)
		// DTEND is exclusive for all-day events.
		event.SetAllDayEndAt(end.AddDate(0, 0, 1))
		event.SetSummary(h.Name)
		description := h.Notes
		if h.Inferred {
			if description != "" {
				description += "\n"
			}
			description += "Projected instance; not verified against a published calendar."
		}
		if description != "" {
			event.SetDescription(description)
		}
		exported++
	}

	e.logger.Debug("exported holidays to icalendar",
		"schoolYear", result.SchoolYear, "events", exported)
	return c.Serialize(), nil
}
