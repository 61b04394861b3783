package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	DateLayout          = "2006-01-02"
	DefaultDayStartHour = 9
	DefaultBreakHours   = 1
)

type ValidationError struct {
	Field  string
	Reason string
}

func (err ValidationError) Error() string {
	return fmt.Sprintf("invalid %v: %v", err.Field, err.Reason)
}

type Constraints struct {
	StartDate     time.Time
	EndDate       time.Time
	DailySlots    int
	SlotDuration  int // Hours
	AllowWeekends bool
	ExcludedDates []time.Time
	SpacingDays   int // Minimum days between two hard exams of overlapping populations
	DayStartHour  int // Hour at which the first slot of a day begins
	BreakHours    int // Mandatory break between two consecutive slots of the same day
}

func ParseConstraints(raw RawConstraints) (Constraints, error) {
	startDate, err := parseDate("startDate", raw.StartDate)
	if err != nil {
		return Constraints{}, err
	}
	endDate, err := parseDate("endDate", raw.EndDate)
	if err != nil {
		return Constraints{}, err
	}

	excludedDates := make([]time.Time, 0, len(raw.ExcludedDates))
	for i, value := range raw.ExcludedDates {
		date, err := parseDate(fmt.Sprintf("excludedDates[%d]", i), value)
		if err != nil {
			return Constraints{}, err
		}
		excludedDates = append(excludedDates, date)
	}

	constraints := Constraints{
		StartDate:     startDate,
		EndDate:       endDate,
		DailySlots:    raw.DailySlots,
		SlotDuration:  raw.SlotDuration,
		AllowWeekends: raw.AllowWeekends,
		ExcludedDates: excludedDates,
		SpacingDays:   raw.SpacingDays,
		DayStartHour:  lo.FromPtrOr(raw.DayStartHour, DefaultDayStartHour),
		BreakHours:    lo.FromPtrOr(raw.BreakHours, DefaultBreakHours),
	}

	if err := constraints.Validate(); err != nil {
		return Constraints{}, err
	}
	return constraints, nil
}

func parseDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, ValidationError{Field: field, Reason: "date is required"}
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ValidationError{Field: field, Reason: fmt.Sprintf("malformed date %q, expected YYYY-MM-DD", value)}
	}
	return date, nil
}

// Validate checks the constraints are well-formed; the first offending field is reported
func (constraints Constraints) Validate() error {
	switch {
	case constraints.StartDate.IsZero():
		return ValidationError{Field: "startDate", Reason: "date is required"}
	case constraints.EndDate.IsZero():
		return ValidationError{Field: "endDate", Reason: "date is required"}
	case constraints.EndDate.Before(constraints.StartDate):
		return ValidationError{
			Field:  "endDate",
			Reason: fmt.Sprintf("%v is before startDate %v", constraints.EndDate.Format(DateLayout), constraints.StartDate.Format(DateLayout)),
		}
	case constraints.DailySlots < 1:
		return ValidationError{Field: "dailySlots", Reason: "must be at least 1"}
	case constraints.SlotDuration < 1:
		return ValidationError{Field: "slotDuration", Reason: "must be at least 1 hour"}
	case constraints.SpacingDays < 0:
		return ValidationError{Field: "spacingDays", Reason: "must not be negative"}
	case constraints.DayStartHour < 0 || constraints.DayStartHour > 23:
		return ValidationError{Field: "dayStartHour", Reason: "must be between 0 and 23"}
	case constraints.BreakHours < 0:
		return ValidationError{Field: "breakHours", Reason: "must not be negative"}
	}

	lastSlotEnd := constraints.slotStartHour(constraints.DailySlots-1) + constraints.SlotDuration
	if lastSlotEnd > 24 {
		return ValidationError{
			Field:  "dailySlots",
			Reason: fmt.Sprintf("%v slots of %vh starting at %v:00 run past midnight", constraints.DailySlots, constraints.SlotDuration, constraints.DayStartHour),
		}
	}
	return nil
}

func (constraints Constraints) Excluded(date time.Time) bool {
	return slices.ContainsFunc(constraints.ExcludedDates, func(excluded time.Time) bool {
		return sameDate(excluded, date)
	})
}

func (constraints Constraints) slotStartHour(slot int) int {
	return constraints.DayStartHour + slot*(constraints.SlotDuration+constraints.BreakHours)
}

func sameDate(date1, date2 time.Time) bool {
	year1, month1, day1 := date1.Date()
	year2, month2, day2 := date2.Date()
	return year1 == year2 && month1 == month2 && day1 == day2
}
