package model

import (
	"fmt"
	"time"
)

type TimeSlot struct {
	Date      time.Time
	Period    int // Position within the day, starting at 0
	StartHour int
	EndHour   int
}

func (slot TimeSlot) DateString() string {
	return slot.Date.Format(DateLayout)
}

func (slot TimeSlot) StartTime() string {
	return fmt.Sprintf("%d:00", slot.StartHour)
}

func (slot TimeSlot) EndTime() string {
	return fmt.Sprintf("%d:00", slot.EndHour)
}

// GenerateTimeSlots expands the exam window into slots ordered by (date, period). A slot's
// position in the returned sequence is its slot index.
func GenerateTimeSlots(constraints Constraints) []TimeSlot {
	slots := make([]TimeSlot, 0)
	if constraints.DailySlots <= 0 || constraints.StartDate.IsZero() || constraints.EndDate.IsZero() {
		return slots
	}

	start := truncateToDate(constraints.StartDate)
	end := truncateToDate(constraints.EndDate)

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if constraints.Excluded(date) {
			continue
		}
		if !constraints.AllowWeekends && isWeekend(date) {
			continue
		}

		for period := range constraints.DailySlots {
			startHour := constraints.slotStartHour(period)
			slots = append(slots, TimeSlot{
				Date:      date,
				Period:    period,
				StartHour: startHour,
				EndHour:   startHour + constraints.SlotDuration,
			})
		}
	}

	return slots
}

func isWeekend(date time.Time) bool {
	return date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
}

func truncateToDate(date time.Time) time.Time {
	year, month, day := date.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the absolute number of calendar days separating two slots
func daysBetween(slot1, slot2 TimeSlot) int {
	days := int(truncateToDate(slot1.Date).Sub(truncateToDate(slot2.Date)).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
