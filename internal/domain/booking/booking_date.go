package booking

import (
	"fmt"
	"strings"
	"time"

	"eventmarket/internal/domain/shared/failure"
)

var (
	ErrEventDateRequired  = failure.New(failure.KindValidation, "booking: event date is required")
	ErrEventDateInPast    = failure.New(failure.KindValidation, "booking: event date is in the past")
	ErrInsufficientNotice = failure.New(failure.KindValidation, "booking: event date does not respect the minimum advance notice")
	ErrInvalidEventTime   = failure.New(failure.KindValidation, "booking: event time must use HH:MM")
)

const eventTimeLayout = "15:04"

// BookingDate is the calendar day of the event plus an optional wall-clock time.
// All thresholds are supplied by callers.
type BookingDate struct {
	EventDate time.Time
	EventTime string
}

func NewBookingDate(date time.Time, eventTime string) (BookingDate, error) {
	if date.IsZero() {
		return BookingDate{}, ErrEventDateRequired
	}
	eventTime = strings.TrimSpace(eventTime)
	if eventTime != "" {
		if _, err := time.Parse(eventTimeLayout, eventTime); err != nil {
			return BookingDate{}, ErrInvalidEventTime
		}
	}
	return BookingDate{EventDate: calendarDay(date), EventTime: eventTime}, nil
}

// DaysUntilEvent counts whole calendar days from now to the event; negative once past.
func (d BookingDate) DaysUntilEvent(now time.Time) int {
	today := calendarDay(now.UTC())
	return int(calendarDay(d.EventDate).Sub(today).Hours() / 24)
}

func (d BookingDate) IsPast(now time.Time) bool {
	return d.DaysUntilEvent(now) < 0
}

func (d BookingDate) IsFuture(now time.Time) bool {
	return d.DaysUntilEvent(now) > 0
}

func (d BookingDate) IsToday(now time.Time) bool {
	return d.DaysUntilEvent(now) == 0
}

// ValidateForBooking rejects past dates and dates closer than minimumAdvanceDays.
func (d BookingDate) ValidateForBooking(now time.Time, minimumAdvanceDays int) error {
	if d.EventDate.IsZero() {
		return ErrEventDateRequired
	}
	days := d.DaysUntilEvent(now)
	if days < 0 {
		return ErrEventDateInPast
	}
	if days < minimumAdvanceDays {
		return fmt.Errorf("%w: %d days required, %d left", ErrInsufficientNotice, minimumAdvanceDays, days)
	}
	return nil
}

func (d BookingDate) IsValidForBooking(now time.Time, minimumAdvanceDays int) bool {
	return d.ValidateForBooking(now, minimumAdvanceDays) == nil
}

// IsWithinCancellationPeriod is true while cancelling now still leaves at least
// minimumDays before the event.
func (d BookingDate) IsWithinCancellationPeriod(now time.Time, minimumDays int) bool {
	return d.DaysUntilEvent(now) >= minimumDays
}

// RelativeDescription is a plain English default; localized wording belongs to the UI.
func (d BookingDate) RelativeDescription(now time.Time) string {
	switch days := d.DaysUntilEvent(now); {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days > 1:
		return fmt.Sprintf("in %d days", days)
	default:
		return fmt.Sprintf("%d days ago", -days)
	}
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
