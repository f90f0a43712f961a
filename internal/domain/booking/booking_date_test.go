package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysUntilEventUsesCalendarDays(t *testing.T) {
	now := time.Date(2026, time.March, 1, 23, 30, 0, 0, time.UTC)
	d, err := NewBookingDate(time.Date(2026, time.March, 2, 1, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)

	assert.Equal(t, 1, d.DaysUntilEvent(now))
	assert.True(t, d.IsFuture(now))
	assert.Equal(t, "tomorrow", d.RelativeDescription(now))

	assert.Equal(t, -2, d.DaysUntilEvent(now.AddDate(0, 0, 3)))
	assert.True(t, d.IsPast(now.AddDate(0, 0, 3)))
	assert.Equal(t, "2 days ago", d.RelativeDescription(now.AddDate(0, 0, 3)))
	assert.True(t, d.IsToday(now.AddDate(0, 0, 1)))
	assert.Equal(t, "today", d.RelativeDescription(now.AddDate(0, 0, 1)))
	assert.Equal(t, "in 45 days", d.RelativeDescription(now.AddDate(0, 0, -44)))
}

func TestNewBookingDateValidation(t *testing.T) {
	_, err := NewBookingDate(time.Time{}, "")
	assert.ErrorIs(t, err, ErrEventDateRequired)

	_, err = NewBookingDate(testNow, "25:61")
	assert.ErrorIs(t, err, ErrInvalidEventTime)

	d, err := NewBookingDate(testNow, " 18:30 ")
	require.NoError(t, err)
	assert.Equal(t, "18:30", d.EventTime)
	assert.Equal(t, 0, d.EventDate.Hour())
}

func TestValidateForBooking(t *testing.T) {
	d, err := NewBookingDate(testNow.AddDate(0, 0, 5), "")
	require.NoError(t, err)

	assert.NoError(t, d.ValidateForBooking(testNow, 5))
	assert.ErrorIs(t, d.ValidateForBooking(testNow, 6), ErrInsufficientNotice)
	assert.ErrorIs(t, d.ValidateForBooking(testNow.AddDate(0, 0, 6), 0), ErrEventDateInPast)
	assert.True(t, d.IsValidForBooking(testNow, 1))
}

func TestIsWithinCancellationPeriod(t *testing.T) {
	d, err := NewBookingDate(testNow.AddDate(0, 0, 10), "")
	require.NoError(t, err)

	assert.True(t, d.IsWithinCancellationPeriod(testNow, 10))
	assert.False(t, d.IsWithinCancellationPeriod(testNow, 11))
	assert.False(t, d.IsWithinCancellationPeriod(testNow.AddDate(0, 0, 8), 3))
}
