package booking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionExhaustive(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:    true,
		{StatusPending, StatusCancelled}:    true,
		{StatusConfirmed, StatusInProgress}: true,
		{StatusConfirmed, StatusCancelled}:  true,
		{StatusInProgress, StatusCompleted}: true,
		{StatusCancelled, StatusRefunded}:   true,
	}
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				assert.Equal(t, allowed[[2]Status{from, to}], CanTransition(from, to))
			})
		}
	}
}

func TestCanTransitionIsNeverReflexive(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.False(t, CanTransition(s, s), s)
	}
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, CanBeCancelled(StatusPending))
	assert.True(t, CanBeCancelled(StatusConfirmed))
	assert.False(t, CanBeCancelled(StatusInProgress))
	assert.True(t, IsFinal(StatusCompleted))
	assert.True(t, IsFinal(StatusRefunded))
	assert.False(t, IsFinal(StatusConfirmed))
	assert.True(t, CanAcceptPayments(StatusInProgress))
	assert.False(t, CanAcceptPayments(StatusCancelled))
	assert.False(t, BlocksAvailability(StatusCancelled))
	assert.True(t, BlocksAvailability(StatusPending))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("IN_PROGRESS")
	assert.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	_, err = ParseStatus("in_progress")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestStatusTransitionErrorMessage(t *testing.T) {
	err := &StatusTransitionError{From: StatusCompleted, To: StatusPending}
	assert.Equal(t, "booking: invalid status transition from COMPLETED to PENDING", err.Error())
}
