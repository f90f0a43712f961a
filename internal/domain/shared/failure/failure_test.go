package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfResolvesThroughWrapping(t *testing.T) {
	sentinel := New(KindValidation, "offer: invalid transition")
	wrapped := fmt.Errorf("accept offer o-1: %w", sentinel)

	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.True(t, Is(wrapped, KindValidation))
}

func TestKindOfUnknownErrorIsServerFailure(t *testing.T) {
	assert.Equal(t, KindServer, KindOf(errors.New("connection reset")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("mongo: timeout")
	err := Wrap(KindConversionFailed, "offer conversion failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "offer conversion failed: mongo: timeout", err.Error())
	assert.True(t, Retryable(err))
	assert.False(t, Retryable(New(KindValidation, "bad input")))
}

func TestMessageStripsPackagePrefix(t *testing.T) {
	assert.Equal(t, "currency mismatch", Message(New(KindCurrencyMismatch, "money: currency mismatch")))
	assert.Equal(t, "event name is required", Message(New(KindValidation, "event name is required")))
}
