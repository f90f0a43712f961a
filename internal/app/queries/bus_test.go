package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmarket/internal/domain/shared/failure"
)

type quoteQuery struct{ BookingID string }

func (quoteQuery) Key() string { return "test.quote" }

func TestAskReturnsTypedResult(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[quoteQuery, int64](bus, HandlerFunc[quoteQuery, int64](func(_ context.Context, q quoteQuery) (int64, error) {
		return 2500_00, nil
	}))

	amount, err := Ask[quoteQuery, int64](context.Background(), bus, quoteQuery{BookingID: "b-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2500_00), amount)

	_, err = Ask[quoteQuery, string](context.Background(), bus, quoteQuery{})
	assert.ErrorIs(t, err, ErrResultType)
	assert.Contains(t, err.Error(), "got int64, want string")
	assert.Equal(t, failure.KindServer, failure.KindOf(err))
}

func TestAskWithoutHandler(t *testing.T) {
	_, err := NewInMemoryBus().Ask(context.Background(), quoteQuery{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	_, err = Ask[quoteQuery, int64](context.Background(), nil, quoteQuery{})
	assert.ErrorIs(t, err, ErrNilBus)
}
