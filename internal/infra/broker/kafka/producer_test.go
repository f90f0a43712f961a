package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSendsKeyedMessageWithHeaders(t *testing.T) {
	sync := mocks.NewSyncProducer(t, nil)
	sync.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "bk-1" {
			return errors.New("unexpected key " + string(key))
		}
		if msg.Topic != "eventmarket.booking.events.v1" || len(msg.Headers) != 1 {
			return errors.New("unexpected topic or headers")
		}
		return nil
	})
	p := NewProducerFrom(sync)

	err := p.Publish(context.Background(), "eventmarket.booking.events.v1", "bk-1", []byte(`{}`), map[string]string{"ce_type": "booking.confirmed"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	sync := mocks.NewSyncProducer(t, nil)
	p := NewProducerFrom(sync)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, "topic", "k", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, p.Close())
}

func TestPublishSurfacesBrokerErrors(t *testing.T) {
	sync := mocks.NewSyncProducer(t, nil)
	sync.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)
	p := NewProducerFrom(sync)

	err := p.Publish(context.Background(), "topic", "k", nil, nil)
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	require.NoError(t, p.Close())
}
