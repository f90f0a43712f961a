package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// DefaultRetryDelay is how long a claim waits before giving up on a failed
// message so the session restarts from the committed offset.
const DefaultRetryDelay = time.Second

type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
	// RetryDelay paces redelivery of a message whose handler failed.
	RetryDelay time.Duration
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{group: g, handler: handler, logger: logger, RetryDelay: DefaultRetryDelay}, nil
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		if err := c.group.Consume(ctx, topics, consumerGroupHandler{handler: c.handler, logger: c.logger, retryDelay: c.RetryDelay}); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler    MessageHandler
	logger     *slog.Logger
	retryDelay time.Duration
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks a message only after the handler accepted it. On a
// handler error the claim stops without marking, which ends the session; Run
// then rejoins and the message is redelivered from the committed offset.
func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.handler.Handle(ctx, message); err != nil {
				h.logger.ErrorContext(ctx, "kafka message failed",
					"topic", message.Topic, "partition", message.Partition, "offset", message.Offset, "error", err)
				h.pause(ctx)
				return fmt.Errorf("%s/%d@%d: %w", message.Topic, message.Partition, message.Offset, err)
			}
			sess.MarkMessage(message, "")
		}
	}
}

func (h consumerGroupHandler) pause(ctx context.Context) {
	if h.retryDelay <= 0 {
		return
	}
	t := time.NewTimer(h.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
