package kafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type claimer map[string]bool

func (c claimer) Claim(_ context.Context, key string) (bool, error) {
	if c[key] {
		return false, nil
	}
	c[key] = true
	return true, nil
}

func (c claimer) Release(_ context.Context, key string) error {
	delete(c, key)
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ev := kafka.LendingEvent{
		ID:         "ev-1",
		Type:       kafka.EventRequestAccepted,
		RequestID:  "req-1",
		ItemID:     "item-1",
		OwnerID:    "owner",
		BorrowerID: "borrower",
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("ok", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, sarama.NewConfig())
		producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			got, err := kafka.Decode(val)
			if err != nil {
				return err
			}
			if got.RequestID != ev.RequestID || got.Type != ev.Type {
				return errors.New("unexpected event")
			}
			return nil
		})
		p := kafka.NewPublisher(producer, kafka.LendingTopic, nil, zap.NewNop())
		require.NoError(t, p.Publish(context.Background(), ev))
		require.NoError(t, producer.Close())
	})

	t.Run("dedupe", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, sarama.NewConfig())
		producer.ExpectSendMessageAndSucceed()
		p := kafka.NewPublisher(producer, kafka.LendingTopic, claimer{}, zap.NewNop())
		require.NoError(t, p.Publish(context.Background(), ev))
		require.NoError(t, p.Publish(context.Background(), ev))
		require.NoError(t, producer.Close())
	})

	t.Run("republish after failed send", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, sarama.NewConfig())
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
		producer.ExpectSendMessageAndSucceed()
		dedupe := claimer{}
		p := kafka.NewPublisher(producer, kafka.LendingTopic, dedupe, zap.NewNop())
		require.ErrorIs(t, p.Publish(context.Background(), ev), sarama.ErrOutOfBrokers)
		require.Empty(t, dedupe)
		require.NoError(t, p.Publish(context.Background(), ev))
		require.True(t, dedupe["event:req-1:"+string(kafka.EventRequestAccepted)])
		require.NoError(t, producer.Close())
	})

	t.Run("err. broker", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, sarama.NewConfig())
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
		p := kafka.NewPublisher(producer, kafka.LendingTopic, nil, zap.NewNop())
		require.ErrorIs(t, p.Publish(context.Background(), ev), sarama.ErrOutOfBrokers)
		require.NoError(t, producer.Close())
	})
}
