package handler

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Astemirdum/lending-service/pkg/kafka"
)

type record func(ctx context.Context, event kafka.LendingEvent) error

type Consumer struct {
	recordHandler record
	log           *zap.Logger
}

func NewConsumer(record record, log *zap.Logger) *Consumer {
	return &Consumer{
		recordHandler: record,
		log:           log.Named("consumer"),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks undecodable messages so they are not redelivered forever.
// A failed store ends the claim without marking, so the next session resumes
// from that message.
func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			event, err := kafka.Decode(message.Value)
			if err != nil {
				consumer.log.Error("kafka.Decode", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			if err = consumer.recordHandler(session.Context(), event); err != nil {
				consumer.log.Error("consumer.recordHandler", zap.Error(err), zap.Int64("offset", message.Offset))
				return fmt.Errorf("record offset %d: %w", message.Offset, err)
			}

			consumer.log.Debug("Message claimed:", zap.String("value", string(message.Value)), zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
