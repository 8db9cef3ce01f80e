package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigFastest

// Claimer reports whether key is seen for the first time. Release gives the
// key back after a failed send.
type Claimer interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	dedupe   Claimer
	log      *zap.Logger
}

// NewPublisher returns a publisher writing to topic. dedupe may be nil.
func NewPublisher(producer sarama.SyncProducer, topic string, dedupe Claimer, log *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		dedupe:   dedupe,
		log:      log.Named("publisher"),
	}
}

func (p *Publisher) Publish(ctx context.Context, ev LendingEvent) error {
	key := fmt.Sprintf("event:%s:%s", ev.RequestID, ev.Type)
	claimed := false
	if p.dedupe != nil {
		first, err := p.dedupe.Claim(ctx, key)
		switch {
		case err != nil:
			p.log.Warn("dedupe claim", zap.Error(err))
		case !first:
			p.log.Debug("duplicate event skipped", zap.String("request", ev.RequestID), zap.String("type", string(ev.Type)))
			return nil
		default:
			claimed = true
		}
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.release(ctx, key, claimed)
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.ItemID),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err = p.producer.SendMessage(msg); err != nil {
		p.release(ctx, key, claimed)
		return fmt.Errorf("SendMessage: %w", err)
	}
	return nil
}

func (p *Publisher) release(ctx context.Context, key string, claimed bool) {
	if !claimed {
		return
	}
	if err := p.dedupe.Release(ctx, key); err != nil {
		p.log.Warn("dedupe release", zap.String("key", key), zap.Error(err))
	}
}

// Decode parses a message value produced by Publish.
func Decode(data []byte) (LendingEvent, error) {
	var ev LendingEvent
	err := json.Unmarshal(data, &ev)
	return ev, err
}
