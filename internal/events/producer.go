package events

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Publisher is satisfied by the kafka-backed producer and by Noop when no
// brokers are configured.
type Publisher interface {
	Publish(eventType, orderID string, payload interface{})
	Close()
}

type Noop struct{}

func (Noop) Publish(string, string, interface{}) {}
func (Noop) Close()                              {}

// Producer writes envelopes to a single topic, keyed by order id so events
// for one order stay ordered within a partition. Messages pass through a
// buffered inbox; a full inbox drops the event rather than stalling the
// request path.
type Producer struct {
	w      *kafka.Writer
	inbox  chan kafka.Message
	done   chan struct{}
	logger zerolog.Logger
}

func NewProducer(brokers []string, topic string, buf int, logger zerolog.Logger) *Producer {
	p := &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:  make(chan kafka.Message, buf),
		done:   make(chan struct{}),
		logger: logger,
	}

	go p.run()

	return p
}

func (p *Producer) run() {
	defer close(p.done)

	for m := range p.inbox {
		if err := p.w.WriteMessages(context.Background(), m); err != nil {
			p.logger.Error().Err(err).
				Str("key", string(m.Key)).
				Msg("publish order event failed")
		}
	}

	if err := p.w.Close(); err != nil {
		p.logger.Error().Err(err).Msg("close kafka writer")
	}
}

func (p *Producer) Publish(eventType, orderID string, payload interface{}) {
	env, err := NewEnvelope(eventType, payload)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("marshal event payload")
		return
	}

	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("marshal event envelope")
		return
	}

	msg := kafka.Message{
		Key:   []byte(orderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
		},
	}

	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn().Str("event_type", eventType).Str("order_id", orderID).
			Msg("event inbox full, dropping event")
	}
}

// Close flushes buffered events and stops the writer goroutine.
func (p *Producer) Close() {
	close(p.inbox)
	<-p.done
}
