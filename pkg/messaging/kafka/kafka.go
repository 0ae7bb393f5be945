package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jwalitptl/apptqueue/pkg/circuitbreaker"
	"github.com/jwalitptl/apptqueue/pkg/messaging"
)

type Config struct {
	Brokers string
	GroupID string
}

// KafkaBroker publishes to one topic per channel. Messages are keyed so
// entries for the same activity land on the same partition.
type KafkaBroker struct {
	brokers []string
	groupID string
	writer  *kafka.Writer
	cb      *circuitbreaker.CircuitBreaker
	logger  *zerolog.Logger
}

func NewKafkaBroker(config Config, logger *zerolog.Logger) (messaging.Broker, error) {
	brokers := SplitBrokers(config.Brokers)
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaBroker{
		brokers: brokers,
		groupID: config.GroupID,
		writer:  writer,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "kafka-broker",
			MaxFailures: 5,
			Timeout:     5 * time.Second,
		}),
		logger: logger,
	}, nil
}

func (b *KafkaBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := messaging.Encode(message)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Topic: channel,
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(channel)},
		},
	}
	if k, ok := message.(messaging.Keyed); ok {
		msg.Key = []byte(k.Key())
		msg.Headers = append(msg.Headers, kafka.Header{Key: "event_id", Value: []byte(k.Key())})
	}
	msg.Headers = InjectTraceHeaders(ctx, msg.Headers)

	return b.cb.Execute(func() error {
		return b.writer.WriteMessages(ctx, msg)
	})
}

func (b *KafkaBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: b.brokers,
		GroupID: b.groupID,
		Topic:   channel,
	})
	msgChan := make(chan []byte, 100)

	go func() {
		defer func() {
			if err := reader.Close(); err != nil && b.logger != nil {
				b.logger.Error().Err(err).Str("topic", channel).Msg("failed to close kafka reader")
			}
			close(msgChan)
		}()
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if b.logger != nil {
					b.logger.Warn().Err(err).Str("topic", channel).Msg("kafka read failed")
				}
				continue
			}
			select {
			case msgChan <- msg.Value:
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgChan, nil
}

func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			brokers = append(brokers, s)
		}
	}
	return brokers
}

// InjectTraceHeaders appends W3C trace context headers to Kafka headers.
func InjectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
