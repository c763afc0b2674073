package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/couchcryptid/mwac-vis/internal/config"
	"github.com/couchcryptid/mwac-vis/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
)

// consecutiveFailuresToTrip opens the breaker after this many failed publishes in a row.
const consecutiveFailuresToTrip = 3

// ErrCircuitOpen is returned while the breaker rejects publishes without trying the broker.
var ErrCircuitOpen = errors.New("kafka circuit breaker open")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces one message per normalized row to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newWriter(w, cfg.KafkaBreakerTimeout, logger)
}

func newWriter(mw messageWriter, breakerTimeout time.Duration, logger *slog.Logger) *Writer {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka",
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailuresToTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &Writer{writer: mw, breaker: cb, logger: logger}
}

// Publish serializes every wide row of the table and writes them in a single
// WriteMessages call. While the breaker is open it fails fast with ErrCircuitOpen.
func (w *Writer) Publish(ctx context.Context, table domain.NormalizedTable) error {
	if len(table.Rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(table.Rows))
	for i := range table.Rows {
		msg, err := serializeToMessage(table.Rows[i], table.SeasonStartYear)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	_, err := w.breaker.Execute(func() (interface{}, error) {
		return nil, w.writer.WriteMessages(ctx, msgs...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("published snapshot", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a normalized row into a Kafka message keyed by date.
func serializeToMessage(row domain.Row, seasonStartYear int) (kafkago.Message, error) {
	out, err := domain.SerializeRow(row, seasonStartYear)
	if err != nil {
		return kafkago.Message{}, err
	}

	keys := make([]string, 0, len(out.Headers))
	for k := range out.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(out.Headers[k])})
	}

	return kafkago.Message{
		Key:     out.Key,
		Value:   out.Value,
		Headers: headers,
	}, nil
}
