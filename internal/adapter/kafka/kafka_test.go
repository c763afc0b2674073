package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/mwac-vis/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu    sync.Mutex
	err   error
	calls int
	msgs  []kafkago.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func testTable(t *testing.T) domain.NormalizedTable {
	t.Helper()
	table, err := domain.Normalize([]domain.Record{
		{Month: 12, Day: 25, Wdir: "NW", Wmax: "45.2", Wavg: "not_a_number", HNS: "10", HNW: "5"},
		{Month: 2, Day: 30, Wdir: "S", Wmax: "12", Wavg: "8"},
	}, 2023)
	require.NoError(t, err)
	return table
}

func TestSerializeToMessage(t *testing.T) {
	table := testTable(t)

	msg, err := serializeToMessage(table.Rows[0], table.SeasonStartYear)
	require.NoError(t, err)

	assert.Equal(t, []byte("2023-12-25"), msg.Key)
	assert.Contains(t, string(msg.Value), `"wind_direction_degrees":315`)
	assert.Contains(t, string(msg.Value), `"wavg":null`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "date_valid", msg.Headers[0].Key)
	assert.Equal(t, []byte("true"), msg.Headers[0].Value)
	assert.Equal(t, "season", msg.Headers[1].Key)
	assert.Equal(t, []byte("2023"), msg.Headers[1].Value)

	undated, err := serializeToMessage(table.Rows[1], table.SeasonStartYear)
	require.NoError(t, err)
	assert.Equal(t, []byte("row-1"), undated.Key)
	assert.Equal(t, []byte("false"), undated.Headers[0].Value)
}

func TestWriter_Publish(t *testing.T) {
	fw := &fakeWriter{}
	w := newWriter(fw, time.Minute, slog.Default())

	require.NoError(t, w.Publish(context.Background(), testTable(t)))
	assert.Equal(t, 1, fw.calls)
	require.Len(t, fw.msgs, 2)
	assert.Equal(t, []byte("2023-12-25"), fw.msgs[0].Key)
}

func TestWriter_Publish_EmptyTableSkipsBroker(t *testing.T) {
	fw := &fakeWriter{}
	w := newWriter(fw, time.Minute, slog.Default())

	require.NoError(t, w.Publish(context.Background(), domain.NormalizedTable{}))
	assert.Zero(t, fw.calls)
}

func TestWriter_Publish_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	fw := &fakeWriter{err: errors.New("connection refused")}
	w := newWriter(fw, time.Minute, slog.Default())
	table := testTable(t)

	for i := 0; i < consecutiveFailuresToTrip; i++ {
		err := w.Publish(context.Background(), table)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
		assert.Contains(t, err.Error(), "connection refused")
	}

	err := w.Publish(context.Background(), table)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, consecutiveFailuresToTrip, fw.calls, "open breaker must not reach the broker")
}

func TestWriter_Publish_BreakerRecovers(t *testing.T) {
	fw := &fakeWriter{err: errors.New("connection refused")}
	w := newWriter(fw, 50*time.Millisecond, slog.Default())
	table := testTable(t)

	for i := 0; i < consecutiveFailuresToTrip; i++ {
		require.Error(t, w.Publish(context.Background(), table))
	}
	require.ErrorIs(t, w.Publish(context.Background(), table), ErrCircuitOpen)

	fw.mu.Lock()
	fw.err = nil
	fw.mu.Unlock()

	require.Eventually(t, func() bool {
		return w.Publish(context.Background(), table) == nil
	}, time.Second, 20*time.Millisecond)
}
