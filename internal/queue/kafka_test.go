package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smukkama/era5-sync/internal/planner"
	"github.com/smukkama/era5-sync/internal/protocol"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishArchiveUpdated(t *testing.T) {
	w := &recordingWriter{}
	fetched := time.Date(2020, 3, 15, 12, 0, 0, 0, time.UTC)
	p := &Producer{writer: w, now: func() time.Time { return fetched }}

	job := planner.FetchJob{
		Region:   "alps",
		Variable: "2m_temperature",
		Year:     2020,
		Month:    2,
		Area:     [4]float64{48, 5, 45, 11},
		Path:     "/data/era5/alps/2m_temperature_2020-2.nc",
	}
	require.NoError(t, p.PublishArchiveUpdated(context.Background(), "run-1", job))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "alps/2m_temperature", string(msg.Key))

	event, err := protocol.DecodeArchiveUpdated(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, 2020, event.Year)
	assert.Equal(t, 2, event.Month)
	assert.Equal(t, job.Area, event.Area)
	assert.Equal(t, job.Path, event.Path)
	assert.True(t, event.FetchedAt.Equal(fetched))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishWrapsWriterError(t *testing.T) {
	broker := errors.New("leader not available")
	p := &Producer{writer: &recordingWriter{err: broker}, now: time.Now}

	err := p.Publish(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.ErrorIs(t, err, broker)
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		name string
		want kafka.Compression
	}{
		{"", 0},
		{"none", 0},
		{"gzip", kafka.Gzip},
		{"Snappy", kafka.Snappy},
		{"lz4", kafka.Lz4},
		{" zstd ", kafka.Zstd},
	}

	for _, tt := range tests {
		got, err := ParseCompression(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	_, err := ParseCompression("brotli")
	assert.Error(t, err)
}
