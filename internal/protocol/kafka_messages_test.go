package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveUpdatedWireFormat(t *testing.T) {
	event := &ArchiveUpdated{
		Type:      EventArchiveUpdated,
		RunID:     "4a1b",
		Region:    "alps",
		Variable:  "2m_temperature",
		Year:      2020,
		Month:     2,
		Area:      [4]float64{48, 5, 45, 11},
		Path:      "/data/era5/alps/2m_temperature_2020-2.nc",
		FetchedAt: time.Date(2020, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	data, err := EncodeArchiveUpdated(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "ARCHIVE_UPDATED",
		"run_id": "4a1b",
		"region": "alps",
		"variable": "2m_temperature",
		"year": 2020,
		"month": 2,
		"area": [48, 5, 45, 11],
		"path": "/data/era5/alps/2m_temperature_2020-2.nc",
		"fetched_at": "2020-03-15T12:00:00Z"
	}`, string(data))

	decoded, err := DecodeArchiveUpdated(data)
	require.NoError(t, err)
	assert.Equal(t, "alps/2m_temperature", decoded.Key())
	assert.True(t, decoded.FetchedAt.Equal(event.FetchedAt))
}

func TestDecodeArchiveUpdatedRejects(t *testing.T) {
	_, err := DecodeArchiveUpdated([]byte(`{"type":"ALARM_TRIGGERED"}`))
	assert.Error(t, err)

	_, err = DecodeArchiveUpdated([]byte(`not json`))
	assert.Error(t, err)
}
