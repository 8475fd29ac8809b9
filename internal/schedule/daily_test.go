package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("03:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 3, Minute: 30}, got)
	assert.Equal(t, "03:30", got.String())

	got, err = ParseTimeOfDay("0:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 0, Minute: 5}, got)

	for _, bad := range []string{"", "3", "24:00", "12:60", "-1:00", "noon", "12:00pm"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestTimeOfDayNext(t *testing.T) {
	at := TimeOfDay{Hour: 3, Minute: 30}

	before := time.Date(2020, 2, 28, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2020, 2, 28, 3, 30, 0, 0, time.UTC), at.Next(before))

	// Exactly on time means tomorrow
	on := time.Date(2020, 2, 28, 3, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2020, 2, 29, 3, 30, 0, 0, time.UTC), at.Next(on))

	after := time.Date(2020, 12, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2021, 1, 1, 3, 30, 0, 0, time.UTC), at.Next(after))
}

func TestRunDailyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var runs int32
	done := make(chan error, 1)
	go func() {
		// Far enough away that the job never fires during the test
		at := TimeOfDay{Hour: (time.Now().Hour() + 12) % 24}
		done <- RunDaily(ctx, at, func(context.Context) {
			atomic.AddInt32(&runs, 1)
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunDaily did not return after cancel")
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))
}
