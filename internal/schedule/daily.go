package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/smukkama/era5-sync/internal/logger"
)

// TimeOfDay is a wall-clock time in HH:MM
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	var rest string
	n, _ := fmt.Sscanf(s, "%d:%d%s", &t.Hour, &t.Minute, &rest)
	if n != 2 || t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time format: %s (expected HH:MM)", s)
	}
	return t, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Next returns the first occurrence of t strictly after now, in now's location
func (t TimeOfDay) Next(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if !today.After(now) {
		return today.AddDate(0, 0, 1)
	}
	return today
}

const dailyTaskID = "daily-sync"

// RunDaily calls job once a day at t until ctx is cancelled. The next run
// is scheduled only after the current one returns.
func RunDaily(ctx context.Context, t TimeOfDay, job func(context.Context)) error {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	log := logger.FromContext(ctx)

	var scheduleNext func() error
	scheduleNext = func() error {
		nextRun := t.Next(time.Now())
		log.Info().Time("next_run", nextRun).Msg("next sync scheduled")

		return s.Schedule(dailyTaskID, nextRun, func() {
			job(ctx)
			if ctx.Err() != nil {
				return
			}
			if err := scheduleNext(); err != nil {
				log.Error().Err(err).Msg("failed to schedule next sync")
			}
		})
	}

	if err := scheduleNext(); err != nil {
		return err
	}

	<-ctx.Done()
	if s.Cancel(dailyTaskID) {
		log.Info().Msg("pending sync cancelled")
	}
	return nil
}
