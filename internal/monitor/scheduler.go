package monitor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Job represents a scheduled periodic check that can be closed.
// Close is synchronous: once it returns, the callback will not run again.
type Job interface {
	Close() error
}

// TickScheduler schedules periodic callbacks. The supervisor owns the
// returned handles; no timer state lives outside them.
type TickScheduler interface {
	Schedule(id string, period time.Duration, fn func()) (Job, error)
}

// TickerScheduler is the production scheduler backed by time.Ticker.
type TickerScheduler struct {
	logger *slog.Logger
}

// NewTickerScheduler creates a ticker-backed scheduler.
func NewTickerScheduler(logger *slog.Logger) *TickerScheduler {
	return &TickerScheduler{logger: logger}
}

// Schedule starts a goroutine invoking fn every period until Close.
func (s *TickerScheduler) Schedule(id string, period time.Duration, fn func()) (Job, error) {
	if fn == nil {
		return nil, errors.New("cannot schedule nil callback")
	}
	if period <= 0 {
		return nil, errors.Errorf("invalid period %v for job %s", period, id)
	}

	j := &tickerJob{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		defer close(j.done)

		for {
			select {
			case <-ticker.C:
				fn()
			case <-j.stop:
				return
			}
		}
	}()

	s.logger.Debug("scheduled periodic job", "id", id, "period", period)
	return j, nil
}

type tickerJob struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Close stops the tick loop and waits for it to finish, so no callback
// fires after Close returns. Safe to call more than once.
func (j *tickerJob) Close() error {
	j.stopOnce.Do(func() { close(j.stop) })
	<-j.done
	return nil
}
