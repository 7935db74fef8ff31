package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tantsiura/homework-bot/internal/practicum"
	"github.com/tantsiura/homework-bot/internal/schedule"
	logx "github.com/tantsiura/homework-bot/pkg/logx"
)

// API is the single-endpoint query capability the loop polls.
type API interface {
	Fetch(ctx context.Context, fromDate int64) (practicum.Response, error)
}

// Notifier delivers one text to the destination chat. Implementations
// absorb delivery failures; the returned error is informational.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// ErrNoHomeworks is the deliberate terminal state: the API returned an
// empty batch, so there is nothing left to watch and the loop stops.
var ErrNoHomeworks = errors.New("no homeworks returned; polling stopped")

// errReportPrefix opens every user-facing failure report.
const errReportPrefix = "Сбой в работе программы: "

type Config struct {
	Schedule schedule.Spec
}

// Service owns the only state that crosses iterations: the time cursor and
// the notification memory. Both are touched exclusively from Run's
// goroutine; the mutex guards the schedule, which config reload may swap.
type Service struct {
	api      API
	notifier Notifier
	log      logx.Logger

	mu    sync.Mutex
	sched schedule.Spec

	mem    *memory
	cursor int64

	now func() time.Time
}

func New(cfg Config, api API, notifier Notifier, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		api:      api,
		notifier: notifier,
		log:      log,
		sched:    cfg.Schedule,
		mem:      newMemory(),
		now:      time.Now,
	}
	s.cursor = s.now().Unix()
	return s
}

// SetSchedule applies a new poll trigger; it takes effect at the next sleep.
func (s *Service) SetSchedule(spec schedule.Spec) {
	s.mu.Lock()
	s.sched = spec
	s.mu.Unlock()
}

func (s *Service) scheduleSpec() schedule.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched
}

// Cursor returns the lower bound of the next query window.
func (s *Service) Cursor() int64 { return s.cursor }

// Run drives the loop until ctx is cancelled or the API reports an empty
// batch (ErrNoHomeworks). Iteration failures never end the loop.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("poll loop started",
		logx.String("schedule", s.scheduleSpec().String()),
		logx.Int64("from_date", s.cursor),
	)

	for {
		out := s.iterate(ctx)
		switch {
		case out.empty:
			s.log.Info("empty homework batch; stopping poll loop")
			return ErrNoHomeworks
		case out.err != nil:
			s.reportError(ctx, out.err)
		default:
			s.mem.ClearError()
		}

		// The sleep is unconditional: success and failure retry at the
		// same cadence, there is no backoff.
		if err := s.sleep(ctx); err != nil {
			return err
		}
	}
}

// outcome is the tagged result of one iteration: a clean pass, an empty
// terminal batch, or a classified failure.
type outcome struct {
	empty bool
	err   error
}

func (s *Service) iterate(ctx context.Context) outcome {
	resp, err := s.api.Fetch(ctx, s.cursor)
	if err != nil {
		return outcome{err: err}
	}

	homeworks, err := practicum.CheckResponse(resp)
	if err != nil {
		return outcome{err: err}
	}
	if len(homeworks) == 0 {
		return outcome{empty: true}
	}

	for _, hw := range homeworks {
		msg, err := practicum.ParseStatus(s.log, hw)
		if err != nil {
			// Remaining items are not processed and the cursor does not
			// advance, so the window is re-queried next iteration.
			return outcome{err: err}
		}
		name, _ := hw.GetName()
		if !s.mem.ShouldSend(name, msg) {
			s.log.Debug("notification suppressed (unchanged)", logx.String("homework", name))
			continue
		}
		// Delivery failures are already logged by the notifier. The memory
		// records the attempt either way so a broken messenger does not
		// replay the backlog once it recovers.
		_ = s.notifier.Notify(ctx, msg)
		s.mem.Record(name, msg)
	}

	s.advanceCursor(resp)
	return outcome{}
}

// advanceCursor moves the query window to the server's current_date. The
// server clock is authoritative: the next window must start where the server
// says this one ended, even when that is behind the local clock.
func (s *Service) advanceCursor(resp practicum.Response) {
	cd, ok := resp.CurrentDate()
	if !ok {
		// Keep the current window; re-polling the same range is safe
		// because delivery is deduplicated.
		s.log.Warn("response carries no current_date; cursor unchanged", logx.Int64("cursor", s.cursor))
		return
	}
	if cd < s.cursor {
		s.log.Warn("server current_date is behind the cursor",
			logx.Int64("cursor", s.cursor),
			logx.Int64("current_date", cd),
		)
	}
	s.cursor = cd
}

func (s *Service) reportError(ctx context.Context, err error) {
	s.log.Error("poll iteration failed", logx.Err(err))

	msg := errReportPrefix + err.Error()
	if !s.mem.ShouldSend(errorKey, msg) {
		s.log.Debug("error report suppressed (unchanged)")
		return
	}
	_ = s.notifier.Notify(ctx, msg)
	s.mem.Record(errorKey, msg)
}

func (s *Service) sleep(ctx context.Context) error {
	now := s.now()
	d := s.scheduleSpec().Next(now).Sub(now)
	if d < 0 {
		d = 0
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
