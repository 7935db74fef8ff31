package notifier

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	kit "github.com/tantsiura/homework-bot/internal/transport"
	logx "github.com/tantsiura/homework-bot/pkg/logx"
)

type Config struct {
	Target kit.ChatTarget
	// RatePerSec paces sends towards the Bot API. Telegram throttles bots
	// that burst; the token bucket keeps us under the limit.
	RatePerSec int
}

// Service delivers notification texts to the configured chat.
//
// A failed delivery is logged and counted, never propagated: the poll loop
// must not crash (or loop on error reports) because the messenger is down.
type Service struct {
	mu      sync.Mutex
	cfg     Config
	limiter *rate.Limiter

	adapter kit.Adapter
	log     logx.Logger

	sent   atomic.Uint64
	failed atomic.Uint64
}

func New(cfg Config, adapter kit.Adapter, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{adapter: adapter, log: log}
	s.Apply(cfg)
	return s
}

// Apply swaps pacing and target at runtime (config reload).
func (s *Service) Apply(cfg Config) {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	s.mu.Lock()
	s.cfg = cfg
	s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	s.mu.Unlock()
}

// Notify sends text to the configured chat, honoring the rate limit.
// The returned error is informational; it has already been logged.
func (s *Service) Notify(ctx context.Context, text string) error {
	s.mu.Lock()
	target := s.cfg.Target
	lim := s.limiter
	s.mu.Unlock()

	if err := lim.Wait(ctx); err != nil {
		s.failed.Add(1)
		s.log.Warn("notification dropped before send", logx.Err(err))
		return err
	}

	_, err := s.adapter.SendText(ctx, target, text, &kit.SendOptions{DisablePreview: true})
	if err != nil {
		s.failed.Add(1)
		s.log.Error("notification send failed",
			logx.Int64("chat_id", target.ChatID),
			logx.Err(err),
		)
		return err
	}

	s.sent.Add(1)
	s.log.Debug("notification sent",
		logx.Int64("chat_id", target.ChatID),
		logx.Int("length", len(text)),
	)
	return nil
}

// Counters reports how many notifications were sent and how many failed.
func (s *Service) Counters() (sent, failed uint64) {
	return s.sent.Load(), s.failed.Load()
}
