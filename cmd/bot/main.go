package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/tantsiura/homework-bot/internal/config"
	"github.com/tantsiura/homework-bot/internal/notifier"
	"github.com/tantsiura/homework-bot/internal/poller"
	"github.com/tantsiura/homework-bot/internal/practicum"
	"github.com/tantsiura/homework-bot/internal/schedule"
	"github.com/tantsiura/homework-bot/internal/transport"
	"github.com/tantsiura/homework-bot/internal/transport/telegram"
	logx "github.com/tantsiura/homework-bot/pkg/logx"
)

func main() { os.Exit(run()) }

func run() int {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config yaml/json")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		return 1
	}

	// Fatal precondition: without credentials neither the API client nor
	// the notifier can operate, so there is no channel to report through.
	// The process must exit before entering the loop.
	if err := cfg.CheckCredentials(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		return 1
	}

	logSvc, log := logx.New(logConfig(cfg))
	defer logSvc.Close()
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	spec, err := schedule.Parse(cfg.Poll.Schedule)
	if err != nil {
		log.Error("fatal: invalid poll schedule", logx.Err(err))
		return 1
	}

	tgTimeout, err := config.ParseDurationOrDefault("telegram.timeout", cfg.Telegram.Timeout, 8*time.Second)
	if err != nil {
		log.Error("fatal: invalid config", logx.Err(err))
		return 1
	}
	adapter, err := telegram.New(telegram.Config{
		Token:   cfg.Telegram.Token,
		Timeout: tgTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		log.Error("fatal: telegram init failed", logx.Err(err))
		return 1
	}

	apiTimeout, err := config.ParseDurationOrDefault("practicum.timeout", cfg.Practicum.Timeout, 8*time.Second)
	if err != nil {
		log.Error("fatal: invalid config", logx.Err(err))
		return 1
	}
	client := practicum.NewClient(practicum.Config{
		Endpoint: cfg.Practicum.Endpoint,
		Token:    cfg.Practicum.Token,
		Timeout:  apiTimeout,
	}, log.With(logx.String("comp", "practicum")))

	notify := notifier.New(notifierConfig(cfg), adapter, log.With(logx.String("comp", "notifier")))

	svc := poller.New(poller.Config{Schedule: spec}, client, notify, log.With(logx.String("comp", "poller")))

	// Live reload: logging, poll trigger and delivery pacing. Credentials
	// and endpoints are start-only.
	go func() { _ = mgr.Watch(ctx) }()
	sub := mgr.Subscribe(4)
	go func() {
		for next := range sub {
			logSvc.Apply(logConfig(next))
			notify.Apply(notifierConfig(next))
			if sp, err := schedule.Parse(next.Poll.Schedule); err != nil {
				log.Warn("reloaded poll schedule rejected", logx.Err(err))
			} else {
				svc.SetSchedule(sp)
			}
			log.Info("configuration reloaded")
		}
	}()

	sdReady(log)
	go sdWatchdog(ctx)

	err = svc.Run(ctx)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	sent, failed := notify.Counters()
	log.Info("poll loop finished",
		logx.Int64("sent", int64(sent)),
		logx.Int64("send_failures", int64(failed)),
	)

	switch {
	case errors.Is(err, poller.ErrNoHomeworks):
		log.Info("nothing left to watch; exiting")
		return 0
	case errors.Is(err, context.Canceled):
		log.Info("shutdown signal received")
		return 0
	case err != nil:
		log.Error("poll loop failed", logx.Err(err))
		return 1
	}
	return 0
}

func logConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func notifierConfig(cfg *config.Config) notifier.Config {
	return notifier.Config{
		Target: transport.ChatTarget{
			ChatID:   cfg.Telegram.ChatID,
			ThreadID: cfg.Telegram.ThreadID,
		},
		RatePerSec: cfg.Notifier.RatePerSec,
	}
}

// sdReady tells systemd the startup checks passed. A no-op outside a
// systemd unit with Type=notify.
func sdReady(log logx.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		log.Warn("sd_notify failed", logx.Err(err))
		return
	}
	if sent {
		log.Debug("sd_notify: ready")
	}
}

// sdWatchdog pings the systemd watchdog at half the configured interval
// while the loop runs. A no-op when WATCHDOG_USEC is not set.
func sdWatchdog(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return
	}
	t := time.NewTicker(interval / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}
