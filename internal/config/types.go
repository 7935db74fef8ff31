package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the whole configuration surface of the bot.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "10m").
// Credentials may be omitted from the file and supplied through the
// environment instead (PRACTICUM_TOKEN, TELEGRAM_TOKEN, TELEGRAM_CHAT_ID);
// environment values win over file values.
type Config struct {
	Practicum PracticumConfig `json:"practicum"`
	Telegram  TelegramConfig  `json:"telegram"`
	Logging   LoggingConfig   `json:"logging"`
	Poll      PollConfig      `json:"poll"`
	Notifier  NotifierConfig  `json:"notifier,omitempty"`
}

// PracticumConfig points the client at the homework-status API.
type PracticumConfig struct {
	// Endpoint defaults to the production homework_statuses URL.
	Endpoint string `json:"endpoint,omitempty"`
	Token    string `json:"token,omitempty"`
	// Timeout bounds a single API request. Defaults to "8s".
	Timeout string `json:"timeout,omitempty"`
}

type TelegramConfig struct {
	Token  string `json:"token,omitempty"`
	ChatID int64  `json:"chat_id,omitempty"`
	// ThreadID targets a forum topic (0 if none).
	ThreadID int `json:"thread_id,omitempty"`
	// Timeout bounds a single Bot API call.
	Timeout string `json:"timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// PollConfig controls the poll trigger.
//
// Schedule accepts a plain duration ("10m"), an "interval:" prefix, or a
// "cron:" prefix / crontab expression. Empty means the default 10m interval.
type PollConfig struct {
	Schedule string `json:"schedule,omitempty"`
}

// NotifierConfig controls delivery pacing towards Telegram.
type NotifierConfig struct {
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

// ParseDurationField parses one of the duration-string fields above. An
// empty value parses to zero so the caller can substitute its own default;
// field names the offending key in the error (e.g. "telegram.timeout").
func ParseDurationField(field, raw string) (time.Duration, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration (want forms like \"500ms\" or \"8s\")", field, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration %q must not be negative", field, raw)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with def substituted for an
// empty or zero value.
func ParseDurationOrDefault(field, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(field, raw)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return def, nil
	}
	return d, nil
}
