package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names recognized as credential overrides.
const (
	EnvPracticumToken = "PRACTICUM_TOKEN"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
)

// ApplyEnv overlays credential environment variables on top of cfg.
// Environment values win so a config file checked into a host never has
// to contain secrets.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvPracticumToken)); v != "" {
		cfg.Practicum.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelegramToken)); v != "" {
		cfg.Telegram.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelegramChatID)); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid chat id %q: %w", EnvTelegramChatID, v, err)
		}
		cfg.Telegram.ChatID = id
	}
	return nil
}

// MissingCredentialsError is fatal at startup: without credentials neither
// the API client nor the notifier can operate, so the process must not
// enter the poll loop.
type MissingCredentialsError struct {
	Names []string
}

func (e *MissingCredentialsError) Error() string {
	return "missing required credentials: " + strings.Join(e.Names, ", ")
}

// CheckCredentials verifies all three required values are present after
// file decode and environment overlay.
func (c *Config) CheckCredentials() error {
	var missing []string
	if strings.TrimSpace(c.Practicum.Token) == "" {
		missing = append(missing, EnvPracticumToken)
	}
	if strings.TrimSpace(c.Telegram.Token) == "" {
		missing = append(missing, EnvTelegramToken)
	}
	if c.Telegram.ChatID == 0 {
		missing = append(missing, EnvTelegramChatID)
	}
	if len(missing) > 0 {
		return &MissingCredentialsError{Names: missing}
	}
	return nil
}
