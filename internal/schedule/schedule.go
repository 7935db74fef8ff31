package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Kind describes the normalized kind of a poll trigger.
type Kind int

const (
	KindInterval Kind = iota
	KindCron
)

// DefaultInterval is the poll period used when no schedule is configured.
const DefaultInterval = 10 * time.Minute

// Spec is a parsed poll trigger.
//
// Supported forms:
//   - Interval duration: "10m", "2h30m"
//   - Cron (crontab.guru-style): "*/10 * * * *", "@hourly", "@every 55m"
//
// Optional prefixes:
//   - "cron:" forces cron parsing
//   - "interval:" or "every:" forces interval parsing
//
// An empty string parses to the default fixed interval.
type Spec struct {
	Kind  Kind
	Every time.Duration
	Expr  string

	sched cron.Schedule
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse parses a trigger string into either a cron schedule or an interval.
func Parse(raw string) (Spec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Spec{Kind: KindInterval, Every: DefaultInterval}, nil
	}

	low := strings.ToLower(s)
	if strings.HasPrefix(low, "cron:") {
		return parseCron(strings.TrimSpace(s[len("cron:"):]))
	}
	if strings.HasPrefix(low, "interval:") {
		return parseInterval(strings.TrimSpace(s[len("interval:"):]))
	}
	if strings.HasPrefix(low, "every:") {
		return parseInterval(strings.TrimSpace(s[len("every:"):]))
	}

	// Heuristic: any whitespace or a leading '@' means cron.
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		return parseCron(s)
	}

	return parseInterval(s)
}

func parseCron(expr string) (Spec, error) {
	if expr == "" {
		return Spec{}, fmt.Errorf("cron schedule required after 'cron:'")
	}
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return Spec{Kind: KindCron, Expr: expr, sched: sched}, nil
}

func parseInterval(v string) (Spec, error) {
	if v == "" {
		return Spec{}, fmt.Errorf("interval required")
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid schedule %q (use cron like '*/10 * * * *' or duration like '10m')", v)
	}
	if d <= 0 {
		return Spec{}, fmt.Errorf("interval must be > 0")
	}
	return Spec{Kind: KindInterval, Every: d}, nil
}

// Next returns the time of the next poll after now. Interval specs keep the
// fixed unconditional sleep; cron specs follow the cron calendar.
func (s Spec) Next(now time.Time) time.Time {
	if s.Kind == KindCron && s.sched != nil {
		return s.sched.Next(now)
	}
	every := s.Every
	if every <= 0 {
		every = DefaultInterval
	}
	return now.Add(every)
}

func (s Spec) String() string {
	if s.Kind == KindCron {
		return "cron:" + s.Expr
	}
	every := s.Every
	if every <= 0 {
		every = DefaultInterval
	}
	return "interval:" + every.String()
}
