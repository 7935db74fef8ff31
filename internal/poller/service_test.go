package poller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tantsiura/homework-bot/internal/practicum"
	"github.com/tantsiura/homework-bot/internal/schedule"
	logx "github.com/tantsiura/homework-bot/pkg/logx"
)

// fakeAPI replays a scripted sequence of fetch results and records the
// cursor of every call. Once the script runs out it reports an empty batch
// so Run terminates.
type fakeAPI struct {
	mu      sync.Mutex
	script  []fetchResult
	cursors []int64
}

type fetchResult struct {
	body string
	err  error
}

func (f *fakeAPI) Fetch(ctx context.Context, fromDate int64) (practicum.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursors = append(f.cursors, fromDate)

	if len(f.script) == 0 {
		resp, _ := practicum.ParseResponse([]byte(`{"homeworks": [], "current_date": 0}`))
		return resp, nil
	}
	next := f.script[0]
	f.script = f.script[1:]
	if next.err != nil {
		return practicum.Response{}, next.err
	}
	return practicum.ParseResponse([]byte(next.body))
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, text)
	return f.err
}

func (f *fakeNotifier) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.msgs...)
}

func newTestService(t *testing.T, api *fakeAPI, n *fakeNotifier) *Service {
	t.Helper()
	return New(Config{
		Schedule: schedule.Spec{Kind: schedule.KindInterval, Every: time.Millisecond},
	}, api, n, logx.Nop())
}

func runToCompletion(t *testing.T, s *Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Run(ctx); !errors.Is(err, ErrNoHomeworks) {
		t.Fatalf("Run = %v, want ErrNoHomeworks", err)
	}
}

func TestRunNotifiesAndAdvancesCursor(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{script: []fetchResult{
		{body: `{"homeworks": [{"name": "hw1", "status": "approved"}], "current_date": 1000}`},
	}}
	n := &fakeNotifier{}
	s := newTestService(t, api, n)
	start := s.Cursor()

	runToCompletion(t, s)

	msgs := n.messages()
	if len(msgs) != 1 {
		t.Fatalf("notifications = %d, want 1", len(msgs))
	}
	if !strings.Contains(msgs[0], "hw1") || !strings.Contains(msgs[0], "ревьюеру всё понравилось") {
		t.Fatalf("unexpected notification text: %q", msgs[0])
	}
	if s.Cursor() != 1000 {
		t.Fatalf("cursor = %d, want 1000", s.Cursor())
	}
	if len(api.cursors) < 2 || api.cursors[0] != start || api.cursors[1] != 1000 {
		t.Fatalf("fetch cursors = %v, want [%d 1000]", api.cursors, start)
	}
}

func TestRunSuppressesUnchangedStatus(t *testing.T) {
	t.Parallel()
	item := `{"homeworks": [{"name": "hw1", "status": "reviewing"}], "current_date": 500}`
	api := &fakeAPI{script: []fetchResult{{body: item}, {body: item}}}
	n := &fakeNotifier{}
	s := newTestService(t, api, n)

	runToCompletion(t, s)

	if got := len(n.messages()); got != 1 {
		t.Fatalf("notifications = %d, want 1 (second poll unchanged)", got)
	}
}

func TestRunStatusChangeNotifiesAgain(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{script: []fetchResult{
		{body: `{"homeworks": [{"name": "hw1", "status": "reviewing"}], "current_date": 500}`},
		{body: `{"homeworks": [{"name": "hw1", "status": "approved"}], "current_date": 600}`},
	}}
	n := &fakeNotifier{}
	s := newTestService(t, api, n)

	runToCompletion(t, s)

	msgs := n.messages()
	if len(msgs) != 2 {
		t.Fatalf("notifications = %d, want 2", len(msgs))
	}
	if !strings.Contains(msgs[0], "взята на проверку") || !strings.Contains(msgs[1], "понравилось") {
		t.Fatalf("unexpected sequence: %v", msgs)
	}
}

func TestRunEmptyBatchTerminates(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{script: []fetchResult{
		{body: `{"homeworks": [], "current_date": 900}`},
	}}
	n := &fakeNotifier{}
	s := newTestService(t, api, n)

	runToCompletion(t, s)

	if got := len(n.messages()); got != 0 {
		t.Fatalf("notifications = %d, want 0", got)
	}
	if len(api.cursors) != 1 {
		t.Fatalf("fetch calls = %d, want 1 (terminal on first empty batch)", len(api.cursors))
	}
}

func TestRunDedupesRepeatedErrors(t *testing.T) {
	t.Parallel()
	fail := &practicum.EndpointError{URL: "https://api", Err: errors.New("connection refused")}
	api := &fakeAPI{script: []fetchResult{{err: fail}, {err: fail}}}
	n := &fakeNotifier{}
	s := newTestService(t, api, n)

	runToCompletion(t, s)

	msgs := n.messages()
	if len(msgs) != 1 {
		t.Fatalf("notifications = %d, want 1 (second identical error suppressed)", len(msgs))
	}
	if !strings.HasPrefix(msgs[0], "Сбой в работе программы: ") {
		t.Fatalf("unexpected error report: %q", msgs[0])
	}
}

func TestRunErrorReportedAgainAfterCleanPass(t *testing.T) {
	t.Parallel()
	fail := &practicum.EndpointError{URL: "https://api", Err: errors.New("timeout")}
	api := &fakeAPI{script: []fetchResult{
		{err: fail},
		{body: `{"homeworks": [{"name": "hw1", "status": "approved"}], "current_date": 100}`},
		{err: fail},
	}}
	n := &fakeNotifier{}
	s := newTestService(t, api, n)

	runToCompletion(t, s)

	var reports int
	for _, m := range n.messages() {
		if strings.HasPrefix(m, "Сбой в работе программы: ") {
			reports++
		}
	}
	if reports != 2 {
		t.Fatalf("error reports = %d, want 2 (sentinel cleared by the clean pass)", reports)
	}
}

func TestRunMissingStatusGoesToErrorPath(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{script: []fetchResult{
		{body: `{"homeworks": [{"name": "hw1"}], "current_date": 700}`},
	}}
	n := &fakeNotifier{}
	s := newTestService(t, api, n)
	start := s.Cursor()

	runToCompletion(t, s)

	msgs := n.messages()
	if len(msgs) != 1 {
		t.Fatalf("notifications = %d, want 1 (only the error report)", len(msgs))
	}
	if !strings.HasPrefix(msgs[0], "Сбой в работе программы: ") {
		t.Fatalf("unexpected message: %q", msgs[0])
	}
	if strings.Contains(msgs[0], "Изменился статус") {
		t.Fatal("no verdict message may be sent for an unparseable item")
	}
	// The failed iteration must not advance the cursor.
	if len(api.cursors) < 2 || api.cursors[1] != start {
		t.Fatalf("fetch cursors = %v, want second call at %d", api.cursors, start)
	}
}

func TestRunCursorTracksServerDate(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{script: []fetchResult{
		{body: `{"homeworks": [{"name": "hw1", "status": "approved"}], "current_date": 1000}`},
		{body: `{"homeworks": [{"name": "hw1", "status": "rejected"}], "current_date": 900}`},
	}}
	n := &fakeNotifier{}
	s := newTestService(t, api, n)

	runToCompletion(t, s)

	// The server clock is authoritative even when it disagrees with the
	// local one: each successful iteration queries from the previous
	// response's current_date.
	if len(api.cursors) < 3 || api.cursors[1] != 1000 || api.cursors[2] != 900 {
		t.Fatalf("fetch cursors = %v, want [start 1000 900]", api.cursors)
	}
	if s.Cursor() != 900 {
		t.Fatalf("cursor = %d, want 900 (last server current_date)", s.Cursor())
	}
}

func TestRunCursorKeptWithoutCurrentDate(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{script: []fetchResult{
		{body: `{"homeworks": [{"name": "hw1", "status": "approved"}]}`},
	}}
	n := &fakeNotifier{}
	s := newTestService(t, api, n)
	start := s.Cursor()

	runToCompletion(t, s)

	if len(api.cursors) < 2 || api.cursors[1] != start {
		t.Fatalf("fetch cursors = %v, want the window re-queried at %d", api.cursors, start)
	}
}

func TestRunDeliveryFailureDoesNotCrashLoop(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{script: []fetchResult{
		{body: `{"homeworks": [{"name": "hw1", "status": "approved"}], "current_date": 100}`},
	}}
	n := &fakeNotifier{err: errors.New("bot is broken")}
	s := newTestService(t, api, n)

	runToCompletion(t, s)

	// The send was attempted, recorded, and the loop carried on to the
	// terminal empty batch.
	if got := len(n.messages()); got != 1 {
		t.Fatalf("send attempts = %d, want 1", got)
	}
	if s.Cursor() != 100 {
		t.Fatalf("cursor = %d, want 100", s.Cursor())
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{script: []fetchResult{
		{body: `{"homeworks": [{"name": "hw1", "status": "approved"}], "current_date": 100}`},
	}}
	n := &fakeNotifier{}
	s := New(Config{
		Schedule: schedule.Spec{Kind: schedule.KindInterval, Every: time.Hour},
	}, api, n, logx.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Let the first iteration land, then cancel during the long sleep.
	deadline := time.After(5 * time.Second)
	for {
		if len(n.messages()) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first notification never arrived")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
