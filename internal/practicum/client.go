package practicum

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	logx "github.com/tantsiura/homework-bot/pkg/logx"
)

// DefaultEndpoint is the production homework-status API.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

// maxBodyBytes caps how much of a response body is read. Status payloads
// are tiny; anything larger is garbage.
const maxBodyBytes = 1 << 20

type Config struct {
	Endpoint string
	Token    string
	// Timeout bounds a single request end to end.
	Timeout time.Duration
}

// Client issues timestamped, authorized queries against the single
// homework-status endpoint. It never retries: retry cadence belongs to
// the poller.
type Client struct {
	cfg  Config
	http *http.Client
	log  logx.Logger
}

func NewClient(cfg Config, log logx.Logger) *Client {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// Fetch queries the endpoint for homework updates since fromDate.
//
// Errors are one of *EndpointError (transport), *StatusCodeError (non-200)
// or *DecodeError (unparseable body).
func (c *Client) Fetch(ctx context.Context, fromDate int64) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint, nil)
	if err != nil {
		return Response{}, &EndpointError{URL: c.cfg.Endpoint, Err: err}
	}

	q := req.URL.Query()
	q.Set("from_date", strconv.FormatInt(fromDate, 10))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "OAuth "+c.cfg.Token)

	c.log.Debug("requesting homework statuses",
		logx.String("endpoint", c.cfg.Endpoint),
		logx.Int64("from_date", fromDate),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, &EndpointError{URL: c.cfg.Endpoint, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Response{}, &StatusCodeError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, &EndpointError{URL: c.cfg.Endpoint, Err: err}
	}

	return ParseResponse(body)
}
