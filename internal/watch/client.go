package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/thearst3rd/chess-tournament/internal/arena"
	"github.com/thearst3rd/chess-tournament/pkg/arenadto"
)

// ErrNotFound marks a 404 from the watch API.
var ErrNotFound = errors.New("not found")

// Client is the REST half of following a remote arena.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, "/healthz", nil)
}

func (c *Client) RecentGames(ctx context.Context, limit int) ([]arenadto.GameSummary, error) {
	path := "/api/games"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var out []arenadto.GameSummary
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Game(ctx context.Context, id string) (*arenadto.GameDetail, error) {
	var out arenadto.GameDetail
	if err := c.getJSON(ctx, "/api/games/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Live(ctx context.Context) (*arenadto.LiveSnapshot, error) {
	var out arenadto.LiveSnapshot
	if err := c.getJSON(ctx, "/api/live", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status == fasthttp.StatusNotFound {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		if status < 200 || status >= 300 {
			lastErr = fmt.Errorf("watch api error: status=%d body=%s", status, truncate(string(resp.Body()), 512))
			if attempt == attempts || !shouldRetryStatus(status) {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Follower dials a remote arena's live feed and replays each event into
// a local sink, usually the console transcript. Run returns once a
// result event arrives.
type Follower struct {
	feedURL     string
	sink        arena.Sink
	maxAttempts int
}

func NewFollower(baseURL string, sink arena.Sink) *Follower {
	return &Follower{
		feedURL:     liveFeedURL(baseURL),
		sink:        sink,
		maxAttempts: 5,
	}
}

func (f *Follower) Run(ctx context.Context) error {
	attempt := 0
	for {
		done, err := f.follow(ctx)
		if done {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		attempt++
		if attempt >= f.maxAttempts {
			return fmt.Errorf("live feed: %w", err)
		}
		if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return sleepErr
		}
	}
}

func (f *Follower) follow(ctx context.Context) (bool, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, f.feedURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	cancel()
	if err != nil {
		return false, err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		var ev arenadto.Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			return false, err
		}
		switch ev.Type {
		case arenadto.EventPly:
			if ev.Ply != nil {
				if err := f.sink.OnPly(ctx, ev.Ply.Domain()); err != nil {
					return false, err
				}
			}
		case arenadto.EventResult:
			if ev.Result != nil {
				if err := f.sink.OnResult(ctx, ev.Result.Record()); err != nil {
					return false, err
				}
			}
			return true, nil
		}
	}
}

func liveFeedURL(base string) string {
	u := strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/live"
}
