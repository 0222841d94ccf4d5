package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrUnavailable means the engine process cannot be spawned, has died,
	// or the client was closed.
	ErrUnavailable = errors.New("engine unavailable")
	// ErrTimeout means no response arrived within the bounded wait.
	ErrTimeout = errors.New("engine timeout")
	// ErrProtocol means the engine answered something unparsable.
	ErrProtocol = errors.New("engine protocol error")
)

// Client owns at most one live Session for a single engine spec. The
// session is spawned on first use. A session found dead is respawned
// transparently once; if spawning fails the client latches permanently
// unavailable and every later call fails fast.
type Client struct {
	spec   Spec
	log    *zap.Logger
	runCtx context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	session *Session
	failed  bool
	closed  bool
}

func NewClient(spec Spec, logger *zap.Logger) (*Client, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		spec:   spec,
		log:    logger,
		runCtx: ctx,
		cancel: cancel,
	}, nil
}

// BestMove runs a search from the given base position (empty FEN means the
// starting position) through the UCI move sequence and returns the engine's
// best move token.
func (c *Client) BestMove(ctx context.Context, fen string, moves []string, limits Limits) (string, error) {
	resp, err := c.doSearch(ctx, SearchRequest{FEN: fen, Moves: moves, Limits: limits})
	if err != nil {
		return "", err
	}
	if resp.BestMove == "" {
		return "", fmt.Errorf("engine reported no best move: %w", ErrProtocol)
	}
	return resp.BestMove, nil
}

// Analyse runs a ranked search and returns every candidate the engine
// reported. FEN may be empty for the starting position.
func (c *Client) Analyse(ctx context.Context, fen string, moves []string, limits Limits, multipv int) (SearchResponse, error) {
	return c.doSearch(ctx, SearchRequest{FEN: fen, Moves: moves, Limits: limits, MultiPV: multipv})
}

// NewGame forwards ucinewgame to the live session, if any. Best effort: a
// failing session is discarded so the next search respawns it.
func (c *Client) NewGame(ctx context.Context) error {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	if err := s.NewGame(ctx); err != nil {
		c.log.Warn("ucinewgame failed, discarding session",
			zap.String("engine", c.spec.Name), zap.Error(err))
		c.discard(s)
	}
	return nil
}

// Stop interrupts an in-flight search, best effort.
func (c *Client) Stop() {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s != nil {
		_ = s.Stop()
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	s := c.session
	c.session = nil
	c.mu.Unlock()

	c.cancel()
	if s != nil {
		return s.Close()
	}
	return nil
}

func (c *Client) doSearch(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	for attempt := 0; ; attempt++ {
		s, err := c.ensure()
		if err != nil {
			return SearchResponse{}, err
		}

		resp, err := s.Search(ctx, req)
		if err == nil {
			return resp, nil
		}

		if errors.Is(err, context.DeadlineExceeded) {
			// A wedged engine cannot be trusted with another search.
			c.discard(s)
			return SearchResponse{}, fmt.Errorf("search exceeded its window: %w", ErrTimeout)
		}
		if errors.Is(err, context.Canceled) {
			return SearchResponse{}, err
		}

		// Anything else here is a broken pipe or EOF: the process is gone.
		c.discard(s)
		if attempt > 0 {
			return SearchResponse{}, fmt.Errorf("engine died during search: %v: %w", err, ErrUnavailable)
		}
		c.log.Warn("engine process lost, respawning",
			zap.String("engine", c.spec.Name), zap.Error(err))
	}
}

func (c *Client) ensure() (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("client closed: %w", ErrUnavailable)
	}
	if c.failed {
		return nil, fmt.Errorf("engine %s previously failed to spawn: %w", c.spec.Name, ErrUnavailable)
	}
	if c.session != nil {
		return c.session, nil
	}

	s, err := NewSession(c.runCtx, c.spec)
	if err != nil {
		c.failed = true
		return nil, fmt.Errorf("spawn %s: %v: %w", c.spec.Name, err, ErrUnavailable)
	}
	c.session = s
	return s, nil
}

func (c *Client) discard(s *Session) {
	c.mu.Lock()
	if c.session == s {
		c.session = nil
	}
	c.mu.Unlock()
	_ = s.Close()
}
