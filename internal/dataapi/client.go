package dataapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/DoyleJ11/rink-sequences/pkg/types"
)

// Transport-class failures (network errors and non-2xx statuses) wrap
// ErrTransport; undecodable bodies wrap ErrDecode.
var (
	ErrTransport = errors.New("data api transport error")
	ErrDecode    = errors.New("data api decode error")
	ErrNoBaseURL = errors.New("data api base url not configured")
)

const DefaultTimeout = 15 * time.Second

// Fetcher is the read side of the data API.
type Fetcher interface {
	GetGames(ctx context.Context) ([]types.Game, error)
	GetSequences(ctx context.Context, gameDate string) ([]types.Sequence, error)
	GetPlays(ctx context.Context, sequenceID string) ([]types.Play, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("data api: status=%d url=%s body=%s", e.Status, e.URL, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrTransport }

type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Client handles data API requests
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
	flight     singleflight.Group
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    timeout,
		logger:     logger.Named("dataapi"),
	}, nil
}

// GetGames fetches every game.
// GET {base}/games
func (c *Client) GetGames(ctx context.Context) ([]types.Game, error) {
	var games []types.Game
	if err := c.getJSON(ctx, c.baseURL+"/games", &games); err != nil {
		return nil, err
	}
	return orEmpty(games), nil
}

// GetSequences fetches the sequences of one game.
// GET {base}/sequences?game_date={date}
func (c *Client) GetSequences(ctx context.Context, gameDate string) ([]types.Sequence, error) {
	u := c.baseURL + "/sequences?" + url.Values{"game_date": {gameDate}}.Encode()

	var sequences []types.Sequence
	if err := c.getJSON(ctx, u, &sequences); err != nil {
		return nil, err
	}
	return orEmpty(sequences), nil
}

// GetPlays fetches the time-ordered plays of one sequence.
// GET {base}/sequences/{id}/plays
func (c *Client) GetPlays(ctx context.Context, sequenceID string) ([]types.Play, error) {
	u := fmt.Sprintf("%s/sequences/%s/plays", c.baseURL, url.PathEscape(sequenceID))

	var plays []types.Play
	if err := c.getJSON(ctx, u, &plays); err != nil {
		return nil, err
	}
	return orEmpty(plays), nil
}

// getJSON collapses concurrent requests for the same URL into one round trip
// and decodes the shared body into out. The shared request is detached from
// any one caller's cancellation; each caller still stops waiting on its own ctx.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	ch := c.flight.DoChan(u, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetch(fetchCtx, u)
	})

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		body := res.Val.([]byte)
		if err := json.Unmarshal(body, out); err != nil {
			c.logger.Warn("undecodable response", zap.String("url", u), zap.Error(err))
			return fmt.Errorf("%w: %s: %w", ErrDecode, u, err)
		}
		return nil
	}
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("url", u), zap.Error(err))
		return nil, fmt.Errorf("%w: making request: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("unexpected status", zap.String("url", u), zap.Int("status", resp.StatusCode))
		return nil, &StatusError{URL: u, Status: resp.StatusCode, Body: truncate(string(body), 256)}
	}

	c.logger.Debug("fetched",
		zap.String("url", u),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}

// orEmpty turns a JSON null into an empty result.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "…"
	}
	return s
}
