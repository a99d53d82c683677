package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/ItsHarfer/CineShelf/internal/apperror"
)

const (
	DefaultBaseURL = "https://www.omdbapi.com/"
	DefaultTimeout = 5 * time.Second

	// maxBodyBytes bounds how much of a response is read. OMDb answers for a
	// single title are a few kilobytes.
	maxBodyBytes = 1 << 20
)

// Outcome tags a successful lookup.
type Outcome int

const (
	NotFound Outcome = iota
	Found
)

func (o Outcome) String() string {
	if o == Found {
		return "found"
	}
	return "not_found"
}

// Result is the answer to one lookup. Record is set only when Outcome is
// Found; Reason carries OMDb's message when it is NotFound.
type Result struct {
	Outcome Outcome
	Record  Record
	Reason  string
}

func (r Result) Found() bool { return r.Outcome == Found }

// Client queries OMDb by exact title.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Its own Timeout is kept;
// the lookup deadline still applies through the request context.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL points the client at another endpoint, such as a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout bounds each lookup. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an OMDb client.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	client := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.timeout}
	}
	return client, nil
}

// Resolve looks up title exactly as given and normalizes the answer.
//
// A nil error means OMDb answered: check Result.Outcome. Otherwise the error
// wraps apperror.ErrTransport (network, timeout, non-2xx status) or
// apperror.ErrParse (body is not the expected JSON).
func (c *Client) Resolve(ctx context.Context, title string) (Result, error) {
	if strings.TrimSpace(title) == "" {
		return Result{}, apperror.ValidationFailed("title", "title is required")
	}

	lookupID := xid.New().String()
	logger := c.logger.With(
		slog.String("lookup_id", lookupID),
		slog.String("title", title),
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return Result{}, apperror.Transport("parsing omdb url", err)
	}
	params := url.Values{}
	params.Set("t", title)
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Result{}, apperror.Transport("building omdb request", err)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("omdb lookup started")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		logger.Warn("omdb request failed",
			slog.Duration("latency", latency),
			slog.String("error", err.Error()),
		)
		return Result{}, apperror.Transport("omdb request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		logger.Warn("reading omdb response failed", slog.String("error", err.Error()))
		return Result{}, apperror.Transport("reading omdb response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("omdb returned an error status",
			slog.Int("status", resp.StatusCode),
			slog.Duration("latency", latency),
		)
		return Result{}, apperror.Transport("omdb lookup",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	result, err := decode(body)
	if err != nil {
		logger.Warn("omdb response could not be decoded",
			slog.Duration("latency", latency),
			slog.String("error", err.Error()),
		)
		return Result{}, err
	}

	logger.Info("omdb lookup finished",
		slog.String("outcome", result.Outcome.String()),
		slog.Duration("latency", latency),
	)
	return result, nil
}

// decode interprets an OMDb body. The Response field decides between a match
// and a miss; any other value is a parse failure.
func decode(body []byte) (Result, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Result{}, apperror.Parse("decoding omdb response", err)
	}

	switch p.Response {
	case "True":
		return Result{Outcome: Found, Record: p.record()}, nil
	case "False":
		return Result{Outcome: NotFound, Reason: p.Error}, nil
	default:
		return Result{}, apperror.Parse("decoding omdb response",
			fmt.Errorf("unexpected Response value %q", p.Response))
	}
}
