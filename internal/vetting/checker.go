// Package vetting verifies that a token is actually tradable by asking
// a quote endpoint for a swap route into wrapped SOL. The outcome per
// invocation is Confirmed, Rejected, or TooNew; cool-downs for TooNew
// tokens are scheduled by the caller, never slept through here, so a
// check is always a single bounded HTTP call.
package vetting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"solana-paper-trader/internal/solana"
)

// Status is the outcome of a single legitimacy check.
type Status int

const (
	// StatusConfirmed means a swap route exists and the token is
	// considered tradable.
	StatusConfirmed Status = iota
	// StatusRejected is terminal for this check: no route, a transport
	// failure, or an unclassifiable error.
	StatusRejected
	// StatusTooNew means the token cannot be evaluated yet and should
	// be re-checked after a cool-down.
	StatusTooNew
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusConfirmed:
		return "CONFIRMED"
	case StatusRejected:
		return "REJECTED"
	default:
		return "TOO_NEW"
	}
}

// Rejection reasons surfaced to logs and the analysis cache.
const (
	ReasonNoRoute      = "no route available"
	ReasonTransport    = "transport failure"
	ReasonBadStatus    = "unexpected status"
	ReasonMaxRetries   = "max retries exceeded"
	ReasonNotClassable = "unclassified failure"
)

// Result is the classified outcome of one check call.
type Result struct {
	Status Status
	Reason string // empty for Confirmed
}

// Config holds the fixed quote parameters.
type Config struct {
	Endpoint    string        // quote endpoint URL
	Wallet      string        // operator wallet address
	InputSol    float64       // probe size in SOL
	SlippageBps int           // slippage tolerance in basis points
	Timeout     time.Duration // per-call HTTP timeout
}

// Checker performs legitimacy checks against the quote endpoint.
type Checker struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// NewChecker creates a checker. A nil client falls back to a default
// with the configured timeout.
func NewChecker(cfg Config, client *http.Client, logger zerolog.Logger) *Checker {
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Checker{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("component", "vetting").Logger(),
	}
}

// quoteResponse is the wire shape of the quote endpoint's reply.
type quoteResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

const lamportsPerSol = 1_000_000_000

// Check asks the quote endpoint for a route from the token into WSOL.
// The call is bounded by the HTTP timeout and the context; it never
// sleeps or retries internally.
func (c *Checker) Check(ctx context.Context, mint string) Result {
	req, err := c.buildRequest(ctx, mint)
	if err != nil {
		return Result{Status: StatusRejected, Reason: ReasonTransport}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("mint", mint).Msg("quote call failed")
		return Result{Status: StatusRejected, Reason: ReasonTransport}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.logger.Warn().Err(err).Str("mint", mint).Msg("quote body read failed")
		return Result{Status: StatusRejected, Reason: ReasonTransport}
	}

	return c.classify(resp.StatusCode, body)
}

// buildRequest assembles the quote query: token in, WSOL out, fixed
// probe amount, operator wallet, slippage tolerance.
func (c *Checker) buildRequest(ctx context.Context, mint string) (*http.Request, error) {
	q := url.Values{}
	q.Set("inputMint", mint)
	q.Set("outputMint", solana.WSOLMint)
	q.Set("amount", strconv.FormatInt(int64(c.cfg.InputSol*lamportsPerSol), 10))
	q.Set("userPublicKey", c.cfg.Wallet)
	q.Set("slippageBps", strconv.Itoa(c.cfg.SlippageBps))

	u := c.cfg.Endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// classify maps the HTTP status and response body onto an outcome.
func (c *Checker) classify(httpStatus int, body []byte) Result {
	var qr quoteResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return Result{Status: StatusRejected, Reason: ReasonNotClassable}
	}

	// A bare quote object carries no statusCode field; fall back to the
	// HTTP status in that case.
	status := qr.StatusCode
	if status == 0 {
		status = httpStatus
	}

	if status >= 200 && status < 300 && qr.Message == "" {
		return Result{Status: StatusConfirmed}
	}

	msg := strings.ToLower(qr.Message)
	switch {
	case strings.Contains(msg, "no route") || strings.Contains(msg, "route not found") ||
		strings.Contains(msg, "could not find any route"):
		return Result{Status: StatusRejected, Reason: ReasonNoRoute}
	case strings.Contains(msg, "too new") || strings.Contains(msg, "not tradable"):
		return Result{Status: StatusTooNew, Reason: qr.Message}
	default:
		return Result{Status: StatusRejected, Reason: fmt.Sprintf("%s: %d %s", ReasonBadStatus, status, qr.Message)}
	}
}
