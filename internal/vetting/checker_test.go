package vetting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, handler http.HandlerFunc) (*Checker, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	checker := NewChecker(Config{
		Endpoint:    srv.URL,
		Wallet:      "11111111111111111111111111111111",
		InputSol:    0.1,
		SlippageBps: 50,
		Timeout:     2 * time.Second,
	}, srv.Client(), zerolog.Nop())
	return checker, srv
}

func TestCheck_RouteFoundConfirms(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "So11111111111111111111111111111111111111112", r.URL.Query().Get("outputMint"))
		assert.Equal(t, "100000000", r.URL.Query().Get("amount"))
		assert.Equal(t, "50", r.URL.Query().Get("slippageBps"))
		w.Write([]byte(`{"statusCode": 200}`))
	})

	res := checker.Check(context.Background(), "MintA")
	assert.Equal(t, StatusConfirmed, res.Status)
	assert.Empty(t, res.Reason)
}

func TestCheck_BareQuoteObjectConfirms(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"inAmount":"100000000","outAmount":"42"}`))
	})

	res := checker.Check(context.Background(), "MintA")
	assert.Equal(t, StatusConfirmed, res.Status)
}

func TestCheck_NoRouteRejectsTerminally(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"statusCode": 400, "message": "Could not find any route for the given tokens"}`))
	})

	res := checker.Check(context.Background(), "MintA")
	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, ReasonNoRoute, res.Reason)
}

func TestCheck_TooNewToken(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"statusCode": 400, "message": "Token is too new to evaluate"}`))
	})

	res := checker.Check(context.Background(), "MintA")
	assert.Equal(t, StatusTooNew, res.Status)
}

func TestCheck_NotTradableIsTooNew(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statusCode": 422, "message": "token not tradable yet"}`))
	})

	res := checker.Check(context.Background(), "MintA")
	assert.Equal(t, StatusTooNew, res.Status)
}

func TestCheck_UnclassifiedErrorRejects(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"statusCode": 500, "message": "internal error"}`))
	})

	res := checker.Check(context.Background(), "MintA")
	assert.Equal(t, StatusRejected, res.Status)
	assert.Contains(t, res.Reason, ReasonBadStatus)
}

func TestCheck_GarbageBodyRejects(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway timeout</html>`))
	})

	res := checker.Check(context.Background(), "MintA")
	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, ReasonNotClassable, res.Reason)
}

func TestCheck_TransportErrorRejects(t *testing.T) {
	checker, srv := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close() // force a dial failure

	res := checker.Check(context.Background(), "MintA")
	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, ReasonTransport, res.Reason)
}

func TestCheck_ContextCancellation(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"statusCode": 200}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := checker.Check(ctx, "MintA")
	require.Equal(t, StatusRejected, res.Status)
}
