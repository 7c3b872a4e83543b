package status_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/craftlist/craftlist/internal/database/types/enum"
	"github.com/craftlist/craftlist/internal/setup/config"
	"github.com/craftlist/craftlist/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const primaryBody = `{
	"online": true,
	"players": {"online": 42, "max": 200},
	"version": {"name_clean": "1.21.4"},
	"motd": {"clean": ["§6Welcome to  the server", "Second line"]},
	"icon": ""
}`

const fallbackBody = `{
	"online": true,
	"players": {"online": 7, "max": 50},
	"version": "1.20.1",
	"motd": {"clean": ["Fallback server"]},
	"icon": ""
}`

func newChecker(t *testing.T, primaryURL, fallbackURL string) *status.Checker {
	t.Helper()

	cfg := &config.StatusAPI{
		PrimaryURL:     primaryURL,
		FallbackURL:    fallbackURL,
		RequestTimeout: 2000,
		CacheTTL:       45,
	}
	client := status.NewClient(cfg, zap.NewNop())

	return status.NewChecker(cfg, client, nil, zap.NewNop())
}

func TestCheckerParsesPrimaryResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/java/play.example.com:25565", r.URL.Path)
		_, _ = w.Write([]byte(primaryBody))
	}))
	defer server.Close()

	checker := newChecker(t, server.URL, "")

	result := checker.Check(context.Background(), status.Request{
		Host:   "play.example.com",
		Port:   25565,
		Family: enum.ClientFamilyJava,
	})

	require.True(t, result.Online)
	assert.Equal(t, 42, result.PlayersOnline)
	assert.Equal(t, 200, result.PlayersMax)
	assert.Equal(t, "1.21.4", result.Version)
	assert.Equal(t, []string{"Welcome to the server", "Second line"}, result.MOTD)
}

func TestCheckerCachesResults(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(primaryBody))
	}))
	defer server.Close()

	checker := newChecker(t, server.URL, "")
	req := status.Request{Host: "play.example.com", Port: 25565, Family: enum.ClientFamilyJava}

	first := checker.Check(context.Background(), req)
	second := checker.Check(context.Background(), req)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load(), "second check should be served from cache")
}

func TestCheckerDistinguishesFamilies(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(primaryBody))
	}))
	defer server.Close()

	checker := newChecker(t, server.URL, "")

	checker.Check(context.Background(), status.Request{Host: "h", Port: 25565, Family: enum.ClientFamilyJava})
	checker.Check(context.Background(), status.Request{Host: "h", Port: 19132, Family: enum.ClientFamilyBedrock})

	assert.Equal(t, int64(2), calls.Load(), "different families must not share cache entries")
}

func TestCheckerFallsBackForJava(t *testing.T) {
	t.Parallel()

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/play.example.com:25565", r.URL.Path)
		_, _ = w.Write([]byte(fallbackBody))
	}))
	defer fallback.Close()

	checker := newChecker(t, primary.URL, fallback.URL)

	result := checker.Check(context.Background(), status.Request{
		Host:   "play.example.com",
		Port:   25565,
		Family: enum.ClientFamilyJava,
	})

	require.True(t, result.Online)
	assert.Equal(t, 7, result.PlayersOnline)
	assert.Equal(t, "1.20.1", result.Version)
}

func TestCheckerNoFallbackForBedrock(t *testing.T) {
	t.Parallel()

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	var fallbackCalls atomic.Int64

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fallbackCalls.Add(1)
		_, _ = w.Write([]byte(fallbackBody))
	}))
	defer fallback.Close()

	checker := newChecker(t, primary.URL, fallback.URL)

	result := checker.Check(context.Background(), status.Request{
		Host:   "play.example.com",
		Port:   19132,
		Family: enum.ClientFamilyBedrock,
	})

	assert.False(t, result.Online)
	assert.Equal(t, int64(0), fallbackCalls.Load())
}

func TestCheckerReportsOfflineOnTotalFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	server.Close() // refuse connections outright

	checker := newChecker(t, server.URL, server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result := checker.Check(ctx, status.Request{
		Host:   "gone.example.com",
		Port:   25565,
		Family: enum.ClientFamilyJava,
	})

	assert.Equal(t, status.Result{}, result)
}
