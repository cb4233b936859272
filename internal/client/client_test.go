package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/langgap/langbench/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.New()
	cfg.APIKey = "test-key"
	cfg.Client.BaseURL = baseURL
	return cfg
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(testConfig(baseURL), WithBackoffBase(time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func completionBody(content string, tokens int) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
		"usage": map[string]any{"total_tokens": tokens},
	})
	return string(b)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	cfg := config.New()
	cfg.APIKey = ""
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvAPIKey)
}

func TestComplete_Success(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(completionBody("ANSWER: 42", 17)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.Complete(context.Background(), "vendor/model-a", "What is 6*7?")
	require.NoError(t, err)

	assert.Equal(t, "ANSWER: 42", resp.Content)
	assert.Equal(t, 17, resp.TokensUsed)
	assert.GreaterOrEqual(t, resp.LatencyMs, int64(0))

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "vendor/model-a", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "What is 6*7?", gotReq.Messages[0].Content)
	assert.Equal(t, 0.0, gotReq.Temperature)
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	const failDelay = 100 * time.Millisecond

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			// Slow failures so a latency measurement that survived a
			// failed attempt would be visible below.
			time.Sleep(failDelay)
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(completionBody("ok", 1)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.Complete(context.Background(), "vendor/model-a", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(3), calls.Load())

	// Only the successful attempt is timed.
	assert.Less(t, resp.LatencyMs, failDelay.Milliseconds())
}

func TestComplete_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(completionBody("ok", 1)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "vendor/model-a", "hi")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestComplete_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such model", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "vendor/missing", "hi")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "vendor/missing", te.Model)
	assert.Equal(t, 1, te.Attempts)
	assert.Contains(t, te.Error(), "HTTP 404")
}

func TestComplete_ExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "vendor/model-a", "hi")
	require.Error(t, err)
	assert.Equal(t, int32(config.DefaultMaxAttempts), calls.Load())

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, config.DefaultMaxAttempts, te.Attempts)
}

func TestComplete_MalformedResponseRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"choices": []}`))
			return
		}
		w.Write([]byte(completionBody("ok", 1)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.Complete(context.Background(), "vendor/model-a", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestComplete_MissingContentRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Well-formed JSON with a choice but no message content.
			w.Write([]byte(`{"choices":[{}]}`))
			return
		}
		w.Write([]byte(completionBody("ok", 1)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	resp, err := c.Complete(context.Background(), "vendor/model-a", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestComplete_PerModelConcurrencyGate(t *testing.T) {
	const limit = 2

	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		<-release

		mu.Lock()
		inFlight--
		mu.Unlock()
		w.Write([]byte(completionBody("ok", 1)))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Client.MaxConcurrentPerModel = limit
	c, err := New(cfg, WithBackoffBase(time.Millisecond))
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Complete(context.Background(), "vendor/model-a", "hi")
			assert.NoError(t, err)
		}()
	}

	// Give the first wave time to reach the server before opening the gate.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, maxInFlight, limit)
	assert.Equal(t, limit, maxInFlight)
}

func TestComplete_GatesAreIndependentPerModel(t *testing.T) {
	blockA := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Model == "vendor/model-a" {
			<-blockA
		}
		w.Write([]byte(completionBody("ok", 1)))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Client.MaxConcurrentPerModel = 1
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Complete(context.Background(), "vendor/model-a", "hi")
	}()

	// Model B must complete while model A holds its (full) gate.
	done := make(chan struct{})
	go func() {
		_, err := c.Complete(context.Background(), "vendor/model-b", "hi")
		assert.NoError(t, err)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("model B was blocked by model A's gate")
	}

	close(blockA)
	wg.Wait()
}

func TestComplete_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("ok", 1)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, "vendor/model-a", "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
