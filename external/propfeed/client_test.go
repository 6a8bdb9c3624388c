package propfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/riskibarqy/propline/internal/platform/resilience"
	"github.com/riskibarqy/propline/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const feedBody = `{"data":[
  {"external_player_id":"pp-1","player_name":"Stephen Curry","team":"GSW","prop_category":"3-PT Made","line":4.5,
   "provider_prop_id":"p-100","payout_type":"standard","over_odds":1.85,"under_odds":1.95,
   "updated_at":"2026-03-01T18:00:00Z","additional_data":{"position":"G","promo":true}},
  {"external_player_id":"pp-2","player_name":"Draymond Green","team":"GSW","prop_category":"Assists","line":6.5,
   "provider_prop_id":"p-101","payout_type":"standard","provider_name":"partner","sport":"WNBA",
   "updated_at":"2026-03-01T18:00:00Z"}
]}`

func newTestClient(t *testing.T, srv *httptest.Server, retries int, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()

	client, err := NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		Provider:       "PrizePicks",
		BaseURL:        srv.URL + "/",
		Token:          "secret-token",
		Sport:          "NBA",
		MaxRetries:     retries,
		RetryBackoff:   time.Millisecond,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
	require.NoError(t, err)
	return client
}

func TestClientFetchBatch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/props", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0, resilience.CircuitBreakerConfig{})
	assert.Equal(t, "prizepicks", client.Name())

	items, err := client.FetchBatch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Contains(t, gotQuery, "api_token=secret-token")
	assert.Contains(t, gotQuery, "limit=10")
	assert.Contains(t, gotQuery, "sport=NBA")

	first := items[0]
	assert.Equal(t, "prizepicks", first.ProviderName)
	assert.Equal(t, "NBA", first.Sport)
	require.NotNil(t, first.OverOdds)
	assert.InDelta(t, 1.85, *first.OverOdds, 1e-9)
	position, ok := first.Extras.String("position")
	require.True(t, ok)
	assert.Equal(t, "G", position)

	assert.Equal(t, "partner", items[1].ProviderName)
	assert.Equal(t, "WNBA", items[1].Sport)
	assert.Nil(t, items[1].OverOdds)

	items, err = client.FetchBatch(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestClientRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 2, resilience.CircuitBreakerConfig{})
	items, err := client.FetchBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.EqualValues(t, 3, calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad sport"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 3, resilience.CircuitBreakerConfig{})
	_, err := client.FetchBatch(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrProviderFetch))
	assert.Contains(t, err.Error(), "status=400")
	assert.NotContains(t, err.Error(), "secret-token")
	assert.EqualValues(t, 1, calls.Load())
}

func TestClientCircuitOpensAfterExhaustedRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 1, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
	})

	_, err := client.FetchBatch(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrProviderFetch))
	assert.EqualValues(t, 2, calls.Load())

	_, err = client.FetchBatch(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
	assert.True(t, errors.Is(err, usecase.ErrDependencyUnavailable))
	assert.True(t, errors.Is(err, usecase.ErrProviderFetch))
	assert.EqualValues(t, 2, calls.Load())
}

func TestClientRejectsMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0, resilience.CircuitBreakerConfig{})
	_, err := client.FetchBatch(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrProviderFetch))
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "http://feed"})
	assert.Error(t, err)
	_, err = NewClient(ClientConfig{Provider: "underdog"})
	assert.Error(t, err)
}

func TestRedaction(t *testing.T) {
	assert.Equal(t,
		"http://feed/props?api_token=REDACTED&sport=NBA",
		redactAPIURL("http://feed/props?api_token=abc&sport=NBA"),
	)
	assert.Equal(t,
		`Get "http://feed/props?api_token=REDACTED": REDACTED refused`,
		sanitizeSensitiveText(`Get "http://feed/props?api_token=abc": abc refused`, "abc"),
	)
}

func TestClientTracesEachAttemptWithoutToken(t *testing.T) {
	var calls atomic.Int32
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("api_token")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	client, err := NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		Provider:       "underdog",
		BaseURL:        srv.URL,
		Token:          "secret-token",
		Sport:          "NBA",
		MaxRetries:     1,
		RetryBackoff:   time.Millisecond,
		Logger:         logging.NewNop(),
		TracerProvider: tp,
	})
	require.NoError(t, err)

	items, err := client.FetchBatch(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "secret-token", gotToken)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	for _, span := range spans {
		assert.Equal(t, "propfeed.underdog GET", span.Name)
		for _, kv := range span.Attributes {
			assert.NotContains(t, kv.Value.Emit(), "secret-token", string(kv.Key))
		}
	}
}
