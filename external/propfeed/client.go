package propfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/domain/rawdata"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/riskibarqy/propline/internal/platform/resilience"
	"github.com/riskibarqy/propline/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultPath     = "/props"
	maxResponseSize = 8 << 20
)

var (
	apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
	errTransient       = errors.New("prop feed transient failure")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	Provider       string
	BaseURL        string
	Path           string
	Token          string
	Sport          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// TracerProvider overrides the global provider for request spans.
	TracerProvider trace.TracerProvider
}

// Client pulls raw props from a provider's JSON feed:
// GET {base}{path}?sport=..&limit=..&api_token=.. returning {"data": [...]}.
type Client struct {
	httpClient   *http.Client
	provider     string
	endpoint     string
	token        string
	sport        string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
}

type feedEnvelope struct {
	Data []rawdata.ExternalProp `json:"data"`
}

func NewClient(cfg ClientConfig) (*Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		return nil, errors.New("prop feed provider name is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.Newf("prop feed %s: base url is required", provider)
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = defaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := newTracedHTTPClient(cfg, provider)

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("prop feed circuit breaker state changed", "provider", provider, "from", from, "to", to)
	})

	return &Client{
		httpClient:   httpClient,
		provider:     provider,
		endpoint:     baseURL + path,
		token:        strings.TrimSpace(cfg.Token),
		sport:        strings.TrimSpace(cfg.Sport),
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      breaker,
	}, nil
}

func (c *Client) Name() string {
	return c.provider
}

// FetchBatch returns up to limit raw props. Errors are final and marked with
// usecase.ErrProviderFetch.
func (c *Client) FetchBatch(ctx context.Context, limit int) ([]rawdata.ExternalProp, error) {
	fullURL := c.buildURL(limit)

	var raw []byte
	err := c.breaker.Execute(func() error {
		var reqErr error
		raw, reqErr = c.executeRequest(ctx, fullURL)
		return reqErr
	}, isCircuitFailure)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "prop feed circuit breaker rejected request", "provider", c.provider, "state", c.breaker.State())
			err = errors.Mark(err, usecase.ErrDependencyUnavailable)
		}
		return nil, errors.Mark(errors.Wrapf(err, "fetch %s props", c.provider), usecase.ErrProviderFetch)
	}

	var envelope feedEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode %s payload", c.provider), usecase.ErrProviderFetch)
	}

	out := envelope.Data
	for i := range out {
		if strings.TrimSpace(out[i].ProviderName) == "" {
			out[i].ProviderName = c.provider
		}
		if strings.TrimSpace(out[i].Sport) == "" {
			out[i].Sport = c.sport
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *Client) buildURL(limit int) string {
	values := url.Values{}
	if c.sport != "" {
		values.Set("sport", c.sport)
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if encoded := values.Encode(); encoded != "" {
		return c.endpoint + "?" + encoded
	}
	return c.endpoint
}

// newTracedHTTPClient copies the configured client and wraps its transport:
// otelhttp records one client span per attempt and the token is appended
// below it, so span URLs never carry the credential.
func newTracedHTTPClient(cfg ClientConfig, provider string) *http.Client {
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		client = &copied
		if cfg.Timeout > 0 {
			client.Timeout = cfg.Timeout
		}
	}
	if client.Timeout <= 0 {
		client.Timeout = defaultTimeout
	}

	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "propfeed." + provider + " " + r.Method
		}),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}
	client.Transport = otelhttp.NewTransport(&apiTokenTransport{base: base, token: strings.TrimSpace(cfg.Token)}, opts...)
	return client
}

type apiTokenTransport struct {
	base  http.RoundTripper
	token string
}

func (t *apiTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	query := clone.URL.Query()
	query.Set("api_token", t.token)
	clone.URL.RawQuery = query.Encode()
	return t.base.RoundTrip(clone)
}

// executeRequest retries transient failures with a linear backoff.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, errors.Wrap(err, "build request")
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = errors.Mark(errors.Newf("send request: %s", sanitizeSensitiveText(err.Error(), c.token)), errTransient)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = errors.Mark(errors.Wrap(readErr, "read response body"), errTransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = errors.Mark(errors.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw)), errTransient)
			default:
				return nil, errors.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = errors.New("provider request failed")
	}
	c.logger.WarnContext(ctx, "prop feed request failed",
		"provider", c.provider,
		"url", redactAPIURL(fullURL),
		"attempts", c.maxRetries+1,
		"error", lastErr,
	)
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// isCircuitFailure counts only transient upstream failures against the breaker.
func isCircuitFailure(err error) bool {
	return errors.Is(err, errTransient)
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apiTokenParamRegex.ReplaceAllString(rawURL, "api_token=REDACTED")
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return fmt.Sprintf("%s...(%d bytes)", text[:240], len(text))
}
