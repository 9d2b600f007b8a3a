package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"dorm-management-system/shared/config"
	"dorm-management-system/shared/metricsx"
)

// Client calls a Gemini-compatible generateContent endpoint to turn a text
// prompt into a text completion.
type Client struct {
	baseURL  string
	apiKey   string
	model    string
	timeout  time.Duration
	retryMax int
	http     *http.Client
	breaker  *circuitBreaker
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

func New(cfg config.Config) (*Client, error) {
	if cfg.GenAIAPIURL == "" {
		return nil, errors.New("GENAI_API_URL is required")
	}
	timeout := time.Duration(cfg.GenAITimeoutMS) * time.Millisecond
	return &Client{
		baseURL:  strings.TrimRight(cfg.GenAIAPIURL, "/"),
		apiKey:   cfg.GenAIAPIKey,
		model:    cfg.GenAIModel,
		timeout:  timeout,
		retryMax: cfg.GenAIRetryMax,
		http:     &http.Client{Timeout: timeout},
		breaker:  newCircuitBreaker(5, 30*time.Second),
	}, nil
}

// GenerateContent sends the prompt and returns the first candidate text.
// Transient failures (transport errors, 5xx) are retried up to retryMax
// times and count against the circuit breaker.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.http == nil {
		return "", errors.New("genai client not initialized")
	}
	if c.breaker.Open() {
		return "", errors.New("genai circuit open")
	}
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/v1beta/models/" + url.PathEscape(c.model) + ":generateContent"
	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		reqHTTP, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		reqHTTP.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			reqHTTP.Header.Set("x-goog-api-key", c.apiKey)
		}
		resp, err := c.http.Do(reqHTTP)
		if err != nil {
			lastErr = err
			c.breaker.Fail()
			continue
		}
		text, retryable, err := decodeResponse(resp)
		if err != nil {
			lastErr = err
			c.breaker.Fail()
			if retryable {
				continue
			}
			metricsx.IncReportFailure()
			return "", err
		}
		c.breaker.Success()
		return text, nil
	}
	if lastErr == nil {
		lastErr = errors.New("genai request failed")
	}
	metricsx.IncReportFailure()
	return "", lastErr
}

func decodeResponse(resp *http.Response) (string, bool, error) {
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return "", true, errors.New("genai service error")
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, errors.New("genai request failed")
	}
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, err
	}
	var sb strings.Builder
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		break
	}
	if sb.Len() == 0 {
		return "", false, errors.New("genai response had no text")
	}
	return sb.String(), false, nil
}

type circuitBreaker struct {
	mu            sync.Mutex
	failures      int
	openUntil     time.Time
	threshold     int
	resetDuration time.Duration
}

func newCircuitBreaker(threshold int, reset time.Duration) *circuitBreaker {
	return &circuitBreaker{threshold: threshold, resetDuration: reset}
}

func (b *circuitBreaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openUntil.IsZero() {
		return false
	}
	if time.Now().After(b.openUntil) {
		b.openUntil = time.Time{}
		b.failures = 0
		return false
	}
	return true
}

func (b *circuitBreaker) Fail() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.openUntil = time.Now().Add(b.resetDuration)
	}
}

func (b *circuitBreaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.openUntil = time.Time{}
}
