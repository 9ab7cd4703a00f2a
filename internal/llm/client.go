package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/llm-chat-server/internal/domain"
	"github.com/llm-chat-server/internal/metrics"
)

// Client calls an OpenAI-style chat-completions endpoint. Requests are
// rate limited and wrapped in a circuit breaker so a misbehaving
// upstream degrades into fast failures instead of piling up blocked
// callers.
type Client struct {
	endpointURL string
	apiKey      string
	httpClient  *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	cache       *ResponseCache
	logger      *logrus.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Messages []chatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates an upstream client from configuration. A zero
// cache size disables response caching.
func NewClient(cfg domain.LLMConfig, logger *logrus.Logger) (*Client, error) {
	if cfg.EndpointURL == "" {
		return nil, fmt.Errorf("llm endpoint URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 20
	}

	var cache *ResponseCache
	if cfg.CacheSize > 0 {
		var err error
		cache, err = NewResponseCache(cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create response cache: %w", err)
		}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-upstream",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &Client{
		endpointURL: cfg.EndpointURL,
		apiKey:      cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit),
		breaker: breaker,
		cache:   cache,
		logger:  logger,
	}, nil
}

// Complete sends one user message upstream and returns the completion
// content.
func (c *Client) Complete(ctx context.Context, message string) (string, error) {
	if c.cache != nil {
		if content, ok := c.cache.Get(message); ok {
			metrics.RecordCacheHit()
			return content, nil
		}
		metrics.RecordCacheMiss()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait aborted: %w", err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, message)
	})
	metrics.RecordUpstreamLatency(time.Since(start))
	if err != nil {
		return "", err
	}

	content := result.(string)
	if c.cache != nil {
		c.cache.Add(message, content)
	}
	return content, nil
}

func (c *Client) complete(ctx context.Context, message string) (string, error) {
	payload := completionRequest{
		Messages: []chatMessage{{Role: "user", Content: message}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(respBody),
		}).Error("Upstream returned an error")
		return "", fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("invalid upstream response: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("upstream response missing completion content")
	}

	return completion.Choices[0].Message.Content, nil
}
