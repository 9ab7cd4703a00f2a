package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/llm-chat-server/internal/domain"
)

// Error kinds used to classify failed outcomes.
const (
	KindTimeout   = "timeout"
	KindTransport = "transport"
	KindBadShape  = "bad_response"
	KindStalled   = "stalled"
)

// RequestError is a failed chat request classified by kind.
type RequestError struct {
	Kind string
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Target issues a single chat request on behalf of a virtual user. A
// nil return means the request succeeded; failures are returned as
// *RequestError so the outcome can be classified.
type Target interface {
	SendChat(ctx context.Context) error
}

// HTTPTarget drives a chat endpoint with the POST /chat contract: a
// JSON body with a message field in, a JSON body with a content field
// out. Anything else, including transport errors and timeouts, counts
// as a failed request.
type HTTPTarget struct {
	url     string
	message string
	client  *http.Client
}

// NewHTTPTarget creates a target for the given chat endpoint URL. The
// timeout bounds each individual request so a stalled call cannot keep
// a run from draining on schedule.
func NewHTTPTarget(url, message string, timeout time.Duration) *HTTPTarget {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxConnsPerHost = 2000
	t.MaxIdleConnsPerHost = 2000

	return &HTTPTarget{
		url:     url,
		message: message,
		client: &http.Client{
			Timeout:   timeout,
			Transport: t,
		},
	}
}

// SendChat issues one chat request and validates the response shape.
func (t *HTTPTarget) SendChat(ctx context.Context) error {
	body, err := json.Marshal(domain.ChatRequest{Message: t.message})
	if err != nil {
		return &RequestError{Kind: KindTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return &RequestError{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		kind := KindTransport
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = KindTimeout
		}
		return &RequestError{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RequestError{
			Kind: fmt.Sprintf("HTTP %d", resp.StatusCode),
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var chatResp domain.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return &RequestError{Kind: KindBadShape, Err: err}
	}
	if chatResp.Content == "" {
		return &RequestError{Kind: KindBadShape, Err: errors.New("response missing content field")}
	}
	return nil
}
