package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DirectClient performs the synchronous direct-flow call against the gateway.
// The call runs inline with the customer's checkout request, so a timeout is
// always enforced; an unbounded wait would pin the request until the gateway
// answers.
type DirectClient struct {
	httpClient *http.Client
}

// NewDirectClient creates a client with timeouts and connection pooling for
// the outbound gateway calls.
func NewDirectClient(timeout time.Duration) *DirectClient {
	return &DirectClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Call performs one GET against requestUrl and returns the response text,
// URL-unescaped and transformed out of the gateway code page. Network
// failures and timeouts come back as TransportError; an empty or
// whitespace-only body is a valid "no information" outcome and returns "".
func (c *DirectClient) Call(ctx context.Context, requestUrl string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	unescaped, err := url.QueryUnescape(string(body))
	if err != nil {
		return "", &FormatError{Reason: "unescape response", Err: err}
	}
	return DecodeText([]byte(unescaped))
}
