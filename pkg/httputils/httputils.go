package httputils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/ratelimit"
)

// NewRetryableHttpClient returns a stdlib *http.Client backed by
// go-retryablehttp, optionally rate limited.
func NewRetryableHttpClient(timeout time.Duration, rl ratelimit.Limiter) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = nil

	client := rc.StandardClient()
	client.Timeout = timeout

	if rl != nil {
		client.Transport = &rateLimitedTransport{
			limiter: rl,
			base:    client.Transport,
		}
	}

	return client
}

// MakeAPIRequest performs a JSON API request and decodes the response body
// into out when out is non-nil.
func MakeAPIRequest(ctx context.Context, client *http.Client, method string, requestURL string, body io.Reader, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", requestURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("unexpected response status: %s", res.Status)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

type rateLimitedTransport struct {
	limiter ratelimit.Limiter
	base    http.RoundTripper
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.limiter.Take()
	return t.base.RoundTrip(req)
}
