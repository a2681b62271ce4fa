// Package webapi contains the HTTP plumbing shared by the remote services:
// JSON GET with context, error classification, retries and a disk cache.
package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client performs JSON GET requests against one remote service.
// Its zero value is usable.
type Client struct {
	Service string       // name used in errors and logs
	HTTP    *http.Client // defaults to a client with a 15s timeout
	Header  http.Header  // added to every request
	Retries uint64       // retries of transient failures, 0 disables them
}

var defaultHTTP = &http.Client{Timeout: 15 * time.Second}

func (c *Client) http() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return defaultHTTP
}

// GetJSON performs an HTTP GET of 'addr' and unmarshals the JSON response body into 'data'.
//
// Non 200 responses are returned as *Error carrying the body, so callers can refine the kind
// from service specific error payloads. Transient failures are retried with exponential backoff.
func (c *Client) GetJSON(ctx context.Context, addr string, data any) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 500 * time.Millisecond
	eb.MaxElapsedTime = 30 * time.Second
	b := backoff.WithContext(backoff.WithMaxRetries(eb, c.Retries), ctx)

	body, err := backoff.RetryWithData(func() ([]byte, error) {
		body, err := c.get(ctx, addr)
		if err != nil && !IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return body, err
	}, b)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, data); err != nil {
		return &Error{Service: c.Service, Kind: ErrUnavailable, Message: fmt.Sprintf("invalid JSON response: %v", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, addr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.Header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http().Do(req)
	if err != nil {
		return nil, transportError(c.Service, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, transportError(c.Service, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("%v %v%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
		return nil, &Error{
			Service: c.Service,
			Kind:    KindOf(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: http.StatusText(resp.StatusCode),
			Body:    buf.Bytes(),
		}
	}
	return buf.Bytes(), nil
}
