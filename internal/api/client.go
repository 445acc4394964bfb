// Package api is the HTTP transport layer: a single request chokepoint used
// by every remote operation, normalizing the backend's heterogeneous failure
// shapes into one error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Client talks to the fujao backend. The zero-value http.Client is used by
// default: no timeout is applied, matching the app's behavior of letting a
// hung call hang the flow.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Client for the given base URL.
func New(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     log,
	}
}

// Request performs one backend call. body, when non-nil, is serialized as
// JSON. On a non-2xx response it returns a *StatusError carrying a resolved
// message; when the call never completes it returns a *ConnectionError.
// On success the raw JSON body is returned unchanged.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug().Str("method", method).Str("endpoint", endpoint).Msg("api request")

	resp, err := c.http.Do(req)
	if err != nil {
		// http.Client.Do wraps every transport-level failure in *url.Error;
		// these are the calls that never reached or returned from the server.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, &ConnectionError{Err: err}
		}
		return nil, err
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := resolveErrorMessage(resp, payload, readErr)
		c.log.Debug().Int("status", resp.StatusCode).Str("message", msg).Msg("api error")
		return nil, &StatusError{Status: resp.StatusCode, Message: msg}
	}
	if readErr != nil {
		return nil, &ConnectionError{Err: readErr}
	}
	return json.RawMessage(payload), nil
}

// resolveErrorMessage extracts a user-presentable message from an error
// response: a JSON body's "message" field, then "error", then the body if it
// is itself a JSON string; a non-empty plain-text body verbatim; and finally
// a status-code fallback when nothing in the body was usable.
func resolveErrorMessage(resp *http.Response, payload []byte, readErr error) string {
	if readErr != nil || len(payload) == 0 {
		return statusFallback(resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var parsed any
		if err := json.Unmarshal(payload, &parsed); err != nil {
			return statusFallback(resp.StatusCode)
		}
		// The body parsed; even without a usable field the response is no
		// longer treated as unreadable, so 401/404 get the generic message
		// here, not the auth sentinels.
		switch v := parsed.(type) {
		case map[string]any:
			if msg, ok := v["message"].(string); ok && msg != "" {
				return msg
			}
			if msg, ok := v["error"].(string); ok && msg != "" {
				return msg
			}
			return genericStatus(resp.StatusCode)
		case string:
			if v != "" {
				return v
			}
			return genericStatus(resp.StatusCode)
		default:
			return genericStatus(resp.StatusCode)
		}
	}

	if text := strings.TrimSpace(string(payload)); text != "" {
		return text
	}
	return statusFallback(resp.StatusCode)
}

// get issues a GET and decodes the result into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	raw, err := c.Request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// send issues a POST or PUT with a JSON body and decodes the result into out
// when out is non-nil.
func (c *Client) send(ctx context.Context, method, endpoint string, body, out any) error {
	raw, err := c.Request(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
