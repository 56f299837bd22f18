// Package ghl translates abstract tool invocations into authenticated
// REST calls against the GoHighLevel API.
//
// It uses a direct HTTP client: there is no official Go SDK, and the
// hand-rolled client keeps the dependency tree light and the error
// normalization under our control.
package ghl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"liv8/ghlm/internal/domain"
)

const (
	// DefaultBaseURL is the GHL REST API host.
	DefaultBaseURL = "https://services.leadconnectorhq.com"

	// apiVersion is the GHL API version header value.
	apiVersion = "2021-07-28"

	requestTimeout = 30 * time.Second
)

// Client issues authenticated tool calls against one GHL deployment.
// It is stateless with respect to credentials: every call carries the
// bearer token and location explicitly.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a Client for the given API host. An empty baseURL
// selects production.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// ghlError is the GHL API error payload.
type ghlError struct {
	Message any    `json:"message"`
	Error   string `json:"error"`
}

// Invoke executes one tool call. Path parameters are consumed from
// input; for GET calls the remaining input becomes the query string,
// otherwise it is sent as the JSON body. Non-2xx responses are
// normalized into wrapped sentinel errors carrying the CRM's reported
// message.
func (c *Client) Invoke(ctx context.Context, accessToken, locationID string, tool Tool, input map[string]any) (any, error) {
	spec, ok := tool.spec()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTool, tool)
	}

	// Work on a copy: callers reuse step input for auditing.
	args := make(map[string]any, len(input)+len(spec.fixed)+1)
	for k, v := range input {
		args[k] = v
	}

	path, err := renderPath(spec.path, args, locationID)
	if err != nil {
		return nil, err
	}

	for k, v := range spec.fixed {
		args[k] = v
	}
	if spec.sendLocation {
		args["locationId"] = locationID
	}

	var bodyReader io.Reader
	if spec.method == http.MethodGet {
		if query := encodeQuery(args); query != "" {
			path += "?" + query
		}
	} else if len(args) > 0 {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("ghl: failed to encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("ghl: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Version", apiVersion)
	req.Header.Set("LocationId", locationID)
	req.Header.Set("Accept", "application/json")
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("ghl: %s: %w", tool, domain.ErrTimeout)
		}
		return nil, fmt.Errorf("ghl: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ghl: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp, body)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		// Some GHL endpoints answer 2xx with plain text.
		return strings.TrimSpace(string(body)), nil
	}
	return result, nil
}

// renderPath substitutes {param} segments from args, consuming the
// used keys. {locationId} falls back to the call's location.
func renderPath(template string, args map[string]any, locationID string) (string, error) {
	path := template
	for {
		start := strings.IndexByte(path, '{')
		if start < 0 {
			return path, nil
		}
		end := strings.IndexByte(path[start:], '}')
		if end < 0 {
			return "", fmt.Errorf("ghl: malformed path template %q", template)
		}
		name := path[start+1 : start+end]

		var value string
		if raw, ok := args[name]; ok {
			value = stringify(raw)
			delete(args, name)
		} else if name == "locationId" {
			value = locationID
		}
		if value == "" {
			return "", fmt.Errorf("ghl: missing required parameter %q", name)
		}

		path = path[:start] + url.PathEscape(value) + path[start+end+1:]
	}
}

func encodeQuery(args map[string]any) string {
	values := url.Values{}
	for k, v := range args {
		values.Set(k, stringify(v))
	}
	return values.Encode()
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// statusError maps a non-2xx response to a wrapped sentinel carrying
// the CRM's reported message, or the raw status line when the body is
// not parseable JSON.
func statusError(resp *http.Response, body []byte) error {
	message := remoteMessage(body)
	if message == "" {
		message = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrConflict, message)
	}
	return fmt.Errorf("ghl: %s", message)
}

// remoteMessage extracts the message field from a GHL error body.
// GHL reports message as either a string or a list of strings.
func remoteMessage(body []byte) string {
	var payload ghlError
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	switch m := payload.Message.(type) {
	case string:
		return m
	case []any:
		parts := make([]string, 0, len(m))
		for _, p := range m {
			parts = append(parts, stringify(p))
		}
		return strings.Join(parts, "; ")
	}
	return payload.Error
}
