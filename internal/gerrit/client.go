// Package gerrit implements the authenticated Gerrit REST client:
// request framing under /a/, XSSI-guard stripping, JSON decoding and
// the base64 plain-text endpoints.
package gerrit

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"ger/internal/config"
)

const (
	requestTimeout    = 30 * time.Second
	maxRetryAttempts  = 3
	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 5 * time.Second
)

// xssiPrefix is prepended by Gerrit to every JSON body to defeat
// cross-site script inclusion. It must be stripped before parsing.
const xssiPrefix = ")]}'"

// APIError is any REST failure reported by the Gerrit server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Status == http.StatusUnauthorized {
		return fmt.Sprintf("gerrit: %s (check your credentials; HTTP passwords are generated in the Gerrit settings page)", msg)
	}
	if e.Status == 0 {
		return "gerrit: " + msg
	}
	return fmt.Sprintf("gerrit: %d %s", e.Status, msg)
}

// NotFound reports whether err is a Gerrit 404.
func NotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to one Gerrit server on behalf of one user.
type Client struct {
	host     string // normalized, no trailing slash
	username string
	password string
	httpc    *http.Client
	log      *slog.Logger
}

// New builds a client from resolved credentials.
func New(cfg *config.Config) *Client {
	return &Client{
		host:     cfg.Host,
		username: cfg.Username,
		password: cfg.Password,
		httpc:    &http.Client{Timeout: requestTimeout},
		log:      debugLogger(),
	}
}

func debugLogger() *slog.Logger {
	if os.Getenv("DEBUG") == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Host returns the normalized server URL.
func (c *Client) Host() string { return c.host }

// call performs one authenticated request against <host>/a/<path> and
// decodes the JSON response into target (which may be nil for calls
// whose response body is irrelevant). An empty or whitespace-only
// body leaves target at its zero value.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, target any) error {
	raw, err := c.callRaw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	raw = stripXSSI(raw)
	if target == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if !json.Valid(raw) {
		return &APIError{Message: "invalid JSON response"}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &APIError{Message: "invalid response format"}
	}
	return nil
}

// callText performs a request against an endpoint that returns
// base64-encoded plain text instead of XSSI-guarded JSON, and returns
// the decoded bytes.
func (c *Client) callText(ctx context.Context, path string, query url.Values) ([]byte, error) {
	raw, err := c.callRaw(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return decodeBase64(raw)
}

func (c *Client) callRaw(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("internal error: gerrit path %q must start with /", path)
	}
	u := c.host + "/a" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	var raw []byte
	err := retry.Do(
		func() error {
			var err error
			raw, err = c.doOnce(ctx, method, u, payload)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(maxRetryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(initialRetryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug("retrying gerrit request", "attempt", n+1, "url", u, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
	return raw, err
}

func (c *Client) doOnce(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	c.log.Debug("gerrit request", "method", method, "url", u, "status", resp.StatusCode)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: string(body)}
	}
	return body, nil
}

// isTransient reports whether a request is worth retrying: network
// failures and server-side 5xx responses. Client errors (4xx) and
// context cancellation are final.
func isTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return err != nil
}

// stripXSSI removes Gerrit's )]}' guard and the newline that follows
// it, when present. Bodies without the guard pass through unchanged.
func stripXSSI(body []byte) []byte {
	if !bytes.HasPrefix(body, []byte(xssiPrefix)) {
		return body
	}
	body = body[len(xssiPrefix):]
	if len(body) > 0 && body[0] == '\n' {
		body = body[1:]
	}
	return body
}

// decodeBase64 decodes a base64 text body. Gerrit wraps the encoding
// across lines, so whitespace is stripped first.
func decodeBase64(body []byte) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, string(body))
	decoded, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, &APIError{Message: "invalid base64 response"}
	}
	return decoded, nil
}
