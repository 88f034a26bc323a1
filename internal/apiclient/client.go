// Package apiclient is the configured HTTP client for the Apex backend:
// bearer-token injection from the persisted session, global 401 handling,
// the 404-as-empty-collection list convention, and backoff retries for
// transient failures.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"golang.org/x/time/rate"

	"github.com/anonymeye/apex-platform/pkg/types"
)

// SessionStore reads and clears the persisted auth session. Implemented by
// internal/state.Store.
type SessionStore interface {
	Session() (*types.Session, error)
	ClearSession() error
}

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root without the /api/{version} prefix.
	BaseURL string
	// Version is the API version segment, e.g. "v1".
	Version string
	Timeout time.Duration

	// RequestsPerMinute and Burst bound the client-side request budget.
	// Zero disables limiting.
	RequestsPerMinute int
	Burst             int

	Session SessionStore
	Logger  *slog.Logger
}

// Client wraps a resty client configured against the backend.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	session SessionStore
	logger  *slog.Logger
}

const (
	retryCount       = 2
	retryWaitTime    = 500 * time.Millisecond
	retryMaxWaitTime = 5 * time.Second
)

// New builds a Client. The session store may be nil for unauthenticated use.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		session: opts.Session,
		logger:  logger,
	}

	if opts.RequestsPerMinute > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), burst)
	}

	base := strings.TrimSuffix(opts.BaseURL, "/") + "/api/" + opts.Version

	httpClient := resty.New().
		SetBaseURL(base).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime)

	// Retry only transport failures and 5xx. 4xx (404 included) never
	// retries; re-asking for a missing collection is a wasted round-trip.
	httpClient.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return !errors.Is(err, types.ErrSessionExpired) &&
				!errors.Is(err, types.ErrNotLoggedIn) &&
				!errors.Is(err, context.Canceled)
		}
		return r.StatusCode() >= 500
	})

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(req.Context()); err != nil {
				return err
			}
		}
		req.SetHeader("X-Request-ID", uuid.NewString())
		if c.session != nil {
			session, err := c.session.Session()
			if err != nil {
				return fmt.Errorf("read session: %w", err)
			}
			if session == nil {
				// Auth endpoints are the way in; everything else needs
				// a token, so fail before spending a round-trip.
				if isAuthPath(req.URL) {
					return nil
				}
				return types.ErrNotLoggedIn
			}
			req.SetHeader("Authorization", "Bearer "+session.Token)
		}
		return nil
	})

	// Global 401 interception: clear the stored session and surface a
	// single well-known error. Auth endpoints are exempt; a failed login
	// must report its own error, not a session reset.
	httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.StatusCode() != 401 || isAuthPath(resp.Request.URL) {
			return nil
		}
		if c.session != nil {
			if err := c.session.ClearSession(); err != nil {
				logger.Warn("failed to clear session after 401", "err", err)
			}
		}
		return types.ErrSessionExpired
	})

	c.http = httpClient
	return c
}

func isAuthPath(url string) bool {
	return strings.Contains(url, "/auth/")
}

// do executes a request and decodes a 2xx body into out (skipped when out
// is nil). Non-2xx responses become *types.APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if errors.Is(err, types.ErrSessionExpired) {
			return types.ErrSessionExpired
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return apiErrorFromResponse(resp)
	}
	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// doList is do for list endpoints, where a 404 means "no resources yet":
// out is left at its zero value (empty collection) and no error is returned.
func (c *Client) doList(ctx context.Context, path string, query map[string]string, out any) error {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute("GET", path)
	if err != nil {
		if errors.Is(err, types.ErrSessionExpired) {
			return types.ErrSessionExpired
		}
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.StatusCode() == 404 {
		c.logger.Debug("list endpoint returned 404, treating as empty", "path", path)
		return nil
	}
	if resp.IsError() {
		return apiErrorFromResponse(resp)
	}
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("GET %s: decode response: %w", path, err)
		}
	}
	return nil
}

// decodeBody unmarshals a response body, tolerating empty bodies.
func decodeBody(body []byte, out any) error {
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// apiErrorFromResponse builds an *types.APIError from a non-2xx response,
// tolerating both {"detail": ...} and {"code","message"} error bodies.
func apiErrorFromResponse(resp *resty.Response) *types.APIError {
	apiErr := types.NewAPIError(resp.StatusCode(), "")
	body := resp.Body()
	if len(body) == 0 {
		return apiErr
	}

	var envelope struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	if envelope.Message != "" {
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Message
	}
	if len(envelope.Detail) > 0 {
		var detailStr string
		if err := json.Unmarshal(envelope.Detail, &detailStr); err == nil {
			if envelope.Message == "" {
				apiErr.Message = detailStr
			}
			apiErr.Detail = detailStr
		} else {
			var detail any
			if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
				apiErr.Detail = detail
			}
		}
	}
	return apiErr
}
