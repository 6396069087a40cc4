package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/auth"
	"github.com/frahmantamala/shifts-logger/internal/core/common/validation"
	"github.com/frahmantamala/shifts-logger/internal/pagination"
	"github.com/frahmantamala/shifts-logger/internal/shift"
	"github.com/frahmantamala/shifts-logger/internal/user"
	"github.com/sethvargo/go-retry"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRetryBase = 100 * time.Millisecond
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	// MaxRetries bounds retries of idempotent reads after a transport
	// failure or a 5xx answer.
	MaxRetries uint64
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []internal.ValidationError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client talks to the shifts-logger HTTP API. It is safe for concurrent
// use; the bearer token is shared by all calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retries    uint64
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
		retries:    cfg.MaxRetries,
		logger:     logger,
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register validates the payload locally, including the password policy,
// before sending it.
func (c *Client) Register(ctx context.Context, dto user.RegisterDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if appErr := validation.ValidatePassword(dto.Password); appErr != nil {
		return appErr
	}
	return c.do(ctx, http.MethodPost, "/api/auth/register", dto, nil)
}

// Login stores the returned access token for subsequent calls.
func (c *Client) Login(ctx context.Context, dto auth.LoginDTO) (auth.TokenPair, error) {
	if err := dto.Validate(); err != nil {
		return auth.TokenPair{}, err
	}
	var tokens auth.TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", dto, &tokens); err != nil {
		return auth.TokenPair{}, err
	}
	c.SetToken(tokens.AccessToken)
	return tokens, nil
}

// Logout forgets the token even when the server rejects the call.
func (c *Client) Logout(ctx context.Context) error {
	defer c.SetToken("")
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (user.ProfileResponse, error) {
	var profile user.ProfileResponse
	err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &profile)
	return profile, err
}

func (c *Client) AddShift(ctx context.Context, dto shift.CreateShiftDTO) (shift.Response, error) {
	if err := validateWindow(dto.ShiftStart, dto.ShiftEnd); err != nil {
		return shift.Response{}, err
	}
	var out shift.Response
	err := c.do(ctx, http.MethodPost, "/api/shifts/add", dto, &out)
	return out, err
}

func (c *Client) UpdateShift(ctx context.Context, id int64, dto shift.UpdateShiftDTO) (shift.Response, error) {
	if err := validateWindow(dto.ShiftStart, dto.ShiftEnd); err != nil {
		return shift.Response{}, err
	}
	var out shift.Response
	err := c.do(ctx, http.MethodPut, "/api/shifts/update/"+strconv.FormatInt(id, 10), dto, &out)
	return out, err
}

func (c *Client) DeleteShift(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/shifts/delete/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) GetShift(ctx context.Context, id int64) (shift.Response, error) {
	var out shift.Response
	err := c.do(ctx, http.MethodGet, "/api/shifts/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

func (c *Client) ListShifts(ctx context.Context, page pagination.PageRequest) (pagination.Page[shift.Response], error) {
	var out pagination.Page[shift.Response]
	err := c.do(ctx, http.MethodGet, "/api/shifts?"+pageQuery(page), nil, &out)
	return out, err
}

func (c *Client) ListAllShifts(ctx context.Context, page pagination.PageRequest) (pagination.Page[shift.Response], error) {
	var out pagination.Page[shift.Response]
	err := c.do(ctx, http.MethodGet, "/api/shifts/admin?"+pageQuery(page), nil, &out)
	return out, err
}

func (c *Client) CountShifts(ctx context.Context) (int64, error) {
	var out shift.CountResponse
	err := c.do(ctx, http.MethodGet, "/api/shifts/count", nil, &out)
	return out.Count, err
}

func (c *Client) CountAllShifts(ctx context.Context) (int64, error) {
	var out shift.CountResponse
	err := c.do(ctx, http.MethodGet, "/api/shifts/admin/count", nil, &out)
	return out.Count, err
}

func validateWindow(start, end *time.Time) error {
	if start == nil {
		return internal.NewValidationFieldError("shiftStart", "Shift start date and time is required.", internal.ErrCodeValidationFailed)
	}
	if appErr := validation.ValidateShiftWindow(*start, end); appErr != nil {
		return appErr
	}
	return nil
}

func pageQuery(page pagination.PageRequest) string {
	q := url.Values{}
	if page.PageNumber > 0 {
		q.Set("page", strconv.Itoa(page.PageNumber))
	}
	if page.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(page.PageSize))
	}
	return q.Encode()
}

// do sends one request. Reads are retried on transport errors and 5xx
// answers; writes are sent once.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempt := func(ctx context.Context) error {
		err := c.send(ctx, method, path, payload, out)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return err
		}
		if err != nil && ctx.Err() == nil {
			c.logger.Debug("api request failed, retrying", "method", method, "path", path, "error", err)
			return retry.RetryableError(err)
		}
		return err
	}

	if method != http.MethodGet || c.retries == 0 {
		return c.send(ctx, method, path, payload, out)
	}
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(defaultRetryBase))
	return retry.Do(ctx, backoff, attempt)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Message string                     `json:"message"`
		Errors  []internal.ValidationError `json:"errors"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err == nil {
		apiErr.Message = body.Message
		apiErr.Errors = body.Errors
	}
	return apiErr
}
