package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/terra-clan/graduate-survey/internal/models"
	"github.com/terra-clan/graduate-survey/internal/stats"
)

// Client is a Go SDK for the graduate-survey API
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithToken sets an admin token obtained earlier
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new graduate-survey client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a failed call as reported by the server
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s - %s", e.StatusCode, e.Code, e.Message)
}

// ListOptions contains options for listing submissions
type ListOptions struct {
	Status   models.SubmissionStatus
	Language string
	Limit    int
	Offset   int
}

// Save stores responses and returns the submission id.
// It satisfies the survey engine's Saver, so a navigator can save remotely.
func (c *Client) Save(ctx context.Context, req models.SaveRequest) (string, error) {
	var resp models.SaveResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/responses", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Login exchanges the admin password for a token, which the client keeps
// for later admin calls
func (c *Client) Login(ctx context.Context, password string) (time.Time, error) {
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/admin/login", map[string]string{"password": password}, &resp); err != nil {
		return time.Time{}, err
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	return resp.ExpiresAt, nil
}

// Token returns the current admin token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ListSubmissions lists stored submissions, newest first
func (c *Client) ListSubmissions(ctx context.Context, opts ListOptions) ([]*models.Submission, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/api/v1/admin/responses"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Submissions []*models.Submission `json:"submissions"`
	}
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Submissions, nil
}

// GetSubmission retrieves one submission
func (c *Client) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/admin/responses/"+url.PathEscape(id), nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Statistics fetches the admin report for a catalog language
func (c *Client) Statistics(ctx context.Context, lang string) (*stats.Report, error) {
	var report stats.Report
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/admin/statistics?lang="+url.QueryEscape(lang), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Export downloads the XLSX workbook into w
func (c *Client) Export(ctx context.Context, lang string, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/admin/export?lang="+url.QueryEscape(lang), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return decodeError(resp.StatusCode, body)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	return nil
}

// Health checks that the server is up
func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// doRequest performs an HTTP request and decodes the response envelope into out
func (c *Client) doRequest(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func decodeError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status, Message: string(body)}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}
