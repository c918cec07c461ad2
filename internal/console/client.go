package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"inventory/internal/models"
)

// ErrIDMismatch is returned by UpdateProduct before any request is sent when
// the payload id does not match the target id.
var ErrIDMismatch = errors.New("ID mismatch")

// APIError is a non-2xx answer from the inventory API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// ClientConfig configures the API client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the inventory API. Product calls carry the bearer token
// held by the TokenStore.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
}

// NewClient creates a new API client.
func NewClient(cfg ClientConfig, tokens TokenStore) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
	}
}

// ListProducts returns every product.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProduct returns one product.
func (c *Client) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	if err := c.doJSON(ctx, http.MethodGet, productPath(id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct stores a new product and returns it with its assigned id.
func (c *Client) CreateProduct(ctx context.Context, payload *models.ProductPayload) (*models.Product, error) {
	var product models.Product
	if err := c.doJSON(ctx, http.MethodPost, "/api/products", payload, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces the product with the given id.
func (c *Client) UpdateProduct(ctx context.Context, id int, payload *models.ProductPayload) (*models.Product, error) {
	if payload == nil || payload.ID == nil || *payload.ID != id {
		return nil, ErrIDMismatch
	}

	var product models.Product
	if err := c.doJSON(ctx, http.MethodPut, productPath(id), payload, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes the product with the given id.
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	_, _, err := c.send(ctx, http.MethodDelete, productPath(id), nil, true)
	return err
}

// Login exchanges credentials for a token. Any rejection surfaces as
// "Login failed".
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	creds := models.Credentials{Email: email, Password: password}
	status, body, err := c.send(ctx, http.MethodPost, "/api/auth/login", creds, false)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, &APIError{Status: apiErr.Status, Message: "Login failed"}
		}
		return nil, err
	}

	var result LoginResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode login response (status %d): %w", status, err)
	}
	return &result, nil
}

// Register creates an account. A rejection lists every problem the server
// reported, one per line.
func (c *Client) Register(ctx context.Context, email, password string) error {
	creds := models.Credentials{Email: email, Password: password}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/register", creds, false)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var problems []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &problems); err == nil && len(problems) > 0 {
		descriptions := make([]string, 0, len(problems))
		for _, p := range problems {
			descriptions = append(descriptions, p.Description)
		}
		return &APIError{Status: resp.StatusCode, Message: strings.Join(descriptions, "\n")}
	}
	return &APIError{Status: resp.StatusCode, Message: "Registration failed"}
}

func productPath(id int) string {
	return "/api/products/" + strconv.Itoa(id)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	status, body, err := c.send(ctx, method, path, in, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response (status %d): %w", method, path, status, err)
	}
	return nil
}

// send performs the request and turns any non-2xx answer into an *APIError.
func (c *Client) send(ctx context.Context, method, path string, in interface{}, withToken bool) (int, []byte, error) {
	req, err := c.newRequest(ctx, method, path, in, withToken)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, body, &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}
	return resp.StatusCode, body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, in interface{}, withToken bool) (*http.Request, error) {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withToken && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// errorMessage pulls a readable message out of an API error body.
func errorMessage(status int, body []byte) string {
	var parsed struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		if len(parsed.Errors) == 0 {
			return parsed.Message
		}
		fields := make([]string, 0, len(parsed.Errors))
		for field := range parsed.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		details := make([]string, 0, len(fields))
		for _, field := range fields {
			details = append(details, field+": "+parsed.Errors[field])
		}
		return parsed.Message + ": " + strings.Join(details, "; ")
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("request failed: %d %s", status, http.StatusText(status))
}
