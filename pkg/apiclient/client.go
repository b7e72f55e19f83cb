// Package apiclient is a typed client for the storefront REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError carries the status and the server's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// NewClientWithHTTP is used with httptest servers.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var m message
		if err := json.NewDecoder(resp.Body).Decode(&m); err != nil || m.Message == "" {
			m.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: m.Message}
	}

	if out == nil {
		return nil
	}
	if s, ok := out.(*string); ok {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		*s = string(raw)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) Login(ctx context.Context, email, password string) (*UserInfo, error) {
	var out UserInfo
	in := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*UserInfo, error) {
	var out UserInfo
	in := map[string]string{"name": name, "email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser fetches a user by id; id "profile" returns the caller.
func (c *Client) GetUser(ctx context.Context, token, id string) (*UserInfo, error) {
	var out UserInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, in UserUpdate) (*UserInfo, error) {
	var out UserInfo
	if err := c.doJSON(ctx, http.MethodPut, "/api/users/profile", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]UserInfo, error) {
	var out []UserInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/users", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) UpdateUser(ctx context.Context, token, id string, in UserUpdate) (*UserInfo, error) {
	var out UserInfo
	if err := c.doJSON(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProducts(ctx context.Context, keyword string, page int) (*ProductPage, error) {
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("pageNumber", strconv.Itoa(page))

	var out ProductPage
	if err := c.doJSON(ctx, http.MethodGet, "/api/products?"+q.Encode(), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TopProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/top", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var out Product
	if err := c.doJSON(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string) (*Product, error) {
	var out Product
	if err := c.doJSON(ctx, http.MethodPost, "/api/products", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, in ProductPatch) (*Product, error) {
	var out Product
	if err := c.doJSON(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) CreateReview(ctx context.Context, token, productID string, in NewReview) error {
	return c.doJSON(ctx, http.MethodPost, "/api/products/"+url.PathEscape(productID)+"/reviews", token, in, nil)
}

func (c *Client) CreateOrder(ctx context.Context, token string, in NewOrder) (*Order, error) {
	var out Order
	if err := c.doJSON(ctx, http.MethodPost, "/api/orders", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, token, id string) (*Order, error) {
	var out Order
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PayOrder(ctx context.Context, token, id string, in Payment) (*Order, error) {
	var out Order
	if err := c.doJSON(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/pay", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeliverOrder(ctx context.Context, token, id string) (*Order, error) {
	var out Order
	if err := c.doJSON(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/deliver", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMyOrders(ctx context.Context, token string) ([]Order, error) {
	var out []Order
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders/myorders", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]Order, error) {
	var out []Order
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadImage posts one image and returns its public path.
func (c *Client) UploadImage(ctx context.Context, token, filename, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", token, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var path string
	if err := c.send(req, &path); err != nil {
		return "", err
	}
	return path, nil
}
