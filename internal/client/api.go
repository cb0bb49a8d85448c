package client

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
	"time"

	"storefront/internal/model"
)

const defaultTimeout = 30 * time.Second

// APIError is a failure answer from the storefront API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront: %d %s", e.StatusCode, e.Message)
}

// Client calls the storefront API with the shopper's session, cart and search
// state. Each request carries the session token it had when it was built.
type Client struct {
	baseURL string
	http    *http.Client
	Session *Session
	Cart    *Cart
	Search  *Search
}

// New loads the shopper's state from storage and returns a client for baseURL.
func New(baseURL string, storage LocalStorage, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	session, err := LoadSession(storage)
	if err != nil {
		return nil, err
	}
	cart, err := LoadCart(storage)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		Session: session,
		Cart:    cart,
		Search:  &Search{},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.Session.Authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apiError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func apiError(status int, data []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &payload) == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != "":
			msg = payload.Error
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}

// Login signs in and stores the session.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		User    *User  `json:"user"`
		Token   string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Message: resp.Message}
	}
	if err := c.Session.Set(resp.User, resp.Token); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout revokes the token server-side and forgets the session. The local
// session is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	var callErr error
	if c.Session.SignedIn() {
		callErr = c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	}
	if err := c.Session.Clear(); err != nil {
		return err
	}
	return callErr
}

// CheckAuth reports whether the server accepts the stored token.
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	var resp struct {
		OK bool `json:"ok"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/auth/user-auth", nil, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return false, nil
	}
	return resp.OK, err
}

// SearchProducts runs a keyword search and records it in the search state.
func (c *Client) SearchProducts(ctx context.Context, keyword string) ([]model.Product, error) {
	var products []model.Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/product/search/"+url.PathEscape(keyword), nil, &products); err != nil {
		return nil, err
	}
	c.Search.Set(keyword, products)
	return products, nil
}

// Product fetches a product by slug.
func (c *Client) Product(ctx context.Context, slug string) (*model.Product, error) {
	var resp struct {
		Product *model.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/product/get-product/"+url.PathEscape(slug), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Product, nil
}

// Categories lists the catalog's categories.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var resp struct {
		Category []model.Category `json:"category"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/category/get-category", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Category, nil
}

// Orders lists the signed-in shopper's orders.
func (c *Client) Orders(ctx context.Context) ([]json.RawMessage, error) {
	var orders []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ClientToken fetches a payment widget token.
func (c *Client) ClientToken(ctx context.Context) (string, error) {
	var resp struct {
		ClientToken string `json:"clientToken"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/product/braintree/token", nil, &resp); err != nil {
		return "", err
	}
	return resp.ClientToken, nil
}

// Checkout pays for the cart with nonce and empties it on success.
func (c *Client) Checkout(ctx context.Context, nonce string) error {
	body := struct {
		Nonce string           `json:"nonce"`
		Cart  []model.CartItem `json:"cart"`
	}{Nonce: nonce, Cart: c.Cart.Items()}

	var resp struct {
		OK bool `json:"ok"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/product/braintree/payment", body, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return &APIError{StatusCode: http.StatusOK, Message: "payment not acknowledged"}
	}
	return c.Cart.Clear()
}
