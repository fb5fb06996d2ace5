// Package storefront est le client HTTP du panier serveur, utilisé par une
// session de boutique pour synchroniser son panier local.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/cart"
	"dermodazzle_back_end/internal/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ cart.Remote = (*Client)(nil)

type envelope struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	CartData map[string]int `json:"cartData"`
}

// Upsert fixe la quantité ; le serveur retire la ligne quand qty < 1.
func (c *Client) Upsert(ctx context.Context, token, productID string, qty int) error {
	_, err := c.post(ctx, "/api/cart/update", token, models.CartLine{ProductID: productID, Quantity: qty})
	return err
}

func (c *Client) Fetch(ctx context.Context, token string) (cart.Items, error) {
	env, err := c.post(ctx, "/api/cart/get", token, map[string]any{})
	if err != nil {
		return nil, err
	}
	return cart.Items(env.CartData).Normalize(), nil
}

func (c *Client) Reset(ctx context.Context, token string) error {
	_, err := c.post(ctx, "/api/cart/reset", token, map[string]any{})
	return err
}

func (c *Client) post(ctx context.Context, path, token string, body any) (*envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Upstream("panier serveur injoignable", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, apperr.Upstream("réponse panier illisible", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperr.Unauthorized(env.Message)
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.NotFound(env.Message)
	case resp.StatusCode == http.StatusBadRequest:
		return nil, apperr.Validation(env.Message)
	case resp.StatusCode >= 400 || !env.Success:
		return nil, apperr.Upstream(env.Message, fmt.Errorf("%s: statut %d", path, resp.StatusCode))
	}
	return &env, nil
}
