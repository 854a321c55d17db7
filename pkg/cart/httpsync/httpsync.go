// Package httpsync implements cart.Syncer over the marketplace cart REST API.
package httpsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"cartflow/pkg/cart"
)

// Client talks to the remote cart API. The server is authoritative: responses
// are applied to local state as-is, whatever the client requested.
type Client struct {
	base string
	hc   *http.Client
}

// New returns a Client for the API at base (no trailing slash). A nil
// httpClient falls back to http.DefaultClient; pass one carrying the session
// cookie jar in real use.
func New(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: base, hc: httpClient}
}

// FetchCart retrieves the full cart.
func (c *Client) FetchCart(ctx context.Context) ([]cart.LineItem, error) {
	resp, err := c.do(ctx, http.MethodGet, "/cart", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, mapStatus(resp)
	}
	var body struct {
		Items []cart.LineItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, cart.NewError(cart.KindServer, "malformed cart response", err)
	}
	return body.Items, nil
}

// UpdateQuantity PATCHes one line item and returns the server's view of it.
func (c *Client) UpdateQuantity(ctx context.Context, id string, quantity int) (cart.LineItem, error) {
	payload, _ := json.Marshal(map[string]int{"quantity": quantity})
	resp, err := c.do(ctx, http.MethodPatch, "/cart/items/"+id, payload)
	if err != nil {
		return cart.LineItem{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return cart.LineItem{}, mapStatus(resp)
	}
	var li cart.LineItem
	if err := json.NewDecoder(resp.Body).Decode(&li); err != nil {
		return cart.LineItem{}, cart.NewError(cart.KindServer, "malformed line item response", err)
	}
	return li, nil
}

// RemoveItem deletes one line item.
func (c *Client) RemoveItem(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/cart/items/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return mapStatus(resp)
	}
	return nil
}

// ClearCart deletes every line item.
func (c *Client) ClearCart(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodDelete, "/cart", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return mapStatus(resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, cart.NewError(cart.KindServer, "build request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, cart.NewError(cart.KindNetwork, "no response from cart API", err)
	}
	return resp, nil
}

// errorBody is the API's error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mapStatus(resp *http.Response) *cart.Error {
	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	msg := eb.Message
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return cart.NewError(cart.KindUnauthorized, msg, nil)
	case resp.StatusCode == http.StatusNotFound:
		return cart.NewError(cart.KindNotFound, msg, nil)
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
		return cart.NewError(cart.KindStockExceeded, msg, nil)
	default:
		return cart.NewError(cart.KindServer, msg, nil)
	}
}
