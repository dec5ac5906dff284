package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookswap/internal/confirm"
	"bookswap/pkg/models"
)

type bookList struct {
	Total int           `json:"total"`
	Items []models.Book `json:"items"`
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *apiClient) listings(ctx context.Context) ([]models.Book, error) {
	var resp bookList
	if _, err := c.do(ctx, http.MethodGet, "/listings", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *apiClient) addListing(ctx context.Context, payload map[string]any) (models.Book, error) {
	var b models.Book
	_, err := c.do(ctx, http.MethodPost, "/listings", payload, &b)
	return b, err
}

func (c *apiClient) listing(ctx context.Context, id string) (models.Book, error) {
	var b models.Book
	_, err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), nil, &b)
	return b, err
}

func (c *apiClient) toggle(ctx context.Context, id string) ([]models.Book, error) {
	var resp bookList
	if _, err := c.do(ctx, http.MethodPost, "/listings/"+url.PathEscape(id)+"/toggle", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// deleteListing runs the two-step delete: the server opens a confirmation,
// the user answers through gate, and the answer is sent back.
func (c *apiClient) deleteListing(ctx context.Context, id string, gate confirm.Confirmer) (deleted bool, err error) {
	var resp struct {
		Confirmation *confirm.Request `json:"confirmation"`
	}
	status, err := c.do(ctx, http.MethodDelete, "/listings/"+url.PathEscape(id), nil, &resp)
	if err != nil {
		return false, err
	}
	if status != http.StatusAccepted || resp.Confirmation == nil {
		// nothing to delete
		return false, nil
	}

	req := resp.Confirmation
	accept := false
	gate.Confirm(confirm.Prompt{Title: req.Title, Message: req.Message},
		func() { accept = true },
		func() { accept = false },
	)

	action := "cancel"
	if accept {
		action = "confirm"
	}
	if _, err := c.do(ctx, http.MethodPost, "/confirmations/"+url.PathEscape(req.ID)+"/"+action, nil, nil); err != nil {
		return false, err
	}
	return accept, nil
}

func (c *apiClient) wishlist(ctx context.Context) ([]models.Book, error) {
	var resp bookList
	if _, err := c.do(ctx, http.MethodGet, "/wishlist", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *apiClient) removeWish(ctx context.Context, id string) ([]models.Book, error) {
	var resp bookList
	if _, err := c.do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *apiClient) do(ctx context.Context, method, path string, payload any, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%s %s failed: %s", method, path, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp.StatusCode, nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}
