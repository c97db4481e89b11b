// Package api is the boundary to the remote NoteHub REST API. It owns
// request construction and status mapping; caching lives one layer up.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"notehub/internal/model"
	appErr "notehub/internal/pkg/errors"
)

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(baseURL, token string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

// FetchNotes lists one page of notes. An empty search is omitted from
// the query string, and so is the tag when it means "All".
func (c *Client) FetchNotes(ctx context.Context, page int, search, tag string) (*model.NotesPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if search = strings.TrimSpace(search); search != "" {
		params.Set("search", search)
	}
	if tag = model.NormalizeTagFilter(tag); tag != "" {
		params.Set("tag", tag)
	}
	var out model.NotesPage
	if err := c.do(ctx, http.MethodGet, "/notes?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FetchNoteByID(ctx context.Context, id string) (*model.Note, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErr.ErrInvalid
	}
	var out model.Note
	if err := c.do(ctx, http.MethodGet, "/notes/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateNote(ctx context.Context, payload model.CreateNotePayload) (*model.Note, error) {
	var out model.Note
	if err := c.do(ctx, http.MethodPost, "/notes", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNote removes a note and returns the deleted record as the API
// sends it back.
func (c *Client) DeleteNote(ctx context.Context, id string) (*model.Note, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErr.ErrInvalid
	}
	var out model.Note
	if err := c.do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notes api request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(data))
		if sentinel := statusError(resp.StatusCode); sentinel != nil {
			return fmt.Errorf("notes api: %s: %s: %w", resp.Status, msg, sentinel)
		}
		return fmt.Errorf("notes api request failed: %s: %s", resp.Status, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode notes api response: %w", err)
	}
	return nil
}

func statusError(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return appErr.ErrUnauthorized
	case http.StatusForbidden:
		return appErr.ErrForbidden
	case http.StatusNotFound:
		return appErr.ErrNotFound
	case http.StatusBadRequest:
		return appErr.ErrInvalid
	case http.StatusTooManyRequests:
		return appErr.ErrTooMany
	}
	return nil
}
