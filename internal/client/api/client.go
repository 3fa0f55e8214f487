// Package api implements an HTTP client for the vault server REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// User is a user profile as returned by the server.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResult is the outcome of a successful login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Password is a decrypted vault entry as returned by the server.
type Password struct {
	ID         string `json:"id"`
	Service    string `json:"service"`
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

type passwordPayload struct {
	Service    string `json:"service"`
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Client talks to the vault server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// do performs one API request. A non-empty token is sent as a bearer token.
// If out is non-nil, a successful response body is decoded into it.
func (c *Client) do(ctx context.Context, method, path, token string, body any, out any) error {

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.asError(resp)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// asError converts an error response into a client error, keeping the
// server-provided message when one is present.
func (c *Client) asError(resp *http.Response) error {
	message := resp.Status
	var payload errorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		message = payload.Error
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, message)
	default:
		return fmt.Errorf("server error: %s", message)
	}
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	user := &User{}
	if err := c.do(ctx, http.MethodPost, "/api/users", "", body, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	result := &AuthResult{}
	if err := c.do(ctx, http.MethodPost, "/api/users/login", "", body, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+id, token, nil, nil)
}

func (c *Client) CreatePassword(ctx context.Context, token, service, credential, password string) (*Password, error) {
	body := passwordPayload{Service: service, Credential: credential, Password: password}
	created := &Password{}
	if err := c.do(ctx, http.MethodPost, "/api/passwords", token, body, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) ListPasswords(ctx context.Context, token string) ([]Password, error) {
	var items []Password
	if err := c.do(ctx, http.MethodGet, "/api/passwords", token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetPassword(ctx context.Context, token, id string) (*Password, error) {
	item := &Password{}
	if err := c.do(ctx, http.MethodGet, "/api/passwords/"+id, token, nil, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (c *Client) UpdatePassword(ctx context.Context, token, id, service, credential, password string) (*Password, error) {
	body := passwordPayload{Service: service, Credential: credential, Password: password}
	updated := &Password{}
	if err := c.do(ctx, http.MethodPut, "/api/passwords/"+id, token, body, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) DeletePassword(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/passwords/"+id, token, nil, nil)
}
