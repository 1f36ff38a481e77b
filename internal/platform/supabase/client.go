// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package supabase is a small client for the hosted backend's HTTP interfaces.

It covers the two surfaces the application uses:

  - Data: read-only PostgREST queries through [Client.From].
  - Auth: password sign-in, token refresh, user lookup and sign-out (see auth.go).

Every request carries the project API key. Requests made on behalf of a user
additionally carry that user's access token so row-level security applies.

The client holds no per-request state and is safe for concurrent use. It is
built once in main from configuration and passed to the components that need it.
*/
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes caps how much of a backend response is read.
const maxResponseBytes = 4 << 20

// Client is a Supabase REST API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// New creates a new Supabase client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase: URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("supabase: APIKey is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Per-call deadlines come from the caller's context.
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// # Responses

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Error is a non-2xx backend response.
//
// PostgREST reports {code, message, details, hint}; the auth service reports
// {error, error_description} or {code, msg}. Both shapes are folded here.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.StatusCode, e.Message)
}

// Err returns an [*Error] for non-2xx responses and nil otherwise.
func (response *Response) Err() error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	var payload struct {
		Code             json.RawMessage `json:"code"`
		Message          string          `json:"message"`
		Msg              string          `json:"msg"`
		ErrorCode        string          `json:"error_code"`
		ErrorName        string          `json:"error"`
		ErrorDescription string          `json:"error_description"`
	}
	_ = json.Unmarshal(response.Body, &payload)

	apiError := &Error{StatusCode: response.StatusCode}

	// 'code' is a string in PostgREST errors and a number in auth errors.
	var code string
	if err := json.Unmarshal(payload.Code, &code); err == nil {
		apiError.Code = code
	}
	for _, candidate := range []string{payload.ErrorCode, payload.ErrorName} {
		if apiError.Code == "" {
			apiError.Code = candidate
		}
	}
	for _, candidate := range []string{payload.Message, payload.Msg, payload.ErrorDescription} {
		if apiError.Message == "" {
			apiError.Message = candidate
		}
	}
	if apiError.Message == "" {
		apiError.Message = http.StatusText(response.StatusCode)
	}

	return apiError
}

// JSON decodes a successful response body into target.
func (response *Response) JSON(target any) error {
	if err := response.Err(); err != nil {
		return err
	}
	if err := json.Unmarshal(response.Body, target); err != nil {
		return fmt.Errorf("supabase: decode response: %w", err)
	}
	return nil
}

// IsStatus reports whether err is a backend [*Error] with the given status.
func IsStatus(err error, status int) bool {
	var apiError *Error
	return errors.As(err, &apiError) && apiError.StatusCode == status
}

// # Transport

// setHeaders applies the project key and, when present, the user's token.
func (client *Client) setHeaders(request *http.Request, accessToken string) {
	request.Header.Set("apikey", client.apiKey)
	bearer := client.apiKey
	if accessToken != "" {
		bearer = accessToken
	}
	request.Header.Set("Authorization", "Bearer "+bearer)
	request.Header.Set("Accept", "application/json")
}

// do executes a request and reads the full body.
func (client *Client) do(request *http.Request) (*Response, error) {
	httpResponse, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("supabase: %s %s: %w", request.Method, request.URL.Path, err)
	}
	defer httpResponse.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResponse.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("supabase: read response: %w", err)
	}

	return &Response{
		StatusCode: httpResponse.StatusCode,
		Header:     httpResponse.Header,
		Body:       body,
	}, nil
}

// newRequest builds a request against a path under the base URL.
func (client *Client) newRequest(ctx context.Context, method, path string, body io.Reader, accessToken string) (*http.Request, error) {
	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}
	client.setHeaders(request, accessToken)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	return request, nil
}
