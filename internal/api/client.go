// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the NutriSmart backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/nutrismart-tui/internal/model"
)

// Configuration constants for the backend client.
const (
	// DefaultTimeout bounds any single backend request. Chat replies come
	// from a language model, so this is generous.
	DefaultTimeout = 120 * time.Second

	// maxResponseSize caps response bodies.
	maxResponseSize = 10 * 1024 * 1024
)

// APIError represents a structured error from the backend.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// TokenSource supplies bearer tokens for backend requests. A nil TokenSource
// sends unauthenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type chatRequest struct {
	Message string `json:"message"`
	History string `json:"history,omitempty"`
}

// ChatReply is the assistant's answer to one chat message.
type ChatReply struct {
	Response string `json:"response"`

	// RequiresAuth is set when the backend could not personalize the reply
	// because the request carried no signed-in identity.
	RequiresAuth bool `json:"requires_auth"`
}

type profileRequest struct {
	Profile model.Profile `json:"profile"`
}

type apiErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the NutriSmart backend.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a backend client. tokens may be nil.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Chat sends one user message plus recent conversation context and returns
// the assistant's reply.
func (c *Client) Chat(ctx context.Context, message, history string) (ChatReply, error) {
	var reply ChatReply
	err := c.post(ctx, "/chat/", chatRequest{Message: message, History: history}, &reply)
	return reply, err
}

// SyncProfile pushes the full nutrient profile to the backend so future chat
// replies are personalized against it.
func (c *Client) SyncProfile(ctx context.Context, profile model.Profile) error {
	return c.post(ctx, "/profile/", profileRequest{Profile: profile}, nil)
}

// SubmitBill uploads a grocery receipt for server-side item extraction. The
// receipt object is the request body as-is; the extracted items arrive later
// through the inventory subscription.
func (c *Client) SubmitBill(ctx context.Context, receipt json.RawMessage) error {
	return c.post(ctx, "/bills/", receipt, nil)
}

// post sends a JSON request and decodes the response into out when non-nil.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to get API token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// decodeAPIError prefers the backend's own error message over a generic one.
func decodeAPIError(status int, body []byte) error {
	var errResp apiErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{Status: status, Message: errResp.Error}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}
