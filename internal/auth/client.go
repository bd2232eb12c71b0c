// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides identity and session management for nutrismart.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Configuration constants for the identity provider client.
const (
	// DefaultTimeout is the default timeout for identity requests.
	DefaultTimeout = 30 * time.Second

	// tokenRefreshSlack refreshes the ID token this long before expiry so a
	// token handed to a caller does not expire mid-request.
	tokenRefreshSlack = 2 * time.Minute

	// maxResponseSize caps identity response bodies.
	maxResponseSize = 1 * 1024 * 1024
)

// Error variables for common identity failures.
var (
	// ErrInvalidCredentials indicates an unknown email or wrong password.
	// Shown to the user distinctly from generic failures.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailInUse indicates the email is already registered.
	ErrEmailInUse = errors.New("email already registered")

	// ErrWeakPassword indicates the password failed the provider's policy.
	ErrWeakPassword = errors.New("password must be at least 6 characters")

	// ErrPasswordMismatch indicates password and confirmation differ.
	// Raised locally, before any remote call.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrNoSession indicates an operation that needs a session ran without one.
	ErrNoSession = errors.New("not signed in")
)

// AuthError represents a structured error from the identity provider.
type AuthError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("identity error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type signUpRequest struct {
	Email             string `json:"email,omitempty"`
	Password          string `json:"password,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type updateAccountRequest struct {
	IDToken     string `json:"idToken"`
	DisplayName string `json:"displayName,omitempty"`
}

type refreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

type accountResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type identityErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is an HTTP client for the identity provider.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an identity client for the given endpoint and public
// client key.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// SignInAnonymously creates a fresh anonymous identity.
func (c *Client) SignInAnonymously(ctx context.Context) (*Session, error) {
	var resp accountResponse
	err := c.post(ctx, "accounts:signUp", signUpRequest{ReturnSecureToken: true}, &resp)
	if err != nil {
		return nil, err
	}
	return c.sessionFrom(resp, true), nil
}

// SignInWithPassword signs in an existing email/password account.
// Unknown-email and wrong-password failures both map to
// ErrInvalidCredentials so the UI cannot leak which one happened.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var resp accountResponse
	err := c.post(ctx, "accounts:signInWithPassword", signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.sessionFrom(resp, false), nil
}

// SignUp creates an email/password account and then sets the display name as
// a second step. A failure in the second step is returned but the account,
// and the session, already exist; callers keep the session.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	var resp accountResponse
	err := c.post(ctx, "accounts:signUp", signUpRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	sess := c.sessionFrom(resp, false)

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = email
	}
	if err := c.updateDisplayName(ctx, resp.IDToken, name); err != nil {
		// Account exists; the name just did not stick. Not rolled back.
		return sess, fmt.Errorf("account created, but setting display name failed: %w", err)
	}
	sess.DisplayName = name
	return sess, nil
}

// SignOut revokes the session's refresh token. Best effort: the caller
// clears local state regardless of the result.
func (c *Client) SignOut(ctx context.Context, sess *Session) error {
	if sess == nil {
		return nil
	}
	idToken, _, _ := sess.token()
	return c.post(ctx, "accounts:revoke", updateAccountRequest{IDToken: idToken}, nil)
}

// IDToken returns a valid ID token for the session, refreshing it through
// the token endpoint when it is absent or close to expiry.
func (c *Client) IDToken(ctx context.Context, sess *Session) (string, error) {
	if sess == nil {
		return "", ErrNoSession
	}

	idToken, refreshToken, expiresAt := sess.token()
	if idToken != "" && time.Until(expiry(idToken, expiresAt)) > tokenRefreshSlack {
		return idToken, nil
	}

	if refreshToken == "" {
		return "", ErrNoSession
	}

	var resp refreshResponse
	err := c.post(ctx, "token", refreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	sess.setToken(resp.IDToken, resp.RefreshToken, expiryFrom(resp.ExpiresIn))
	return resp.IDToken, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (c *Client) sessionFrom(resp accountResponse, anonymous bool) *Session {
	sess := &Session{
		UserID:      resp.LocalID,
		IsAnonymous: anonymous,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
	}
	sess.setToken(resp.IDToken, resp.RefreshToken, expiryFrom(resp.ExpiresIn))
	return sess
}

// post sends a JSON request to the identity endpoint and decodes the
// response into out (which may be nil).
func (c *Client) post(ctx context.Context, action string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.endpoint + "/" + action
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return decodeIdentityError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// decodeIdentityError maps provider error codes onto the package's typed
// errors; anything unrecognized surfaces as *AuthError.
func decodeIdentityError(status int, body []byte) error {
	var errResp identityErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &AuthError{Status: status, Message: strings.TrimSpace(string(body))}
	}

	msg := errResp.Error.Message
	switch {
	case strings.Contains(msg, "EMAIL_NOT_FOUND"),
		strings.Contains(msg, "INVALID_PASSWORD"),
		strings.Contains(msg, "INVALID_LOGIN_CREDENTIALS"):
		return ErrInvalidCredentials
	case strings.Contains(msg, "EMAIL_EXISTS"):
		return ErrEmailInUse
	case strings.Contains(msg, "WEAK_PASSWORD"):
		return ErrWeakPassword
	}
	return &AuthError{Code: msg, Status: status, Message: msg}
}

// updateDisplayName sets the account display name.
func (c *Client) updateDisplayName(ctx context.Context, idToken, displayName string) error {
	return c.post(ctx, "accounts:update", updateAccountRequest{
		IDToken:     idToken,
		DisplayName: displayName,
	}, nil)
}

// expiry picks the better of the recorded expiry and the token's own exp
// claim. The claim is parsed without signature verification: the client is
// not the token's audience, it only needs the timestamp.
func expiry(idToken string, recorded time.Time) time.Time {
	if !recorded.IsZero() {
		return recorded
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return time.Time{}
}

// expiryFrom converts the provider's "seconds from now" string.
func expiryFrom(expiresIn string) time.Time {
	secs, err := strconv.Atoi(expiresIn)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(secs) * time.Second)
}
