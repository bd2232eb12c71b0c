// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeranaias/nutrismart-tui/internal/model"
)

type staticTokens struct {
	token string
}

func (s staticTokens) Token(ctx context.Context) (string, error) {
	return s.token, nil
}

func TestChatSendsHistoryAndBearerToken(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"response":      "Eat more lentils.",
			"requires_auth": false,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticTokens{token: "tok-abc"})
	reply, err := client.Chat(context.Background(), "what should I cook?", "user: hi\nassistant: hello")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if reply.Response != "Eat more lentils." {
		t.Errorf("wrong reply: %q", reply.Response)
	}
	if reply.RequiresAuth {
		t.Error("requires_auth should be false")
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("wrong auth header: %q", gotAuth)
	}
	if gotBody.Message != "what should I cook?" {
		t.Errorf("wrong message: %q", gotBody.Message)
	}
	if gotBody.History == "" {
		t.Error("history missing from request")
	}
}

func TestChatAnonymousReplyCarriesRequiresAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"response":      "Sign in for personalized advice.",
			"requires_auth": true,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	reply, err := client.Chat(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if !reply.RequiresAuth {
		t.Error("requires_auth flag lost")
	}
}

func TestBackendErrorMessagePreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"model unavailable"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.Chat(context.Background(), "hi", "")
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("wrong status: %d", apiErr.Status)
	}
	if apiErr.Message != "model unavailable" {
		t.Errorf("wrong message: %q", apiErr.Message)
	}
}

func TestSyncProfileSendsFullDocument(t *testing.T) {
	var gotBody profileRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profile/" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	profile := model.Profile{"Iron": "high", "Fiber": "moderate"}
	if err := client.SyncProfile(context.Background(), profile); err != nil {
		t.Fatalf("SyncProfile failed: %v", err)
	}
	if len(gotBody.Profile) != 2 || gotBody.Profile["Fiber"] != "moderate" {
		t.Errorf("profile not sent in full: %+v", gotBody.Profile)
	}
}

func TestSubmitBillPostsReceiptAsBody(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bills/" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	receipt := json.RawMessage(`{"store":"GroceryMart","items":[{"name":"milk"}]}`)
	if err := client.SubmitBill(context.Background(), receipt); err != nil {
		t.Fatalf("SubmitBill failed: %v", err)
	}

	// The receipt object is the body itself, not wrapped in an envelope.
	if _, wrapped := gotBody["receipt"]; wrapped {
		t.Fatalf("receipt was wrapped: %+v", gotBody)
	}
	if gotBody["store"] != "GroceryMart" {
		t.Errorf("wrong receipt contents: %+v", gotBody)
	}
}
