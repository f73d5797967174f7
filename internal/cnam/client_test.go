package cnam

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClientNoopWhenCredentialsMissing(t *testing.T) {
	c := NewClient(Config{})
	rec, err := c.Lookup(context.Background(), "5125551234")
	if err != nil || rec != nil {
		t.Fatalf("expected nil, nil for disabled client, got %+v, %v", rec, err)
	}
}

func TestHTTPClientLookupSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"national_number_formatted": "(512) 555-1234",
			"cnam":                      map[string]string{"caller_id": "JOHN DOE"},
			"location":                  "Austin, TX",
		})
	}))
	defer srv.Close()

	c := &HTTPClient{
		cfg:        Config{ProjectID: "p", APIToken: "t"},
		baseURL:    srv.URL,
		httpClient: srv.Client(),
	}
	c.httpClient.Timeout = time.Second

	rec, err := c.Lookup(context.Background(), "5125551234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec.CallerIDName != "JOHN DOE" {
		t.Fatalf("expected JOHN DOE, got %+v", rec)
	}
}

func TestHTTPClientLookupNonSuccessStatusResolvesNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &HTTPClient{
		cfg:        Config{ProjectID: "p", APIToken: "t"},
		baseURL:    srv.URL,
		httpClient: srv.Client(),
	}
	c.httpClient.Timeout = time.Second

	rec, err := c.Lookup(context.Background(), "5125551234")
	if err != nil || rec != nil {
		t.Fatalf("expected nil, nil on 5xx, got %+v, %v", rec, err)
	}
}

func TestNormalizeNumber(t *testing.T) {
	cases := map[string]string{
		"5125551234":  "+15125551234",
		"+15125551234": "+15125551234",
		"":            "",
	}
	for in, want := range cases {
		if got := normalizeNumber(in); got != want {
			t.Errorf("normalizeNumber(%q) = %q, want %q", in, got, want)
		}
	}
}
