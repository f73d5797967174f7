// Package cnam looks up a caller-name record for an inbound number.
//
// The client is best-effort by contract: timeouts, non-2xx responses and
// missing fields all resolve to a nil record, never an error the dialplan
// resolver has to handle.
package cnam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Record is the caller-name data the dialplan resolver rewrites the
// caller-id display with.
type Record struct {
	NationalNumberFormatted string
	CallerIDName            string
	Location                string
}

// Client looks up a Record for a number. Implementations must never return
// an error to the caller for anything short of a programming mistake;
// network/timeout/parse failures resolve to (nil, nil).
type Client interface {
	Lookup(ctx context.Context, number string) (*Record, error)
}

// Config carries the process-wide CNAM credentials, loaded once at
// startup and never mutated afterward.
type Config struct {
	ProjectID string
	APIToken  string
	SpaceHost string
	Timeout   time.Duration
}

// Enabled reports whether the credentials required to make lookups are
// present. Missing credentials disable enrichment without failing startup.
func (c Config) Enabled() bool {
	return c.ProjectID != "" && c.APIToken != "" && c.SpaceHost != ""
}

// NewClient returns an HTTPClient when creds are present, or a NoopClient
// otherwise, so callers never need to branch on configuration.
func NewClient(cfg Config) Client {
	if !cfg.Enabled() {
		return NoopClient{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 900 * time.Millisecond
	}
	if timeout > time.Second {
		timeout = time.Second
	}
	return &HTTPClient{
		cfg:     cfg,
		baseURL: "https://" + cfg.SpaceHost,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NoopClient always returns (nil, nil); used when CNAM credentials are not
// configured.
type NoopClient struct{}

func (NoopClient) Lookup(context.Context, string) (*Record, error) { return nil, nil }

// HTTPClient performs the outbound lookup over HTTPS.
type HTTPClient struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

type lookupResponse struct {
	NationalNumberFormatted string `json:"national_number_formatted"`
	CNAM                    struct {
		CallerID string `json:"caller_id"`
	} `json:"cnam"`
	Location string `json:"location"`
}

// Lookup normalizes number to E.164 (10-digit inputs get a leading "+1")
// and queries the lookup API. Any failure is swallowed and reported as a
// nil record so the dialplan resolver proceeds with unenriched caller-id.
func (c *HTTPClient) Lookup(ctx context.Context, number string) (*Record, error) {
	normalized := normalizeNumber(number)
	if normalized == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.httpClient.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/lookup/phone_number/%s?include=caller_id_name",
		c.baseURL, normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil
	}
	req.SetBasicAuth(c.cfg.ProjectID, c.cfg.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, nil
	}
	if body.CNAM.CallerID == "" {
		return nil, nil
	}

	return &Record{
		NationalNumberFormatted: body.NationalNumberFormatted,
		CallerIDName:            body.CNAM.CallerID,
		Location:                body.Location,
	}, nil
}

func normalizeNumber(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	digits := strings.TrimPrefix(trimmed, "+")
	if len(digits) == 10 {
		return "+1" + digits
	}
	if strings.HasPrefix(trimmed, "+") {
		return trimmed
	}
	return "+" + digits
}
