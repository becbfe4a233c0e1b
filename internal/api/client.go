// Package api is the client for the remote donation marketplace service.
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

	"github.com/woozymasta/sharebite/internal/config"
	"github.com/woozymasta/sharebite/internal/donation"

	"github.com/rs/zerolog/log"
)

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

// Client talks to the marketplace REST endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for cfg. A nil transport uses http.DefaultTransport.
func NewClient(cfg config.API, transport http.RoundTripper) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: &loggingTransport{next: transport},
			Timeout:   cfg.Timeout,
		},
	}
}

// ListDonations fetches the current donation set. Claimed records are dropped.
func (c *Client) ListDonations(ctx context.Context) ([]donation.Record, error) {
	const op = "list donations"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/donations", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: op, Status: resp.StatusCode}
	}

	var records []donation.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	open := records[:0]
	for _, r := range records {
		if r.Claimed {
			continue
		}
		open = append(open, r)
	}

	log.Debug().
		Int("received", len(records)).
		Int("open", len(open)).
		Msg("Donations received from backend")

	return open, nil
}

// ClaimDonation submits a claim. A refusal yields *RejectedError, a network failure *TransportError.
func (c *Client) ClaimDonation(ctx context.Context, claim donation.ClaimRequest) error {
	return c.post(ctx, "claim donation", "/claim_donation", claim)
}

// CreateDonation lists a new donation on behalf of a donor.
func (c *Client) CreateDonation(ctx context.Context, d donation.NewDonation) error {
	return c.post(ctx, "create donation", "/donation", d)
}

func (c *Client) post(ctx context.Context, op, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return &RejectedError{Op: op, Status: resp.StatusCode, Detail: readDetail(resp.Body)}
}

// readDetail extracts the FastAPI-style {"detail": ...} message. Validation
// failures carry a list of objects with "msg" instead of a string.
func readDetail(body io.Reader) string {
	var e struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&e); err != nil || len(e.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(e.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

// Detail returns the user-facing reason carried by err, or fallback.
func Detail(err error, fallback string) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		if rejected.Detail != "" {
			return rejected.Detail
		}
		return fallback
	}

	var transport *TransportError
	if errors.As(err, &transport) {
		return transport.Err.Error()
	}

	if err != nil {
		return err.Error()
	}
	return fallback
}
