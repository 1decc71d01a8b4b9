package telnyx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client issues call control commands against the provider's REST API. Each
// command is a single POST with a bounded timeout and no retry; resilience
// against transient provider errors belongs to the caller.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// CommandError reports a failed provider command with the provider's error
// detail. It is the only error type crossing the client boundary besides
// transport failures.
type CommandError struct {
	Command    string
	CallID     string
	Detail     string
	StatusCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("telnyx %s for call %s failed: %d %s", e.Command, e.CallID, e.StatusCode, e.Detail)
}

// Answer accepts an inbound call. clientState is an opaque token the
// provider echoes back on later events; it is passed through uninterpreted.
func (c *Client) Answer(ctx context.Context, callID, clientState string) error {
	return c.post(ctx, callID, "answer", map[string]string{
		"client_state": clientState,
	})
}

// StartStreaming asks the provider to fork call audio to streamURL.
func (c *Client) StartStreaming(ctx context.Context, callID, streamURL string) error {
	return c.post(ctx, callID, "streaming_start", map[string]string{
		"stream_url":   streamURL,
		"stream_track": "both_tracks",
	})
}

// Transfer moves the live call to a destination number.
func (c *Client) Transfer(ctx context.Context, callID, to string) error {
	return c.post(ctx, callID, "transfer", map[string]string{
		"to": to,
	})
}

// Hangup terminates the call.
func (c *Client) Hangup(ctx context.Context, callID string) error {
	return c.post(ctx, callID, "hangup", map[string]string{})
}

type errorResponse struct {
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (c *Client) post(ctx context.Context, callID, action string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s command: %w", action, err)
	}

	url := fmt.Sprintf("%s/calls/%s/actions/%s", c.baseURL, callID, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", action, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending %s command for call %s: %w", action, callID, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	cmdErr := &CommandError{
		Command:    action,
		CallID:     callID,
		StatusCode: res.StatusCode,
		Detail:     "provider error",
	}

	var parsed errorResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err == nil && len(parsed.Errors) > 0 {
		detail := parsed.Errors[0].Detail
		if detail == "" {
			detail = parsed.Errors[0].Title
		}
		if detail != "" {
			cmdErr.Detail = detail
		}
	}

	return cmdErr
}
