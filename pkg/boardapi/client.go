package boardapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a client for the craftboard service, covering the endpoints the
// game-server plugin uses. All endpoints here are unauthenticated; the
// plugin is trusted at the network level and rate limited by IP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a craftboard client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// VerifyCode submits a code a player typed in-game. A declined code comes
// back as Success=false with a player-facing Message, not as an error; the
// error return covers transport and server failures only.
func (c *Client) VerifyCode(ctx context.Context, code, uuid, username string) (*VerifyCodeResponse, error) {
	payload, err := json.Marshal(VerifyCodeRequest{
		Code:     code,
		UUID:     uuid,
		Username: username,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/minecraft/verify-code",
		bytes.NewReader(payload), map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return nil, err
	}

	var result VerifyCodeResponse
	if err := decodeJSON(resp, &result, http.StatusOK, http.StatusBadRequest); err != nil {
		return nil, err
	}

	return &result, nil
}

// LinkStatus looks up whether a Minecraft UUID is linked to a web account.
func (c *Client) LinkStatus(ctx context.Context, uuid string) (*LinkStatusResponse, error) {
	path := "/v1/minecraft/link-status?uuid=" + url.QueryEscape(uuid)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var status LinkStatusResponse
	if err := decodeJSON(resp, &status, http.StatusOK); err != nil {
		return nil, err
	}

	return &status, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

func (c *Client) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// decodeJSON decodes the response body into target when the status is one of
// expected; anything else becomes an error carrying the status and body.
func decodeJSON(resp *http.Response, target any, expected ...int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	ok := false
	for _, status := range expected {
		if resp.StatusCode == status {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
