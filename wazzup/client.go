// Package wazzup is a thin client for the wazzup24 messaging gateway. Every
// operation returns a tagged Result instead of an error: transport failures,
// timeouts, and provider error codes are all folded into the same failure
// shape so callers never see a panic or a raw error escape this boundary.
package wazzup

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

const (
	defaultBaseURL         = "https://api.wazzup24.com"
	defaultRequestTimeout  = 10 * time.Second
	maxResponseBodyBytes   = 1 << 20 // 1 MiB
	unknownErrorMessage    = "Unknown error"
	ChatTypeWhatsApp       = "whatsapp"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	BaseURL          string
	APIKey           string
	DefaultChannelID string
	Timeout          time.Duration
	HTTPClient       HTTPDoer
}

type Client struct {
	baseURL          string
	apiKey           string
	defaultChannelID string
	http             HTTPDoer
}

func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:          baseURL,
		apiKey:           strings.TrimSpace(cfg.APIKey),
		defaultChannelID: strings.TrimSpace(cfg.DefaultChannelID),
		http:             httpClient,
	}
}

// Result is the tagged outcome of a gateway call. Either Success is true and
// Data holds the decoded response, or Success is false and Error/ErrorCode/
// Status describe what went wrong.
type Result struct {
	Success   bool
	Data      map[string]any
	Error     string
	ErrorCode string
	Status    int
}

// MessageID extracts the provider-assigned message id from a send response.
func (r Result) MessageID() string {
	if r.Data == nil {
		return ""
	}
	id, _ := r.Data["messageId"].(string)
	return id
}

type SendMessageInput struct {
	ChannelID string
	ChatType  string
	ChatID    string
	Text      string
	// ContentURI references media to deliver instead of text. Exactly one
	// of Text and ContentURI must be set.
	ContentURI string
	// RefMessageID makes the send a reply to an earlier message.
	RefMessageID string
	// CRMMessageID is the caller-generated idempotency token; the provider
	// rejects a second send carrying the same value.
	CRMMessageID string
}

func (c *Client) SendMessage(ctx context.Context, in SendMessageInput) Result {
	channelID := strings.TrimSpace(in.ChannelID)
	if channelID == "" {
		channelID = c.defaultChannelID
	}
	chatType := strings.TrimSpace(in.ChatType)
	if chatType == "" {
		chatType = ChatTypeWhatsApp
	}

	text := strings.TrimSpace(in.Text)
	contentURI := strings.TrimSpace(in.ContentURI)
	if text != "" && contentURI != "" {
		return failure("message can contain text or content, not both")
	}
	if text == "" && contentURI == "" {
		return failure("either text or contentUri must be provided")
	}

	body := map[string]any{
		"channelId": channelID,
		"chatType":  chatType,
		"chatId":    strings.TrimSpace(in.ChatID),
	}
	if contentURI != "" {
		body["contentUri"] = contentURI
	} else {
		body["text"] = text
	}
	if ref := strings.TrimSpace(in.RefMessageID); ref != "" {
		body["refMessageId"] = ref
	}
	if crm := strings.TrimSpace(in.CRMMessageID); crm != "" {
		body["crmMessageId"] = crm
	}

	return c.do(ctx, http.MethodPost, "/v3/message", body)
}

type EditMessageInput struct {
	Text       string
	ContentURI string
	// CRMUserID attributes the edit to a CRM user in the provider's chat UI.
	CRMUserID string
}

func (c *Client) EditMessage(ctx context.Context, messageID string, in EditMessageInput) Result {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return failure("message id is required")
	}

	text := strings.TrimSpace(in.Text)
	contentURI := strings.TrimSpace(in.ContentURI)
	if text != "" && contentURI != "" {
		return failure("message can contain text or content, not both")
	}
	if text == "" && contentURI == "" {
		return failure("either text or contentUri must be provided")
	}

	body := map[string]any{}
	if contentURI != "" {
		body["contentUri"] = contentURI
	} else {
		body["text"] = text
	}
	if crm := strings.TrimSpace(in.CRMUserID); crm != "" {
		body["crmUserId"] = crm
	}

	return c.do(ctx, http.MethodPatch, "/v3/message/"+url.PathEscape(messageID), body)
}

func (c *Client) DeleteMessage(ctx context.Context, messageID string) Result {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return failure("message id is required")
	}
	return c.do(ctx, http.MethodDelete, "/v3/message/"+url.PathEscape(messageID), nil)
}

// ChannelInfo describes one channel registered in the provider account.
type ChannelInfo struct {
	ChannelID string `json:"channelId"`
	Transport string `json:"transport"`
	PlainID   string `json:"plainId"`
	State     string `json:"state"`
}

type ChannelsResult struct {
	Success   bool
	Channels  []ChannelInfo
	Error     string
	ErrorCode string
	Status    int
}

func (c *Client) ListChannels(ctx context.Context) ChannelsResult {
	raw, err := c.roundTrip(ctx, http.MethodGet, "/v3/channels", nil)
	if err != nil {
		return ChannelsResult{Success: false, Error: err.Error()}
	}
	defer raw.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(raw.Body, maxResponseBodyBytes))
	if readErr != nil {
		return ChannelsResult{Success: false, Error: fmt.Sprintf("read channels response: %v", readErr)}
	}

	if raw.StatusCode < 200 || raw.StatusCode > 299 {
		result := decodeFailure(payload, raw.StatusCode)
		return ChannelsResult{
			Success:   false,
			Error:     result.Error,
			ErrorCode: result.ErrorCode,
			Status:    result.Status,
		}
	}

	var channels []ChannelInfo
	if err := json.Unmarshal(payload, &channels); err != nil {
		return ChannelsResult{Success: false, Error: fmt.Sprintf("decode channels response: %v", err), Status: raw.StatusCode}
	}
	return ChannelsResult{Success: true, Channels: channels, Status: raw.StatusCode}
}

func (c *Client) do(ctx context.Context, method string, path string, body map[string]any) Result {
	resp, err := c.roundTrip(ctx, method, path, body)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if readErr != nil {
		return Result{Success: false, Error: fmt.Sprintf("read gateway response: %v", readErr), Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFailure(payload, resp.StatusCode)
	}

	data := map[string]any{}
	if len(bytes.TrimSpace(payload)) > 0 {
		if err := json.Unmarshal(payload, &data); err != nil {
			return Result{Success: false, Error: fmt.Sprintf("decode gateway response: %v", err), Status: resp.StatusCode}
		}
	}
	return Result{Success: true, Data: data, Status: resp.StatusCode}
}

func (c *Client) roundTrip(ctx context.Context, method string, path string, body map[string]any) (*http.Response, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("wazzup: client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("wazzup: encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("wazzup: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wazzup: gateway request failed: %w", err)
	}
	return resp, nil
}

func decodeFailure(payload []byte, status int) Result {
	var parsed struct {
		Error       string `json:"error"`
		Description string `json:"description"`
	}
	_ = json.Unmarshal(payload, &parsed)

	code := strings.TrimSpace(parsed.Error)
	message, known := ErrorMessage(code)
	if !known {
		message = strings.TrimSpace(parsed.Description)
	}
	if message == "" {
		message = unknownErrorMessage
	}
	return Result{
		Success:   false,
		Error:     message,
		ErrorCode: code,
		Status:    status,
	}
}

func failure(message string) Result {
	return Result{Success: false, Error: message}
}
