package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/stagechat/stagechat/internal/logger"
)

const (
	defaultPollInterval = 3 * time.Second
	requestTimeout      = 30 * time.Second
)

// SendResponse is the reply to a send-message call.
type SendResponse struct {
	Success     bool   `json:"success"`
	MessageID   int64  `json:"message_id"`
	UserMessage string `json:"user_message"`
	Error       string `json:"error"`
}

// StatusResponse is one generation-status snapshot for a message.
type StatusResponse struct {
	ID                   int64  `json:"id"`
	Content              string `json:"content"`
	IsGenerating         bool   `json:"is_generating"`
	GenerationStage      int    `json:"generation_stage"`
	GenerationStatusText string `json:"generation_status_text"`
	CreatedAt            string `json:"created_at"`
}

// MessageData is one entry of the chat-messages listing.
type MessageData struct {
	ID                int64  `json:"id"`
	Role              string `json:"role"`
	Content           string `json:"content"`
	IsGenerating      bool   `json:"is_generating"`
	GenerationStage   int    `json:"generation_stage"`
	IsContextBoundary bool   `json:"is_context_boundary"`
	CreatedAt         string `json:"created_at"`
}

type MessagesResponse struct {
	Messages []MessageData `json:"messages"`
	ChatID   int64         `json:"chat_id"`
}

// ActionResponse is the reply shape of stop-generation and archive-chat.
type ActionResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	NewChatID int64  `json:"new_chat_id"`
	Error     string `json:"error"`
}

type errorBody struct {
	Error string `json:"error"`
}

// ClientConfig carries everything the client needs; zero values fall back to
// sensible defaults (3s poll interval, 30s request timeout).
type ClientConfig struct {
	BaseURL       string
	SessionCookie string
	CSRFToken     string
	PollInterval  time.Duration
	HTTPClient    *http.Client
}

// Client talks to the chat server's JSON API and owns the single poll
// session the process is allowed to have.
type Client struct {
	baseURL       string
	sessionCookie string
	csrfToken     string
	pollInterval  time.Duration
	httpClient    *http.Client

	mu      sync.Mutex
	session *PollSession
}

func NewClient(cfg ClientConfig) *Client {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		sessionCookie: cfg.SessionCookie,
		csrfToken:     cfg.CSRFToken,
		pollInterval:  interval,
		httpClient:    httpClient,
	}
}

// SendMessage posts a user message; the server creates the assistant
// placeholder and returns its id.
func (c *Client) SendMessage(ctx context.Context, text string) (*SendResponse, error) {
	var out SendResponse
	body := map[string]string{"message": text}
	if err := c.doJSON(ctx, http.MethodPost, "/api/send-message/", body, &out, "send message"); err != nil {
		return nil, err
	}
	return &out, nil
}

// MessageStatus fetches the current generation status for one message.
func (c *Client) MessageStatus(ctx context.Context, messageID int64) (*StatusResponse, error) {
	var out StatusResponse
	path := fmt.Sprintf("/api/message-status/%d/", messageID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, "fetch message status"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatMessages fetches the full conversation of the active chat.
func (c *Client) ChatMessages(ctx context.Context) (*MessagesResponse, error) {
	var out MessagesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat-messages/", nil, &out, "fetch chat messages"); err != nil {
		return nil, err
	}
	return &out, nil
}

// StopGeneration asks the server to abort the in-flight generation. The
// stopped state (stage -1) arrives through the regular status polling.
func (c *Client) StopGeneration(ctx context.Context) (*ActionResponse, error) {
	var out ActionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/stop-generation/", struct{}{}, &out, "stop generation"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ArchiveChat archives the active chat; the server opens a fresh one.
func (c *Client) ArchiveChat(ctx context.Context) (*ActionResponse, error) {
	var out ActionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/archive-chat/", struct{}{}, &out, "archive chat"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}, op string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: "sessionid", Value: c.sessionCookie})
	}
	// Mutating endpoints require the anti-forgery token
	if method != http.MethodGet && c.csrfToken != "" {
		req.Header.Set("X-CSRFToken", c.csrfToken)
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: c.csrfToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		netErr := &NetworkError{Op: op, Err: err}
		logger.Errorf("%v", netErr)
		return netErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := &NetworkError{Op: op, Err: err}
		logger.Errorf("%v", netErr)
		return netErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		srvErr := &ServerError{Op: op, StatusCode: resp.StatusCode, Message: eb.Error}
		logger.Errorf("%v", srvErr)
		return srvErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		srvErr := &ServerError{Op: op, StatusCode: resp.StatusCode, Message: "undecodable response body"}
		logger.Errorf("%s: %v", op, err)
		return srvErr
	}

	return nil
}

// ParseTimestamp handles the server's ISO-8601 timestamps, with and without
// a zone offset.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
