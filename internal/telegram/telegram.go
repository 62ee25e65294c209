// Package telegram delivers digest text through the Bot API, splitting it
// into chunks that respect the message-length limit.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vioflow/ainews/internal/logger"
	"github.com/vioflow/ainews/internal/metrics"
	"github.com/vioflow/ainews/internal/pipeerr"
)

const defaultAPIBase = "https://api.telegram.org"

type Client struct {
	token     string
	chatID    string
	http      *http.Client
	baseURL   string
	maxLen    int
	sendDelay time.Duration
}

func New(token, chatID string, timeout time.Duration, maxLen int, sendDelay time.Duration) *Client {
	return NewWithBaseURL(token, chatID, defaultAPIBase, timeout, maxLen, sendDelay)
}

// NewWithBaseURL targets a custom API host instead of api.telegram.org.
func NewWithBaseURL(token, chatID, baseURL string, timeout time.Duration, maxLen int, sendDelay time.Duration) *Client {
	return &Client{
		token:     token,
		chatID:    chatID,
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		maxLen:    maxLen,
		sendDelay: sendDelay,
	}
}

// SplitMessage splits text into chunks of at most max characters along
// paragraph (double newline) boundaries. Paragraphs are accumulated greedily;
// a paragraph is never split in half, so Markdown structure survives. Chunks
// other than a short single one keep their trailing separator.
func SplitMessage(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder

	for _, part := range strings.Split(text, "\n\n") {
		if cur.Len()+len(part)+2 >= max {
			if strings.TrimSpace(cur.String()) != "" {
				chunks = append(chunks, cur.String())
			}
			cur.Reset()
		}
		cur.WriteString(part)
		cur.WriteString("\n\n")
	}

	if strings.TrimSpace(cur.String()) != "" {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// Send delivers text to the configured chat, splitting when needed. Chunks
// go out strictly in order with a fixed pause between them; the first failed
// chunk halts the remainder. Missing credentials downgrade to a warning so
// the pipeline can run without a bot attached.
func (c *Client) Send(ctx context.Context, text string) error {
	if c.token == "" || c.chatID == "" {
		logger.Warn("telegram credentials are missing, skipping delivery")
		return nil
	}

	chunks := SplitMessage(text, c.maxLen)
	if len(chunks) > 1 {
		logger.Info("message exceeds limit, splitting", "chunks", len(chunks))
	}

	for i, chunk := range chunks {
		if err := c.sendChunk(ctx, chunk); err != nil {
			logger.Error("chunk delivery failed", "chunk", i+1, "total", len(chunks), "err", err)
			return err
		}
		logger.Info("chunk delivered", "chunk", i+1, "total", len(chunks))
		metrics.Global.AddChunkSent()

		if i < len(chunks)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.sendDelay):
			}
		}
	}
	return nil
}

func (c *Client) sendChunk(ctx context.Context, text string) error {
	payload := map[string]interface{}{
		"chat_id":    c.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return pipeerr.New(pipeerr.StageDelivery, pipeerr.Generic, "could not encode request")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return pipeerr.New(pipeerr.StageDelivery, pipeerr.Generic, "could not build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pipeerr.Classify(pipeerr.StageDelivery, err)
	}
	defer resp.Body.Close()

	// Status code only. The response body echoes the request URL and with it
	// the bot token, so it never reaches the logs.
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return pipeerr.New(pipeerr.StageDelivery, pipeerr.RateLimited, "bot API throttled the chunk")
	case http.StatusUnauthorized, http.StatusForbidden:
		return pipeerr.New(pipeerr.StageDelivery, pipeerr.Auth, "bot API rejected the credentials")
	default:
		return pipeerr.New(pipeerr.StageDelivery, pipeerr.Generic,
			fmt.Sprintf("bot API refused the chunk (status %d)", resp.StatusCode))
	}
}
