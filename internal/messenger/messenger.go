// Package messenger sends replies and pushes to the chat platform.
package messenger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lingo-relay/internal/httpclient"
	"lingo-relay/internal/types"

	"github.com/sirupsen/logrus"
)

// Messenger delivers outbound messages. It is a thin collaborator; the
// webhook handler and background services depend on this interface so
// tests can stub delivery.
type Messenger interface {
	Reply(replyToken string, texts ...string) error
	Push(to string, texts ...string) error
}

// Client is the HTTP implementation of Messenger.
type Client struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

// NewClient creates a messenger client with a pooled HTTP client.
func NewClient(configManager types.ConfigManager, clientManager *httpclient.Manager) Messenger {
	client := clientManager.GetClient(&httpclient.Config{
		ConnectTimeout:      3 * time.Second,
		RequestTimeout:      10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
	})

	return &Client{
		baseURL:     strings.TrimSuffix(configManager.GetBotConfig().MessageAPIBaseURL, "/"),
		accessToken: configManager.GetAuthConfig().ChannelAccessToken,
		client:      client,
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply answers an inbound event using its reply token.
func (c *Client) Reply(replyToken string, texts ...string) error {
	payload := map[string]any{
		"replyToken": replyToken,
		"messages":   buildMessages(texts),
	}
	return c.post("/v2/bot/message/reply", payload)
}

// Push sends messages to a user or group without a reply token.
func (c *Client) Push(to string, texts ...string) error {
	payload := map[string]any{
		"to":       to,
		"messages": buildMessages(texts),
	}
	return c.post("/v2/bot/message/push", payload)
}

func buildMessages(texts []string) []textMessage {
	messages := make([]textMessage, 0, len(texts))
	for _, text := range texts {
		if text == "" {
			continue
		}
		messages = append(messages, textMessage{Type: "text", Text: text})
	}
	return messages
}

func (c *Client) post(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode message payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Warn("Message delivery failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		logrus.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
			"body":   string(respBody),
		}).Warn("Message delivery rejected")
		return fmt.Errorf("message API returned status %d", resp.StatusCode)
	}

	return nil
}
