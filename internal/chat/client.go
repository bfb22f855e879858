// Package chat posts lead pipeline updates to the team chat workspace.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"roofline_backend/platform/logger"

	"github.com/google/uuid"
)

// Credentials is the capability required to post into the workspace.
// It is passed explicitly per call rather than read from ambient session
// state; a zero Credentials means the integration is not connected and
// the notifier skips silently.
type Credentials struct {
	WebhookURL string
	BotToken   string
	Channel    string
}

// Empty reports whether no usable credential is present.
func (c Credentials) Empty() bool {
	return strings.TrimSpace(c.WebhookURL) == ""
}

// StatusUpdate carries everything needed to announce a transition.
type StatusUpdate struct {
	LeadID    uuid.UUID
	LeadName  string
	OldLabel  string
	NewLabel  string
	ActorName string
}

type Client struct {
	http *http.Client
	log  *logger.Logger
}

type chatMessage struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

func NewClient(log *logger.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

// UpdateStatus posts a status-change message. Missing credentials are a
// silent no-op, never an error: an unconnected workspace is a valid state.
func (c *Client) UpdateStatus(ctx context.Context, creds Credentials, update StatusUpdate) error {
	if c == nil || creds.Empty() {
		return nil
	}

	payload := chatMessage{
		Channel: creds.Channel,
		Text: fmt.Sprintf("%s moved *%s* from %s to %s",
			update.ActorName, update.LeadName, update.OldLabel, update.NewLabel),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if creds.BotToken != "" {
		req.Header.Set("Authorization", "Bearer "+creds.BotToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chat service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("chat status update posted", "leadId", update.LeadID, "newStatus", update.NewLabel)
	return nil
}
