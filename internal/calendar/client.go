// Package calendar is the thin client for the company calendar service.
// Only the create-event contract matters here; the service itself is an
// external collaborator.
package calendar

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

// CreateEventParams is the payload for a calendar event tied to a lead.
type CreateEventParams struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	LeadID      uuid.UUID `json:"leadId"`
	LeadName    string    `json:"leadName"`
	Type        string    `json:"type"`
	Location    string    `json:"location,omitempty"`
}

type createEventResponse struct {
	ID string `json:"id"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

// Config is the subset of application config the client needs.
type Config interface {
	GetCalendarAPIURL() string
	GetCalendarAPIKey() string
}

// NewClient returns nil when the calendar integration is not configured;
// a nil client rejects calls with an error so the side-effect report shows
// the skip.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.GetCalendarAPIURL() == "" {
		return nil
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.GetCalendarAPIURL(), "/"),
		apiKey:  cfg.GetCalendarAPIKey(),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// CreateEvent creates one event and returns its id.
func (c *Client) CreateEvent(ctx context.Context, params CreateEventParams) (string, error) {
	if c == nil {
		return "", fmt.Errorf("calendar integration not configured")
	}

	body, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshal calendar payload: %w", err)
	}

	url := fmt.Sprintf("%s/events", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calendar request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("calendar service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed createEventResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode calendar response: %w", err)
	}

	c.log.Info("calendar event created", "eventId", parsed.ID, "leadId", params.LeadID, "type", params.Type)
	return parsed.ID, nil
}
