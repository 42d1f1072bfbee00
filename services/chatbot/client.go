// Package chatbotsvc talks to the external assistant service that answers
// free-form questions about schedules, tasks and announcements.
package chatbotsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/ikedalab/classinfo/core"
)

var ErrUnavailable = errors.New("chat service unavailable")

type (
	// Reply is the assistant's answer as returned by the chat service.
	Reply struct {
		Response         string `json:"response"`
		ContextItemsUsed int    `json:"context_items_used"`
		AIPowered        bool   `json:"ai_powered"`
		Timestamp        string `json:"timestamp"`
	}

	Health struct {
		Status string `json:"status"`
	}

	Client struct {
		baseURL string
		http    *http.Client
		logger  core.Logger
	}
)

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Chat.ServiceURL, "/"),
		http:    &http.Client{Timeout: conf.Chat.Timeout},
		logger:  logger,
	}
}

// Ask forwards a user message to the chat service. ErrUnavailable is returned
// when the service cannot be reached or misbehaves; callers should then fall
// back to Fallback.
func (c *Client) Ask(ctx context.Context, message, userID string) (Reply, error) {
	if userID == "" {
		userID = "anonymous"
	}
	payload, err := json.Marshal(map[string]string{
		"message": message,
		"user_id": userID,
	})
	if err != nil {
		return Reply{}, errors.Wrap(err, "encoding chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return Reply{}, errors.Wrap(err, "building chat request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("chat service error: %v", err))
		return Reply{}, ErrUnavailable
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.logger.Warn(fmt.Sprintf("chat service error - status: %d", res.StatusCode))
		return Reply{}, ErrUnavailable
	}

	var reply Reply
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		c.logger.Warn(fmt.Sprintf("chat service error: %v", err))
		return Reply{}, ErrUnavailable
	}
	return reply, nil
}

// CheckHealth pings the chat service.
func (c *Client) CheckHealth(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, errors.Wrap(err, "building health request")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return Health{}, ErrUnavailable
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Health{}, ErrUnavailable
	}

	var h Health
	if err := json.NewDecoder(res.Body).Decode(&h); err != nil {
		return Health{}, ErrUnavailable
	}
	return h, nil
}

// Fallback returns a canned answer keyed off the user's message for when the
// chat service is down.
func Fallback(message string) string {
	if message == "" {
		return "I'm here to help! What would you like to know?"
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "schedule") || strings.Contains(lower, "class"):
		return "I'd be happy to help with your schedule! Unfortunately, I'm having some technical difficulties right now. " +
			"Please check your schedule directly or try again in a few minutes."
	case strings.Contains(lower, "task") || strings.Contains(lower, "assignment"):
		return "I can help with your tasks and assignments! I'm experiencing some technical issues at the moment. " +
			"Please check your tasks directly or try again shortly."
	case strings.Contains(lower, "announcement"):
		return "I can help with announcements! I'm having some connectivity issues right now. " +
			"Please check the announcements section or try again later."
	}
	return "I'm here to help with your schedule, tasks, and announcements! I'm experiencing some technical difficulties " +
		"at the moment. Please try again in a few minutes."
}
