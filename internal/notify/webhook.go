package notify

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

	"github.com/clydeside/ticketwatch/internal/model"
	"github.com/samber/oops"
)

const webhookTimeout = 10 * time.Second

// WebhookChannel posts JSON payloads to a single webhook endpoint. The
// payload builders cover the Discord, Slack and IFTTT shapes.
type WebhookChannel struct {
	name       string
	endpoint   string
	httpClient *http.Client
	payload    func(matches []model.Match) map[string]any
	text       func(subject, text string) map[string]any
}

func NewDiscordChannel(webhookURL string) *WebhookChannel {
	return &WebhookChannel{
		name:       "discord",
		endpoint:   webhookURL,
		httpClient: &http.Client{Timeout: webhookTimeout},
		payload: func(matches []model.Match) map[string]any {
			return map[string]any{"content": FormatDiscord(matches)}
		},
		text: func(subject, text string) map[string]any {
			return map[string]any{"content": fmt.Sprintf("**%s**\n\n%s", subject, text)}
		},
	}
}

func NewSlackChannel(webhookURL string) *WebhookChannel {
	return &WebhookChannel{
		name:       "slack",
		endpoint:   webhookURL,
		httpClient: &http.Client{Timeout: webhookTimeout},
		payload: func(matches []model.Match) map[string]any {
			return map[string]any{"text": FormatSlack(matches)}
		},
		text: func(subject, text string) map[string]any {
			return map[string]any{"text": fmt.Sprintf("*%s*\n\n%s", subject, text)}
		},
	}
}

func NewIFTTTChannel(key, event string) *WebhookChannel {
	endpoint := fmt.Sprintf("https://maker.ifttt.com/trigger/%s/with/key/%s", url.PathEscape(event), url.PathEscape(key))
	build := func(title, message, link string) map[string]any {
		return map[string]any{"value1": title, "value2": message, "value3": link}
	}
	return &WebhookChannel{
		name:       "ifttt",
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: webhookTimeout},
		payload: func(matches []model.Match) map[string]any {
			title := fmt.Sprintf("Reddit Match%s Found", plural(len(matches)))
			if len(matches) == 1 {
				post := matches[0].Post
				return build(title, fmt.Sprintf("%s - r/%s", post.Title, post.Subreddit), post.URL())
			}
			return build(title, fmt.Sprintf("%d new matches found", len(matches)), "")
		},
		text: func(subject, text string) map[string]any {
			return build(subject, text, "")
		},
	}
}

func (c *WebhookChannel) Name() string { return c.name }

func (c *WebhookChannel) Send(ctx context.Context, matches []model.Match) error {
	return c.post(ctx, c.payload(matches))
}

func (c *WebhookChannel) Notify(ctx context.Context, subject, text string) error {
	return c.post(ctx, c.text(subject, text))
}

func (c *WebhookChannel) post(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return oops.With("channel", c.name, "context", "marshaling webhook payload").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return oops.With("channel", c.name, "context", "building webhook request").Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return oops.With("channel", c.name, "context", "posting webhook").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return oops.With("channel", c.name, "status", resp.StatusCode).
			Errorf("webhook rejected: %s", strings.TrimSpace(string(detail)))
	}

	return nil
}

// PushoverChannel delivers match batches through the Pushover message API.
type PushoverChannel struct {
	userKey    string
	apiToken   string
	endpoint   string
	httpClient *http.Client
}

func NewPushoverChannel(userKey, apiToken string) *PushoverChannel {
	return &PushoverChannel{
		userKey:    userKey,
		apiToken:   apiToken,
		endpoint:   "https://api.pushover.net/1/messages.json",
		httpClient: &http.Client{Timeout: webhookTimeout},
	}
}

func (c *PushoverChannel) Name() string { return "pushover" }

func (c *PushoverChannel) Send(ctx context.Context, matches []model.Match) error {
	title, message, link := FormatPushover(matches)
	return c.push(ctx, title, message, link)
}

func (c *PushoverChannel) Notify(ctx context.Context, subject, text string) error {
	return c.push(ctx, subject, text, "")
}

func (c *PushoverChannel) push(ctx context.Context, title, message, link string) error {
	form := url.Values{}
	form.Set("token", c.apiToken)
	form.Set("user", c.userKey)
	form.Set("title", title)
	form.Set("message", message)
	if link != "" {
		form.Set("url", link)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return oops.With("channel", c.Name(), "context", "building pushover request").Wrap(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return oops.With("channel", c.Name(), "context", "posting pushover message").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return oops.With("channel", c.Name(), "status", resp.StatusCode).
			Errorf("pushover rejected: %s", strings.TrimSpace(string(detail)))
	}

	return nil
}
