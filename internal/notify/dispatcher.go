package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/clydeside/ticketwatch/internal/config"
	"github.com/clydeside/ticketwatch/internal/model"
	"github.com/samber/lo"
)

// Dispatcher fans a batch of matches out to every configured channel.
// Channels are failure-isolated: one channel's error is logged and the
// rest still attempt delivery.
type Dispatcher struct {
	channels []Channel
}

func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// FromConfig assembles the dispatcher from the enabled channels. Email is
// always on; the rest switch on when their credentials are present.
func FromConfig(cfg *config.Config) (*Dispatcher, error) {
	batch := BatchContext{
		Subreddits: cfg.Subreddits,
		Keywords:   cfg.Keywords,
	}

	email, err := NewEmailChannel(cfg.SMTPServer, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword, cfg.NotificationEmail, batch)
	if err != nil {
		return nil, err
	}
	channels := []Channel{email}

	if cfg.TelegramEnabled() {
		telegram, err := NewTelegramChannel(cfg.TelegramBotToken, cfg.TelegramChatID, batch)
		if err != nil {
			return nil, err
		}
		channels = append(channels, telegram)
	}
	if cfg.DiscordWebhookURL != "" {
		channels = append(channels, NewDiscordChannel(cfg.DiscordWebhookURL))
	}
	if cfg.SlackWebhookURL != "" {
		channels = append(channels, NewSlackChannel(cfg.SlackWebhookURL))
	}
	if cfg.IFTTTWebhookKey != "" {
		channels = append(channels, NewIFTTTChannel(cfg.IFTTTWebhookKey, cfg.IFTTTEventName))
	}
	if cfg.PushoverEnabled() {
		channels = append(channels, NewPushoverChannel(cfg.PushoverUserKey, cfg.PushoverAPIToken))
	}

	return NewDispatcher(channels...), nil
}

// ChannelNames returns the names of the configured channels.
func (d *Dispatcher) ChannelNames() []string {
	return lo.Map(d.channels, func(c Channel, _ int) string { return c.Name() })
}

// Dispatch sends the batch through every channel and returns the names of
// the channels that delivered. Every attempt is logged; failures never
// abort the run or the remaining channels.
func (d *Dispatcher) Dispatch(ctx context.Context, matches []model.Match) []string {
	var sent []string
	for _, channel := range d.channels {
		if err := channel.Send(ctx, matches); err != nil {
			slog.Error("Failed to send notification", "channel", channel.Name(), "error", err)
			continue
		}
		slog.Info("Notification sent", "channel", channel.Name(), "matches", len(matches))
		sent = append(sent, channel.Name())
	}
	return sent
}

// SendTest pushes a canned match through one channel, or all of them when
// only is empty or "all".
func (d *Dispatcher) SendTest(ctx context.Context, only string) []string {
	test := []model.Match{TestMatch(time.Now())}

	var sent []string
	for _, channel := range d.channels {
		if only != "" && only != "all" && only != channel.Name() {
			continue
		}
		if err := channel.Send(ctx, test); err != nil {
			slog.Error("Failed to send test notification", "channel", channel.Name(), "error", err)
			continue
		}
		slog.Info("Test notification sent", "channel", channel.Name())
		sent = append(sent, channel.Name())
	}
	return sent
}

// ReportFailure self-reports a systemic failure through whichever channels
// are still functioning.
func (d *Dispatcher) ReportFailure(ctx context.Context, subject, text string) {
	for _, channel := range d.channels {
		if err := channel.Notify(ctx, subject, text); err != nil {
			slog.Error("Failed to deliver failure report", "channel", channel.Name(), "error", err)
		}
	}
}
