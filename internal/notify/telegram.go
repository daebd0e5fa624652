package notify

import (
	"context"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/oops"
)

// TelegramChannel delivers match batches to a Telegram chat.
type TelegramChannel struct {
	bot    *bot.Bot
	chatID string
	batch  BatchContext
}

func NewTelegramChannel(token, chatID string, batch BatchContext) (*TelegramChannel, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, oops.With("context", "creating telegram bot").Wrap(err)
	}

	return &TelegramChannel{
		bot:    b,
		chatID: chatID,
		batch:  batch,
	}, nil
}

func (c *TelegramChannel) Name() string { return "telegram" }

func (c *TelegramChannel) Send(ctx context.Context, matches []model.Match) error {
	return c.sendMessage(ctx, FormatTelegram(matches, c.batch, time.Now()))
}

func (c *TelegramChannel) Notify(ctx context.Context, subject, text string) error {
	return c.sendMessage(ctx, subject+"\n\n"+text)
}

func (c *TelegramChannel) sendMessage(ctx context.Context, text string) error {
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    c.chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return oops.With("chat_id", c.chatID, "context", "sending telegram message").Wrap(err)
	}
	return nil
}
