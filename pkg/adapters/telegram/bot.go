// Package telegram is the Telegram Bot API transport.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/botarmy/switchboard/internal/logging"
	"github.com/botarmy/switchboard/pkg/domain"
)

// UpdateHandler receives converted updates.
type UpdateHandler func(ctx context.Context, u domain.Update) error

// Bot delivers renders to Telegram chats.
//
// Replace renders edit the party's most recent prompt: the message a button
// was pressed on, or else the last message the bot sent. Renders that carry a
// reply keyboard are always sent, as Telegram cannot attach one by editing.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger

	mu   sync.Mutex
	last map[int64]int
}

// Option configures a Bot.
type Option func(*botConfig)

type botConfig struct {
	endpoint string
	client   tgbotapi.HTTPClient
	logger   *slog.Logger
}

// WithEndpoint points the bot at another Bot API server. The format takes the token and the method.
func WithEndpoint(format string) Option {
	return func(c *botConfig) {
		c.endpoint = format
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client tgbotapi.HTTPClient) Option {
	return func(c *botConfig) {
		c.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *botConfig) {
		c.logger = l
	}
}

// New authenticates with the Bot API.
func New(token string, opts ...Option) (*Bot, error) {
	cfg := botConfig{
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, cfg.endpoint, cfg.client)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	return &Bot{api: api, logger: cfg.logger, last: make(map[int64]int)}, nil
}

// Username is the bot's handle.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Deliver implements ports.Transport.
func (b *Bot) Deliver(ctx context.Context, partyID string, r domain.Render) error {
	chatID, err := ChatID(partyID)
	if err != nil {
		return err
	}

	if r.Mode == domain.ModeReplace && r.Reply == domain.ReplyNone {
		if msgID, ok := b.lastMessage(chatID); ok {
			err := b.edit(chatID, msgID, r)
			if err == nil {
				return nil
			}
			b.logger.Debug("Edit failed, sending instead", "party_id", partyID, "err", err)
		}
	}
	return b.send(chatID, r)
}

func (b *Bot) edit(chatID int64, msgID int, r domain.Render) error {
	var cfg tgbotapi.EditMessageTextConfig
	if r.HasOptions() {
		cfg = tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, r.Text, inlineKeyboard(r.Options))
	} else {
		cfg = tgbotapi.NewEditMessageText(chatID, msgID, r.Text)
	}
	_, err := b.api.Request(cfg)
	if notModified(err) {
		return nil
	}
	return err
}

func (b *Bot) send(chatID int64, r domain.Render) error {
	msg := tgbotapi.NewMessage(chatID, r.Text)
	switch {
	case r.HasOptions():
		msg.ReplyMarkup = inlineKeyboard(r.Options)
	case r.Reply != domain.ReplyNone:
		msg.ReplyMarkup = replyKeyboard(r)
	}

	sent, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	b.remember(chatID, sent.MessageID)
	return nil
}

// Acknowledge answers the callback query of u, if any, and remembers the
// pressed message as the party's current prompt.
func (b *Bot) Acknowledge(ctx context.Context, u domain.Update) {
	if u.CallbackID == "" {
		return
	}
	if chatID, err := ChatID(u.Party); err == nil && u.MessageID != 0 {
		b.remember(chatID, u.MessageID)
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(u.CallbackID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", "party_id", u.Party, "err", err)
	}
}

// Poll long-polls for updates and hands them to handle until ctx is done.
func (b *Bot) Poll(ctx context.Context, timeout int, handle UpdateHandler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeout
	updates := b.api.GetUpdatesChan(cfg)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-updates:
			if !ok {
				return nil
			}
			u, ok := ConvertUpdate(raw)
			if !ok {
				continue
			}
			b.Acknowledge(ctx, u)
			if err := handle(ctx, u); err != nil {
				b.logger.Error("Update handler failed", "party_id", u.Party, "err", err)
			}
		}
	}
}

func (b *Bot) lastMessage(chatID int64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.last[chatID]
	return id, ok
}

func (b *Bot) remember(chatID int64, msgID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last[chatID] = msgID
}

// Forget drops what the bot knows about a party's messages.
func (b *Bot) Forget(partyID string) {
	chatID, err := ChatID(partyID)
	if err != nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.last, chatID)
}

func inlineKeyboard(rows [][]domain.Option) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, len(row))
		for i, o := range row {
			buttons[i] = tgbotapi.NewInlineKeyboardButtonData(o.Label, o.Value)
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

func replyKeyboard(r domain.Render) tgbotapi.ReplyKeyboardMarkup {
	switch r.Reply {
	case domain.ReplyContact:
		return tgbotapi.NewOneTimeReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(r.ReplyButton)))
	case domain.ReplyLocation:
		return tgbotapi.NewOneTimeReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonLocation(r.ReplyButton)))
	}
	rows := make([][]tgbotapi.KeyboardButton, len(r.Choices))
	for i, c := range r.Choices {
		rows[i] = tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(c))
	}
	return tgbotapi.NewOneTimeReplyKeyboard(rows...)
}

func notModified(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "message is not modified")
}
