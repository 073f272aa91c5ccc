package publisher

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/samgozman/vn-market-thread/pkg/errlvl"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramPublisher sends the composed message into a Telegram chat.
//
// A publisher without credentials (or with a failed handshake) is disabled: Publish returns ErrDisabled
// and Send returns false. It never stops the collection.
type TelegramPublisher struct {
	ChatID string // Telegram chat id (e.g. -1001234567890) or channel name (e.g. @my_channel)
	sender messageSender
	logger *slog.Logger
}

// NewTelegramPublisher creates a publisher and checks the token with a getMe call.
//
// The returned publisher is never nil. Missing credentials give a disabled publisher without an error,
// a failed handshake gives a disabled publisher with an error.
func NewTelegramPublisher(chatID, token string, timeout time.Duration) (*TelegramPublisher, error) {
	return newTelegramPublisher(chatID, token, &http.Client{Timeout: timeout}, handshakeBackOff(), slog.Default())
}

func newTelegramPublisher(chatID, token string, client *http.Client, bf backoff.BackOff, logger *slog.Logger) (*TelegramPublisher, error) {
	p := &TelegramPublisher{
		ChatID: strings.TrimSpace(chatID),
		logger: logger,
	}
	token = strings.TrimSpace(token)
	if p.ChatID == "" || token == "" {
		logger.Info("[publisher] Telegram credentials are not set, delivery is disabled")
		return p, nil
	}

	bot, err := connectToBot(token, client, bf, logger)
	if err != nil {
		return p, newError(errlvl.ERROR, errHandshake, err)
	}
	p.sender = bot

	return p, nil
}

// WithLogger sets the logger of the publisher.
func (t *TelegramPublisher) WithLogger(l *slog.Logger) *TelegramPublisher {
	t.logger = l
	return t
}

// Enabled reports whether the publisher can send messages.
func (t *TelegramPublisher) Enabled() bool {
	return t != nil && t.sender != nil
}

// Publish sends the message with Markdown parse mode. Returns the Telegram message id.
func (t *TelegramPublisher) Publish(msg string) (pubID string, err error) {
	if !t.Enabled() {
		return "", newError(errlvl.INFO, ErrDisabled)
	}
	if strings.TrimSpace(msg) == "" {
		return "", newError(errlvl.INFO, ErrEmptyMessage)
	}

	tgMsg := t.newMessage(msg)
	tgMsg.ParseMode = tgbotapi.ModeMarkdown
	tgMsg.DisableWebPagePreview = true

	s, err := t.sender.Send(tgMsg)
	if err != nil {
		return "", newError(errlvl.ERROR, errSend, err)
	}
	return strconv.Itoa(s.MessageID), nil
}

// Send is the best-effort Publish: every failure is logged and reported as false.
func (t *TelegramPublisher) Send(ctx context.Context, msg string) bool {
	if err := ctx.Err(); err != nil {
		t.logger.Warn("[publisher][Send] Run is cancelled, message is not sent", "error", err)
		return false
	}

	id, err := t.Publish(msg)
	if err != nil {
		if errlvl.Of(err) <= errlvl.INFO {
			t.logger.Info("[publisher][Send] Message is not sent", "reason", err.Error())
		} else {
			t.logger.Error("[publisher][Send] Failed to send message", "error", err.Error())
		}
		return false
	}

	t.logger.Info("[publisher][Send] Message sent", "message_id", id)
	return true
}

// newMessage addresses the chat by numeric id or by channel name.
func (t *TelegramPublisher) newMessage(text string) tgbotapi.MessageConfig {
	if id, err := strconv.ParseInt(t.ChatID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}

	name := t.ChatID
	if !strings.HasPrefix(name, "@") {
		name = "@" + name
	}
	return tgbotapi.NewMessageToChannel(name, text)
}
