package publisher

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// handshakeBackOff is the exponential policy for the getMe call of a new bot.
func handshakeBackOff() backoff.BackOff {
	bf := backoff.NewExponentialBackOff()
	bf.InitialInterval = 1 * time.Second
	bf.MaxInterval = 5 * time.Second
	bf.MaxElapsedTime = 20 * time.Second
	return bf
}

// connectToBot creates the bot API client. Rejected tokens are not retried.
func connectToBot(token string, client *http.Client, bf backoff.BackOff, logger *slog.Logger) (*tgbotapi.BotAPI, error) {
	bot, err := backoff.RetryWithData[*tgbotapi.BotAPI](func() (*tgbotapi.BotAPI, error) {
		b, err := tgbotapi.NewBotAPIWithClient(token, client)
		if err != nil {
			if isRejected(err) {
				return nil, backoff.Permanent(err)
			}
			logger.Info("[publisher][connectToBot] Telegram not yet reachable...", "error", err)
			return nil, err
		}
		return b, nil
	}, bf)
	if err != nil {
		return nil, err
	}

	logger.Info("[publisher][connectToBot] Connected to Telegram", "bot", bot.Self.UserName)
	return bot, nil
}

// isRejected reports whether Telegram refused the token itself (invalid or revoked).
func isRejected(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Unauthorized") || strings.Contains(msg, "Not Found")
}
