// Package messenger sends and edits the leaderboard message in a Telegram chat.
package messenger

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const errNotModified = "message is not modified"

// Sender is the subset of *tgbotapi.BotAPI used by Telegram.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Telegram struct {
	bot       Sender
	chatID    int64
	parseMode string
}

func NewTelegram(bot Sender, chatID int64, parseMode string) *Telegram {
	return &Telegram{
		bot:       bot,
		chatID:    chatID,
		parseMode: parseMode,
	}
}

func (t *Telegram) ChatID() int64 {
	return t.chatID
}

// Send posts a new message and returns its id.
func (t *Telegram) Send(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = t.parseMode
	msg.DisableWebPagePreview = true
	sent, err := t.bot.Send(msg)
	if err != nil {
		return 0, errors.Wrapf(err, "sending message to chat %d", t.chatID)
	}
	log.WithFields(log.Fields{"chat": t.chatID, "message": sent.MessageID}).Debug("message sent")
	return sent.MessageID, nil
}

// Edit replaces the text of messageID. Editing with unchanged text is not an error.
func (t *Telegram) Edit(ctx context.Context, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewEditMessageText(t.chatID, messageID, text)
	msg.ParseMode = t.parseMode
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	if err != nil {
		if strings.Contains(err.Error(), errNotModified) {
			log.WithField("message", messageID).Debug("message unchanged")
			return nil
		}
		return errors.Wrapf(err, "editing message %d in chat %d", messageID, t.chatID)
	}
	return nil
}

// Close logs the bot out of the Telegram API.
func (t *Telegram) Close(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.bot.Request(tgbotapi.LogOutConfig{})
	return errors.Wrap(err, "logging out from telegram")
}
