package notification

import (
	"context"

	"f1livebot/pkg/messenger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// Telegram is a notify.Notifier that posts to a set of Telegram chats.
type Telegram struct {
	client  messenger.Sender
	chatIDs []int64
}

func (t *Telegram) SetClient(client messenger.Sender) {
	t.client = client
}

func (t *Telegram) AddReceivers(chatIDs ...int64) {
	t.chatIDs = append(t.chatIDs, chatIDs...)
}

func (t *Telegram) Send(ctx context.Context, subject, message string) error {
	if t.client == nil {
		return errors.New("telegram notifier has no client")
	}
	fullMessage := subject + "\n" + message
	for _, chatID := range t.chatIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg := tgbotapi.NewMessage(chatID, fullMessage)
			if _, err := t.client.Send(msg); err != nil {
				return errors.Wrapf(err, "sending notification to chat %d", chatID)
			}
		}
	}
	return nil
}
