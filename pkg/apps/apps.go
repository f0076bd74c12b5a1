// Package apps holds the chat commands served by the bot.
package apps

import (
	"context"
)

// Accepter resolves a command or keyboard button to its handler.
type Accepter interface {
	AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error)
}

// Board is the live leaderboard the commands act on.
type Board interface {
	// NewMessage posts a fresh leaderboard message that becomes the one kept updated.
	NewMessage(ctx context.Context) error
	OvertakesText() string
}
