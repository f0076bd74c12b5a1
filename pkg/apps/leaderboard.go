package apps

import (
	"context"

	"f1livebot/pkg/messenger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

const (
	CommandLeaderboard = "/leaderboard"
	CommandOvertakes   = "/overtakes"
	ButtonLeaderboard  = "Leaderboard"
	ButtonOvertakes    = "Overtakes"
)

type LeaderboardApp struct {
	bot   messenger.Sender
	board Board
}

func NewLeaderboardApp(bot messenger.Sender, board Board) *LeaderboardApp {
	return &LeaderboardApp{
		bot:   bot,
		board: board,
	}
}

func (la *LeaderboardApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	switch command {
	case CommandLeaderboard:
		return true, la.renderLeaderboard()
	case CommandOvertakes:
		return true, la.renderOvertakes()
	}
	return false, nil
}

func (la *LeaderboardApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	switch button {
	case ButtonLeaderboard:
		return true, la.renderLeaderboard()
	case ButtonOvertakes:
		return true, la.renderOvertakes()
	}
	return false, nil
}

func (la *LeaderboardApp) renderLeaderboard() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		return la.board.NewMessage(ctx)
	}
}

func (la *LeaderboardApp) renderOvertakes() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		msg := tgbotapi.NewMessage(chatId, la.board.OvertakesText())
		_, err := la.bot.Send(msg)
		return errors.Wrap(err, "sending overtakes")
	}
}
