package mainapp

import (
	"context"
	"fmt"

	"f1livebot/pkg/apps"
	"f1livebot/pkg/messenger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

const (
	menuStart = "/start"
	menuMenu  = "/menu"
)

var (
	menuKeyboard = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(apps.ButtonLeaderboard),
			tgbotapi.NewKeyboardButton(apps.ButtonOvertakes),
		),
	)
)

type MainApp struct {
	bot       messenger.Sender
	accepters []apps.Accepter
}

func NewMainApp(bot messenger.Sender, board apps.Board) *MainApp {
	leaderboardApp := apps.NewLeaderboardApp(bot, board)

	return &MainApp{
		bot:       bot,
		accepters: []apps.Accepter{leaderboardApp},
	}
}

func (m *MainApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if command == menuStart {
		return true, m.renderStart()
	} else if command == menuMenu {
		return true, m.renderMenu()
	}
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCommand(command)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (m *MainApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptButton(button)
		if accept {
			return true, handler
		}
	}
	return false, nil
}

func (m *MainApp) renderStart() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Hi, I keep a live Formula 1 leaderboard updated in this chat and report overtakes as they happen.\n\n"
		message += "Commands:\n\n"
		message += fmt.Sprintf("%s - Post a fresh leaderboard message\n", apps.CommandLeaderboard)
		message += fmt.Sprintf("%s - List this session's overtakes\n", apps.CommandOvertakes)
		message += fmt.Sprintf("%s - Show the bot keyboard\n", menuMenu)
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return errors.Wrap(err, "sending start message")
	}
}

func (m *MainApp) renderMenu() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		msg := tgbotapi.NewMessage(chatId, "Bot menu.")
		msg.ReplyMarkup = menuKeyboard
		_, err := m.bot.Send(msg)
		return errors.Wrap(err, "sending menu")
	}
}
