package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"f1livebot/pkg/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

var race = model.Session{
	Key:   9523,
	Name:  "Race",
	Type:  "Race",
	Start: time.Date(2024, 5, 26, 13, 0, 0, 0, time.UTC),
}

func TestSessionStartedNotifiesChat(t *testing.T) {
	sender := &fakeSender{}
	m := NewManager(sender, 99, true)

	err := m.SessionStarted(context.Background(), race, model.Meeting{OfficialName: "FORMULA 1 GRAND PRIX DE MONACO 2024"})
	if err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.ChatID != 99 {
		t.Errorf("chat = %d, want 99", msg.ChatID)
	}
	if msg.ParseMode != "" {
		t.Errorf("parse mode = %q, notifications are plain text", msg.ParseMode)
	}
	for _, want := range []string{subjectSessionStarted, "MONACO", "Session: Race (Race)", "2024-05-26 13:00 UTC"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("notification missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestSessionStartedSkips(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		session model.Session
	}{
		{name: "disabled", enabled: false, session: race},
		{name: "unknown type", enabled: true, session: model.Session{Key: 1, Name: "Day 1", Type: "Testing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			if err := NewManager(sender, 99, tt.enabled).SessionStarted(context.Background(), tt.session, model.Meeting{}); err != nil {
				t.Fatal(err)
			}
			if len(sender.sent) != 0 {
				t.Errorf("sent %d messages, want 0", len(sender.sent))
			}
		})
	}
}

func TestNilManagerIsNoop(t *testing.T) {
	var m *Manager
	if err := m.SessionStarted(context.Background(), race, model.Meeting{}); err != nil {
		t.Errorf("err = %v", err)
	}
}

func TestTelegramWithoutClient(t *testing.T) {
	tg := &Telegram{}
	tg.AddReceivers(1)
	if err := tg.Send(context.Background(), "s", "m"); err == nil {
		t.Error("expected error without client")
	}
}
