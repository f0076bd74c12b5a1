// Package notification announces in the chat that a new session has started.
package notification

import (
	"context"
	"strings"

	"f1livebot/pkg/messenger"
	"f1livebot/pkg/model"

	"github.com/nikoksr/notify"
	log "github.com/sirupsen/logrus"
)

const (
	TypePractice   = "practice"
	TypeQualifying = "qualifying"
	TypeRace       = "race"

	subjectSessionStarted = "🚦 New session:"
)

type Manager struct {
	notifier *notify.Notify
	enabled  bool
}

func NewManager(bot messenger.Sender, chatID int64, enabled bool) *Manager {
	tg := &Telegram{}
	tg.SetClient(bot)
	tg.AddReceivers(chatID)

	return &Manager{
		notifier: notify.NewWithServices(tg),
		enabled:  enabled,
	}
}

// SessionStarted notifies the chat about a session of a known type. Other
// session types and disabled managers are ignored.
func (m *Manager) SessionStarted(ctx context.Context, session model.Session, meeting model.Meeting) error {
	if m == nil || !m.enabled {
		return nil
	}
	sessionType := strings.ToLower(session.Type)
	if !isSessionToBeNotified(sessionType) {
		log.WithField("type", session.Type).Debug("session type not notified")
		return nil
	}

	log.WithFields(log.Fields{"session": session.Key, "name": session.Name}).Info("notifying session start")
	message := session.String()
	if meeting.OfficialName != "" {
		message = "  ▸ " + meeting.OfficialName + "\n" + message
	}
	return m.notifier.Send(ctx, subjectSessionStarted, message)
}

func isPractice(sessionType string) bool {
	return sessionType == TypePractice
}

func isQualifying(sessionType string) bool {
	return sessionType == TypeQualifying
}

func isRace(sessionType string) bool {
	return sessionType == TypeRace
}

func isSessionToBeNotified(sessionType string) bool {
	return isPractice(sessionType) || isQualifying(sessionType) || isRace(sessionType)
}
