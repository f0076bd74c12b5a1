// Package livebot runs the polling loop: it fetches the live session and
// positions, tracks overtakes and keeps one chat message updated.
package livebot

import (
	"context"
	"strings"
	"time"

	"f1livebot/pkg/apps"
	"f1livebot/pkg/caster"
	"f1livebot/pkg/model"
	"f1livebot/pkg/pubsub"
	"f1livebot/pkg/render"
	"f1livebot/pkg/telemetry"
	"f1livebot/pkg/tracker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	TickPositions = "positions"
	TickMessage   = "message"
	TickCommand   = "command"

	waitingText     = "⏳ Waiting for live session data..."
	noOvertakesText = "No overtakes yet in this session."

	// maxListedOvertakes keeps the overtakes reply under the Telegram message size limit.
	maxListedOvertakes = 80
)

type Fetcher interface {
	LatestSession(ctx context.Context) (model.Session, error)
	Meeting(ctx context.Context, meetingKey int) (model.Meeting, error)
	Drivers(ctx context.Context, sessionKey int) ([]model.Driver, error)
	LatestPositions(ctx context.Context, sessionKey int, drivers []model.Driver) (model.Snapshot, error)
}

type Messenger interface {
	Send(ctx context.Context, text string) (int, error)
	Edit(ctx context.Context, messageID int, text string) error
	Close(ctx context.Context) error
}

type Notifier interface {
	SessionStarted(ctx context.Context, session model.Session, meeting model.Meeting) error
}

type Publisher interface {
	Publish(topic string, data string)
}

type Options struct {
	ChatID    int64
	Renderer  render.Renderer
	Location  *time.Location
	Notifier  Notifier
	Publisher Publisher
	// Now defaults to time.Now.
	Now func() time.Time
}

// Bot owns all live state. Its methods must be called from a single
// goroutine, which Run provides.
type Bot struct {
	fetcher   Fetcher
	messenger Messenger
	renderer  render.Renderer
	notifier  Notifier
	publisher Publisher
	caster    caster.ChannelCaster[model.LiveLeaderboard]
	chatID    int64
	loc       *time.Location
	now       func() time.Time

	state         tracker.State
	session       model.Session
	meeting       model.Meeting
	drivers       []model.Driver
	haveSession   bool
	refreshRoster bool
	messageID     int
	updatedAt     time.Time
}

func New(fetcher Fetcher, messenger Messenger, opts Options) *Bot {
	b := &Bot{
		fetcher:   fetcher,
		messenger: messenger,
		renderer:  opts.Renderer,
		notifier:  opts.Notifier,
		publisher: opts.Publisher,
		caster:    caster.JSONChannelCaster[model.LiveLeaderboard]{},
		chatID:    opts.ChatID,
		loc:       opts.Location,
		now:       opts.Now,
	}
	if b.loc == nil {
		b.loc = time.UTC
	}
	if b.renderer == nil {
		b.renderer = render.New(render.StyleText, b.loc, render.DefaultMaxOvertakes)
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Start loads the live session and posts the first leaderboard message. A
// failed session fetch is retried on the next positions tick.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.RefreshSession(ctx); err != nil {
		log.WithError(err).Warn("could not load live session, will retry")
	}
	return b.NewMessage(ctx)
}

// RefreshSession reloads the latest session, its meeting and the driver
// roster. A new session key resets the tracker and announces the session.
func (b *Bot) RefreshSession(ctx context.Context) error {
	session, err := b.fetcher.LatestSession(ctx)
	if err != nil {
		return errors.Wrap(err, "fetching latest session")
	}
	meeting, err := b.fetcher.Meeting(ctx, session.MeetingKey)
	if err != nil {
		return errors.Wrapf(err, "fetching meeting %d", session.MeetingKey)
	}
	drivers, err := b.fetcher.Drivers(ctx, session.Key)
	if err != nil {
		return errors.Wrapf(err, "fetching drivers of session %d", session.Key)
	}

	changed := b.haveSession && session.Key != b.session.Key
	if !b.haveSession || changed {
		log.WithFields(log.Fields{"session": session.Key, "name": session.Name, "meeting": meeting.OfficialName}).Info("tracking session")
		b.state = tracker.New(session.Key)
		b.updatedAt = time.Time{}
	}

	b.session = session
	b.meeting = meeting
	b.drivers = drivers
	b.haveSession = true
	b.refreshRoster = false

	if changed && b.notifier != nil {
		if err := b.notifier.SessionStarted(ctx, session, meeting); err != nil {
			log.WithError(err).Warn("session start notification failed")
		}
	}
	return nil
}

// UpdatePositions runs one positions tick. On error the previous state is kept.
func (b *Bot) UpdatePositions(ctx context.Context) error {
	tick := uuid.NewString()
	logger := log.WithField("tick", tick)

	if err := b.poll(ctx, logger); err != nil {
		return err
	}

	text, err := b.text()
	if err != nil {
		return err
	}
	if b.messageID == 0 {
		if err := b.send(ctx, text); err != nil {
			return err
		}
	} else if err := b.messenger.Edit(ctx, b.messageID, text); err != nil {
		return err
	}
	b.publish(tick, text, logger)
	return nil
}

// poll fetches the latest positions and advances the tracker.
func (b *Bot) poll(ctx context.Context, logger *log.Entry) error {
	if !b.haveSession || b.refreshRoster {
		if err := b.RefreshSession(ctx); err != nil {
			return err
		}
	}

	snapshot, err := b.fetcher.LatestPositions(ctx, b.session.Key, b.drivers)
	if err != nil {
		if model.IsLookupError(err) {
			b.refreshRoster = true
		}
		return errors.Wrap(err, "fetching positions")
	}

	state, overtakes, err := b.state.Update(snapshot)
	if err != nil {
		return err
	}
	b.state = state
	b.updatedAt = b.now()
	telemetry.SetDrivers(len(snapshot))

	telemetry.Overtakes(len(overtakes))
	for _, o := range overtakes {
		logger.WithFields(log.Fields{
			"position":   o.Position,
			"overtaking": o.Overtaking.Number,
			"overtaken":  o.Overtaken.Number,
		}).Info("overtake")
	}
	logger.WithFields(log.Fields{"drivers": len(snapshot), "overtakes": len(overtakes)}).Debug("positions updated")
	return nil
}

// NewMessage posts a fresh leaderboard message; later ticks edit it.
func (b *Bot) NewMessage(ctx context.Context) error {
	text, err := b.text()
	if err != nil {
		return err
	}
	return b.send(ctx, text)
}

func (b *Bot) send(ctx context.Context, text string) error {
	id, err := b.messenger.Send(ctx, text)
	if err != nil {
		return err
	}
	b.messageID = id
	return nil
}

func (b *Bot) leaderboard() render.Leaderboard {
	return render.Leaderboard{
		Now:       b.now(),
		UpdatedAt: b.updatedAt,
		Session:   b.session,
		Meeting:   b.meeting,
		Positions: b.state.Current,
		Overtakes: b.state.Overtakes,
	}
}

func (b *Bot) text() (string, error) {
	if !b.haveSession {
		return b.renderer.Placeholder(waitingText), nil
	}
	return b.renderer.Render(b.leaderboard())
}

func (b *Bot) publish(tick, text string, logger *log.Entry) {
	if b.publisher == nil {
		return
	}
	payload, err := b.caster.To(model.LiveLeaderboard{
		Tick:      tick,
		UpdatedAt: b.updatedAt,
		Session:   b.session,
		Meeting:   b.meeting,
		Positions: b.state.Current,
		Overtakes: b.state.Overtakes,
		Text:      text,
	})
	if err != nil {
		logger.WithError(err).Error("encoding live leaderboard")
		return
	}
	b.publisher.Publish(pubsub.TopicLeaderboard, payload)
}

// OvertakesText lists the overtakes of the current session.
func (b *Bot) OvertakesText() string {
	overtakes := b.state.Overtakes
	if len(overtakes) == 0 {
		return noOvertakesText
	}
	if len(overtakes) > maxListedOvertakes {
		overtakes = overtakes[len(overtakes)-maxListedOvertakes:]
	}
	lines := make([]string, 0, len(overtakes))
	for _, o := range overtakes {
		lines = append(lines, render.FormatOvertake(o, b.loc))
	}
	return strings.Join(lines, "\n")
}

// RenderOnce refreshes the session, polls positions once and returns the
// rendered leaderboard without touching the chat.
func (b *Bot) RenderOnce(ctx context.Context) (string, error) {
	if err := b.RefreshSession(ctx); err != nil {
		return "", err
	}
	if err := b.poll(ctx, log.WithField("tick", uuid.NewString())); err != nil {
		return "", err
	}
	return b.text()
}

// Run serves ticks and chat updates until ctx is canceled. Every event is
// handled to completion before the next one is read.
func (b *Bot) Run(ctx context.Context, positionsC, messageC <-chan time.Time, updates <-chan tgbotapi.Update, accepter apps.Accepter) error {
	for {
		select {
		case <-ctx.Done():
			log.Info("live bot loop stopped")
			return nil
		case <-positionsC:
			b.observe(TickPositions, b.UpdatePositions(ctx))
		case <-messageC:
			if err := b.RefreshSession(ctx); err != nil {
				b.observe(TickMessage, err)
				continue
			}
			b.observe(TickMessage, b.NewMessage(ctx))
		case update, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			b.observe(TickCommand, b.handleUpdate(ctx, update, accepter))
		}
	}
}

func (b *Bot) observe(kind string, err error) {
	telemetry.Tick(kind)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	errorKind := model.Kind(err)
	telemetry.TickFailed(kind, errorKind)
	log.WithError(err).WithFields(log.Fields{"kind": kind, "error_kind": errorKind}).Warn("tick skipped")
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update, accepter apps.Accepter) error {
	message := update.Message
	if message == nil || message.Chat == nil || accepter == nil {
		return nil
	}
	if message.Chat.ID != b.chatID {
		log.WithField("chat", message.Chat.ID).Debug("ignoring message from another chat")
		return nil
	}

	var (
		accepted bool
		handler  func(ctx context.Context, chatId int64) error
	)
	if message.IsCommand() {
		accepted, handler = accepter.AcceptCommand("/" + message.Command())
	} else {
		accepted, handler = accepter.AcceptButton(message.Text)
	}
	if !accepted {
		return nil
	}
	return handler(ctx, message.Chat.ID)
}

// Close logs the bot out of the chat service.
func (b *Bot) Close(ctx context.Context) error {
	return b.messenger.Close(ctx)
}
