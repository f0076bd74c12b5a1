// Package render turns the current session, meeting, position snapshot and
// overtakes into the text mirrored into the chat message. Renderers are pure:
// the same Leaderboard always produces the same text.
package render

import (
	"fmt"
	"strings"
	"time"

	"f1livebot/pkg/helper"
	"f1livebot/pkg/model"
)

const (
	StyleText  = "text"
	StyleTable = "table"

	symbolWinner  = "🏆 "
	symbolFirst   = "🥇 "
	symbolSecond  = "🥈 "
	symbolThird   = "🥉 "
	symbolClock   = "🕓"
	symbolSession = "🏎️"
	symbolEndsIn  = "⏳"
	symbolChart   = "📈"
	symbolSwap    = "🔁"

	DefaultMaxOvertakes = 20
)

type Leaderboard struct {
	Now       time.Time
	UpdatedAt time.Time
	Session   model.Session
	Meeting   model.Meeting
	Positions model.Snapshot
	Overtakes []model.OvertakeEvent
}

type Renderer interface {
	Render(lb Leaderboard) (string, error)
	// ParseMode is the Telegram parse mode the rendered text needs ("" for plain text).
	ParseMode() string
	// Placeholder formats a plain status line for the renderer's parse mode.
	Placeholder(text string) string
}

// New returns the renderer for style, falling back to the text renderer.
func New(style string, loc *time.Location, maxOvertakes int) Renderer {
	if style == StyleTable {
		return TableRenderer{Location: loc, MaxOvertakes: maxOvertakes}
	}
	return TextRenderer{Location: loc, MaxOvertakes: maxOvertakes}
}

type TextRenderer struct {
	Location *time.Location
	// MaxOvertakes caps how many of the most recent overtakes are listed. Zero lists all of them.
	MaxOvertakes int
}

func (r TextRenderer) ParseMode() string {
	return ""
}

func (r TextRenderer) Placeholder(text string) string {
	return text
}

func (r TextRenderer) Render(lb Leaderboard) (string, error) {
	var b strings.Builder
	b.WriteString(header(lb, r.Location))
	b.WriteString(symbolChart + " Driver positions:\n")

	for _, pos := range lb.Positions.Sorted() {
		if pos.Driver == nil {
			return "", model.NewLookupError(pos.DriverNumber, "driver %d not found for position %d", pos.DriverNumber, pos.Position)
		}
		b.WriteString(positionMarker(pos.Position, lb.Session.Ended(lb.Now)))
		b.WriteString(fmt.Sprintf("%s (%d)\n", pos.Driver.FullName(), pos.Driver.Number))
	}

	b.WriteString(overtakesSection(lb.Overtakes, r.MaxOvertakes, r.Location))
	return b.String(), nil
}

func header(lb Leaderboard, loc *time.Location) string {
	var b strings.Builder
	updated := "-"
	if !lb.UpdatedAt.IsZero() {
		updated = helper.Clock(lb.UpdatedAt, loc)
	}
	b.WriteString(fmt.Sprintf("%s Last update: %s\n", symbolClock, updated))
	if lb.Meeting.OfficialName != "" {
		b.WriteString(lb.Meeting.OfficialName + "\n")
	}
	b.WriteString(fmt.Sprintf("%s Session: %s\n", symbolSession, lb.Session.Name))
	if !lb.Session.End.IsZero() && lb.Now.Before(lb.Session.End) {
		b.WriteString(fmt.Sprintf("%s Ends in: %s\n", symbolEndsIn, helper.TimeToEnd(lb.Session.End.Sub(lb.Now))))
	}
	return b.String()
}

func positionMarker(position int, sessionEnded bool) string {
	switch {
	case position == 1 && sessionEnded:
		return symbolWinner
	case position == 1:
		return symbolFirst
	case position == 2:
		return symbolSecond
	case position == 3:
		return symbolThird
	default:
		return fmt.Sprintf("%d. ", position)
	}
}

// overtakesSection lists the most recent max overtakes in recorded order.
func overtakesSection(overtakes []model.OvertakeEvent, max int, loc *time.Location) string {
	if len(overtakes) == 0 {
		return ""
	}
	shown := overtakes
	if max > 0 && len(shown) > max {
		shown = shown[len(shown)-max:]
	}

	var b strings.Builder
	b.WriteString("\n" + symbolSwap + " Overtakes:\n")
	if hidden := len(overtakes) - len(shown); hidden > 0 {
		b.WriteString(fmt.Sprintf("(%d earlier)\n", hidden))
	}
	for _, o := range shown {
		b.WriteString(FormatOvertake(o, loc) + "\n")
	}
	return b.String()
}

func FormatOvertake(o model.OvertakeEvent, loc *time.Location) string {
	return fmt.Sprintf("%s position %d: %s from %s", helper.Clock(o.Date, loc), o.Position, o.Overtaking.FullName(), o.Overtaken.FullName())
}
