package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"f1livebot/pkg/helper"
	"f1livebot/pkg/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	tablePosition = "POS"
	tableDriver   = "PIL"
	tableNumber   = "NUM"
	tableTeam     = "TEAM"
)

// TableRenderer renders the leaderboard as a monospace table inside a MarkdownV2 code block.
type TableRenderer struct {
	Location     *time.Location
	MaxOvertakes int
}

func (r TableRenderer) ParseMode() string {
	return tgbotapi.ModeMarkdownV2
}

func (r TableRenderer) Render(lb Leaderboard) (string, error) {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{tablePosition, tableDriver, tableNumber, tableTeam})

	for _, pos := range lb.Positions.Sorted() {
		if pos.Driver == nil {
			return "", model.NewLookupError(pos.DriverNumber, "driver %d not found for position %d", pos.DriverNumber, pos.Position)
		}
		code := pos.Driver.ShortCode
		if code == "" {
			code = helper.GetDriverCodeName(pos.Driver.FullName())
		}
		marker := strings.TrimSpace(positionMarker(pos.Position, lb.Session.Ended(lb.Now)))
		t.AppendRow(table.Row{marker, code, pos.Driver.Number, pos.Driver.TeamName})
	}
	t.Render()

	text := header(lb, r.Location) + "\n" + b.String() + overtakesSection(lb.Overtakes, r.MaxOvertakes, r.Location)
	return codeBlock(text), nil
}

// Placeholder wraps text in the code block the table is sent in.
func (r TableRenderer) Placeholder(text string) string {
	return codeBlock(text)
}

func codeBlock(text string) string {
	return fmt.Sprintf("```\n%s```", helper.EscapeCodeBlock(strings.TrimRight(text, "\n")+"\n"))
}
