package helper

import (
	"strings"
	"time"

	"github.com/hako/durafmt"
)

// Clock formats t as HH:MM:SS in loc (UTC when loc is nil).
func Clock(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("15:04:05")
}

// TimeToEnd renders the remaining duration with minute precision, e.g. "1 hour 5 minutes".
func TimeToEnd(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Minute {
		return "less than a minute"
	}
	return durafmt.Parse(d.Truncate(time.Minute)).LimitFirstN(2).String()
}

// GetDriverCodeName builds a three letter code from a driver name when the
// upstream short code is missing: first letter of the name plus the first two
// letters of the surname.
func GetDriverCodeName(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	code := string([]rune(words[0])[0])
	if len(words) > 1 {
		surname := []rune(words[len(words)-1])
		if len(surname) > 2 {
			code += string(surname[:2])
		} else {
			code += string(surname)
		}
	} else {
		first := []rune(words[0])
		if len(first) > 2 {
			code += string(first[1:3])
		} else {
			code += string(first[1:])
		}
	}
	return strings.ToUpper(code)
}

var codeBlockEscaper = strings.NewReplacer("\\", "\\\\", "`", "\\`")

// EscapeCodeBlock escapes text placed inside a MarkdownV2 pre block.
func EscapeCodeBlock(text string) string {
	return codeBlockEscaper.Replace(text)
}
