package store

import (
	"fmt"
	"strings"
)

const telegramMaxChars = 3800

// IsTelegramFormat reports whether format names the chat rendering.
func IsTelegramFormat(format string) bool {
	return strings.ToLower(strings.TrimSpace(format)) == "telegram"
}

func trimTelegramOutput(s string) string {
	s = strings.TrimRight(s, "\n")
	runes := []rune(s)
	if len(runes) <= telegramMaxChars {
		return s
	}
	suffix := "\n… (truncated)"
	suffixRunes := []rune(suffix)
	limit := telegramMaxChars - len(suffixRunes)
	if limit < 1 {
		return string(runes[:telegramMaxChars])
	}
	return string(runes[:limit]) + suffix
}

func telegramStatusEmoji(s Status) string {
	switch s {
	case StatusDone:
		return "✅"
	case StatusUndone:
		return "📝"
	case StatusPostponed:
		return "⏸️"
	default:
		return "❔"
	}
}

func formatDateShort(date string) string {
	d, ok := parseDateLenient(date)
	if !ok || !d.Valid() {
		return strings.TrimSpace(date)
	}
	t := d.time()
	if d.Year == Today().Year {
		return t.Format("Jan 02")
	}
	return t.Format("Jan 02 2006")
}

func cleanNoteContent(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return "(empty)"
	}
	return content
}

func telegramNoteLine(r Record, includeDate bool) string {
	var b strings.Builder
	b.WriteString("• ")
	b.WriteString(telegramStatusEmoji(r.Status))
	b.WriteString(" ")
	b.WriteString(cleanNoteContent(r.Content))
	fmt.Fprintf(&b, " (#%d", r.ID)
	if includeDate {
		if d := formatDateShort(r.Date); d != "" {
			b.WriteString(", ")
			b.WriteString(d)
		}
	}
	b.WriteString(")\n")
	return b.String()
}

// RenderTelegramList renders records as a chat message, one bullet per note,
// cut to fit a single Telegram message.
func RenderTelegramList(title string, recs []Record) string {
	var b strings.Builder
	header := fmt.Sprintf("🗒️ %s", title)
	if len(recs) > 0 {
		header = fmt.Sprintf("🗒️ %s (%d)", title, len(recs))
	}
	b.WriteString(header)
	b.WriteString("\n\n")
	if len(recs) == 0 {
		b.WriteString("No notes.\n")
		return trimTelegramOutput(b.String())
	}
	for _, r := range recs {
		b.WriteString(telegramNoteLine(r, true))
	}
	return trimTelegramOutput(b.String())
}

// RenderTelegramGroups renders date groups as a chat message with one
// section per day.
func RenderTelegramGroups(groups []DateGroup) string {
	var b strings.Builder
	b.WriteString("📅 Notes by date\n\n")
	if len(groups) == 0 {
		b.WriteString("No notes.\n")
		return trimTelegramOutput(b.String())
	}
	for _, g := range groups {
		label := g.Date
		if d, ok := parseDateLenient(g.Date); ok && d.Valid() {
			label = fmt.Sprintf("%s (%s)", g.Date, d.time().Weekday().String()[:3])
		}
		fmt.Fprintf(&b, "📆 %s\n", label)
		for _, r := range g.Records {
			b.WriteString(telegramNoteLine(r, false))
		}
		b.WriteString("\n")
	}
	return trimTelegramOutput(b.String())
}
