package store

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestRenderTelegramList(t *testing.T) {
	fixClock(t, time.Date(2014, 11, 2, 9, 0, 0, 0, time.UTC))
	recs := []Record{
		{ID: 1, Status: StatusUndone, Date: "2014-11-01", Content: "buy milk"},
		{ID: 2, Status: StatusDone, Date: "2013-05-06", Content: "old thing"},
		{ID: 3, Status: StatusPostponed, Date: "someday", Content: "  "},
	}
	got := RenderTelegramList("Notes", recs)
	want := "🗒️ Notes (3)\n\n" +
		"• 📝 buy milk (#1, Nov 01)\n" +
		"• ✅ old thing (#2, May 06 2013)\n" +
		"• ⏸️ (empty) (#3, someday)"
	if got != want {
		t.Fatalf("RenderTelegramList() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderTelegramEmpty(t *testing.T) {
	if got := RenderTelegramList("Search", nil); got != "🗒️ Search\n\nNo notes." {
		t.Fatalf("RenderTelegramList(nil) = %q", got)
	}
	if got := RenderTelegramGroups(nil); got != "📅 Notes by date\n\nNo notes." {
		t.Fatalf("RenderTelegramGroups(nil) = %q", got)
	}
}

func TestRenderTelegramGroups(t *testing.T) {
	groups := []DateGroup{
		{Date: "2014-11-01", Records: []Record{{ID: 2, Status: StatusUndone, Date: "2014-11-01", Content: "a"}}},
		{Date: "2014-11-02", Records: []Record{{ID: 1, Status: StatusDone, Date: "2014-11-02", Content: "b"}}},
	}
	got := RenderTelegramGroups(groups)
	for _, want := range []string{"📆 2014-11-01 (Sat)\n• 📝 a (#2)\n", "📆 2014-11-02 (Sun)\n• ✅ b (#1)"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderTelegramGroups() missing %q in:\n%s", want, got)
		}
	}
}

func TestTrimTelegramOutput(t *testing.T) {
	long := strings.Repeat("x", telegramMaxChars+50)
	got := trimTelegramOutput(long)
	if n := utf8.RuneCountInString(got); n != telegramMaxChars {
		t.Fatalf("trimmed length = %d, want %d", n, telegramMaxChars)
	}
	if !strings.HasSuffix(got, "(truncated)") {
		t.Fatalf("trimmed output should end with the truncation marker")
	}
	if got := trimTelegramOutput("short\n\n"); got != "short" {
		t.Fatalf("trimTelegramOutput(short) = %q", got)
	}
}
