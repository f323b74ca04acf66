package browse

import (
	"strings"
	"testing"
)

func TestHighlightRunesMarksMatches(t *testing.T) {
	runes := highlightRunes("Big doc", "DOC")
	if len(runes) != 7 {
		t.Fatalf("expected 7 runes, got %d", len(runes))
	}
	if runes[0].s != "B" {
		t.Fatalf("expected unmatched rune to stay plain, got %q", runes[0].s)
	}
	if runes[4].s != matchStyle.Render("d") {
		t.Fatalf("expected match style for matched rune")
	}
	if !runes[3].isSpace {
		t.Fatalf("expected space flag")
	}
}

func TestHighlightRunesEmptyQuery(t *testing.T) {
	for _, r := range highlightRunes("abc", "  ") {
		if r.s != strings.TrimSpace(r.s) || len(r.s) != 1 {
			t.Fatalf("expected plain runes, got %q", r.s)
		}
	}
}

func TestWrapStyledRunesBreaksAtSpace(t *testing.T) {
	got := wrapStyledRunes(highlightRunes("restart the server", ""), 12)
	if got != "restart the\nserver" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesBreaksLongWord(t *testing.T) {
	got := wrapStyledRunes(highlightRunes("abcdefgh", ""), 3)
	if got != "abc\ndef\ngh" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesWideRunes(t *testing.T) {
	got := wrapStyledRunes(highlightRunes("日本語", ""), 4)
	if got != "日本\n語" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesNoWidth(t *testing.T) {
	if got := wrapStyledRunes(highlightRunes("a b", ""), 0); got != "a b" {
		t.Fatalf("unexpected output: %q", got)
	}
}
