package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/plminer/internal/model"
)

func TestRenderTopPatterns(t *testing.T) {
	var buf bytes.Buffer
	records := []model.PatternRecord{
		{Pattern: "test sentence", Frequency: 3, Length: 2},
		{Pattern: "a test sentence", Frequency: 2, Length: 3},
	}
	if err := RenderTopPatterns(&buf, records, Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	if lines[1] != "   1     3  2  test sentence" {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
}

func TestRenderTopPatternsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTopPatterns(&buf, nil, Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "0 patterns\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderRuns(t *testing.T) {
	var buf bytes.Buffer
	end := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	runs := []model.Run{{
		ID:        "0123456789abcdef",
		StartedAt: end.Add(-1500 * time.Millisecond),
		EndedAt:   end,
		InputDir:  "docs",
		Scope:     "sentence",
		Documents: 4,
		Patterns:  17,
	}}
	if err := RenderRuns(&buf, runs, Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"01234567", "1.5s", "sentence", "17", "docs"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	points := []model.PatternPoint{
		{RunID: "run-a", EndedAt: time.Now(), Frequency: 2, Rank: 3},
		{RunID: "run-b", EndedAt: time.Now(), Frequency: 6, Rank: 1},
	}
	if err := RenderHistory(&buf, "test sentence", points, Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "test sentence   @\n") {
		t.Fatalf("unexpected history header: %q", buf.String())
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	records := []model.PatternRecord{{Length: 2}, {Length: 3}, {Length: 2}}
	if err := RenderSummary(&buf, records, 5); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Documents: 5\nPatterns: 3\n2-gram: 2, 3-gram: 1\n"
	if buf.String() != want {
		t.Fatalf("unexpected summary: %q", buf.String())
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("flat sparkline = %q", got)
	}
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("ramp sparkline = %q", got)
	}
}
