package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/plminer/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "plminer.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}

func TestInsertAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	firstID, err := s.InsertRun(ctx, model.Run{
		StartedAt: base, EndedAt: base.Add(time.Second), InputDir: "docs", Scope: "sentence", Documents: 2,
	}, []model.PatternRecord{
		{Pattern: "test sentence", Frequency: 3, Length: 2},
		{Pattern: "a test", Frequency: 2, Length: 2},
	})
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if firstID == "" {
		t.Fatalf("expected generated run id")
	}

	secondID, err := s.InsertRun(ctx, model.Run{
		ID: "fixed", StartedAt: base.Add(time.Hour), EndedAt: base.Add(time.Hour + time.Second), InputDir: "docs", Scope: "line",
	}, []model.PatternRecord{{Pattern: "test sentence", Frequency: 5, Length: 2}})
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if secondID != "fixed" {
		t.Fatalf("expected fixed id, got %s", secondID)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "fixed" || runs[1].ID != firstID {
		t.Fatalf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}
	if runs[1].Patterns != 2 || runs[1].Documents != 2 || !runs[1].StartedAt.Equal(base) {
		t.Fatalf("unexpected run row: %+v", runs[1])
	}

	latest, err := s.LatestRunID(ctx)
	if err != nil || latest != "fixed" {
		t.Fatalf("latest run = %q, %v", latest, err)
	}

	top, err := s.TopPatterns(ctx, firstID, 1)
	if err != nil {
		t.Fatalf("top patterns: %v", err)
	}
	if len(top) != 1 || top[0].Pattern != "test sentence" || top[0].Frequency != 3 {
		t.Fatalf("unexpected top patterns: %+v", top)
	}

	history, err := s.PatternHistory(ctx, "test sentence")
	if err != nil {
		t.Fatalf("pattern history: %v", err)
	}
	if len(history) != 2 || history[0].Frequency != 3 || history[1].Frequency != 5 || history[1].Rank != 1 {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestLatestRunIDEmpty(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LatestRunID(context.Background()); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns, got %v", err)
	}
}

func TestInsertRunDuplicateRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	run := model.Run{ID: "dup", StartedAt: now, EndedAt: now}
	if _, err := s.InsertRun(ctx, run, nil); err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if _, err := s.InsertRun(ctx, run, []model.PatternRecord{{Pattern: "x y", Frequency: 2, Length: 2}}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	top, err := s.TopPatterns(ctx, "dup", 0)
	if err != nil {
		t.Fatalf("top patterns: %v", err)
	}
	if len(top) != 0 {
		t.Fatalf("expected no patterns after rollback, got %+v", top)
	}
}
