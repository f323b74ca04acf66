package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/plminer/internal/model"
)

const (
	sparkChars       = " .:-=+*#%@"
	minPatternColumn = 20
	timeLayout       = "2006-01-02 15:04"
)

// Options controls report rendering.
type Options struct {
	// Width is the total line width. Zero disables truncation.
	Width    int
	UseColor bool
}

func writeLines(w io.Writer, lines []string, useColor bool) error {
	for i, line := range lines {
		if i == 0 {
			line = styled(headerStyle, line, useColor)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTopPatterns prints ranked records as a table.
func RenderTopPatterns(w io.Writer, records []model.PatternRecord, opts Options) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "0 patterns")
		return err
	}
	headers := []string{"Rank", "Freq", "N", "Pattern"}
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", r.Frequency),
			fmt.Sprintf("%d", r.Length),
			r.Pattern,
		})
	}
	maxCell := 0
	if opts.Width > 0 {
		// Numeric columns plus separators take roughly 20 cells.
		maxCell = opts.Width - 20
		if maxCell < minPatternColumn {
			maxCell = minPatternColumn
		}
	}
	lines := formatTable(headers, rows, map[int]bool{0: true, 1: true, 2: true}, maxCell)
	return writeLines(w, lines, opts.UseColor)
}

// RenderRuns prints stored runs, newest first.
func RenderRuns(w io.Writer, runs []model.Run, opts Options) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	headers := []string{"Run", "Finished", "Duration", "Scope", "Docs", "Patterns", "Input"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.EndedAt.Local().Format(timeLayout),
			run.EndedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
			run.Scope,
			fmt.Sprintf("%d", run.Documents),
			fmt.Sprintf("%d", run.Patterns),
			run.InputDir,
		})
	}
	lines := formatTable(headers, rows, map[int]bool{2: true, 4: true, 5: true}, 0)
	return writeLines(w, lines, opts.UseColor)
}

// RenderHistory prints a pattern's frequency across runs with a sparkline.
func RenderHistory(w io.Writer, pattern string, points []model.PatternPoint, opts Options) error {
	if len(points) == 0 {
		_, err := fmt.Fprintf(w, "Pattern %q not found in any run.\n", pattern)
		return err
	}
	values := make([]float64, len(points))
	for i, pt := range points {
		values[i] = float64(pt.Frequency)
	}
	if _, err := fmt.Fprintf(w, "%s  %s\n", pattern, styled(mutedStyle, Sparkline(values), opts.UseColor)); err != nil {
		return err
	}
	headers := []string{"Run", "Finished", "Rank", "Freq"}
	rows := make([][]string, 0, len(points))
	for _, pt := range points {
		rows = append(rows, []string{
			shortID(pt.RunID),
			pt.EndedAt.Local().Format(timeLayout),
			fmt.Sprintf("%d", pt.Rank),
			fmt.Sprintf("%d", pt.Frequency),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{2: true, 3: true}, 0), opts.UseColor)
}

// LengthDistribution counts records per n-gram length.
func LengthDistribution(records []model.PatternRecord) map[int]int {
	dist := make(map[int]int)
	for _, r := range records {
		dist[r.Length]++
	}
	return dist
}

// RenderSummary prints totals and the n-gram length distribution.
func RenderSummary(w io.Writer, records []model.PatternRecord, documents int) error {
	if _, err := fmt.Fprintf(w, "Documents: %d\nPatterns: %d\n", documents, len(records)); err != nil {
		return err
	}
	dist := LengthDistribution(records)
	lengths := make([]int, 0, len(dist))
	for n := range dist {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)
	parts := make([]string, 0, len(lengths))
	for _, n := range lengths {
		parts = append(parts, fmt.Sprintf("%d-gram: %d", n, dist[n]))
	}
	if len(parts) > 0 {
		if _, err := fmt.Fprintln(w, strings.Join(parts, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
