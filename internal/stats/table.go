// Package stats renders pattern and run reports for the terminal.
package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool, maxCellWidth int) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = truncateCell(row[i], maxCellWidth)
			}
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols, 0))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols, maxCellWidth))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool, maxCellWidth int) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = truncateCell(row[i], maxCellWidth)
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func truncateCell(value string, maxWidth int) string {
	if maxWidth <= 0 {
		return value
	}
	return runewidth.Truncate(value, maxWidth, ellipsis)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
