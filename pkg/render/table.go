package render

import (
	"fmt"
	"io"
	"strings"
)

// tableStyle captures the differences between the tabular dialects:
// borders, junction characters, and which horizontal rules are drawn.
type tableStyle struct {
	bordered     bool
	junction     string
	ruleAfterHdr bool
	ruleEveryRow bool
}

var (
	plainStyle    = tableStyle{}
	markdownStyle = tableStyle{bordered: true, junction: "|", ruleAfterHdr: true}
	rstStyle      = tableStyle{bordered: true, junction: "+", ruleAfterHdr: true, ruleEveryRow: true}
)

// renderTable writes rows (header first) as an aligned text table.
func renderTable(w io.Writer, rows [][]string, style tableStyle) error {
	if len(rows) == 0 {
		return nil
	}
	widths := columnWidths(rows)

	writeRule := func() error {
		if style.junction == "" {
			return nil
		}
		var b strings.Builder
		b.WriteString(style.junction)
		for _, width := range widths {
			b.WriteString(strings.Repeat("-", width+2))
			b.WriteString(style.junction)
		}
		_, err := fmt.Fprintln(w, b.String())
		return err
	}
	writeRow := func(row []string) error {
		var b strings.Builder
		if style.bordered {
			b.WriteString("| ")
		}
		for col, cell := range row {
			b.WriteString(pad(cell, widths[col]))
			if col < len(row)-1 {
				if style.bordered {
					b.WriteString(" | ")
				} else {
					b.WriteString("  ")
				}
			}
		}
		if style.bordered {
			b.WriteString(" |")
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
		return err
	}

	if style.ruleEveryRow {
		if err := writeRule(); err != nil {
			return err
		}
	}
	for i, row := range rows {
		if err := writeRow(row); err != nil {
			return err
		}
		if (i == 0 && style.ruleAfterHdr) || (i > 0 && style.ruleEveryRow) {
			if err := writeRule(); err != nil {
				return err
			}
		}
	}
	return nil
}

func columnWidths(rows [][]string) []int {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for col, cell := range row {
			if col < len(widths) && len(cell) > widths[col] {
				widths[col] = len(cell)
			}
		}
	}
	return widths
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
