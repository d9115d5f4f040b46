package trace

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

var textHeader = []string{"SEQ", "DEPTH", "MACHINE", "TYPES", "KEYS"}

// WriteText renders records as an aligned table. Lines wider than width
// are truncated; width <= 0 disables truncation.
func WriteText(w io.Writer, records []Record, width int) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, textHeader)
	for _, r := range records {
		rows = append(rows, textRow(r))
	}

	widths := make([]int, len(textHeader))
	for _, row := range rows {
		for i, cell := range row[:len(row)-1] {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	bw := bufio.NewWriter(w)
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				line.WriteString(cell)
				break
			}
			line.WriteString(runewidth.FillRight(cell, widths[i]))
			line.WriteString("  ")
		}
		if _, err := bw.WriteString(truncate(line.String(), width) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func textRow(r Record) []string {
	machine := r.Machine
	if machine == "" {
		machine = r.MachineID
	}
	return []string{
		strconv.FormatUint(r.Seq, 10),
		strings.Repeat(">", max(r.Depth-1, 0)) + strconv.Itoa(r.Depth),
		machine,
		joinOr(r.Types, "-"),
		keysCell(r),
	}
}

func keysCell(r Record) string {
	if r.All {
		return "*"
	}
	return joinOr(r.Keys, "-")
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ",")
}

func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
