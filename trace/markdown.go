package trace

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders records as a GitHub-flavoured markdown table.
func Markdown(records []Record) string {
	var b strings.Builder
	b.WriteString("| Seq | Depth | Machine | Types | Keys |\n")
	b.WriteString("| ---: | ---: | --- | --- | --- |\n")
	for _, r := range records {
		row := textRow(r)
		fmt.Fprintf(&b, "| %d | %d | %s | %s | %s |\n",
			r.Seq, r.Depth, escapeCell(row[2]), escapeCell(row[3]), escapeCell(row[4]))
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "*", `\*`)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// WriteHTML renders records as an HTML table.
func WriteHTML(w io.Writer, records []Record) error {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(records)), &buf); err != nil {
		return fmt.Errorf("trace: render html: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Highlight writes source with ANSI colours for a 256-colour terminal.
// lexer names a chroma lexer such as "markdown" or "yaml"; an empty style
// selects "monokai".
func Highlight(w io.Writer, source, lexer, style string) error {
	if style == "" {
		style = "monokai"
	}
	if err := quick.Highlight(w, source, lexer, "terminal256", style); err != nil {
		return fmt.Errorf("trace: highlight %s: %w", lexer, err)
	}
	return nil
}
