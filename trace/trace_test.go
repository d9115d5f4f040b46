package trace

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/furry-state/state"
)

type panel struct {
	machine *state.Machine
	title   *state.Stateful[string]
	width   *state.Stateful[int]
}

func (p *panel) StateMachine() *state.Machine {
	return p.machine
}

func (p *panel) Update(v *state.Validator) {}

func newPanel(reg *state.Registry, observer state.Observer) *panel {
	content := reg.Next("content")
	layout := reg.Next("layout")
	p := &panel{}
	p.machine = state.NewMachineWithConfig(p, state.MachineConfig{Name: "panel", Observer: observer})
	p.title = state.NewStateful(p, state.NewKey("title"), "", content)
	p.width = state.NewStateful(p, state.NewKey("width"), 0, layout)
	return p
}

func recordedPanel(t *testing.T) (*Recorder, *state.Registry) {
	t.Helper()
	reg := state.NewRegistry()
	rec := NewRecorder(Config{Registry: reg})
	p := newPanel(reg, rec)
	p.machine.Start()
	p.machine.Transaction(func() {
		p.title.Set("Inbox")
		p.width.Set(40)
	})
	return rec, reg
}

func TestRecorder_RecordsCycles(t *testing.T) {
	rec, reg := recordedPanel(t)
	cycles := rec.Cycles()
	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, got %d", len(cycles))
	}
	if !cycles[0].All {
		t.Fatalf("expected first cycle to be a full refresh")
	}
	records := Records(cycles, reg)
	if got := strings.Join(records[1].Keys, ","); got != "title,width" {
		t.Fatalf("expected title,width, got %q", got)
	}
	if got := strings.Join(records[1].Types, ","); got != "content,layout" {
		t.Fatalf("expected content,layout, got %q", got)
	}
}

func TestRecorder_Limit(t *testing.T) {
	rec := NewRecorder(Config{Limit: 2})
	for i := 1; i <= 5; i++ {
		rec.ObserveCycle(state.Cycle{Seq: uint64(i)})
	}
	cycles := rec.Cycles()
	if len(cycles) != 2 || cycles[0].Seq != 4 || cycles[1].Seq != 5 {
		t.Fatalf("expected seq 4 and 5, got %+v", cycles)
	}
	if last := rec.Last(1); len(last) != 1 || last[0].Seq != 5 {
		t.Fatalf("expected last seq 5, got %+v", last)
	}
	rec.Reset()
	if rec.Len() != 0 {
		t.Fatalf("expected empty recorder after reset")
	}
}

func TestMulti(t *testing.T) {
	a := NewRecorder(Config{})
	b := NewRecorder(Config{})
	Multi(a, nil, b).ObserveCycle(state.Cycle{Seq: 1})
	if a.Len() != 1 || b.Len() != 1 {
		t.Fatalf("expected both recorders to see the cycle")
	}
}

func TestWriteText(t *testing.T) {
	rec, reg := recordedPanel(t)
	var buf bytes.Buffer
	if err := WriteText(&buf, Records(rec.Cycles(), reg), 0); err != nil {
		t.Fatalf("write text: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "SEQ") {
		t.Fatalf("expected header, got %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "*") {
		t.Fatalf("expected full refresh marker, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "content,layout") || !strings.HasSuffix(lines[2], "title,width") {
		t.Fatalf("expected types and keys, got %q", lines[2])
	}
}

func TestWriteText_Truncates(t *testing.T) {
	records := []Record{{Machine: "界面", Seq: 1, Depth: 1, Keys: []string{strings.Repeat("k", 80)}}}
	var buf bytes.Buffer
	if err := WriteText(&buf, records, 30); err != nil {
		t.Fatalf("write text: %v", err)
	}
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if len([]rune(line)) > 30 {
			t.Fatalf("expected line within 30 columns, got %q", line)
		}
	}
	if !strings.Contains(buf.String(), "界面") {
		t.Fatalf("expected wide machine name preserved")
	}
}

func TestMarkdownAndHTML(t *testing.T) {
	rec, reg := recordedPanel(t)
	records := Records(rec.Cycles(), reg)

	md := Markdown(records)
	if !strings.Contains(md, "| 2 | 1 | panel | content,layout | title,width |") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}

	var buf bytes.Buffer
	if err := WriteHTML(&buf, records); err != nil {
		t.Fatalf("write html: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "<table>") || !strings.Contains(html, "<td>title,width</td>") {
		t.Fatalf("unexpected html:\n%s", html)
	}
}

func TestHighlight(t *testing.T) {
	var buf bytes.Buffer
	if err := Highlight(&buf, "keys: [title]\n", "yaml", ""); err != nil {
		t.Fatalf("highlight: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "title") {
		t.Fatalf("expected source text preserved")
	}
}

func TestWriteYAML(t *testing.T) {
	rec, reg := recordedPanel(t)
	var buf bytes.Buffer
	if err := WriteYAML(&buf, Records(rec.Cycles(), reg)); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	var decoded []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if len(decoded) != 2 || decoded[1]["machine"] != "panel" {
		t.Fatalf("unexpected yaml:\n%s", buf.String())
	}
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	reg := state.NewRegistry()
	p := newPanel(reg, LogObserver(logger, reg))
	p.machine.Start()
	p.title.Set("Inbox")

	out := buf.String()
	if !strings.Contains(out, "[state] panel cycle=1 depth=1 types=all keys=*") {
		t.Fatalf("expected full refresh line, got %q", out)
	}
	if !strings.Contains(out, "cycle=2 depth=1 types=content keys=title") {
		t.Fatalf("expected title line, got %q", out)
	}
}
