package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"xlpress/internal/processor"
)

func TestModelCountsUpdates(t *testing.T) {
	updates := make(chan processor.ProgressUpdate)
	var m tea.Model = NewModel("xlpress", updates)

	for _, u := range []processor.ProgressUpdate{
		{TotalDelta: 3},
		{WrittenDelta: 1, BytesSavedDelta: 100, Current: "a.png"},
		{FailedDelta: 1, Current: "b.png"},
	} {
		m, _ = m.Update(updateMsg(u))
	}

	view := m.View()
	for _, want := range []string{"xlpress", "Image 2 of 3", "written:1 skipped:0 failed:1", "Bytes saved: 100 B", "Last: b.png"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	m, cmd := m.Update(doneMsg{})
	if cmd == nil || m.View() != "" {
		t.Fatal("expected quit with an empty view")
	}
}

func TestRenderBarBounds(t *testing.T) {
	if got := renderBar(4, 2); got != "[====]" {
		t.Fatalf("unexpected bar %q", got)
	}
	if got := renderBar(4, -1); got != "[    ]" {
		t.Fatalf("unexpected bar %q", got)
	}
}

func TestRenderSummaryAlignsRows(t *testing.T) {
	out := RenderSummary([]SummaryRow{
		{Label: "Written", Value: "3"},
		{Label: "Skipped (kept original)", Value: "12"},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Skipped (kept original)") || !strings.Contains(out, "12") {
		t.Fatalf("missing row content:\n%s", out)
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KiB",
		1536:    "1.5 KiB",
		5 << 20: "5.0 MiB",
		-2048:   "-2.0 KiB",
	}
	for in, want := range cases {
		if got := HumanBytes(in); got != want {
			t.Fatalf("HumanBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
