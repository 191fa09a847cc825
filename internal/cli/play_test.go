package cli

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/dotring/pkg/ring"
	"github.com/matzehuels/dotring/pkg/widget"
)

func newTestPlay(t *testing.T, opts widget.Options, cols, rows int) playModel {
	t.Helper()
	m, err := newPlayModel(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: cols, Height: rows})
	return next.(playModel)
}

func send(m playModel, msgs ...tea.Msg) playModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(playModel)
	}
	return m
}

func mouse(action tea.MouseAction, col, row int) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Action: action, Button: tea.MouseButtonLeft}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPlayResize(t *testing.T) {
	m := newTestPlay(t, widget.Options{}, 100, 22)
	cols, rows := m.grid.Size()
	if cols != 100 || rows != 20 {
		t.Errorf("grid = %dx%d, want 100x20", cols, rows)
	}
}

func TestPlayClickAddsDots(t *testing.T) {
	m := newTestPlay(t, widget.Options{}, 100, 22)

	// Cell (65, 9) covers the rightmost point of the ring.
	m = send(m,
		mouse(tea.MouseActionPress, 65, 9),
		mouse(tea.MouseActionRelease, 65, 9),
	)
	if m.ctrl.Len() != 1 {
		t.Fatalf("Len() = %d after click, want 1", m.ctrl.Len())
	}

	// A release without a press is not a click.
	m = send(m, mouse(tea.MouseActionRelease, 34, 9))
	if m.ctrl.Len() != 1 {
		t.Errorf("Len() = %d after stray release, want 1", m.ctrl.Len())
	}

	// Cell (34, 9) covers the leftmost point.
	m = send(m,
		mouse(tea.MouseActionPress, 34, 9),
		mouse(tea.MouseActionRelease, 34, 9),
	)
	if got := fmtDegrees(m.ctrl); got != "0 180" {
		t.Errorf("degrees = %s, want 0 180", got)
	}
}

func TestPlayHoverAndDrop(t *testing.T) {
	m := newTestPlay(t, widget.Options{}, 100, 22)

	m = send(m, keyPress("d"))
	if m.last == "" || m.ctrl.Len() != 0 {
		t.Errorf("drop without hover: last=%q len=%d", m.last, m.ctrl.Len())
	}

	m = send(m, tea.MouseMsg{X: 34, Y: 9, Action: tea.MouseActionMotion})
	if _, ok := m.ctrl.Hover(); !ok {
		t.Fatal("motion over the ring should preview a slot")
	}
	if tip := m.ctrl.Tooltip(); tip.Text != "Position: 0°" {
		t.Errorf("tooltip = %q", tip.Text)
	}

	m = send(m, keyPress("d"))
	if m.ctrl.Len() != 1 {
		t.Fatalf("Len() = %d after drop, want 1", m.ctrl.Len())
	}
	if got := m.ctrl.Dots()[0].Color; got != widget.DefaultPalette[0] {
		t.Errorf("dropped color = %s, want %s", got, widget.DefaultPalette[0])
	}
}

func TestPlayToggleDragIntoZone(t *testing.T) {
	m := newTestPlay(t, widget.Options{Variant: widget.VariantToggle}, 160, 42)
	m.ctrl.Add("")

	// The dot at 0° sits in cell (94, 20); cell (100, 4) is in the removal zone.
	m = send(m, mouse(tea.MouseActionPress, 94, 20))
	if _, _, ok := m.ctrl.DragPosition(); !ok {
		t.Fatal("press on the dot should start a drag")
	}
	m = send(m,
		tea.MouseMsg{X: 100, Y: 4, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
		frameMsg(time.Now()),
	)
	if _, p, _ := m.ctrl.DragPosition(); p.Y > 100 {
		t.Errorf("frame did not move the dragged dot: %+v", p)
	}
	m = send(m, mouse(tea.MouseActionRelease, 100, 4))
	if m.ctrl.Len() != 0 {
		t.Errorf("Len() = %d after drop in zone, want 0", m.ctrl.Len())
	}
}

func TestPlayKeys(t *testing.T) {
	m := newTestPlay(t, widget.Options{}, 100, 22)

	m = send(m, keyPress("a"), keyPress("a"), keyPress("a"))
	if m.ctrl.Len() != 3 {
		t.Fatalf("Len() = %d after three adds, want 3", m.ctrl.Len())
	}

	m = send(m, keyPress("m"))
	if m.ctrl.Action() != widget.ActionRemove {
		t.Errorf("Action() = %s after m, want remove", m.ctrl.Action())
	}
	m = send(m, keyPress("m"))
	if m.ctrl.Action() != widget.ActionAdd {
		t.Errorf("Action() = %s after second m, want add", m.ctrl.Action())
	}

	m = send(m, keyPress("x"))
	if m.last != "No dot selected" || m.ctrl.Len() != 3 {
		t.Errorf("x without selection: last=%q len=%d", m.last, m.ctrl.Len())
	}

	if err := m.ctrl.Select(1); err != nil {
		t.Fatal(err)
	}
	m = send(m, keyPress("x"))
	if m.ctrl.Len() != 2 {
		t.Errorf("Len() = %d after removing selection, want 2", m.ctrl.Len())
	}

	m = send(m, keyPress("c"))
	if m.ctrl.Len() != 0 {
		t.Errorf("Len() = %d after clear, want 0", m.ctrl.Len())
	}

	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPlayFrameTicks(t *testing.T) {
	m := newTestPlay(t, widget.Options{}, 100, 22)
	if m.Init() == nil {
		t.Error("Init() should start the frame ticker")
	}
	if _, cmd := m.Update(frameMsg(time.Now())); cmd == nil {
		t.Error("a frame should schedule the next one")
	}
}

func TestPlayView(t *testing.T) {
	m := newTestPlay(t, widget.Options{Variant: widget.VariantToggle}, 100, 30)
	m.ctrl.Add("")
	if err := m.ctrl.Select(0); err != nil {
		t.Fatal(err)
	}

	view := m.View()
	for _, want := range []string{"toggle", "Dots on circle: 1", "Remove Dot #1", "quit", "Removal Zone"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	_, rows := m.grid.Size()
	if got := strings.Count(view, "\n"); got != rows+1 {
		t.Errorf("view has %d newlines, want %d", got, rows+1)
	}
}

func fmtDegrees(c *widget.Controller) string {
	var parts []string
	for _, d := range c.Dots() {
		parts = append(parts, strconv.Itoa(ring.Degrees(d.Angle)))
	}
	return strings.Join(parts, " ")
}
