package cli

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/render"
	"github.com/matzehuels/dotring/pkg/render/cells"
	"github.com/matzehuels/dotring/pkg/widget"
)

// frameInterval paces Frame calls at roughly 60 per second.
const frameInterval = 16 * time.Millisecond

// footerLines is the height of the status area below the ring.
const footerLines = 2

// playCommand runs a widget in the terminal.
func (c *CLI) playCommand() *cobra.Command {
	var variant string
	var dots int

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Drive a widget with the mouse in the terminal",
		Long: `Play draws the widget in the terminal and forwards mouse input to it.

Click the ring to add a dot, or to remove one in remove mode. In the toggle
variant click a dot to select it, click the ring elsewhere to clear the
selection, and drag a dot into the removal zone to delete it. Moving the
pointer over the ring previews the slot a dropped dot would take; press d to
drop one there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			v, err := parseVariant(variant)
			if err != nil {
				return err
			}
			if dots < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--dots must not be negative")
			}
			m, err := newPlayModel(cmd.Context(), widgetOptions(cfg.Widget, v))
			if err != nil {
				return err
			}
			for range dots {
				m.ctrl.Add("")
			}

			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
				tea.WithContext(cmd.Context()),
			)
			final, err := p.Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(playModel); ok {
				loggerFromContext(cmd.Context()).Infof("Left %d dots on the ring", fm.ctrl.Len())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "", "widget variant: managed, toggle (default from config)")
	cmd.Flags().IntVarP(&dots, "dots", "n", 0, "dots to start with")
	return cmd
}

// =============================================================================
// playModel
// =============================================================================

type frameMsg time.Time

// playKeys are the bindings shown in the help line.
type playKeys struct {
	Add    key.Binding
	Drop   key.Binding
	Mode   key.Binding
	Remove key.Binding
	Clear  key.Binding
	Quit   key.Binding
}

var defaultPlayKeys = playKeys{
	Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Drop:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "drop")),
	Mode:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
	Remove: key.NewBinding(key.WithKeys("x", "backspace", "delete"), key.WithHelp("x", "remove")),
	Clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k playKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Drop, k.Mode, k.Remove, k.Clear, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k playKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// playModel hosts a widget on a terminal cell grid. Mouse cells map to the
// center of the pixel area they cover.
type playModel struct {
	ctrl    *widget.Controller
	grid    *cells.Grid
	keys    playKeys
	help    help.Model
	pressed bool
	dropped int
	last    string
}

func newPlayModel(ctx context.Context, opts widget.Options) (playModel, error) {
	ctrl, err := widget.New(opts)
	if err != nil {
		return playModel{}, err
	}
	ctrl.SetContext(ctx)
	w, h := ctrl.Size()
	return playModel{
		ctrl: ctrl,
		grid: cells.Fit(80, 24-footerLines, w, h),
		keys: defaultPlayKeys,
		help: help.New(),
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m playModel) Init() tea.Cmd {
	return tick()
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.ctrl.Frame()
		return m, tick()
	case tea.WindowSizeMsg:
		w, h := m.ctrl.Size()
		m.grid = cells.Fit(msg.Width, msg.Height-footerLines, w, h)
		m.help.Width = msg.Width
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *playModel) mouse(msg tea.MouseMsg) {
	x, y := m.grid.ToSurface(msg.X, msg.Y)
	ev := widget.Event{X: x, Y: y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.pressed = true
		ev.Kind = widget.EventPress
		m.ctrl.Handle(ev)
	case tea.MouseActionMotion:
		ev.Kind = widget.EventMove
		m.ctrl.Handle(ev)
		if _, _, dragging := m.ctrl.DragPosition(); !dragging {
			ev.Kind = widget.EventDragOver
			m.ctrl.Handle(ev)
		}
	case tea.MouseActionRelease:
		if !m.pressed {
			return
		}
		m.pressed = false
		ev.Kind = widget.EventRelease
		m.ctrl.Handle(ev)
		ev.Kind = widget.EventClick
		m.ctrl.Handle(ev)
	}
}

func (m playModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.last = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Add):
		m.ctrl.Add("")
	case key.Matches(msg, m.keys.Drop):
		if _, ok := m.ctrl.Hover(); !ok {
			m.last = "Point at the ring first"
			break
		}
		palette := m.ctrl.Options().Palette
		m.ctrl.Handle(widget.Event{
			Kind:    widget.EventDrop,
			Payload: &widget.DragPayload{Color: palette[m.dropped%len(palette)]},
		})
		m.dropped++
	case key.Matches(msg, m.keys.Mode):
		if m.ctrl.Variant() != widget.VariantManaged {
			break
		}
		next := widget.ActionRemove
		if m.ctrl.Action() == widget.ActionRemove {
			next = widget.ActionAdd
		}
		if err := m.ctrl.SetAction(next); err != nil {
			m.last = errors.UserMessage(err)
		}
	case key.Matches(msg, m.keys.Remove):
		if !m.ctrl.RemoveSelection() {
			m.last = "No dot selected"
		}
	case key.Matches(msg, m.keys.Clear):
		m.ctrl.RemoveAll()
	}
	return m, nil
}

func (m playModel) View() string {
	render.Draw(m.grid, m.ctrl)

	var b strings.Builder
	b.WriteString(m.grid.String())
	b.WriteString("\n")

	panel := m.ctrl.Panel()
	status := []string{
		StyleTitle.Render(string(m.ctrl.Variant())),
		StyleHighlight.Render(string(m.ctrl.Action())),
		panel.CountText,
	}
	if panel.Visible && panel.RemoveEnabled && m.ctrl.Variant() == widget.VariantToggle {
		status = append(status, panel.RemoveLabel)
	}
	if m.last != "" {
		status = append(status, StyleWarning.Render(m.last))
	}
	b.WriteString(strings.Join(status, StyleDim.Render(" · ")))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
