package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"node.town/speakwith/session"
)

const defaultPrompt = "> "

type snapshotMsg session.Snapshot

type promptMsg string

type model struct {
	viewport viewport.Model
	input    textinput.Model
	snapshot session.Snapshot
	ready    bool
	width    int

	now   func() time.Time
	lines chan<- string
	quit  <-chan struct{}
}

func newModel(lines chan<- string, quit <-chan struct{}) model {
	input := textinput.New()
	input.Prompt = defaultPrompt
	input.Placeholder = "1-6, c, or type a reply"
	input.Focus()

	return model{
		input:    input,
		snapshot: session.Snapshot{Suggestions: session.DefaultSuggestions()},
		now:      time.Now,
		lines:    lines,
		quit:     quit,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// submit hands a line to whoever is waiting in ReadLine.
func submit(lines chan<- string, quit <-chan struct{}, line string) tea.Cmd {
	return func() tea.Msg {
		select {
		case lines <- line:
		case <-quit:
		}
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			m.input.Prompt = defaultPrompt
			return m, submit(m.lines, m.quit, line)
		}

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		verticalMarginHeight := headerHeight + footerHeight

		m.width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMarginHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMarginHeight
		}
		m.input.Width = max(0, msg.Width-len(defaultPrompt)-1)
		m.viewport.SetContent(BodyView(m.snapshot, m.width))

	case snapshotMsg:
		m.snapshot = session.Snapshot(msg)
		m.viewport.SetContent(BodyView(m.snapshot, m.width))

	case promptMsg:
		m.input.Prompt = string(msg)
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	return fmt.Sprintf(
		"%s\n%s\n%s",
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

func (m model) headerView() string {
	header := HeaderView(m.snapshot, m.now())
	line := strings.Repeat("─", max(0, m.width-lipgloss.Width(header)-1))
	return header + " " + dimStyle.Render(line)
}

func (m model) footerView() string {
	help := dimStyle.Render("enter to send · esc or ctrl+c to quit")
	return m.input.View() + "\n" + help
}

// TUI is a full-screen front end. It is both the Renderer and the
// LineReader of a session and must be started with Run.
type TUI struct {
	program *tea.Program
	lines   chan string
	quit    chan struct{}
	once    sync.Once
}

func NewTUI(opts ...tea.ProgramOption) *TUI {
	t := &TUI{
		lines: make(chan string),
		quit:  make(chan struct{}),
	}
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	t.program = tea.NewProgram(newModel(t.lines, t.quit), opts...)
	return t
}

// Run blocks until the user quits or Quit is called.
func (t *TUI) Run() error {
	defer t.closeQuit()
	_, err := t.program.Run()
	return err
}

func (t *TUI) Quit() {
	t.program.Quit()
	t.closeQuit()
}

func (t *TUI) closeQuit() {
	t.once.Do(func() { close(t.quit) })
}

func (t *TUI) Render(s session.Snapshot) error {
	select {
	case <-t.quit:
		return ErrQuit
	default:
	}
	t.program.Send(snapshotMsg(s))
	return nil
}

func (t *TUI) ReadLine(ctx context.Context, prompt string) (string, error) {
	if prompt != "" {
		t.program.Send(promptMsg(prompt))
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-t.quit:
		return "", ErrQuit
	case line := <-t.lines:
		return line, nil
	}
}
