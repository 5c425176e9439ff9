// Package progress shows a running import as a one-line progress bar.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/crate/internal/importer"
	"github.com/llehouerou/crate/internal/ui/render"
	"github.com/llehouerou/crate/internal/ui/styles"
)

const (
	defaultWidth = 80
	minBarWidth  = 10
	minLabel     = 10
)

// Msg reports import progress.
type Msg struct {
	Done  int
	Total int
}

// DoneMsg ends the view once the import returns.
type DoneMsg struct {
	Result *importer.Result
	Err    error
}

// Sink forwards importer progress into a running program. Send blocks until
// the UI loop receives the message and returns once the program has exited.
func Sink(p *tea.Program) importer.ProgressSink {
	return importer.SinkFunc(func(done, total int) {
		p.Send(Msg{Done: done, Total: total})
	})
}

type keyMap struct {
	Cancel key.Binding
}

var keys = keyMap{
	Cancel: key.NewBinding(
		key.WithKeys("ctrl+c", "esc", "q"),
		key.WithHelp("q", "cancel"),
	),
}

// Model is the bubbletea model of the import view.
type Model struct {
	label   string
	cancel  func()
	spinner spinner.Model
	width   int

	done  int
	total int
	seen  bool // a progress message arrived

	cancelled bool
	finished  bool
	result    *importer.Result
	err       error
}

// New creates the view. cancel is called once when the user asks to stop.
func New(label string, cancel func()) Model {
	s := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	s.Style = lipgloss.NewStyle().Foreground(styles.T().Primary)
	return Model{
		label:   label,
		cancel:  cancel,
		spinner: s,
		width:   defaultWidth,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Cancel) && !m.cancelled {
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case Msg:
		m.seen = true
		m.done = msg.Done
		m.total = msg.Total
		return m, nil

	case DoneMsg:
		m.finished = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Result returns what the import reported once the view has finished.
func (m Model) Result() (*importer.Result, error) {
	return m.result, m.err
}

// Cancelled reports whether the user asked to stop.
func (m Model) Cancelled() bool {
	return m.cancelled
}

func (m Model) View() string {
	if m.finished {
		return ""
	}

	var line string
	if !m.seen || m.total == 0 {
		line = m.renderScanning()
	} else {
		line = m.renderBar()
	}

	help := styles.T().S().Subtle.Render("q cancel")
	if m.cancelled {
		help = styles.T().S().Warning.Render("cancelling...")
	}
	return line + "\n" + help + "\n"
}

// renderBar renders: "⠋ Label  [━━━━────] 42/100"
func (m Model) renderBar() string {
	countStr := fmt.Sprintf("%d/%d", m.done, m.total)
	countWidth := lipgloss.Width(countStr)

	// spinner(2) + brackets(2) + spacing(3) + count
	fixedWidth := 2 + 2 + 3 + countWidth
	labelWidth := max(min(lipgloss.Width(m.label), m.width-fixedWidth-minBarWidth), minLabel)
	barWidth := max(m.width-labelWidth-fixedWidth, minBarWidth)

	ratio := float64(m.done) / float64(m.total)
	filled := int(float64(barWidth) * min(ratio, 1))

	t := styles.T()
	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(t.S().Title.Render(render.TruncateAndPad(m.label, labelWidth)))
	b.WriteString("  [")
	b.WriteString(styles.GradientBar(barWidth, filled, "━", "─", t.Primary, t.Secondary, t.S().Subtle))
	b.WriteString("] ")
	b.WriteString(t.S().Muted.Render(countStr))
	return b.String()
}

// renderScanning is shown until the first file is counted.
func (m Model) renderScanning() string {
	t := styles.T()
	text := "scanning"
	if m.seen {
		text = "no music files found"
	}
	return render.Row(
		m.spinner.View()+" "+t.S().Title.Render(render.Truncate(m.label, max(m.width-24, minLabel))),
		t.S().Muted.Render(text),
		m.width,
	)
}
