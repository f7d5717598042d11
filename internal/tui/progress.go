package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/raoabdulhannan/College-Data-Pipeline/internal/batch"
	"github.com/raoabdulhannan/College-Data-Pipeline/pkg/collegedata"
)

var (
	_ batch.Progress = (*Display)(nil)
	_ batch.Progress = (*ConsoleProgress)(nil)
)

// Display renders a live progress bar for one table load. It implements
// the batch manager's Progress interface.
//
// Begin starts a bubbletea program on stderr so the bar never mixes with
// piped report output; End stops it and prints the closing line.
type Display struct {
	program *tea.Program
	done    chan struct{}
	table   string
	total   int64
}

// NewDisplay creates an interactive progress display.
func NewDisplay() *Display {
	return &Display{}
}

func (d *Display) Begin(table string, total int64) {
	d.table = table
	d.total = total
	d.done = make(chan struct{})

	m := newLoadModel(table, total)
	d.program = tea.NewProgram(m, tea.WithOutput(os.Stderr))

	go func() {
		defer close(d.done)
		_, _ = d.program.Run()
	}()
}

func (d *Display) Advance(rows int64) {
	if d.program != nil {
		d.program.Send(advanceMsg{rows: rows})
	}
}

func (d *Display) End() {
	if d.program == nil {
		return
	}
	d.program.Send(finishMsg{})
	<-d.done
	d.program = nil
}

type advanceMsg struct{ rows int64 }

type finishMsg struct{}

// loadModel is the bubbletea model behind one table's progress bar.
type loadModel struct {
	table     string
	total     int64
	processed int64
	spin      spinner.Model
	bar       progress.Model
	finished  bool
}

func newLoadModel(table string, total int64) loadModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return loadModel{
		table: table,
		total: total,
		spin:  s,
		bar:   progress.New(progress.WithDefaultGradient()),
	}
}

func (m loadModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m loadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case advanceMsg:
		m.processed += msg.rows
		if m.total > 0 {
			return m, m.bar.SetPercent(float64(m.processed) / float64(m.total))
		}
		return m, nil

	case finishMsg:
		m.finished = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		width := msg.Width - 30
		if width > 4 {
			m.bar.Width = width
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m loadModel) View() string {
	if m.finished {
		return ""
	}

	counts := fmt.Sprintf("%d", m.processed)
	if m.total > 0 {
		counts = fmt.Sprintf("%d/%d", m.processed, m.total)
	}

	return fmt.Sprintf("%s %s %s %s\n",
		m.spin.View(),
		TableStyle.Render(m.table),
		m.bar.View(),
		CountStyle.Render(counts+" rows"),
	)
}

// ConsoleProgress logs plain progress lines for non-interactive runs.
type ConsoleProgress struct {
	logger    collegedata.Logger
	table     string
	total     int64
	processed int64
}

// NewConsoleProgress creates a Progress that reports through the logger.
func NewConsoleProgress(logger collegedata.Logger) *ConsoleProgress {
	return &ConsoleProgress{logger: logger}
}

func (c *ConsoleProgress) Begin(table string, total int64) {
	c.table = table
	c.total = total
	c.processed = 0
	if total > 0 {
		c.logger.Info("Loading %s (%d rows)", table, total)
	} else {
		c.logger.Info("Loading %s", table)
	}
}

func (c *ConsoleProgress) Advance(rows int64) {
	c.processed += rows
	c.logger.Verbose("  %s: %d rows processed", c.table, c.processed)
}

func (c *ConsoleProgress) End() {
	c.logger.Info("Finished %s: %d rows processed", c.table, c.processed)
}
