package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/swapsort/pkg/engine"
	"github.com/matzehuels/swapsort/pkg/observability"
)

var (
	dashLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	dashValueStyle = lipgloss.NewStyle().Foreground(colorWhite)
	dashDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Messages
// =============================================================================

type passMsg struct {
	pass, attempted, accepted uint64
	duration                  time.Duration
}

type checkpointMsg struct {
	path   string
	number int
	err    error
}

type stateMsg string

type runDoneMsg struct{}

type tickMsg time.Time

// =============================================================================
// DashboardModel - live view of a sorting run
// =============================================================================

// dashboardInfo is the static part of the dashboard.
type dashboardInfo struct {
	input  string
	output string
	radius int
	mode   string
}

// DashboardModel is the bubbletea model shown by sort --tui.
type DashboardModel struct {
	info   dashboardInfo
	cancel context.CancelFunc
	start  time.Time
	now    time.Time

	state     string
	passes    uint64
	attempted uint64
	accepted  uint64
	lastPass  passMsg
	saves     int
	lastSave  string
	saveErr   error
	stopping  bool
	done      bool
}

func newDashboardModel(info dashboardInfo, cancel context.CancelFunc) DashboardModel {
	now := time.Now()
	return DashboardModel{info: info, cancel: cancel, start: now, now: now, state: "starting"}
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m DashboardModel) Init() tea.Cmd {
	return tick()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.stopping {
				m.stopping = true
				m.cancel()
			}
		}
	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()
	case passMsg:
		m.passes = msg.pass
		m.attempted += msg.attempted
		m.accepted += msg.accepted
		m.lastPass = msg
	case checkpointMsg:
		if msg.err != nil {
			m.saveErr = msg.err
		} else {
			m.saves++
			m.lastSave = msg.path
		}
	case stateMsg:
		m.state = string(msg)
	case runDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("swapsort") + " " + dashDimStyle.Render(m.info.input+" → "+m.info.output))
	b.WriteString("\n\n")

	rate := "-"
	if m.lastPass.attempted > 0 {
		rate = fmt.Sprintf("%.2f%%", 100*float64(m.lastPass.accepted)/float64(m.lastPass.attempted))
	}
	lastSave := m.lastSave
	if lastSave == "" {
		lastSave = "-"
	}

	rows := [][]string{
		{"State", m.state},
		{"Elapsed", m.now.Sub(m.start).Round(time.Second).String()},
		{"Kernel", fmt.Sprintf("radius %d, %s", m.info.radius, m.info.mode)},
		{"Passes", humanize.Comma(int64(m.passes))},
		{"Attempted", humanizeCount(m.attempted)},
		{"Swapped", humanize.Comma(int64(m.accepted))},
		{"Last pass", fmt.Sprintf("%s swapped in %s", rate, m.lastPass.duration.Round(time.Millisecond))},
		{"Saves", fmt.Sprintf("%d (%s)", m.saves, lastSave)},
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return dashLabelStyle.PaddingRight(2)
			}
			return dashValueStyle
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.saveErr != nil {
		b.WriteString(StyleWarning.Render("last save failed: "+m.saveErr.Error()) + "\n")
	}
	switch {
	case m.done:
		b.WriteString(StyleSuccess.Render("done") + "\n")
	case m.stopping:
		b.WriteString(dashDimStyle.Render("stopping after this pass, saving…") + "\n")
	default:
		b.WriteString(dashDimStyle.Render("q stop and save") + "\n")
	}
	return b.String()
}

// =============================================================================
// Hooks → Program
// =============================================================================

// dashboardHooks forwards engine and checkpoint events to a running program.
type dashboardHooks struct {
	send func(tea.Msg)
}

func (h dashboardHooks) OnBuildStart(context.Context, int, int, int)                   {}
func (h dashboardHooks) OnBuildComplete(context.Context, string, time.Duration, error) {}

func (h dashboardHooks) OnPassComplete(_ context.Context, pass, attempted, accepted uint64, d time.Duration) {
	h.send(passMsg{pass: pass, attempted: attempted, accepted: accepted, duration: d})
}

func (h dashboardHooks) OnStateChange(_ context.Context, state string) {
	h.send(stateMsg(state))
}

func (h dashboardHooks) OnCheckpoint(_ context.Context, path string, number int, _ time.Duration, err error) {
	h.send(checkpointMsg{path: path, number: number, err: err})
}

var (
	_ observability.EngineHooks     = dashboardHooks{}
	_ observability.CheckpointHooks = dashboardHooks{}
)

// runDashboard runs e under a bubbletea program. Quitting the dashboard
// cancels the run, which still writes its final checkpoint.
func runDashboard(ctx context.Context, e *engine.Engine, cp engine.Checkpointer, info dashboardInfo) (engine.Stats, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newDashboardModel(info, cancel), tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	hooks := dashboardHooks{send: p.Send}
	observability.SetEngineHooks(hooks)
	observability.SetCheckpointHooks(hooks)
	defer observability.Reset()

	var (
		st     engine.Stats
		runErr error
		done   = make(chan struct{})
	)
	go func() {
		defer close(done)
		st, runErr = e.Run(runCtx, cp)
		p.Send(runDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		// The run must still stop and save.
		if ctx.Err() == nil {
			printWarning("Dashboard stopped: %v", err)
		}
		cancel()
	}
	<-done
	return st, runErr
}
