package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func testDashboard() (DashboardModel, *bool) {
	cancelled := false
	m := newDashboardModel(dashboardInfo{input: "in.png", output: "out.npy", radius: 8, mode: "uniform"},
		func() { cancelled = true })
	return m, &cancelled
}

func update(t *testing.T, m DashboardModel, msg tea.Msg) (DashboardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	dm, ok := next.(DashboardModel)
	if !ok {
		t.Fatalf("Update returned %T, want DashboardModel", next)
	}
	return dm, cmd
}

func TestDashboardAccumulatesPasses(t *testing.T) {
	m, _ := testDashboard()
	m, _ = update(t, m, passMsg{pass: 1, attempted: 100, accepted: 10, duration: time.Millisecond})
	m, _ = update(t, m, passMsg{pass: 2, attempted: 100, accepted: 5, duration: time.Millisecond})

	if m.passes != 2 {
		t.Errorf("passes = %d, want 2", m.passes)
	}
	if m.attempted != 200 || m.accepted != 15 {
		t.Errorf("attempted/accepted = %d/%d, want 200/15", m.attempted, m.accepted)
	}

	view := m.View()
	for _, want := range []string{"in.png", "out.npy", "radius 8, uniform", "200", "5.00%"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestDashboardCheckpoints(t *testing.T) {
	m, _ := testDashboard()
	m, _ = update(t, m, checkpointMsg{path: "out.npy", number: 0})
	m, _ = update(t, m, checkpointMsg{path: "out.npy", number: 1, err: errors.New("disk full")})

	if m.saves != 1 {
		t.Errorf("saves = %d, want 1", m.saves)
	}
	if m.lastSave != "out.npy" {
		t.Errorf("lastSave = %q, want out.npy", m.lastSave)
	}
	if !strings.Contains(m.View(), "disk full") {
		t.Error("View() should show the failed save")
	}
}

func TestDashboardQuitCancelsOnce(t *testing.T) {
	m, cancelled := testDashboard()
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !*cancelled {
		t.Fatal("ctrl+c should cancel the run")
	}
	if cmd != nil {
		t.Error("ctrl+c should wait for the run instead of quitting")
	}
	if !m.stopping {
		t.Error("model should be stopping")
	}
	if !strings.Contains(m.View(), "stopping") {
		t.Error("View() should say it is stopping")
	}

	*cancelled = false
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if *cancelled {
		t.Error("second quit key should not cancel again")
	}
}

func TestDashboardDoneQuits(t *testing.T) {
	m, _ := testDashboard()
	m, _ = update(t, m, stateMsg("idle"))
	if m.state != "idle" {
		t.Errorf("state = %q, want idle", m.state)
	}
	m, cmd := update(t, m, runDoneMsg{})
	if !m.done {
		t.Error("model should be done")
	}
	if cmd == nil {
		t.Fatal("runDoneMsg should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("runDoneMsg should quit the program")
	}
}

func TestDashboardHooksForward(t *testing.T) {
	var got []tea.Msg
	h := dashboardHooks{send: func(msg tea.Msg) { got = append(got, msg) }}
	ctx := context.Background()

	h.OnBuildStart(ctx, 1, 1, 1)
	h.OnPassComplete(ctx, 3, 10, 2, time.Second)
	h.OnStateChange(ctx, "running")
	h.OnCheckpoint(ctx, "out.png", 4, time.Second, nil)

	if len(got) != 3 {
		t.Fatalf("forwarded %d messages, want 3", len(got))
	}
	if pm, ok := got[0].(passMsg); !ok || pm.pass != 3 || pm.accepted != 2 {
		t.Errorf("got[0] = %#v, want pass 3 with 2 accepted", got[0])
	}
	if sm, ok := got[1].(stateMsg); !ok || sm != "running" {
		t.Errorf("got[1] = %#v, want state running", got[1])
	}
	if cm, ok := got[2].(checkpointMsg); !ok || cm.number != 4 {
		t.Errorf("got[2] = %#v, want checkpoint 4", got[2])
	}
}
