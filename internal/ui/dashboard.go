package ui

import (
	"context"
	"strings"

	"github.com/Mohsinsiddi/w3dex/internal/app"
	"github.com/Mohsinsiddi/w3dex/internal/store"
	tea "github.com/charmbracelet/bubbletea"
)

// dashboardModel is the Bubble Tea model for the exchange dashboard.
type dashboardModel struct {
	ctx      context.Context
	shell    *app.Shell
	state    store.State
	loading  bool
	quitting bool
}

type stateMsg store.State

type loadDoneMsg struct{}

// NewDashboard creates a Bubble Tea program for the exchange dashboard.
// The shell's load sequence runs once, from Init; store updates are
// streamed into the view as they are dispatched.
func NewDashboard(ctx context.Context, shell *app.Shell, opts ...tea.ProgramOption) *tea.Program {
	m := newDashboardModel(ctx, shell)
	p := tea.NewProgram(m, opts...)
	shell.Store().Subscribe(func(s store.State) { p.Send(stateMsg(s)) })
	return p
}

func newDashboardModel(ctx context.Context, shell *app.Shell) dashboardModel {
	return dashboardModel{
		ctx:     ctx,
		shell:   shell,
		state:   shell.Store().State(),
		loading: true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		m.state = store.State(msg)

	case loadDoneMsg:
		m.loading = false
		m.state = m.shell.Store().State()
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("⚡ w3dex") + "\n")
	switch {
	case m.loading:
		sb.WriteString(Meta("Loading… · q to quit") + "\n\n")
	case m.state.Failure != nil:
		sb.WriteString(Meta("Load failed · q to quit") + "\n\n")
	default:
		sb.WriteString(Meta("Loaded · q to quit") + "\n\n")
	}
	sb.WriteString(RenderState(m.state))
	return sb.String()
}

func (m dashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		m.shell.Load(m.ctx) //nolint:errcheck // failures land in the store
		return loadDoneMsg{}
	}
}
