package ui

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/w3dex/internal/app"
	"github.com/Mohsinsiddi/w3dex/internal/config"
	"github.com/Mohsinsiddi/w3dex/internal/devchain"
	"github.com/Mohsinsiddi/w3dex/internal/interactions"
	"github.com/Mohsinsiddi/w3dex/internal/store"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// formatters
// ---------------------------------------------------------------------------

func TestFormattersContainMessage(t *testing.T) {
	formatters := map[string]func(string) string{
		"Success":   Success,
		"Warn":      Warn,
		"Err":       Err,
		"Info":      Info,
		"Addr":      Addr,
		"Val":       Val,
		"Meta":      Meta,
		"ChainName": ChainName,
	}
	for name, fn := range formatters {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, fn("test"), "test")
		})
	}
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "0x12345678", TruncateAddr("0x12345678"))
	assert.Equal(t, "0x1234…5678", TruncateAddr("0x1234567890abcdef1234567890abcdef12345678"))
	assert.Equal(t, "", TruncateAddr(""))
}

func TestBannerHasVersion(t *testing.T) {
	assert.Contains(t, Banner("1.2.3"), "v1.2.3")
}

// ---------------------------------------------------------------------------
// Table / KeyValueBlock
// ---------------------------------------------------------------------------

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Token", Width: 8}, {Title: "Balance", Width: 10}})
	tbl.AddRow(Row{"DAPP", "100"})
	tbl.AddRow(Row{Val("eETH")})

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Token")
	assert.Contains(t, lines[1], "--------")
	assert.Contains(t, lines[2], "DAPP")
	assert.Contains(t, lines[3], "eETH")
}

func TestPadRUsesVisibleWidth(t *testing.T) {
	styled := Val("ab")
	assert.Equal(t, 5, len(padR("ab", 5)))
	assert.Equal(t, "abc", padR("abc", 2))
	assert.True(t, strings.HasSuffix(padR(styled, 5), "   "))
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	out := KeyValueBlock("Config", [][2]string{{"First", "AAA"}, {"Second", "BBB"}})
	assert.Contains(t, out, "Config")
	assert.Less(t, strings.Index(out, "First"), strings.Index(out, "Second"))
	assert.Contains(t, out, "╭", "should have a rounded border")
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, Confirm(strings.NewReader("yes\n"), &out, "send?"))
	assert.True(t, Confirm(strings.NewReader("Y\n"), &out, "send?"))
	assert.False(t, Confirm(strings.NewReader("\n"), &out, "send?"))
	assert.False(t, Confirm(strings.NewReader(""), &out, "send?"))
	assert.Contains(t, out.String(), "send?")
}

func TestSpinnerStops(t *testing.T) {
	var out bytes.Buffer
	s := NewSpinner(&out, "loading")
	s.Start()
	s.Stop()
	assert.Contains(t, out.String(), "loading")
}

// ---------------------------------------------------------------------------
// RenderState
// ---------------------------------------------------------------------------

func loadedState(t *testing.T) store.State {
	t.Helper()
	dev := devchain.New()
	st := store.New(nil)
	_, err := app.NewShell(func(context.Context) (interactions.Provider, error) { return dev, nil },
		dev.Config(), st, nil).Load(context.Background())
	require.NoError(t, err)
	return st.State()
}

func TestRenderStateEmpty(t *testing.T) {
	out := RenderState(store.State{})
	assert.Contains(t, out, "Network")
	assert.Contains(t, out, "Account")
	assert.NotContains(t, out, "Tokens")
	assert.NotContains(t, out, "Exchange")
}

func TestRenderStateLoaded(t *testing.T) {
	out := RenderState(loadedState(t))
	assert.Contains(t, out, "31337")
	assert.Contains(t, out, "devchain")
	assert.Contains(t, out, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	assert.Contains(t, out, "DAPP")
	assert.Contains(t, out, "eETH")
	assert.Contains(t, out, "1000000")
	assert.Contains(t, out, "10000")
	assert.Contains(t, out, "10%")
}

func TestRenderStateFailure(t *testing.T) {
	s := store.Reduce(store.State{}, store.LoadFailed{Step: "network", Err: errors.New("timeout")})
	assert.Contains(t, RenderState(s), "network: timeout")
}

func TestRenderStatePendingToken(t *testing.T) {
	s := store.State{Tokens: []store.TokenState{{}, {Symbol: "eETH", Loaded: true, Address: common.HexToAddress("0x01"), Balance: big.NewInt(0)}}}
	out := RenderState(s)
	assert.Contains(t, out, "eETH")
	assert.Contains(t, out, pending)
}

// ---------------------------------------------------------------------------
// dashboard model
// ---------------------------------------------------------------------------

func TestDashboardInitLoadsOnce(t *testing.T) {
	dev := devchain.New()
	dials := 0
	shell := app.NewShell(func(context.Context) (interactions.Provider, error) {
		dials++
		return dev, nil
	}, dev.Config(), store.New(nil), nil)

	m := newDashboardModel(context.Background(), shell)
	assert.Contains(t, m.View(), "Loading")

	// Re-rendering never triggers a load; only the Init command does.
	for i := 0; i < 3; i++ {
		_ = m.View()
	}
	assert.Equal(t, 0, dials)

	msg := m.Init()()
	assert.IsType(t, loadDoneMsg{}, msg)

	next, cmd := m.Update(msg)
	assert.Nil(t, cmd)
	view := next.View()
	assert.Contains(t, view, "Loaded")
	assert.Contains(t, view, "DAPP")

	// A second Init (e.g. a re-mounted view) reuses the first load.
	_ = m.Init()()
	assert.Equal(t, 1, dials)
}

func TestDashboardShowsFailure(t *testing.T) {
	dev := devchain.New()
	shell := app.NewShell(func(context.Context) (interactions.Provider, error) { return dev, nil },
		config.ChainConfig{}, store.New(nil), nil)

	m := newDashboardModel(context.Background(), shell)
	next, _ := m.Update(m.Init()())
	view := next.View()
	assert.Contains(t, view, "Load failed")
	assert.Contains(t, view, "config")
}

func TestDashboardStateMsgAndQuit(t *testing.T) {
	shell := app.NewShell(nil, config.ChainConfig{}, store.New(nil), nil)
	m := newDashboardModel(context.Background(), shell)

	next, _ := m.Update(stateMsg(store.Reduce(store.State{}, store.NetworkLoaded{ChainID: 5})))
	assert.Contains(t, next.View(), "5")

	quit, cmd := next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Empty(t, quit.View())
}
