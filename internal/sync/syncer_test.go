package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3dex/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

const (
	dapp     = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	eeth     = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	exchange = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
)

func contracts(dappAddr string) config.ChainContracts {
	return config.ChainContracts{
		DAPP:     config.ContractRef{Address: dappAddr},
		EETH:     config.ContractRef{Address: eeth},
		Exchange: config.ContractRef{Address: exchange},
	}
}

func testSyncer(t *testing.T) (*Syncer, *config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	path := filepath.Join(dir, "chains.json")
	return New(cfg, path, nil), cfg, path
}

func sourceServer(t *testing.T, body interface{}) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// ---------------------------------------------------------------------------
// SetSource
// ---------------------------------------------------------------------------

func TestSetSource(t *testing.T) {
	s, cfg, _ := testSyncer(t)
	require.NoError(t, s.SetSource("https://example.com/chains.json"))
	assert.Equal(t, "https://example.com/chains.json", cfg.ChainSource)

	reloaded, err := config.Load(cfg.Dir())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/chains.json", reloaded.ChainSource)
}

func TestSetSourceRejectsBadURL(t *testing.T) {
	s, _, _ := testSyncer(t)
	assert.Error(t, s.SetSource("ftp://example.com/x"))
	assert.Error(t, s.SetSource("not a url"))
	assert.Error(t, s.SetSource("https://"))
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRunWithoutSource(t *testing.T) {
	s, _, _ := testSyncer(t)
	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestRunMergesRemoteChains(t *testing.T) {
	s, cfg, path := testSyncer(t)

	local := config.ChainConfig{
		"31337": contracts(dapp),
		"5":     contracts(dapp),
	}
	require.NoError(t, local.Save(path))

	srv, _ := sourceServer(t, config.ChainConfig{
		"31337":    contracts(dapp),                                         // unchanged
		"5":        contracts("0x0000000000000000000000000000000000000001"), // updated
		"11155111": contracts(dapp),                                         // added
	})
	require.NoError(t, s.SetSource(srv.URL))

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"11155111"}, res.Added)
	assert.Equal(t, []string{"5"}, res.Updated)
	assert.Equal(t, []string{"31337"}, res.Unchanged)

	merged, err := config.LoadChainConfig(path)
	require.NoError(t, err)
	assert.Len(t, merged, 3)
	c, err := merged.ForChain(5)
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000001", c.DAPP.Address)

	assert.NotEmpty(t, cfg.LastSynced)
	_, err = time.Parse(time.RFC3339, cfg.LastSynced)
	assert.NoError(t, err)
}

func TestRunKeepsLocalOnlyChains(t *testing.T) {
	s, _, path := testSyncer(t)
	require.NoError(t, config.ChainConfig{"1337": contracts(dapp)}.Save(path))

	srv, _ := sourceServer(t, config.ChainConfig{"31337": contracts(dapp)})
	require.NoError(t, s.SetSource(srv.URL))

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	merged, err := config.LoadChainConfig(path)
	require.NoError(t, err)
	assert.Contains(t, merged, "1337")
	assert.Contains(t, merged, "31337")
}

func TestRunRejectsInvalidRemote(t *testing.T) {
	s, cfg, path := testSyncer(t)
	srv, _ := sourceServer(t, map[string]interface{}{
		"31337": map[string]interface{}{"DAPP": map[string]string{"address": "0x1234"}},
	})
	require.NoError(t, s.SetSource(srv.URL))

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, cfg.LastSynced)

	local, err := config.LoadChainConfig(path)
	require.NoError(t, err)
	assert.Empty(t, local, "nothing written on a bad remote")
}

func TestRunHTTPError(t *testing.T) {
	s, _, _ := testSyncer(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	require.NoError(t, s.SetSource(srv.URL))

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestRunMalformedJSON(t *testing.T) {
	s, _, _ := testSyncer(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json")) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	require.NoError(t, s.SetSource(srv.URL))

	_, err := s.Run(context.Background())
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Watch
// ---------------------------------------------------------------------------

func TestWatchRunsUntilCancelled(t *testing.T) {
	s, _, _ := testSyncer(t)
	srv, hits := sourceServer(t, config.ChainConfig{"31337": contracts(dapp)})
	require.NoError(t, s.SetSource(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	var results atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, 10*time.Millisecond, func(*Result, error) {
			if results.Add(1) >= 3 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop")
	}
	assert.GreaterOrEqual(t, hits.Load(), int64(3))
}

func TestWatchReturnsFirstError(t *testing.T) {
	s, _, _ := testSyncer(t)
	err := s.Watch(context.Background(), time.Millisecond, func(*Result, error) {
		t.Fatal("onResult must not be called")
	})
	assert.ErrorIs(t, err, ErrNoSource)
}
