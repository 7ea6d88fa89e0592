// Package sync pulls a published chain config from a URL and merges it into
// the local one.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/Mohsinsiddi/w3dex/internal/config"
	"go.uber.org/zap"
)

const maxManifestBytes = 1 << 20

// ErrNoSource is returned by Run when no source URL is configured.
var ErrNoSource = errors.New("no chain config source configured")

// Result lists the chain IDs a run touched.
type Result struct {
	Added     []string
	Updated   []string
	Unchanged []string
}

// Syncer handles fetching the remote chain config and merging it locally.
type Syncer struct {
	cfg    *config.Config
	path   string
	client *http.Client
	log    *zap.Logger
}

// New creates a Syncer that merges into the chain config file at path and
// records the source and sync time in cfg. A nil logger discards.
func New(cfg *config.Config, path string, log *zap.Logger) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{
		cfg:    cfg,
		path:   path,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log.Named("sync"),
	}
}

// SetSource sets the remote chain config URL.
func (s *Syncer) SetSource(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid source URL %q", raw)
	}
	s.cfg.ChainSource = raw
	return s.cfg.Save()
}

// Run fetches the source and merges every chain it lists into the local
// chain config. Chains only present locally are kept. Nothing is written
// if the remote config fails validation.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	if s.cfg.ChainSource == "" {
		return nil, ErrNoSource
	}

	remote, err := s.fetch(ctx, s.cfg.ChainSource)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.cfg.ChainSource, err)
	}
	if err := remote.Validate(); err != nil {
		return nil, fmt.Errorf("remote chain config: %w", err)
	}

	local, err := config.LoadChainConfig(s.path)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for id, c := range remote {
		prev, ok := local[id]
		switch {
		case !ok:
			res.Added = append(res.Added, id)
		case prev != c:
			res.Updated = append(res.Updated, id)
		default:
			res.Unchanged = append(res.Unchanged, id)
		}
		local[id] = c
	}
	sort.Strings(res.Added)
	sort.Strings(res.Updated)
	sort.Strings(res.Unchanged)

	if err := local.Save(s.path); err != nil {
		return nil, fmt.Errorf("saving chain config: %w", err)
	}

	s.cfg.LastSynced = time.Now().UTC().Format(time.RFC3339)
	if err := s.cfg.Save(); err != nil {
		return nil, err
	}
	s.log.Info("synced",
		zap.String("source", s.cfg.ChainSource),
		zap.Strings("added", res.Added),
		zap.Strings("updated", res.Updated))
	return res, nil
}

// Watch runs Run on a ticker until ctx is cancelled. The first run's error
// is returned; later ones go to onResult.
func (s *Syncer) Watch(ctx context.Context, interval time.Duration, onResult func(*Result, error)) error {
	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	onResult(res, nil)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			onResult(s.Run(ctx))
		}
	}
}

func (s *Syncer) fetch(ctx context.Context, src string) (config.ChainConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var cc config.ChainConfig
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxManifestBytes)).Decode(&cc); err != nil {
		return nil, fmt.Errorf("parsing chain config: %w", err)
	}
	return cc, nil
}
