// Package rpc chooses which JSON-RPC endpoint to dial when more than one is
// configured.
package rpc

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/w3dex/internal/chain"
	"golang.org/x/sync/errgroup"
)

const (
	probeTimeout = 5 * time.Second

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
)

// Candidate is one probed endpoint.
type Candidate struct {
	URL     string
	Latency time.Duration
	Block   uint64
	Err     error
}

// Healthy reports whether the endpoint answered.
func (c Candidate) Healthy() bool { return c.Err == nil }

// Probe pings every url in parallel. Results keep the order of urls.
func Probe(ctx context.Context, urls []string, opts ...chain.Option) []Candidate {
	out := make([]Candidate, len(urls))

	var g errgroup.Group
	for i, url := range urls {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()

			latency, block, err := chain.NewEVMClient(url, opts...).Ping(pctx)
			out[i] = Candidate{URL: url, Latency: latency, Block: block, Err: err}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // probes never fail the group

	markStale(out)
	return out
}

// markStale turns endpoints lagging the best block into failures.
func markStale(cands []Candidate) {
	best := bestBlock(cands)
	for i := range cands {
		c := &cands[i]
		if c.Healthy() && best-c.Block > staleBlockThreshold {
			c.Err = &StaleError{Block: c.Block, Best: best}
		}
	}
}

func bestBlock(cands []Candidate) uint64 {
	var best uint64
	for _, c := range cands {
		if c.Healthy() && c.Block > best {
			best = c.Block
		}
	}
	return best
}
