package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/w3dex/internal/chain"
	"go.uber.org/zap"
)

// ErrNoHealthyRPC is returned when no configured endpoint answers.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Strategy decides which healthy endpoint wins.
type Strategy string

const (
	// StrategyFastest picks the lowest-latency endpoint.
	StrategyFastest Strategy = "fastest"
	// StrategyFailover picks the first endpoint, in configured order, that
	// answers.
	StrategyFailover Strategy = "failover"
)

// ParseStrategy validates s. Empty means StrategyFailover.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyFailover:
		return StrategyFailover, nil
	case StrategyFastest:
		return StrategyFastest, nil
	}
	return "", fmt.Errorf("unknown rpc strategy %q (want %q or %q)", s, StrategyFastest, StrategyFailover)
}

// StaleError marks an endpoint that answered but lags behind the others.
type StaleError struct {
	Block, Best uint64
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("stale: block %d, best %d", e.Block, e.Best)
}

// Pick chooses among already probed candidates.
func Pick(cands []Candidate, strategy Strategy) (Candidate, error) {
	var winner *Candidate
	for i := range cands {
		c := &cands[i]
		if !c.Healthy() {
			continue
		}
		if strategy != StrategyFastest {
			return *c, nil
		}
		if winner == nil || c.Latency < winner.Latency {
			winner = c
		}
	}
	if winner == nil {
		return Candidate{}, ErrNoHealthyRPC
	}
	return *winner, nil
}

// Select probes urls and returns the winning URL. A single url is returned
// as-is without probing; dialing it reports its own errors.
func Select(ctx context.Context, urls []string, strategy Strategy, log *zap.Logger, opts ...chain.Option) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	cands := Probe(ctx, urls, opts...)
	for _, c := range cands {
		log.Debug("probed endpoint",
			zap.String("url", c.URL),
			zap.Duration("latency", c.Latency),
			zap.Uint64("block", c.Block),
			zap.Error(c.Err))
	}

	winner, err := Pick(cands, strategy)
	if err != nil {
		return "", err
	}
	log.Info("selected endpoint", zap.String("url", winner.URL), zap.String("strategy", string(strategy)))
	return winner.URL, nil
}
