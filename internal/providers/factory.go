package providers

import (
	"context"

	"github.com/Mohsinsiddi/w3dex/internal/devchain"
	"github.com/Mohsinsiddi/w3dex/internal/interactions"
)

// NewDialer returns the shell's Dialer. When dev is non-nil it is returned
// as-is and no network connection is made; otherwise opts.URL is dialed.
func NewDialer(dev *devchain.Chain, opts Options) interactions.Dialer {
	if dev != nil {
		return func(context.Context) (interactions.Provider, error) { return dev, nil }
	}
	return func(ctx context.Context) (interactions.Provider, error) {
		p, err := DialRPC(ctx, opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
