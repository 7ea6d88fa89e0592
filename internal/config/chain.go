package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// ErrChainNotConfigured is returned when no contracts are listed for a chain ID.
var ErrChainNotConfigured = errors.New("chain not configured")

// LoadChainConfig reads and validates a chain configuration file. A missing
// file yields an empty configuration.
func LoadChainConfig(path string) (ChainConfig, error) {
	cc, err := loadJSON[ChainConfig](path)
	if err != nil {
		return nil, fmt.Errorf("reading chain config %s: %w", path, err)
	}
	if *cc == nil {
		return ChainConfig{}, nil
	}
	if err := cc.Validate(); err != nil {
		return nil, fmt.Errorf("chain config %s: %w", path, err)
	}
	return *cc, nil
}

// Save writes the chain configuration to path.
func (cc ChainConfig) Save(path string) error {
	return saveJSON(path, cc)
}

// Validate checks that keys are decimal chain IDs and every address is hex.
func (cc ChainConfig) Validate() error {
	for key, contracts := range cc {
		if _, err := strconv.ParseInt(key, 10, 64); err != nil {
			return fmt.Errorf("chain id %q is not a decimal integer", key)
		}
		for name, ref := range contracts.refs() {
			if !common.IsHexAddress(ref.Address) {
				return fmt.Errorf("chain %s: %s address %q is invalid", key, name, ref.Address)
			}
		}
	}
	return nil
}

// ForChain returns the contracts deployed on chainID.
func (cc ChainConfig) ForChain(chainID int64) (ChainContracts, error) {
	c, ok := cc[strconv.FormatInt(chainID, 10)]
	if !ok {
		return ChainContracts{}, fmt.Errorf("%w: %d", ErrChainNotConfigured, chainID)
	}
	return c, nil
}

// TokenAddresses returns the DAPP and eETH addresses, in that order.
func (c ChainContracts) TokenAddresses() []common.Address {
	return []common.Address{
		common.HexToAddress(c.DAPP.Address),
		common.HexToAddress(c.EETH.Address),
	}
}

// ExchangeAddress returns the exchange contract address.
func (c ChainContracts) ExchangeAddress() common.Address {
	return common.HexToAddress(c.Exchange.Address)
}

func (c ChainContracts) refs() map[string]ContractRef {
	return map[string]ContractRef{
		"DAPP":     c.DAPP,
		"eETH":     c.EETH,
		"exchange": c.Exchange,
	}
}
