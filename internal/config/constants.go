package config

import "time"

// Timeout constants used across cmd.
const (
	DialTimeout      = 10 * time.Second // provider connection + first eth_chainId
	LoadTimeout      = 30 * time.Second // full shell load sequence
	TxConfirmTimeout = 3 * time.Minute  // standard transaction confirmation wait
)
