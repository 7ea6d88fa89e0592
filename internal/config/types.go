package config

// Config holds all w3dex configuration.
type Config struct {
	RPCURL          string   `json:"rpc_url"`
	RPCFallbacks    []string `json:"rpc_fallbacks,omitempty"`
	RPCStrategy     string   `json:"rpc_strategy"`                  // "failover" | "fastest"
	DefaultWallet   string   `json:"default_wallet"`
	ChainConfigPath string   `json:"chain_config"`
	ChainSource     string   `json:"chain_config_source,omitempty"` // URL network sync pulls from
	LastSynced      string   `json:"last_synced,omitempty"`
	LogLevel        string   `json:"log_level"`                     // zap level: "debug" | "info" | "warn" | "error"
	RPCRateLimit    float64  `json:"rpc_rate_limit"`                // requests per second, 0 = unlimited
	RPCBurst        int      `json:"rpc_burst"`

	// internal: config dir path used for Save()
	configDir string
}

// ContractRef points at one deployed contract.
type ContractRef struct {
	Address string `json:"address"`
}

// ChainContracts lists the contracts deployed on one chain.
type ChainContracts struct {
	DAPP     ContractRef `json:"DAPP"`
	EETH     ContractRef `json:"eETH"`
	Exchange ContractRef `json:"exchange"`
}

// ChainConfig maps a decimal chain ID to its deployed contracts.
type ChainConfig map[string]ChainContracts
