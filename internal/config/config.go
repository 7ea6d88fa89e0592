package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultRPCURL   = "http://127.0.0.1:8545"
	defaultLogLevel = "info"
	defaultBurst    = 1
	defaultStrategy = "failover"

	configFile      = "config.json"
	walletsFile     = "wallets.json"
	chainConfigFile = "chains.json"
)

// ErrUnknownKey is returned by Set for keys that are not part of Config.
var ErrUnknownKey = errors.New("unknown config key")

// Load reads config from dir (or creates defaults). dir defaults to ~/.w3dex.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3dex")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.RPCBurst < 1 {
		cfg.RPCBurst = defaultBurst
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the JSON file backing the wallet manager.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// ChainConfigFile resolves the chain configuration path. Relative paths are
// taken from the config dir.
func (c *Config) ChainConfigFile() string {
	switch {
	case c.ChainConfigPath == "":
		return filepath.Join(c.configDir, chainConfigFile)
	case filepath.IsAbs(c.ChainConfigPath):
		return c.ChainConfigPath
	default:
		return filepath.Join(c.configDir, c.ChainConfigPath)
	}
}

// Endpoints returns rpc_url followed by the fallbacks, without duplicates.
func (c *Config) Endpoints() []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range append([]string{c.RPCURL}, c.RPCFallbacks...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// Set updates one field by its JSON key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "rpc_url":
		c.RPCURL = value
	case "default_wallet":
		c.DefaultWallet = value
	case "chain_config":
		c.ChainConfigPath = value
	case "chain_config_source":
		c.ChainSource = value
	case "log_level":
		c.LogLevel = value
	case "rpc_fallbacks":
		c.RPCFallbacks = nil
		for _, u := range strings.Split(value, ",") {
			if u = strings.TrimSpace(u); u != "" {
				c.RPCFallbacks = append(c.RPCFallbacks, u)
			}
		}
	case "rpc_strategy":
		if value != "failover" && value != "fastest" {
			return fmt.Errorf("rpc_strategy must be failover or fastest, got %q", value)
		}
		c.RPCStrategy = value
	case "rpc_rate_limit":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("rpc_rate_limit must be a non-negative number, got %q", value)
		}
		c.RPCRateLimit = v
	case "rpc_burst":
		v, err := strconv.Atoi(value)
		if err != nil || v < 1 {
			return fmt.Errorf("rpc_burst must be a positive integer, got %q", value)
		}
		c.RPCBurst = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Fields returns the config as sorted key/value pairs for display.
func (c *Config) Fields() [][2]string {
	m := map[string]string{
		"rpc_url":             c.RPCURL,
		"rpc_fallbacks":       strings.Join(c.RPCFallbacks, ","),
		"rpc_strategy":        c.RPCStrategy,
		"default_wallet":      c.DefaultWallet,
		"chain_config":        c.ChainConfigFile(),
		"chain_config_source": c.ChainSource,
		"last_synced":         c.LastSynced,
		"log_level":           c.LogLevel,
		"rpc_rate_limit":      strconv.FormatFloat(c.RPCRateLimit, 'f', -1, 64),
		"rpc_burst":           strconv.Itoa(c.RPCBurst),
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, m[k]})
	}
	return out
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		RPCURL:      defaultRPCURL,
		LogLevel:    defaultLogLevel,
		RPCBurst:    defaultBurst,
		RPCStrategy: defaultStrategy,
		configDir:   dir,
	}
}

func loadJSON[T any](path string) (*T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &zero, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
