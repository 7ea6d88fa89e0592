// Package wallet keeps the accounts w3dex can read for or sign with.
// Metadata lives in a Store; private keys live in a KeyStore and never
// touch the wallets file.
package wallet

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Kind tells whether a wallet can sign.
type Kind string

const (
	KindWatchOnly Kind = "watch-only"
	KindSigning   Kind = "signing"
)

var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
	ErrInvalidAddress = errors.New("invalid address")
	ErrWatchOnly      = errors.New("wallet is watch-only and cannot sign")
)

// Wallet is one named account.
type Wallet struct {
	Name      string         `json:"name"`
	Address   common.Address `json:"address"`
	Kind      Kind           `json:"type"`
	KeyRef    string         `json:"key_ref,omitempty"`
	IsDefault bool           `json:"is_default"`
	CreatedAt time.Time      `json:"created_at"`
}

// CanSign reports whether the wallet has a stored key.
func (w *Wallet) CanSign() bool { return w.Kind == KindSigning }

// Store persists wallet metadata.
type Store interface {
	Load() ([]*Wallet, error)
	Save([]*Wallet) error
}

// Manager handles wallet CRUD. It is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	store   Store
	keys    KeyStore
	keyDir  string
	wallets map[string]*Wallet
	loaded  bool
	now     func() time.Time
}

type Option func(*Manager)

// WithInMemoryStore keeps wallets and keys in memory.
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
		m.keys = NewInMemoryKeystore()
	}
}

func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

func WithKeyStore(ks KeyStore) Option {
	return func(m *Manager) { m.keys = ks }
}

// WithKeyringDir sets where the file keyring lives when the OS keychain is
// unavailable.
func WithKeyringDir(dir string) Option {
	return func(m *Manager) { m.keyDir = dir }
}

// NewManager creates a wallet manager. Without WithKeyStore the OS keychain
// is opened on first use.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		wallets: make(map[string]*Wallet),
		store:   &memStore{},
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) keyStore() KeyStore {
	if m.keys == nil {
		m.keys = DefaultKeystore(m.keyDir)
	}
	return m.keys
}

// AddWatchOnly registers an address the shell can read balances for but
// not sign with.
func (m *Manager) AddWatchOnly(name, address string) (*Wallet, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	w := &Wallet{Name: name, Address: common.HexToAddress(address), Kind: KindWatchOnly}
	return w, m.insertLocked(w)
}

// Import stores hexKey and registers the signing wallet derived from it.
func (m *Manager) Import(name, hexKey string) (*Wallet, error) {
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadLocked(); err != nil {
		return nil, err
	}
	if _, ok := m.wallets[name]; ok {
		return nil, ErrWalletExists
	}

	ref, err := m.keyStore().Store(name, hexKey)
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}
	w := &Wallet{
		Name:    name,
		Address: crypto.PubkeyToAddress(key.PublicKey),
		Kind:    KindSigning,
		KeyRef:  ref,
	}
	return w, m.insertLocked(w)
}

// Generate creates a fresh signing wallet and returns it with its
// 0x-prefixed key.
func (m *Manager) Generate(name string) (*Wallet, string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, "", fmt.Errorf("generating key: %w", err)
	}
	hexKey := hexutil.Encode(crypto.FromECDSA(key))
	w, err := m.Import(name, hexKey)
	if err != nil {
		return nil, "", err
	}
	return w, hexKey, nil
}

func (m *Manager) Get(name string) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(name)
}

// Remove deletes a wallet and its stored key.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.getLocked(name)
	if err != nil {
		return err
	}
	if w.CanSign() && w.KeyRef != "" {
		if err := m.keyStore().Delete(w.KeyRef); err != nil {
			return fmt.Errorf("deleting key: %w", err)
		}
	}
	delete(m.wallets, name)
	return m.persistLocked()
}

// List returns all wallets sorted by name.
func (m *Manager) List() ([]*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadLocked(); err != nil {
		return nil, err
	}
	return m.sortedLocked(), nil
}

// SetDefault marks name as the only default wallet.
func (m *Manager) SetDefault(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.getLocked(name); err != nil {
		return err
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persistLocked()
}

// Default returns the default wallet. A lone wallet is the default even
// when unmarked. Nil when there is none.
func (m *Manager) Default() *Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadLocked() != nil {
		return nil
	}
	for _, w := range m.wallets {
		if w.IsDefault {
			return w
		}
	}
	if len(m.wallets) == 1 {
		for _, w := range m.wallets {
			return w
		}
	}
	return nil
}

// Signer returns a transaction signer for a signing wallet.
func (m *Manager) Signer(name string) (*Signer, error) {
	w, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	if !w.CanSign() {
		return nil, fmt.Errorf("%q: %w", name, ErrWatchOnly)
	}
	return NewSigner(w, m.keyStore()), nil
}

func (m *Manager) getLocked(name string) (*Wallet, error) {
	if err := m.loadLocked(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, name)
	}
	return w, nil
}

func (m *Manager) insertLocked(w *Wallet) error {
	if err := m.loadLocked(); err != nil {
		return err
	}
	if _, ok := m.wallets[w.Name]; ok {
		return ErrWalletExists
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = m.now()
	}
	m.wallets[w.Name] = w
	return m.persistLocked()
}

func (m *Manager) loadLocked() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("loading wallets: %w", err)
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persistLocked() error {
	return m.store.Save(m.sortedLocked())
}

func (m *Manager) sortedLocked() []*Wallet {
	out := make([]*Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
