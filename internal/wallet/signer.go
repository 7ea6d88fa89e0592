package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs transactions for one signing wallet. The key is fetched from
// the key store on first use and must match the wallet's address.
type Signer struct {
	wallet *Wallet
	ks     KeyStore

	once sync.Once
	key  *ecdsa.PrivateKey
	err  error
}

func NewSigner(w *Wallet, ks KeyStore) *Signer {
	return &Signer{wallet: w, ks: ks}
}

// Address returns the hex address transactions are sent from.
func (s *Signer) Address() string { return s.wallet.Address.Hex() }

// Account returns the address transactions are sent from.
func (s *Signer) Account() common.Address { return s.wallet.Address }

// SignTx signs tx for chainID and returns its binary encoding.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	key, err := s.privateKey()
	if err != nil {
		return nil, err
	}
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed.MarshalBinary()
}

func (s *Signer) privateKey() (*ecdsa.PrivateKey, error) {
	s.once.Do(func() {
		if !s.wallet.CanSign() {
			s.err = fmt.Errorf("%q: %w", s.wallet.Name, ErrWatchOnly)
			return
		}
		hexKey, err := s.ks.Retrieve(s.wallet.KeyRef)
		if err != nil {
			s.err = fmt.Errorf("retrieving key: %w", err)
			return
		}
		key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
		if err != nil {
			s.err = fmt.Errorf("%w: %v", ErrInvalidKey, err)
			return
		}
		if got := crypto.PubkeyToAddress(key.PublicKey); got != s.wallet.Address {
			s.err = fmt.Errorf("key for %q belongs to %s, not %s", s.wallet.Name, got.Hex(), s.wallet.Address.Hex())
			return
		}
		s.key = key
	})
	return s.key, s.err
}
