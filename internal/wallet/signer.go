package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rocketscienceinc/tictactoe-attest/internal/apperror"
)

// Signer - the player's account. It signs only while connected.
type Signer struct {
	mu        sync.RWMutex
	key       *ecdsa.PrivateKey
	address   common.Address
	chainID   *big.Int
	connected bool
}

// NewSigner - builds a signer from a hex private key. An empty key gives a signer that can never connect.
func NewSigner(privateKeyHex string, chainID int64) (*Signer, error) {
	signer := &Signer{chainID: big.NewInt(chainID)}

	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if privateKeyHex == "" {
		return signer, nil
	}

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet private key: %w", err)
	}

	signer.key = key
	signer.address = crypto.PubkeyToAddress(key.PublicKey)

	return signer, nil
}

func (that *Signer) Connect() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.key == nil {
		return fmt.Errorf("%w: no private key configured", apperror.ErrNotAuthenticated)
	}

	that.connected = true

	return nil
}

func (that *Signer) Disconnect() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.connected = false
}

func (that *Signer) Connected() bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.connected
}

// Address - the authenticated player address.
func (that *Signer) Address(_ context.Context) (common.Address, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if !that.connected {
		return common.Address{}, apperror.ErrNotAuthenticated
	}

	return that.address, nil
}

// TransactOpts - transaction options signed by this account, bound to ctx.
func (that *Signer) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if !that.connected {
		return nil, apperror.ErrNotAuthenticated
	}

	opts, err := bind.NewKeyedTransactorWithChainID(that.key, that.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx

	return opts, nil
}
