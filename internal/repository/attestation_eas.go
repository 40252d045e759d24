package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

const (
	attestMethod  = "attest"
	attestedEvent = "Attested"
)

var (
	ErrTransactionReverted  = errors.New("attest transaction reverted")
	ErrAttestedEventMissing = errors.New("attested event not found in receipt")
)

// easABI - the subset of the EAS contract used to attest.
const easABI = `[
  {
    "type": "function",
    "name": "attest",
    "stateMutability": "payable",
    "inputs": [{
      "name": "request",
      "type": "tuple",
      "components": [
        {"name": "schema", "type": "bytes32"},
        {"name": "data", "type": "tuple", "components": [
          {"name": "recipient", "type": "address"},
          {"name": "expirationTime", "type": "uint64"},
          {"name": "revocable", "type": "bool"},
          {"name": "refUID", "type": "bytes32"},
          {"name": "data", "type": "bytes"},
          {"name": "value", "type": "uint256"}
        ]}
      ]
    }],
    "outputs": [{"name": "", "type": "bytes32"}]
  },
  {
    "type": "event",
    "name": "Attested",
    "anonymous": false,
    "inputs": [
      {"name": "recipient", "type": "address", "indexed": true},
      {"name": "attester", "type": "address", "indexed": true},
      {"name": "uid", "type": "bytes32", "indexed": false},
      {"name": "schemaUID", "type": "bytes32", "indexed": true}
    ]
  }
]`

type attestationRequestData struct {
	Recipient      common.Address
	ExpirationTime uint64
	Revocable      bool
	RefUID         [32]byte
	Data           []byte
	Value          *big.Int
}

type attestationRequest struct {
	Schema [32]byte
	Data   attestationRequestData
}

type attested struct {
	Recipient common.Address
	Attester  common.Address
	Uid       [32]byte
	SchemaUID [32]byte
}

// EthereumBackend - an RPC connection able to send transactions and wait for their receipts.
type EthereumBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// transactOptsProvider - signs transactions on behalf of the connected player.
type transactOptsProvider interface {
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
}

// EASAttester - submits attestations to the EAS contract and waits for them to be mined.
type EASAttester struct {
	logger   *slog.Logger
	backend  EthereumBackend
	signer   transactOptsProvider
	contract *bind.BoundContract
	eventID  common.Hash
}

func NewEASAttester(logger *slog.Logger, backend EthereumBackend, signer transactOptsProvider, contractAddress common.Address) (*EASAttester, error) {
	parsed, err := abi.JSON(strings.NewReader(easABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse EAS abi: %w", err)
	}

	attester := &EASAttester{
		logger:  logger.With("component", "eas_attester"),
		backend: backend,
		signer:  signer,
		eventID: parsed.Events[attestedEvent].ID,
	}

	attester.contract = bind.NewBoundContract(contractAddress, parsed, backend, backend, backend)

	return attester, nil
}

// Attest - sends the attest transaction signed by the player and returns the new attestation UID.
func (that *EASAttester) Attest(ctx context.Context, request entity.AttestationRequest) (string, error) {
	log := that.logger.With("method", "Attest", "recipient", request.Recipient.Hex())

	opts, err := that.signer.TransactOpts(ctx)
	if err != nil {
		return "", err
	}

	tx, err := that.contract.Transact(opts, attestMethod, attestationRequest{
		Schema: request.Schema,
		Data: attestationRequestData{
			Recipient:      request.Recipient,
			ExpirationTime: request.ExpirationTime,
			Revocable:      request.Revocable,
			Data:           request.Data,
			Value:          big.NewInt(0),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to send attest transaction: %w", err)
	}

	log.Info("attest transaction sent", "tx", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, that.backend, tx)
	if err != nil {
		return "", fmt.Errorf("failed to wait for attest transaction: %w", err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("%w: %s", ErrTransactionReverted, tx.Hash().Hex())
	}

	uid, err := that.attestedUID(receipt.Logs)
	if err != nil {
		return "", err
	}

	return uid.Hex(), nil
}

// attestedUID - the uid carried by the first Attested event among logs.
func (that *EASAttester) attestedUID(logs []*types.Log) (common.Hash, error) {
	for _, entry := range logs {
		if entry == nil || len(entry.Topics) == 0 || entry.Topics[0] != that.eventID {
			continue
		}

		var event attested
		if err := that.contract.UnpackLog(&event, attestedEvent, *entry); err != nil {
			return common.Hash{}, fmt.Errorf("failed to unpack attested event: %w", err)
		}

		return event.Uid, nil
	}

	return common.Hash{}, ErrAttestedEventMissing
}
