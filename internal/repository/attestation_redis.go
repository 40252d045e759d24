package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

// addressProvider - the connected player's account.
type addressProvider interface {
	Address(ctx context.Context) (common.Address, error)
}

// RedisLedger - a local ledger with EAS semantics: append-only, queryable by schema.
// Records are kept as JSON under attestations:<schemaUID>.
type RedisLedger struct {
	logger *slog.Logger
	client *redis.Client
	signer addressProvider
	now    func() time.Time
}

func NewRedisLedger(logger *slog.Logger, client *redis.Client, signer addressProvider) *RedisLedger {
	return &RedisLedger{
		logger: logger.With("component", "redis_ledger"),
		client: client,
		signer: signer,
		now:    time.Now,
	}
}

func attestationsKey(schemaUID common.Hash) string {
	return "attestations:" + schemaUID.Hex()
}

// Attest - appends the attestation and returns its UID. The player must be connected.
func (that *RedisLedger) Attest(ctx context.Context, request entity.AttestationRequest) (string, error) {
	attester, err := that.signer.Address(ctx)
	if err != nil {
		return "", err
	}

	key := attestationsKey(request.Schema)

	seq, err := that.client.Incr(ctx, key+":seq").Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate attestation sequence: %w", err)
	}

	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, uint64(seq))

	uid := crypto.Keccak256Hash(request.Schema.Bytes(), request.Recipient.Bytes(), attester.Bytes(), request.Data, nonce)

	record := entity.Attestation{
		UID:         uid.Hex(),
		Recipient:   request.Recipient.Hex(),
		Payload:     hexutil.Encode(request.Data),
		TimeCreated: that.now().Unix(),
	}

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal attestation: %w", err)
	}

	if err = that.client.RPush(ctx, key, recordJSON).Err(); err != nil {
		return "", fmt.Errorf("failed to append attestation: %w", err)
	}

	that.logger.Info("attestation stored", "method", "Attest", "uid", record.UID, "recipient", record.Recipient)

	return record.UID, nil
}

// FetchAttestations - every attestation of the schema in insertion order.
func (that *RedisLedger) FetchAttestations(ctx context.Context, schemaUID common.Hash) ([]entity.Attestation, error) {
	values, err := that.client.LRange(ctx, attestationsKey(schemaUID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read attestations: %w", err)
	}

	attestations := make([]entity.Attestation, 0, len(values))
	for _, value := range values {
		var record entity.Attestation
		if err = json.Unmarshal([]byte(value), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attestation: %w", err)
		}

		attestations = append(attestations, record)
	}

	return attestations, nil
}
