// Package attestation encodes game records with the EAS schema used by the leaderboard.
package attestation

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

// Schema is registered on-chain; field order and types must never change.
const Schema = "address player,uint256 totalWins,uint256 totalLosses,uint256 totalDraws,uint256 totalGames,uint256 timestamp,string gameId"

const wordSize = 32

// Byte ranges of the outcome counters inside an encoded record.
const (
	WinsOffset   = 1 * wordSize
	LossesOffset = 2 * wordSize
	DrawsOffset  = 3 * wordSize

	// MinPayloadSize covers every static field of the schema.
	MinPayloadSize = 7 * wordSize

	// CountersEnd is the first byte past the draws counter.
	CountersEnd = DrawsOffset + wordSize
)

var (
	ErrInvalidSchema = errors.New("invalid schema")

	arguments = mustParseSchema(Schema)
)

// ParseSchema turns "type name,type name" into ABI arguments.
func ParseSchema(schema string) (abi.Arguments, error) {
	fields := strings.Split(schema, ",")
	args := make(abi.Arguments, 0, len(fields))

	for _, field := range fields {
		parts := strings.Fields(field)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: field %q", ErrInvalidSchema, field)
		}

		typ, err := abi.NewType(parts[0], "", nil)
		if err != nil {
			return nil, fmt.Errorf("%w: type %q: %w", ErrInvalidSchema, parts[0], err)
		}

		// abi.NewType accepts any integer width
		if (typ.T == abi.IntTy || typ.T == abi.UintTy) && (typ.Size < 8 || typ.Size > 256 || typ.Size%8 != 0) {
			return nil, fmt.Errorf("%w: type %q: integer width must be a multiple of 8 up to 256", ErrInvalidSchema, parts[0])
		}

		args = append(args, abi.Argument{Name: parts[1], Type: typ})
	}

	return args, nil
}

func mustParseSchema(schema string) abi.Arguments {
	args, err := ParseSchema(schema)
	if err != nil {
		panic(err)
	}
	return args
}

func Encode(record entity.AttestationRecord) ([]byte, error) {
	data, err := arguments.Pack(
		record.Player,
		new(big.Int).SetUint64(record.TotalWins),
		new(big.Int).SetUint64(record.TotalLosses),
		new(big.Int).SetUint64(record.TotalDraws),
		new(big.Int).SetUint64(record.TotalGames),
		new(big.Int).SetUint64(record.Timestamp),
		record.GameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to pack record: %w", err)
	}

	return data, nil
}

func Decode(data []byte) (entity.AttestationRecord, error) {
	values, err := arguments.Unpack(data)
	if err != nil {
		return entity.AttestationRecord{}, fmt.Errorf("failed to unpack record: %w", err)
	}

	if len(values) != len(arguments) {
		return entity.AttestationRecord{}, fmt.Errorf("%w: got %d fields", ErrInvalidSchema, len(values))
	}

	player, ok := values[0].(common.Address)
	if !ok {
		return entity.AttestationRecord{}, fmt.Errorf("%w: player is %T", ErrInvalidSchema, values[0])
	}

	counters := make([]uint64, 0, 5)
	for i := 1; i <= 5; i++ {
		n, ok := values[i].(*big.Int)
		if !ok || !n.IsUint64() {
			return entity.AttestationRecord{}, fmt.Errorf("%w: %s out of range", ErrInvalidSchema, arguments[i].Name)
		}
		counters = append(counters, n.Uint64())
	}

	gameID, ok := values[6].(string)
	if !ok {
		return entity.AttestationRecord{}, fmt.Errorf("%w: gameId is %T", ErrInvalidSchema, values[6])
	}

	return entity.AttestationRecord{
		Player:      player,
		TotalWins:   counters[0],
		TotalLosses: counters[1],
		TotalDraws:  counters[2],
		TotalGames:  counters[3],
		Timestamp:   counters[4],
		GameID:      gameID,
	}, nil
}

// ReadCounter reads the uint256 word at offset without decoding the whole record.
func ReadCounter(data []byte, offset int) (*big.Int, error) {
	if offset < 0 || len(data) < offset+wordSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, need %d", ErrInvalidSchema, len(data), offset+wordSize)
	}

	return new(big.Int).SetBytes(data[offset : offset+wordSize]), nil
}
