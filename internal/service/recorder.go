package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-attest/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-attest/internal/attestation"
	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

const gameIDPrefix = "tictactoe-"

// attester - signs and submits an attestation, returning its UID.
type attester interface {
	Attest(ctx context.Context, request entity.AttestationRequest) (string, error)
}

type RecorderOption func(recorder *Recorder)

// WithClock - overrides the record timestamp source.
func WithClock(now func() time.Time) RecorderOption {
	return func(recorder *Recorder) {
		if now != nil {
			recorder.now = now
		}
	}
}

// WithGameIDs - overrides the game id generator.
func WithGameIDs(newID func() string) RecorderOption {
	return func(recorder *Recorder) {
		if newID != nil {
			recorder.newID = newID
		}
	}
}

type Recorder struct {
	logger    *slog.Logger
	attester  attester
	schemaUID common.Hash

	now   func() time.Time
	newID func() string
}

func NewRecorder(logger *slog.Logger, attester attester, schemaUID common.Hash, options ...RecorderOption) *Recorder {
	recorder := &Recorder{
		logger:    logger.With("component", "recorder"),
		attester:  attester,
		schemaUID: schemaUID,
		now:       time.Now,
		newID: func() string {
			return gameIDPrefix + uuid.NewString()
		},
	}

	for _, option := range options {
		option(recorder)
	}

	return recorder
}

// BuildRecord - one record per finished game with exactly one outcome counter set.
func (that *Recorder) BuildRecord(outcome entity.Outcome, player common.Address) (entity.AttestationRecord, error) {
	record := entity.AttestationRecord{
		Player:     player,
		TotalGames: 1,
		Timestamp:  uint64(that.now().Unix()),
		GameID:     that.newID(),
	}

	switch outcome {
	case entity.PlayerWin:
		record.TotalWins = 1
	case entity.AIWin:
		record.TotalLosses = 1
	case entity.Draw:
		record.TotalDraws = 1
	case entity.InProgress:
		return entity.AttestationRecord{}, apperror.ErrGameNotFinished
	default:
		return entity.AttestationRecord{}, fmt.Errorf("%w: unknown outcome %d", apperror.ErrGameNotFinished, outcome)
	}

	return record, nil
}

// RecordOutcome - submits the outcome once and returns the ledger UID. Retrying is up to the caller.
func (that *Recorder) RecordOutcome(ctx context.Context, outcome entity.Outcome, player common.Address) (string, error) {
	log := that.logger.With("method", "RecordOutcome", "player", player.Hex(), "outcome", outcome.String())

	if that.attester == nil || player == (common.Address{}) {
		return "", apperror.ErrNotAuthenticated
	}

	record, err := that.BuildRecord(outcome, player)
	if err != nil {
		return "", err
	}

	data, err := attestation.Encode(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}

	uid, err := that.attester.Attest(ctx, entity.AttestationRequest{
		Schema:    that.schemaUID,
		Recipient: player,
		Revocable: false,
		Data:      data,
	})
	if errors.Is(err, apperror.ErrNotAuthenticated) {
		return "", err
	}
	if err != nil {
		log.Error("failed to submit attestation", "gameID", record.GameID, "error", err)
		return "", apperror.NewSubmissionError(err)
	}

	log.Info("game result attested", "gameID", record.GameID, "uid", uid)

	return uid, nil
}
