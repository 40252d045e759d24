package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rocketscienceinc/tictactoe-attest/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-attest/internal/attestation"
	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

// attestationFetcher - reads every attestation of a schema from the ledger, in ledger order.
type attestationFetcher interface {
	FetchAttestations(ctx context.Context, schemaUID common.Hash) ([]entity.Attestation, error)
}

type LeaderboardService struct {
	logger    *slog.Logger
	fetcher   attestationFetcher
	schemaUID common.Hash
}

func NewLeaderboardService(logger *slog.Logger, fetcher attestationFetcher, schemaUID common.Hash) *LeaderboardService {
	return &LeaderboardService{
		logger:    logger.With("component", "leaderboard"),
		fetcher:   fetcher,
		schemaUID: schemaUID,
	}
}

// Leaderboard - rebuilds the standings from scratch. Either the full table or an error, never a partial one.
func (that *LeaderboardService) Leaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error) {
	log := that.logger.With("method", "Leaderboard")

	records, err := that.fetcher.FetchAttestations(ctx, that.schemaUID)
	if err != nil {
		log.Error("failed to fetch attestations", "error", err)
		return nil, fmt.Errorf("%w: %w", apperror.ErrFetchFailed, err)
	}

	log.Debug("attestations fetched", "count", len(records))

	return that.Aggregate(records), nil
}

type playerStats struct {
	entity.LeaderboardEntry
	firstSeen int
}

// Aggregate - groups records by player and ranks them by wins. Players with equal wins keep
// the order in which they first appear in records. Undecodable records are skipped.
func (that *LeaderboardService) Aggregate(records []entity.Attestation) []entity.LeaderboardEntry {
	log := that.logger.With("method", "Aggregate")

	stats := make(map[common.Address]*playerStats)

	for _, record := range records {
		flags, err := DecodeOutcome(record)
		if err != nil {
			log.Warn("skipping attestation", "uid", record.UID, "error", err)
			continue
		}

		if !common.IsHexAddress(record.Recipient) {
			log.Warn("skipping attestation", "uid", record.UID, "error", &apperror.RecordDecodeError{
				UID:    record.UID,
				Reason: fmt.Sprintf("invalid recipient %q", record.Recipient),
			})
			continue
		}

		player := common.HexToAddress(record.Recipient)
		created := time.Unix(record.TimeCreated, 0).UTC()

		entry, ok := stats[player]
		if !ok {
			entry = &playerStats{
				LeaderboardEntry: entity.LeaderboardEntry{Player: player.Hex(), FirstPlayed: created},
				firstSeen:        len(stats),
			}
			stats[player] = entry
		}

		// a record counts toward exactly one bucket
		switch {
		case flags.Wins == 1:
			entry.Wins++
		case flags.Losses == 1:
			entry.Losses++
		case flags.Draws == 1:
			entry.Draws++
		}
		entry.TotalGames++

		if created.Before(entry.FirstPlayed) {
			entry.FirstPlayed = created
		}
	}

	ranked := make([]*playerStats, 0, len(stats))
	for _, entry := range stats {
		ranked = append(ranked, entry)
	}

	slices.SortFunc(ranked, func(a, b *playerStats) int {
		if a.Wins != b.Wins {
			if a.Wins > b.Wins {
				return -1
			}
			return 1
		}
		return a.firstSeen - b.firstSeen
	})

	leaderboard := make([]entity.LeaderboardEntry, 0, len(ranked))
	for _, entry := range ranked {
		entry.WinRate = winRate(entry.Wins, entry.TotalGames)
		leaderboard = append(leaderboard, entry.LeaderboardEntry)
	}

	return leaderboard
}

// DecodeOutcome - reads the wins/losses/draws words at their fixed offsets in the payload.
func DecodeOutcome(record entity.Attestation) (entity.OutcomeFlags, error) {
	data, err := hexutil.Decode(record.Payload)
	if err != nil {
		return entity.OutcomeFlags{}, &apperror.RecordDecodeError{UID: record.UID, Reason: err.Error()}
	}

	// only the counters are read, the rest of the record may be missing
	if len(data) < attestation.CountersEnd {
		return entity.OutcomeFlags{}, &apperror.RecordDecodeError{
			UID:    record.UID,
			Reason: fmt.Sprintf("payload is %d bytes, want at least %d", len(data), attestation.CountersEnd),
		}
	}

	var flags entity.OutcomeFlags
	for _, field := range []struct {
		offset int
		value  *uint64
	}{
		{attestation.WinsOffset, &flags.Wins},
		{attestation.LossesOffset, &flags.Losses},
		{attestation.DrawsOffset, &flags.Draws},
	} {
		counter, err := attestation.ReadCounter(data, field.offset)
		if err != nil {
			return entity.OutcomeFlags{}, &apperror.RecordDecodeError{UID: record.UID, Reason: err.Error()}
		}

		// anything but 0 or 1 does not count as a game result
		if counter.IsUint64() && counter.Uint64() <= 1 {
			*field.value = counter.Uint64()
		}
	}

	return flags, nil
}

// winRate - percentage of games won.
func winRate(wins, totalGames uint64) float64 {
	if totalGames == 0 {
		return 0
	}
	return float64(wins) / float64(totalGames) * 100
}
