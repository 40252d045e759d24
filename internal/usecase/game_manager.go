package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-attest/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

var ErrNotAITurn = errors.New("it's not the AI's turn")

type botService interface {
	ChooseMove(board entity.Board) (int, error)
}

type resultRecorder interface {
	RecordOutcome(ctx context.Context, outcome entity.Outcome, player common.Address) (string, error)
}

type leaderboardService interface {
	Leaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error)
}

type account interface {
	Address(ctx context.Context) (common.Address, error)
}

// GameManager - one player's session against the AI. A finished game stays on the
// board until SaveResult records it; a failed save can be retried.
type GameManager struct {
	logger      *slog.Logger
	bot         botService
	recorder    resultRecorder
	leaderboard leaderboardService
	account     account

	mu      sync.Mutex
	game    *entity.Game
	saving  bool
	unsaved bool
	lastUID string
}

func NewGameManager(logger *slog.Logger, bot botService, recorder resultRecorder, leaderboard leaderboardService, account account) *GameManager {
	return &GameManager{
		logger:      logger.With("component", "game_manager"),
		bot:         bot,
		recorder:    recorder,
		leaderboard: leaderboard,
		account:     account,
		game:        entity.NewGame(newGameID()),
	}
}

func newGameID() string {
	return uuid.NewString()
}

// Game - a snapshot of the current game.
func (that *GameManager) Game() entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	return *that.game
}

// Saving - true while a result submission is in flight.
func (that *GameManager) Saving() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.saving
}

// Unsaved - true when the current game is finished but its result was not recorded.
func (that *GameManager) Unsaved() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.unsaved
}

// LastUID - the attestation UID of the last recorded game, empty if none.
func (that *GameManager) LastUID() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.lastUID
}

// NewGame - abandons the current game, recorded or not, and starts a fresh one.
func (that *GameManager) NewGame() (entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.saving {
		return entity.Game{}, apperror.ErrSubmissionInFlight
	}

	that.game.Reset(newGameID())
	that.unsaved = false

	return *that.game, nil
}

// PlayerMove - places the player's mark.
func (that *GameManager) PlayerMove(ctx context.Context, cell int) (entity.Game, error) {
	if _, err := that.account.Address(ctx); err != nil {
		return that.Game(), err
	}

	that.mu.Lock()

	if that.saving {
		that.mu.Unlock()
		return that.Game(), apperror.ErrSubmissionInFlight
	}

	if err := that.game.ApplyPlayerMove(cell); err != nil {
		snapshot := *that.game
		that.mu.Unlock()
		return snapshot, err
	}

	return that.afterMove()
}

// AIMove - lets the AI answer the player's move.
func (that *GameManager) AIMove(ctx context.Context) (entity.Game, error) {
	that.mu.Lock()

	if that.saving {
		that.mu.Unlock()
		return that.Game(), apperror.ErrSubmissionInFlight
	}

	if that.game.IsFinished() || that.game.Turn != entity.AIMark {
		snapshot := *that.game
		that.mu.Unlock()
		return snapshot, ErrNotAITurn
	}

	cell, err := that.bot.ChooseMove(that.game.Board)
	if err != nil {
		snapshot := *that.game
		that.mu.Unlock()
		return snapshot, fmt.Errorf("failed to choose AI move: %w", err)
	}

	if err = that.game.ApplyAIMove(cell); err != nil {
		snapshot := *that.game
		that.mu.Unlock()
		return snapshot, fmt.Errorf("failed to apply AI move: %w", err)
	}

	return that.afterMove()
}

// SaveResult - records the finished game once. On success a new game is started and the
// finished one is returned; on failure the finished game is kept for a retry.
func (that *GameManager) SaveResult(ctx context.Context) (entity.Game, error) {
	that.mu.Lock()

	if that.saving {
		that.mu.Unlock()
		return that.Game(), apperror.ErrSubmissionInFlight
	}

	if !that.game.IsFinished() {
		that.mu.Unlock()
		return that.Game(), apperror.ErrGameNotFinished
	}

	if !that.unsaved {
		snapshot := *that.game
		that.mu.Unlock()
		return snapshot, nil
	}

	return that.record(ctx)
}

// Leaderboard - the current standings from the ledger.
func (that *GameManager) Leaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error) {
	return that.leaderboard.Leaderboard(ctx)
}

// afterMove - expects the lock held and releases it.
func (that *GameManager) afterMove() (entity.Game, error) {
	if !that.game.IsFinished() {
		snapshot := *that.game
		that.mu.Unlock()
		return snapshot, nil
	}

	that.unsaved = true
	snapshot := *that.game
	that.mu.Unlock()

	that.logger.Info("game finished", "method", "afterMove", "gameID", snapshot.ID, "outcome", snapshot.Result.Outcome.String())

	return snapshot, nil
}

// record - expects the lock held and releases it. The submission runs unlocked so the
// in-flight state stays observable.
func (that *GameManager) record(ctx context.Context) (entity.Game, error) {
	log := that.logger.With("method", "record", "gameID", that.game.ID)

	that.saving = true
	finished := *that.game
	that.mu.Unlock()

	uid, err := that.submit(ctx, finished.Result.Outcome)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.saving = false

	if err != nil {
		log.Warn("game result not saved", "error", err)
		return finished, err
	}

	that.lastUID = uid
	that.unsaved = false
	that.game.Reset(newGameID())

	return finished, nil
}

func (that *GameManager) submit(ctx context.Context, outcome entity.Outcome) (string, error) {
	player, err := that.account.Address(ctx)
	if err != nil {
		return "", err
	}

	uid, err := that.recorder.RecordOutcome(ctx, outcome, player)
	if err != nil {
		return "", fmt.Errorf("failed to record game result: %w", err)
	}

	return uid, nil
}
