package service

import (
	"errors"
	"math"

	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// winScore - score of an immediate AI win. Each ply of depth costs one point.
const winScore = 10

type BotService interface {
	ChooseMove(board entity.Board) (int, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// ChooseMove - returns the cell that is optimal for the AI under minimax.
// Among equally scored cells the lowest index wins.
func (that *botService) ChooseMove(board entity.Board) (int, error) {
	if entity.Evaluate(board).Outcome.IsTerminal() {
		return 0, ErrNoAvailableMoves
	}

	bestScore := math.MinInt
	bestMove := -1

	for _, cell := range board.EmptyCells() {
		board[cell] = entity.AIMark
		score := minimax(&board, 0, false)
		board[cell] = entity.EmptyCell

		if score > bestScore {
			bestScore = score
			bestMove = cell
		}
	}

	return bestMove, nil
}

// minimax - scores board for the AI. It places and clears marks in board, leaving it as it found it.
func minimax(board *entity.Board, depth int, maximizing bool) int {
	switch entity.Evaluate(*board).Outcome {
	case entity.AIWin:
		return winScore - depth
	case entity.PlayerWin:
		return depth - winScore
	case entity.Draw:
		return 0
	case entity.InProgress:
	}

	if maximizing {
		best := math.MinInt
		for _, cell := range board.EmptyCells() {
			board[cell] = entity.AIMark
			best = max(best, minimax(board, depth+1, false))
			board[cell] = entity.EmptyCell
		}
		return best
	}

	best := math.MaxInt
	for _, cell := range board.EmptyCells() {
		board[cell] = entity.PlayerMark
		best = min(best, minimax(board, depth+1, true))
		board[cell] = entity.EmptyCell
	}
	return best
}
