package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

const (
	x = entity.PlayerMark
	o = entity.AIMark
	e = entity.EmptyCell
)

func TestBotService_ChooseMove(t *testing.T) {
	bot := NewBotService()

	t.Run("Takes the win instead of blocking", func(t *testing.T) {
		// Given: both sides threaten a row, the AI is to move
		board := entity.Board{
			x, x, e,
			o, o, e,
			e, e, e,
		}

		// When: the AI chooses a move
		cell, err := bot.ChooseMove(board)

		// Then: it completes its own row
		require.NoError(t, err)
		assert.Equal(t, 5, cell)
	})

	t.Run("Blocks the player's open row", func(t *testing.T) {
		// Given: the player threatens the top row
		board := entity.Board{
			x, x, e,
			e, o, e,
			e, e, e,
		}

		// When: the AI chooses a move
		cell, err := bot.ChooseMove(board)

		// Then: it blocks cell 2
		require.NoError(t, err)
		assert.Equal(t, 2, cell)
	})

	t.Run("Prefers the faster of two wins", func(t *testing.T) {
		// Given: the AI can win now on cell 8, or set up a later win elsewhere
		board := entity.Board{
			x, x, o,
			x, e, o,
			e, e, e,
		}

		// When: the AI chooses a move
		cell, err := bot.ChooseMove(board)

		// Then: it wins immediately
		require.NoError(t, err)
		assert.Equal(t, 8, cell)
	})

	t.Run("Does not modify the caller's board", func(t *testing.T) {
		board := entity.Board{x, e, e, e, e, e, e, e, e}
		snapshot := board

		_, err := bot.ChooseMove(board)

		require.NoError(t, err)
		assert.Equal(t, snapshot, board)
	})

	t.Run("Returns ErrNoAvailableMoves on a terminal board", func(t *testing.T) {
		boards := []entity.Board{
			{x, o, x, x, o, o, o, x, x},
			{x, x, x, o, o, e, e, e, e},
		}

		for _, board := range boards {
			_, err := bot.ChooseMove(board)
			assert.ErrorIs(t, err, ErrNoAvailableMoves)
		}
	})
}

// TestBotService_NeverLoses plays every possible player line against the AI.
func TestBotService_NeverLoses(t *testing.T) {
	bot := NewBotService()

	var play func(board entity.Board)
	play = func(board entity.Board) {
		for _, cell := range board.EmptyCells() {
			next := board
			next[cell] = x

			if result := entity.Evaluate(next); result.Outcome.IsTerminal() {
				require.NotEqual(t, entity.PlayerWin, result.Outcome, "player won on %v", next)
				continue
			}

			aiCell, err := bot.ChooseMove(next)
			require.NoError(t, err)
			require.Equal(t, e, next[aiCell], "AI chose occupied cell %d on %v", aiCell, next)
			next[aiCell] = o

			if entity.Evaluate(next).Outcome.IsTerminal() {
				continue
			}

			play(next)
		}
	}

	play(entity.Board{})
}
