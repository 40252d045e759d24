package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-attest/internal/apperror"
)

type Mark uint8

const (
	EmptyCell Mark = iota
	PlayerMark
	AIMark
)

func (that Mark) String() string {
	switch that {
	case PlayerMark:
		return "X"
	case AIMark:
		return "O"
	default:
		return ""
	}
}

type Outcome int

const (
	InProgress Outcome = iota
	PlayerWin
	AIWin
	Draw
)

func (that Outcome) String() string {
	switch that {
	case PlayerWin:
		return "Player Won!"
	case AIWin:
		return "AI Won!"
	case Draw:
		return "It's a Draw!"
	default:
		return "In progress"
	}
}

func (that Outcome) IsTerminal() bool {
	return that != InProgress
}

var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Board [9]Mark

// EmptyCells - indices of free cells in ascending order.
func (that Board) EmptyCells() []int {
	cells := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}
	return cells
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}
	return true
}

// Result - the evaluation of a board. WinningLine is nil unless somebody won.
type Result struct {
	Outcome     Outcome
	WinningLine []int
}

func Evaluate(board Board) Result {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			outcome := PlayerWin
			if a == AIMark {
				outcome = AIWin
			}
			return Result{Outcome: outcome, WinningLine: []int{combo[0], combo[1], combo[2]}}
		}
	}

	if board.IsFull() {
		return Result{Outcome: Draw}
	}

	return Result{Outcome: InProgress}
}

// Game - a single round against the AI. Turn is EmptyCell once the game is finished.
type Game struct {
	ID     string
	Board  Board
	Turn   Mark
	Result Result
}

func NewGame(id string) *Game {
	return &Game{
		ID:   id,
		Turn: PlayerMark,
	}
}

func (that *Game) Reset(id string) {
	*that = *NewGame(id)
}

func (that *Game) IsFinished() bool {
	return that.Result.Outcome.IsTerminal()
}

func (that *Game) ApplyPlayerMove(cell int) error {
	return that.makeTurn(PlayerMark, cell)
}

func (that *Game) ApplyAIMove(cell int) error {
	return that.makeTurn(AIMark, cell)
}

func (that *Game) makeTurn(mark Mark, cell int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = mark
	that.Turn = toggleMark(mark)

	that.updateGameState()

	return nil
}

// updateGameState - runs after every applied move.
func (that *Game) updateGameState() {
	that.Result = Evaluate(that.Board)
	if that.IsFinished() {
		that.Turn = EmptyCell
	}
}

func toggleMark(mark Mark) Mark {
	if mark == PlayerMark {
		return AIMark
	}
	return PlayerMark
}
