package console

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

const (
	statusYourTurn = "Your turn"
	statusThinking = "AI is thinking..."
	statusSaving   = "Saving game result..."
	statusLogin    = "Login to Play"
	noGamesYet     = "No games played yet"
)

// gameStatus - the line shown above the board.
func gameStatus(game entity.Game) string {
	switch {
	case game.IsFinished():
		return game.Result.Outcome.String()
	case game.Turn == entity.AIMark:
		return statusThinking
	default:
		return statusYourTurn
	}
}

// renderBoard - free cells show their key, the winning line is bracketed.
func renderBoard(w io.Writer, board entity.Board, winningLine []int) {
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			index := row*3 + col

			symbol := board[index].String()
			if board[index] == entity.EmptyCell {
				symbol = strconv.Itoa(index + 1)
			}

			if slices.Contains(winningLine, index) {
				cells[col] = "[" + symbol + "]"
			} else {
				cells[col] = " " + symbol + " "
			}
		}

		fmt.Fprintln(w, strings.Join(cells, "|"))
		if row < 2 {
			fmt.Fprintln(w, "---+---+---")
		}
	}
}

// shortAddress - 0x1234...abcd
func shortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

func renderLeaderboard(w io.Writer, entries []entity.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, noGamesYet)
		return
	}

	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(table, "#\tPlayer\tWins\tLosses\tDraws\tGames\t")
	for i, entry := range entries {
		fmt.Fprintf(table, "%d\t%s\t%d\t%d\t%d\t%d\t%.1f%% win rate\n",
			i+1, shortAddress(entry.Player), entry.Wins, entry.Losses, entry.Draws, entry.TotalGames, entry.WinRate)
	}
	_ = table.Flush()
}
