package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rocketscienceinc/tictactoe-attest/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

const helpText = `Commands:
  1-9     place your mark
  n       new game
  r       retry saving the last result
  l       leaderboard
  login   connect your wallet
  logout  disconnect your wallet
  q       quit`

type uGame interface {
	Game() entity.Game
	NewGame() (entity.Game, error)
	PlayerMove(ctx context.Context, cell int) (entity.Game, error)
	AIMove(ctx context.Context) (entity.Game, error)
	SaveResult(ctx context.Context) (entity.Game, error)
	Unsaved() bool
	LastUID() string
	Leaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error)
}

type session interface {
	Connect() error
	Disconnect()
	Connected() bool
	Address(ctx context.Context) (common.Address, error)
}

// Server - line based front end: one command per line on input, board and status on output.
type Server struct {
	logger  *slog.Logger
	uGame   uGame
	session session
	out     io.Writer

	aiDelay      time.Duration
	explorerLink func(uid string) string

	handlers map[string]func(ctx context.Context) error
}

func New(logger *slog.Logger, uGame uGame, session session, out io.Writer, aiDelay time.Duration, explorerLink func(uid string) string) *Server {
	server := &Server{
		logger:       logger.With("component", "console"),
		uGame:        uGame,
		session:      session,
		out:          out,
		aiDelay:      aiDelay,
		explorerLink: explorerLink,

		handlers: make(map[string]func(ctx context.Context) error),
	}

	server.handlers["n"] = server.handleNewGame
	server.handlers["r"] = server.handleRetry
	server.handlers["l"] = server.handleLeaderboard
	server.handlers["login"] = server.handleLogin
	server.handlers["logout"] = server.handleLogout
	server.handlers["h"] = server.handleHelp
	server.handlers["help"] = server.handleHelp

	return server
}

// Start - processes commands from in until EOF, "q" or ctx cancellation.
func (that *Server) Start(ctx context.Context, in io.Reader) error {
	log := that.logger.With("method", "Start")

	// releases the reader goroutine when the loop returns first
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	fmt.Fprintln(that.out, helpText)
	that.showSession(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}

			command := strings.ToLower(strings.TrimSpace(line))
			if command == "" {
				continue
			}
			if command == "q" || command == "quit" {
				return nil
			}

			if err := that.handle(ctx, command); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				log.Error("error processing command", "command", command, "error", err)
			}
		}
	}
}

func (that *Server) handle(ctx context.Context, command string) error {
	if cell, err := strconv.Atoi(command); err == nil {
		return that.handleCell(ctx, cell-1)
	}

	handler, ok := that.handlers[command]
	if !ok {
		fmt.Fprintf(that.out, "Unknown command %q, type h for help\n", command)
		return nil
	}

	return handler(ctx)
}

func (that *Server) handleCell(ctx context.Context, cell int) error {
	if !that.session.Connected() {
		fmt.Fprintln(that.out, statusLogin)
		return nil
	}

	game, err := that.uGame.PlayerMove(ctx, cell)
	if err != nil {
		return that.report(err)
	}

	if !game.IsFinished() {
		that.showGame(game)

		if err = that.think(ctx); err != nil {
			return err
		}

		game, err = that.uGame.AIMove(ctx)
		if err != nil {
			return that.report(err)
		}
	}

	that.showGame(game)

	if game.IsFinished() {
		return that.save(ctx)
	}

	return nil
}

// think - the cosmetic pause before the AI answers.
func (that *Server) think(ctx context.Context) error {
	if that.aiDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(that.aiDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (that *Server) save(ctx context.Context) error {
	fmt.Fprintln(that.out, statusSaving)

	if _, err := that.uGame.SaveResult(ctx); err != nil {
		if reportErr := that.report(err); reportErr != nil {
			return reportErr
		}
		fmt.Fprintln(that.out, "Press r to retry or n for a new game")
		return nil
	}

	uid := that.uGame.LastUID()
	fmt.Fprintf(that.out, "Game saved: %s\n", that.explorerLink(uid))

	that.showGame(that.uGame.Game())

	return nil
}

func (that *Server) handleNewGame(_ context.Context) error {
	game, err := that.uGame.NewGame()
	if err != nil {
		return that.report(err)
	}

	that.showGame(game)

	return nil
}

func (that *Server) handleRetry(ctx context.Context) error {
	if !that.uGame.Unsaved() {
		fmt.Fprintln(that.out, "Nothing to save")
		return nil
	}

	return that.save(ctx)
}

func (that *Server) handleLeaderboard(ctx context.Context) error {
	entries, err := that.uGame.Leaderboard(ctx)
	if err != nil {
		return that.report(err)
	}

	renderLeaderboard(that.out, entries)

	return nil
}

func (that *Server) handleLogin(ctx context.Context) error {
	if err := that.session.Connect(); err != nil {
		return that.report(err)
	}

	that.showSession(ctx)

	return nil
}

func (that *Server) handleLogout(ctx context.Context) error {
	that.session.Disconnect()
	that.showSession(ctx)

	return nil
}

func (that *Server) handleHelp(_ context.Context) error {
	fmt.Fprintln(that.out, helpText)
	return nil
}

// showSession - who plays, or the login prompt.
func (that *Server) showSession(ctx context.Context) {
	address, err := that.session.Address(ctx)
	if err != nil {
		fmt.Fprintf(that.out, "%s (type login)\n", statusLogin)
		return
	}

	fmt.Fprintf(that.out, "%s vs AI\n", shortAddress(address.Hex()))
	that.showGame(that.uGame.Game())

	if that.uGame.Unsaved() {
		fmt.Fprintln(that.out, "The last result is not saved yet, press r to retry")
	}
}

func (that *Server) showGame(game entity.Game) {
	fmt.Fprintln(that.out)
	renderBoard(that.out, game.Board, game.Result.WinningLine)
	fmt.Fprintln(that.out, gameStatus(game))
}

// report - prints errors the user can act on. Anything else is returned for logging.
func (that *Server) report(err error) error {
	var submissionErr *apperror.SubmissionError

	switch {
	case errors.As(err, &submissionErr):
		fmt.Fprintf(that.out, "Error: %s\n", submissionErr.Reason)
	case errors.Is(err, apperror.ErrInvalidMove):
		fmt.Fprintf(that.out, "Invalid move: %s\n", err)
	case errors.Is(err, apperror.ErrNotAuthenticated):
		fmt.Fprintf(that.out, "%s: %s\n", statusLogin, err)
	case errors.Is(err, apperror.ErrSubmissionInFlight):
		fmt.Fprintln(that.out, statusSaving)
	case errors.Is(err, apperror.ErrFetchFailed):
		fmt.Fprintf(that.out, "Error: %s\n", apperror.ErrFetchFailed)
		return err
	default:
		fmt.Fprintf(that.out, "Error: %s\n", err)
		return err
	}

	return nil
}
