package usecase

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

type mockBotService struct {
	mock.Mock
}

func newMockBotService(t *testing.T) *mockBotService {
	m := &mockBotService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (that *mockBotService) ChooseMove(board entity.Board) (int, error) {
	args := that.Called(board)
	return args.Int(0), args.Error(1)
}

type mockResultRecorder struct {
	mock.Mock
}

func newMockResultRecorder(t *testing.T) *mockResultRecorder {
	m := &mockResultRecorder{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (that *mockResultRecorder) RecordOutcome(ctx context.Context, outcome entity.Outcome, player common.Address) (string, error) {
	args := that.Called(ctx, outcome, player)
	return args.String(0), args.Error(1)
}

type mockLeaderboardService struct {
	mock.Mock
}

func newMockLeaderboardService(t *testing.T) *mockLeaderboardService {
	m := &mockLeaderboardService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (that *mockLeaderboardService) Leaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error) {
	args := that.Called(ctx)
	entries, _ := args.Get(0).([]entity.LeaderboardEntry)
	return entries, args.Error(1)
}

type mockAccount struct {
	mock.Mock
}

func newMockAccount(t *testing.T) *mockAccount {
	m := &mockAccount{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (that *mockAccount) Address(ctx context.Context) (common.Address, error) {
	args := that.Called(ctx)
	address, _ := args.Get(0).(common.Address)
	return address, args.Error(1)
}
