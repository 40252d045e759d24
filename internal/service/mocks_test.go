package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

type mockAttester struct {
	mock.Mock
}

func (that *mockAttester) Attest(ctx context.Context, request entity.AttestationRequest) (string, error) {
	args := that.Called(ctx, request)
	return args.String(0), args.Error(1)
}

type mockFetcher struct {
	mock.Mock
}

func (that *mockFetcher) FetchAttestations(ctx context.Context, schemaUID common.Hash) ([]entity.Attestation, error) {
	args := that.Called(ctx, schemaUID)
	records, _ := args.Get(0).([]entity.Attestation)
	return records, args.Error(1)
}
