package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rocketscienceinc/tictactoe-attest/internal/config"
	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
	"github.com/rocketscienceinc/tictactoe-attest/internal/repository"
	"github.com/rocketscienceinc/tictactoe-attest/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-attest/internal/service"
	"github.com/rocketscienceinc/tictactoe-attest/internal/transport/console"
	"github.com/rocketscienceinc/tictactoe-attest/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-attest/internal/wallet"
)

var (
	ErrAddrNotFound       = errors.New("redis address string is empty")
	ErrInvalidContract    = errors.New("ledger contract address is not a hex address")
	ErrInvalidSchemaUID   = errors.New("ledger schema uid is not a 32 byte hex string")
	ErrUnsupportedBackend = errors.New("unsupported ledger backend")
)

type ledgerAttester interface {
	Attest(ctx context.Context, request entity.AttestationRequest) (string, error)
}

type ledgerFetcher interface {
	FetchAttestations(ctx context.Context, schemaUID common.Hash) ([]entity.Attestation, error)
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	schemaUID, err := parseSchemaUID(conf.Ledger.SchemaUID)
	if err != nil {
		return err
	}

	signer, err := wallet.NewSigner(conf.Wallet.PrivateKey, conf.Ledger.ChainID)
	if err != nil {
		return fmt.Errorf("could not create wallet: %w", err)
	}

	attester, fetcher, closeLedger, err := openLedger(ctx, logger, conf, signer)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeLedger(); err != nil {
			log.Error("could not close ledger", "error", err)
		}
	}()

	recorder := service.NewRecorder(logger, attester, schemaUID)
	leaderboard := service.NewLeaderboardService(logger, fetcher, schemaUID)
	gameManager := usecase.NewGameManager(logger, service.NewBotService(), recorder, leaderboard, signer)

	server := console.New(logger, gameManager, signer, os.Stdout, conf.AIDelay, conf.Ledger.ExplorerLink)

	log.Info("Starting console", "backend", conf.Ledger.Backend, "schema", schemaUID.Hex())

	if err = server.Start(ctx, os.Stdin); err != nil {
		return fmt.Errorf("console error: %w", err)
	}

	log.Info("Console closed, shutting down")

	return nil
}

// openLedger - connects the configured backend. The returned func releases its connection.
func openLedger(ctx context.Context, logger *slog.Logger, conf *config.Config, signer *wallet.Signer) (ledgerAttester, ledgerFetcher, func() error, error) {
	switch conf.Ledger.Backend {
	case config.BackendEAS:
		if !common.IsHexAddress(conf.Ledger.ContractAddress) {
			return nil, nil, nil, fmt.Errorf("%w: %q", ErrInvalidContract, conf.Ledger.ContractAddress)
		}

		client, err := storage.NewEthereum(ctx, conf.Ledger.RPCURL, conf.Ledger.ChainID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("could not connect to ethereum rpc: %w", err)
		}

		attester, err := repository.NewEASAttester(logger, client, signer, common.HexToAddress(conf.Ledger.ContractAddress))
		if err != nil {
			client.Close()
			return nil, nil, nil, fmt.Errorf("could not create attester: %w", err)
		}

		fetcher := repository.NewEASScanClient(logger, conf.Ledger.GraphQLURL, nil)

		return attester, fetcher, func() error {
			client.Close()
			return nil
		}, nil

	case config.BackendRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedis(ctx, redisAddrString)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		ledger := repository.NewRedisLedger(logger, redisStorage, signer)

		return ledger, ledger, redisStorage.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, conf.Ledger.Backend)
	}
}

func parseSchemaUID(value string) (common.Hash, error) {
	raw, err := hexutil.Decode(value)
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %q", ErrInvalidSchemaUID, value)
	}

	return common.BytesToHash(raw), nil
}
