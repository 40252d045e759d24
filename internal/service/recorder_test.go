package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-attest/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-attest/internal/attestation"
	"github.com/rocketscienceinc/tictactoe-attest/internal/entity"
)

var (
	errUserRejected = errors.New("user rejected the request")

	testSchemaUID = common.HexToHash("0x31876b77368248bfab65f0ce7c5d5f74109b2491ac018c2424083e017cf6d52c")
	testPlayer    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testTime      = time.Unix(1700000000, 0)
)

func newTestRecorder(attester attester) *Recorder {
	return NewRecorder(testLogger, attester, testSchemaUID,
		WithClock(func() time.Time { return testTime }),
		WithGameIDs(func() string { return "tictactoe-test" }),
	)
}

func TestRecorder_BuildRecord(t *testing.T) {
	recorder := newTestRecorder(nil)

	tests := []struct {
		name     string
		outcome  entity.Outcome
		expected entity.AttestationRecord
	}{
		{"PlayerWin sets totalWins", entity.PlayerWin, entity.AttestationRecord{TotalWins: 1}},
		{"AIWin sets totalLosses", entity.AIWin, entity.AttestationRecord{TotalLosses: 1}},
		{"Draw sets totalDraws", entity.Draw, entity.AttestationRecord{TotalDraws: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When: building a record for the outcome
			record, err := recorder.BuildRecord(tt.outcome, testPlayer)

			// Then: exactly one counter is set and the game counts once
			require.NoError(t, err)
			tt.expected.Player = testPlayer
			tt.expected.TotalGames = 1
			tt.expected.Timestamp = uint64(testTime.Unix())
			tt.expected.GameID = "tictactoe-test"
			assert.Equal(t, tt.expected, record)
		})
	}

	t.Run("InProgress is rejected", func(t *testing.T) {
		_, err := recorder.BuildRecord(entity.InProgress, testPlayer)
		assert.ErrorIs(t, err, apperror.ErrGameNotFinished)
	})

	t.Run("Default game ids are unique", func(t *testing.T) {
		recorder := NewRecorder(testLogger, nil, testSchemaUID)

		first, err := recorder.BuildRecord(entity.Draw, testPlayer)
		require.NoError(t, err)
		second, err := recorder.BuildRecord(entity.Draw, testPlayer)
		require.NoError(t, err)

		assert.NotEqual(t, first.GameID, second.GameID)
		assert.Contains(t, first.GameID, gameIDPrefix)
	})
}

func TestRecorder_RecordOutcome(t *testing.T) {
	ctx := context.Background()

	t.Run("Submits the encoded record and returns the UID", func(t *testing.T) {
		// Given: an attester that accepts the request
		mockAttester := &mockAttester{}
		recorder := newTestRecorder(mockAttester)

		var submitted entity.AttestationRequest
		mockAttester.On("Attest", ctx, mock.AnythingOfType("entity.AttestationRequest")).
			Run(func(args mock.Arguments) {
				submitted = args.Get(1).(entity.AttestationRequest)
			}).
			Return("0xuid", nil).
			Once()

		// When: recording a player win
		uid, err := recorder.RecordOutcome(ctx, entity.PlayerWin, testPlayer)

		// Then: the UID comes back and the request carries the record
		require.NoError(t, err)
		assert.Equal(t, "0xuid", uid)
		assert.Equal(t, testSchemaUID, submitted.Schema)
		assert.Equal(t, testPlayer, submitted.Recipient)
		assert.False(t, submitted.Revocable)

		record, err := attestation.Decode(submitted.Data)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), record.TotalWins)
		assert.Equal(t, uint64(0), record.TotalLosses)
		assert.Equal(t, uint64(0), record.TotalDraws)
		assert.Equal(t, uint64(1), record.TotalGames)

		mockAttester.AssertExpectations(t)
	})

	t.Run("Zero address is not authenticated", func(t *testing.T) {
		// Given: an attester that must not be called
		mockAttester := &mockAttester{}
		recorder := newTestRecorder(mockAttester)

		// When: recording without a player address
		_, err := recorder.RecordOutcome(ctx, entity.Draw, common.Address{})

		// Then: ErrNotAuthenticated is returned and nothing is submitted
		require.ErrorIs(t, err, apperror.ErrNotAuthenticated)
		mockAttester.AssertNotCalled(t, "Attest", mock.Anything, mock.Anything)
	})

	t.Run("Missing attester is not authenticated", func(t *testing.T) {
		recorder := newTestRecorder(nil)

		_, err := recorder.RecordOutcome(ctx, entity.Draw, testPlayer)

		require.ErrorIs(t, err, apperror.ErrNotAuthenticated)
	})

	t.Run("Attester failure becomes SubmissionFailed with the reason", func(t *testing.T) {
		// Given: an attester whose signature request is rejected
		mockAttester := &mockAttester{}
		recorder := newTestRecorder(mockAttester)

		mockAttester.On("Attest", ctx, mock.Anything).
			Return("", errUserRejected).
			Once()

		// When: recording an AI win
		uid, err := recorder.RecordOutcome(ctx, entity.AIWin, testPlayer)

		// Then: a SubmissionError wraps the reason
		require.ErrorIs(t, err, apperror.ErrSubmissionFailed)
		require.ErrorIs(t, err, errUserRejected)
		assert.Empty(t, uid)

		var submissionErr *apperror.SubmissionError
		require.ErrorAs(t, err, &submissionErr)
		assert.Equal(t, errUserRejected.Error(), submissionErr.Reason)
	})

	t.Run("Disconnected wallet during submission stays NotAuthenticated", func(t *testing.T) {
		mockAttester := &mockAttester{}
		recorder := newTestRecorder(mockAttester)

		mockAttester.On("Attest", ctx, mock.Anything).
			Return("", apperror.ErrNotAuthenticated).
			Once()

		_, err := recorder.RecordOutcome(ctx, entity.AIWin, testPlayer)

		require.ErrorIs(t, err, apperror.ErrNotAuthenticated)
		assert.NotErrorIs(t, err, apperror.ErrSubmissionFailed)
	})

	t.Run("Unfinished game is not submitted", func(t *testing.T) {
		mockAttester := &mockAttester{}
		recorder := newTestRecorder(mockAttester)

		_, err := recorder.RecordOutcome(ctx, entity.InProgress, testPlayer)

		require.ErrorIs(t, err, apperror.ErrGameNotFinished)
		mockAttester.AssertNotCalled(t, "Attest", mock.Anything, mock.Anything)
	})
}
