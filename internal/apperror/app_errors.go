package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMove        = errors.New("invalid move")
	ErrGameFinished       = fmt.Errorf("%w: game is already finished", ErrInvalidMove)
	ErrNotYourTurn        = fmt.Errorf("%w: it's not your turn", ErrInvalidMove)
	ErrCellOccupied       = fmt.Errorf("%w: cell is already occupied", ErrInvalidMove)
	ErrInvalidCell        = fmt.Errorf("%w: invalid cell index", ErrInvalidMove)
	ErrGameNotFinished    = errors.New("game is not finished")
	ErrNotAuthenticated   = errors.New("wallet not connected")
	ErrSubmissionFailed   = errors.New("submission failed")
	ErrSubmissionInFlight = errors.New("game result is being saved")
	ErrFetchFailed        = errors.New("failed to load leaderboard")
	ErrRecordDecode       = errors.New("malformed attestation record")
)

// SubmissionError - the signer or the ledger rejected an attestation. Reason is shown to the user.
type SubmissionError struct {
	Reason string
	Err    error
}

func NewSubmissionError(err error) *SubmissionError {
	return &SubmissionError{Reason: err.Error(), Err: err}
}

func (that *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSubmissionFailed, that.Reason)
}

func (that *SubmissionError) Unwrap() []error {
	return []error{ErrSubmissionFailed, that.Err}
}

// RecordDecodeError - a single attestation payload could not be decoded.
type RecordDecodeError struct {
	UID    string
	Reason string
}

func (that *RecordDecodeError) Error() string {
	return fmt.Sprintf("%s %s: %s", ErrRecordDecode, that.UID, that.Reason)
}

func (that *RecordDecodeError) Unwrap() error {
	return ErrRecordDecode
}
