package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// AttestationRecord - the outcome of one finished game as it is written to the ledger.
type AttestationRecord struct {
	Player      common.Address
	TotalWins   uint64
	TotalLosses uint64
	TotalDraws  uint64
	TotalGames  uint64
	Timestamp   uint64
	GameID      string
}

// AttestationRequest - what the wallet signs and submits for a record.
type AttestationRequest struct {
	Schema         common.Hash
	Recipient      common.Address
	ExpirationTime uint64
	Revocable      bool
	Data           []byte
}

// Attestation - a ledger entry as returned by the query side. Payload is 0x-prefixed hex.
type Attestation struct {
	UID         string `json:"id"`
	Recipient   string `json:"recipient"`
	Payload     string `json:"data"`
	TimeCreated int64  `json:"timeCreated"`
}

// OutcomeFlags - the decoded outcome counters of one attestation.
type OutcomeFlags struct {
	Wins   uint64
	Losses uint64
	Draws  uint64
}

type LeaderboardEntry struct {
	Player      string
	Wins        uint64
	Losses      uint64
	Draws       uint64
	TotalGames  uint64
	WinRate     float64
	FirstPlayed time.Time
}
