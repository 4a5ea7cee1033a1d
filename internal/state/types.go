// Package state holds the dashboard's in-memory view of one (session, network)
// pair: the session, the three contract entities, in-flight transactions and
// the eligibility rules derived from them.
package state

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/presale/internal/presale"
)

// Session is the connection as seen by the rest of the dashboard.
type Session struct {
	Connected    bool           `json:"connected"`
	Address      common.Address `json:"address"`
	ChainID      uint64         `json:"chain_id"`
	WrongNetwork bool           `json:"wrong_network"`
}

// HasAddress reports whether an account is attached, connected or not.
func (s Session) HasAddress() bool {
	return s.Address != (common.Address{})
}

// OnCorrectNetwork reports whether contract calls are allowed.
func (s Session) OnCorrectNetwork() bool {
	return s.Connected && !s.WrongNetwork && s.HasAddress()
}

// StaticConfig is the presale configuration plus token metadata.
type StaticConfig struct {
	presale.StaticData
	Loaded bool
}

// DynamicState is the presale status.
type DynamicState struct {
	presale.DynamicData
	Loaded bool
}

// UserPosition is the connected account's position.
type UserPosition struct {
	presale.UserData
	Loaded bool
}

// TxKind identifies a state-changing presale action.
type TxKind int

// Transaction kinds.
const (
	KindContribute TxKind = iota + 1
	KindClaimTokens
	KindClaimRefund
	KindSetRate
	KindTogglePresale
	KindToggleEmergencyStop
	KindEnableClaims
	KindWithdraw
)

var txKindNames = map[TxKind]string{
	KindContribute:          "contribute",
	KindClaimTokens:         "claimTokens",
	KindClaimRefund:         "claimRefund",
	KindSetRate:             "setRate",
	KindTogglePresale:       "togglePresale",
	KindToggleEmergencyStop: "toggleEmergencyStop",
	KindEnableClaims:        "enableClaims",
	KindWithdraw:            "withdraw",
}

func (k TxKind) String() string {
	if name, ok := txKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsAdmin reports whether only the owner may submit k.
func (k TxKind) IsAdmin() bool {
	switch k {
	case KindSetRate, KindTogglePresale, KindToggleEmergencyStop, KindEnableClaims, KindWithdraw:
		return true
	default:
		return false
	}
}

// TxStatus is the lifecycle position of a transaction.
type TxStatus int

// Transaction statuses.
const (
	StatusPending TxStatus = iota + 1
	StatusConfirmed
	StatusFailed
)

func (s TxStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TransactionRecord tracks one submission until it completes.
type TransactionRecord struct {
	ID          uint64      `json:"id"`
	Kind        TxKind      `json:"-"`
	Status      TxStatus    `json:"-"`
	Hash        common.Hash `json:"hash"`
	ErrorReason string      `json:"error_reason,omitempty"`
	Started     time.Time   `json:"started"`
}

// Snapshot is an immutable copy of the dashboard state. Big integers inside
// are shared between snapshots and must not be mutated.
type Snapshot struct {
	Network string              `json:"network"`
	Session Session             `json:"session"`
	Static  StaticConfig        `json:"static"`
	Dynamic DynamicState        `json:"dynamic"`
	User    UserPosition        `json:"user"`
	Pending []TransactionRecord `json:"pending,omitempty"`
}

// ClaimableTokens is contribution × rate in the token's smallest unit.
func (s Snapshot) ClaimableTokens() *big.Int {
	return TokensForContribution(s.User.Contribution, s.Static.Rate)
}

// HasPending reports whether a transaction of kind k is in flight.
func (s Snapshot) HasPending(k TxKind) bool {
	for _, r := range s.Pending {
		if r.Kind == k {
			return true
		}
	}
	return false
}
