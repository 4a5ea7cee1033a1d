package transaction

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/presale/internal/notify"
	"github.com/mrz1836/presale/internal/state"
)

// TitleSent is the notification headline for a submitted transaction.
const TitleSent = "Transaction Sent"

// Metric statuses beyond the record statuses.
const (
	statusRefused = "refused"
	statusSent    = "sent"
)

// Request is one user action against the presale contract.
type Request struct {
	Kind state.TxKind

	// Amount is the contribution in native units, e.g. "0.05". Contribute only.
	Amount string

	// Rate is the new tokens-per-native-unit rate. SetRate only.
	Rate string
}

// Result is the outcome of a confirmed transaction.
type Result struct {
	ID          uint64         `json:"id"`
	Kind        string         `json:"kind"`
	Status      string         `json:"status"`
	Hash        common.Hash    `json:"hash"`
	BlockNumber uint64         `json:"block_number"`
	GasUsed     uint64         `json:"gas_used"`
	From        common.Address `json:"from"`
	Amount      string         `json:"amount,omitempty"`
	ExplorerURL string         `json:"explorer_url,omitempty"`
}

// Config holds dependencies for the transaction service.
type Config struct {
	Session   SessionProvider
	Writers   WriterFactory
	Store     StateStore
	Refresher Refresher
	Notifier  notify.Notifier
	Metrics   MetricsRecorder
	Logger    LogWriter

	// ConfirmTimeout bounds the wait for the first confirmation. Zero waits
	// as long as the caller's context allows.
	ConfirmTimeout time.Duration
}

// refreshPlan names the state that a confirmed kind invalidates.
type refreshPlan struct {
	static, dynamic, user bool
}

// kindText is the wording used for one kind.
type kindText struct {
	sent     string
	success  string
	failure  string
	fallback string
	refresh  refreshPlan
}

//nolint:gochecknoglobals // fixed wording table
var texts = map[state.TxKind]kindText{
	state.KindContribute: {
		sent:     "Waiting for confirmation...",
		success:  "Contribution Successful!",
		failure:  "Contribution Failed",
		fallback: "An unknown error occurred.",
		refresh:  refreshPlan{dynamic: true, user: true},
	},
	state.KindClaimTokens: {
		sent:     "Claiming your tokens...",
		success:  "Tokens Claimed Successfully!",
		failure:  "Claim Tokens Failed",
		fallback: "Failed to claim tokens.",
		refresh:  refreshPlan{user: true},
	},
	state.KindClaimRefund: {
		sent:     "Processing your refund...",
		success:  "Refund Claimed Successfully!",
		failure:  "Refund Failed",
		fallback: "Failed to claim refund.",
		refresh:  refreshPlan{dynamic: true, user: true},
	},
	state.KindSetRate: {
		sent:     "Setting new rate...",
		success:  "Rate Updated Successfully!",
		failure:  "Set Rate Failed",
		fallback: "Failed to set rate.",
		refresh:  refreshPlan{static: true},
	},
	state.KindTogglePresale: {
		failure:  "Toggle Presale Failed",
		fallback: "Failed to toggle presale.",
		refresh:  refreshPlan{static: true, dynamic: true},
	},
	state.KindToggleEmergencyStop: {
		failure:  "Toggle Emergency Stop Failed",
		fallback: "Failed to toggle emergency stop.",
		refresh:  refreshPlan{static: true, dynamic: true},
	},
	state.KindEnableClaims: {
		sent:     "Enabling token claims...",
		success:  "Token Claims Enabled!",
		failure:  "Enable Claims Failed",
		fallback: "Failed to enable claims.",
		refresh:  refreshPlan{static: true, dynamic: true},
	},
	state.KindWithdraw: {
		sent:     "Withdrawing funds...",
		success:  "Funds Withdrawn Successfully!",
		failure:  "Withdrawal Failed",
		fallback: "Failed to withdraw funds.",
		refresh:  refreshPlan{static: true, dynamic: true},
	},
}

// textFor returns the wording for kind. The toggles depend on the state
// being toggled away from.
func textFor(kind state.TxKind, snap state.Snapshot) kindText {
	t := texts[kind]
	switch kind {
	case state.KindTogglePresale:
		if snap.Dynamic.PresaleActive {
			t.sent, t.success = "Stopping presale...", "Presale Stopped!"
		} else {
			t.sent, t.success = "Starting presale...", "Presale Started!"
		}
	case state.KindToggleEmergencyStop:
		if snap.Dynamic.EmergencyStop {
			t.sent, t.success = "Disabling emergency stop...", "Emergency Stop Disabled!"
		} else {
			t.sent, t.success = "Enabling emergency stop...", "Emergency Stop Enabled!"
		}
	case state.KindContribute, state.KindClaimTokens, state.KindClaimRefund,
		state.KindSetRate, state.KindEnableClaims, state.KindWithdraw:
	}
	if t.failure == "" {
		t.failure = "Transaction Failed"
	}
	return t
}
