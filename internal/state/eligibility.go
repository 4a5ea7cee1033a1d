package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/presale/internal/chain"
)

// CanContribute reports whether the presale accepts contributions from this session.
func CanContribute(s Snapshot) bool {
	return s.Dynamic.PresaleActive && s.Session.OnCorrectNetwork()
}

// presaleEnded requires loaded data so that "unknown" never reads as "ended".
func presaleEnded(s Snapshot) bool {
	return s.Static.Loaded && s.Dynamic.Loaded && !s.Dynamic.PresaleActive
}

// SoftCapMet reports whether the total raised reached the soft cap.
func SoftCapMet(s Snapshot) bool {
	return chain.OrZero(s.Dynamic.TotalRaised).Cmp(chain.OrZero(s.Static.SoftCap)) >= 0
}

// CanClaimTokens reports whether the user may claim purchased tokens. Claims
// also require the soft cap, which keeps claim and refund mutually exclusive.
func CanClaimTokens(s Snapshot) bool {
	return presaleEnded(s) &&
		s.Dynamic.ClaimsEnabled &&
		chain.IsPositive(s.User.Contribution) &&
		!s.User.HasClaimed &&
		SoftCapMet(s)
}

// CanClaimRefund reports whether the user may reclaim their contribution.
func CanClaimRefund(s Snapshot) bool {
	return presaleEnded(s) &&
		!SoftCapMet(s) &&
		chain.IsPositive(s.User.Contribution)
}

// IsOwner reports whether addr is the recorded contract owner.
func IsOwner(s Snapshot, addr common.Address) bool {
	if !s.Static.Loaded || addr == (common.Address{}) {
		return false
	}
	return addr == s.Static.Owner
}

// Eligibility is the set of derived flags for one snapshot.
type Eligibility struct {
	CanContribute  bool `json:"can_contribute"`
	CanClaimTokens bool `json:"can_claim_tokens"`
	CanClaimRefund bool `json:"can_claim_refund"`
	IsOwner        bool `json:"is_owner"`
}

// Evaluate computes every flag from s.
func Evaluate(s Snapshot) Eligibility {
	return Eligibility{
		CanContribute:  CanContribute(s),
		CanClaimTokens: CanClaimTokens(s),
		CanClaimRefund: CanClaimRefund(s),
		IsOwner:        IsOwner(s, s.Session.Address),
	}
}

// TokensForContribution is amount × rate: the token base units bought with
// amount native base units. The rate is applied to base units as the contract
// does, whatever the token's decimals.
func TokensForContribution(amount, rate *big.Int) *big.Int {
	return new(big.Int).Mul(chain.OrZero(amount), chain.OrZero(rate))
}

// HardCapProgress returns totalRaised / hardCap as a percentage capped at 100.
func HardCapProgress(s Snapshot) float64 {
	hardCap := chain.OrZero(s.Static.HardCap)
	if hardCap.Sign() <= 0 {
		return 0
	}
	raised := chain.OrZero(s.Dynamic.TotalRaised)
	// basis points keep two decimals without floats on the big values
	bps := new(big.Int).Div(new(big.Int).Mul(raised, big.NewInt(10_000)), hardCap).Int64()
	if bps > 10_000 {
		bps = 10_000
	}
	return float64(bps) / 100
}
