package transaction

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/presale"
	"github.com/mrz1836/presale/internal/state"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// notEligible builds a precondition failure with its own headline.
func notEligible(title, message string) error {
	return presaleerr.WithTitle(presaleerr.WithMessage(presaleerr.ErrNotEligible, message), title)
}

// prepare checks the local preconditions of req against one snapshot and
// returns the contract call to submit. Nothing here touches the network.
func prepare(snap state.Snapshot, network chain.Network, req Request) (presale.Call, error) {
	if !snap.Session.HasAddress() {
		return presale.Call{}, presaleerr.WithMessage(presaleerr.ErrNotConnected, "Please connect your wallet.")
	}
	if !snap.Session.OnCorrectNetwork() {
		return presale.Call{}, presaleerr.WithMessage(presaleerr.ErrWrongNetwork,
			fmt.Sprintf("Switch your wallet to %s to continue.", network.Name))
	}
	if !snap.Static.Loaded {
		return presale.Call{}, presaleerr.WithMessage(presaleerr.ErrNotReady, "Presale configuration is not loaded yet.")
	}

	if req.Kind.IsAdmin() {
		if !state.IsOwner(snap, snap.Session.Address) {
			return presale.Call{}, presaleerr.WithTitle(presaleerr.ErrPermission, "Permission Denied or Connection Error")
		}
		return prepareAdmin(snap, req)
	}

	switch req.Kind {
	case state.KindContribute:
		return prepareContribution(snap, network, req.Amount)
	case state.KindClaimTokens:
		if err := checkClaim(snap); err != nil {
			return presale.Call{}, err
		}
		return presale.ClaimTokensCall(), nil
	case state.KindClaimRefund:
		if err := checkRefund(snap); err != nil {
			return presale.Call{}, err
		}
		return presale.ClaimRefundCall(), nil
	case state.KindSetRate, state.KindTogglePresale, state.KindToggleEmergencyStop,
		state.KindEnableClaims, state.KindWithdraw:
	}
	return presale.Call{}, presaleerr.WithDetails(presaleerr.ErrInvalidInput, map[string]string{"kind": req.Kind.String()})
}

// ParseContribution parses a contribution amount in the network's native units.
func ParseContribution(network chain.Network, amount string) (*big.Int, error) {
	value, err := chain.ParseDecimalAmount(amount, network.Decimals())
	if err != nil || !chain.IsPositive(value) {
		return nil, presaleerr.WithDetails(presaleerr.ErrInvalidAmount, map[string]string{"amount": amount})
	}
	return value, nil
}

func prepareContribution(snap state.Snapshot, network chain.Network, amount string) (presale.Call, error) {
	value, err := ParseContribution(network, amount)
	if err != nil {
		return presale.Call{}, err
	}

	decimals := network.Decimals()
	failed := texts[state.KindContribute].failure
	if lo := snap.Static.MinContribution; value.Cmp(lo) < 0 {
		return presale.Call{}, presaleerr.WithTitle(presaleerr.WithMessage(presaleerr.ErrInvalidAmount,
			fmt.Sprintf("Contribution must be at least %s %s", chain.FormatDecimalAmount(lo, decimals), network.Symbol())), failed)
	}
	if hi := snap.Static.MaxContribution; hi.Sign() > 0 && value.Cmp(hi) > 0 {
		return presale.Call{}, presaleerr.WithTitle(presaleerr.WithMessage(presaleerr.ErrInvalidAmount,
			fmt.Sprintf("Contribution cannot exceed %s %s", chain.FormatDecimalAmount(hi, decimals), network.Symbol())), failed)
	}
	if !snap.Dynamic.PresaleActive {
		return presale.Call{}, notEligible("Presale Not Active", "The presale is not currently accepting contributions.")
	}
	return presale.ContributeCall(value), nil
}

func checkClaim(snap state.Snapshot) error {
	if !snap.Dynamic.Loaded {
		return presaleerr.WithMessage(presaleerr.ErrNotReady, "Presale status is not loaded yet.")
	}
	switch {
	case snap.Dynamic.PresaleActive:
		return notEligible("Presale Active", "Cannot claim tokens until the presale ends.")
	case !snap.Dynamic.ClaimsEnabled:
		return notEligible("Claims Not Enabled", "Token claims are not yet enabled by the owner.")
	case !chain.IsPositive(snap.User.Contribution):
		return notEligible("No Contribution", "You did not contribute to this presale.")
	case snap.User.HasClaimed:
		return notEligible("Already Claimed", "You have already claimed your tokens.")
	case !state.SoftCapMet(snap):
		return notEligible("Soft Cap Not Met", "The soft cap was not reached; claim a refund instead.")
	}
	return nil
}

func checkRefund(snap state.Snapshot) error {
	if !snap.Dynamic.Loaded {
		return presaleerr.WithMessage(presaleerr.ErrNotReady, "Presale status is not loaded yet.")
	}
	switch {
	case snap.Dynamic.PresaleActive:
		return notEligible("Presale Active", "Cannot claim refund until the presale ends.")
	case state.SoftCapMet(snap):
		return notEligible("Soft Cap Met", "Refunds are not available as the soft cap was met.")
	case !chain.IsPositive(snap.User.Contribution):
		return notEligible("No Contribution", "You did not contribute, so no refund is available.")
	}
	return nil
}

func prepareAdmin(snap state.Snapshot, req Request) (presale.Call, error) {
	switch req.Kind {
	case state.KindSetRate:
		rate, err := ParseRate(req.Rate)
		if err != nil {
			return presale.Call{}, err
		}
		return presale.SetRateCall(rate), nil
	case state.KindTogglePresale:
		return presale.TogglePresaleCall(), nil
	case state.KindToggleEmergencyStop:
		return presale.ToggleEmergencyStopCall(), nil
	case state.KindEnableClaims:
		if snap.Dynamic.ClaimsEnabled {
			return presale.Call{}, notEligible("Already Enabled", "Token claims are already enabled.")
		}
		return presale.EnableTokenClaimsCall(), nil
	case state.KindWithdraw:
		return presale.WithdrawFundsCall(), nil
	case state.KindContribute, state.KindClaimTokens, state.KindClaimRefund:
	}
	return presale.Call{}, presaleerr.WithDetails(presaleerr.ErrInvalidInput, map[string]string{"kind": req.Kind.String()})
}

// ParseRate parses a positive integer rate.
func ParseRate(s string) (*big.Int, error) {
	rate, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || rate.Sign() <= 0 {
		return nil, presaleerr.WithDetails(presaleerr.ErrInvalidRate, map[string]string{"rate": s})
	}
	return rate, nil
}
