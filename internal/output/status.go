package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/state"
)

// StatusView is the rendered form of one dashboard snapshot.
type StatusView struct {
	Network     NetworkView       `json:"network"`
	Session     SessionView       `json:"session"`
	Presale     *PresaleView      `json:"presale,omitempty"`
	Position    *PositionView     `json:"position,omitempty"`
	Eligibility state.Eligibility `json:"eligibility"`
	Pending     []PendingView     `json:"pending,omitempty"`
}

// NetworkView describes the selected network.
type NetworkView struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	ChainID  uint64 `json:"chain_id"`
	Symbol   string `json:"symbol"`
	Presale  string `json:"presale_contract"`
	Token    string `json:"token_contract"`
	Explorer string `json:"explorer,omitempty"`
}

// SessionView describes the wallet connection.
type SessionView struct {
	Connected    bool   `json:"connected"`
	Address      string `json:"address,omitempty"`
	ChainID      uint64 `json:"chain_id,omitempty"`
	WrongNetwork bool   `json:"wrong_network"`
}

// PresaleView is the contract configuration and status.
type PresaleView struct {
	Rate            string  `json:"rate"`
	SoftCap         string  `json:"soft_cap"`
	HardCap         string  `json:"hard_cap"`
	MinContribution string  `json:"min_contribution"`
	MaxContribution string  `json:"max_contribution"`
	Owner           string  `json:"owner"`
	TokenSymbol     string  `json:"token_symbol"`
	TokenDecimals   uint8   `json:"token_decimals"`
	StatusLoaded    bool    `json:"status_loaded"`
	TotalRaised     string  `json:"total_raised"`
	Progress        float64 `json:"progress_percent"`
	Active          bool    `json:"active"`
	EmergencyStop   bool    `json:"emergency_stop"`
	ClaimsEnabled   bool    `json:"claims_enabled"`
	SoftCapMet      bool    `json:"soft_cap_met"`
}

// PositionView is the connected account's position.
type PositionView struct {
	Contribution    string `json:"contribution"`
	ClaimableTokens string `json:"claimable_tokens"`
	HasClaimed      bool   `json:"has_claimed"`
	NativeBalance   string `json:"native_balance"`
	TokenBalance    string `json:"token_balance"`
}

// PendingView is one in-flight transaction.
type PendingView struct {
	ID       uint64 `json:"id"`
	Kind     string `json:"kind"`
	Hash     string `json:"hash,omitempty"`
	Explorer string `json:"explorer,omitempty"`
}

// NewStatusView renders snap. Sections whose data is not loaded are omitted.
func NewStatusView(network chain.Network, snap state.Snapshot) StatusView {
	native := network.Decimals()
	sym := network.Symbol()

	v := StatusView{
		Network: NetworkView{
			Key:      network.Key,
			Name:     network.Name,
			ChainID:  network.ChainID,
			Symbol:   sym,
			Presale:  network.PresaleAddress,
			Token:    network.TokenAddress,
			Explorer: network.Explorer,
		},
		Session: SessionView{
			Connected:    snap.Session.Connected,
			ChainID:      snap.Session.ChainID,
			WrongNetwork: snap.Session.WrongNetwork,
		},
		Eligibility: state.Evaluate(snap),
	}
	if snap.Session.HasAddress() {
		v.Session.Address = snap.Session.Address.Hex()
	}

	if snap.Static.Loaded {
		st := snap.Static
		p := &PresaleView{
			Rate:            st.Rate.String(),
			SoftCap:         chain.FormatWithSymbol(st.SoftCap, native, sym),
			HardCap:         chain.FormatWithSymbol(st.HardCap, native, sym),
			MinContribution: chain.FormatWithSymbol(st.MinContribution, native, sym),
			MaxContribution: chain.FormatWithSymbol(st.MaxContribution, native, sym),
			Owner:           st.Owner.Hex(),
			TokenSymbol:     st.TokenSymbol,
			TokenDecimals:   st.TokenDecimals,
		}
		if snap.Dynamic.Loaded {
			p.StatusLoaded = true
			p.TotalRaised = chain.FormatWithSymbol(snap.Dynamic.TotalRaised, native, sym)
			p.Progress = state.HardCapProgress(snap)
			p.Active = snap.Dynamic.PresaleActive
			p.EmergencyStop = snap.Dynamic.EmergencyStop
			p.ClaimsEnabled = snap.Dynamic.ClaimsEnabled
			p.SoftCapMet = state.SoftCapMet(snap)
		}
		v.Presale = p

		if snap.User.Loaded {
			tokenDecimals := int(st.TokenDecimals)
			claimable := snap.ClaimableTokens()
			v.Position = &PositionView{
				Contribution:    chain.FormatWithSymbol(snap.User.Contribution, native, sym),
				ClaimableTokens: chain.FormatWithSymbol(claimable, tokenDecimals, st.TokenSymbol),
				HasClaimed:      snap.User.HasClaimed,
				NativeBalance:   chain.FormatWithSymbol(snap.User.NativeBalance, native, sym),
				TokenBalance:    chain.FormatWithSymbol(snap.User.TokenBalance, tokenDecimals, st.TokenSymbol),
			}
		}
	}

	for _, rec := range snap.Pending {
		pv := PendingView{ID: rec.ID, Kind: rec.Kind.String()}
		if rec.Hash != (common.Hash{}) {
			pv.Hash = rec.Hash.Hex()
			pv.Explorer = network.TxURL(pv.Hash)
		}
		v.Pending = append(v.Pending, pv)
	}
	return v
}

// String renders the view as text.
func (v StatusView) String() string {
	var sb strings.Builder
	_ = RenderStatus(&sb, v)
	return strings.TrimRight(sb.String(), "\n")
}

// RenderStatus writes the text form of v.
func RenderStatus(w io.Writer, v StatusView) error {
	t := NewTable()
	t.SetNoHeader(true)

	t.AddRow("Network", fmt.Sprintf("%s (chain %d)", v.Network.Name, v.Network.ChainID))
	switch {
	case v.Session.WrongNetwork:
		t.AddRow("Wallet", chain.TruncateAddress(v.Session.Address)+" (wrong network, chain "+strconv.FormatUint(v.Session.ChainID, 10)+")")
	case v.Session.Connected:
		t.AddRow("Wallet", chain.TruncateAddress(v.Session.Address))
	default:
		t.AddRow("Wallet", "not connected")
	}

	if p := v.Presale; p != nil {
		t.AddRow("", "")
		t.AddRow("Token", p.TokenSymbol)
		t.AddRow("Rate", p.Rate+" "+p.TokenSymbol+" per "+v.Network.Symbol)
		t.AddRow("Soft cap", p.SoftCap)
		t.AddRow("Hard cap", p.HardCap)
		t.AddRow("Contribution", p.MinContribution+" to "+p.MaxContribution)
		if p.StatusLoaded {
			t.AddRow("Raised", fmt.Sprintf("%s (%.2f%%)", p.TotalRaised, p.Progress))
			t.AddRow("Status", presaleStatus(p))
			t.AddRow("Claims", enabled(p.ClaimsEnabled))
		}
	}

	if pos := v.Position; pos != nil {
		t.AddRow("", "")
		t.AddRow("Contributed", pos.Contribution)
		t.AddRow("Claimable", pos.ClaimableTokens)
		if pos.HasClaimed {
			t.AddRow("Claimed", "yes")
		}
		t.AddRow("Balance", pos.NativeBalance+", "+pos.TokenBalance)
	}

	if v.Presale != nil {
		t.AddRow("", "")
		t.AddRow("Can contribute", yesNo(v.Eligibility.CanContribute))
		t.AddRow("Can claim", yesNo(v.Eligibility.CanClaimTokens))
		t.AddRow("Can refund", yesNo(v.Eligibility.CanClaimRefund))
		if v.Eligibility.IsOwner {
			t.AddRow("Owner", "yes")
		}
	}

	for _, p := range v.Pending {
		label := p.Kind
		if p.Hash != "" {
			label += " " + chain.TruncateAddress(p.Hash)
		}
		t.AddRow("Pending", label)
	}
	return t.Render(w)
}

func presaleStatus(p *PresaleView) string {
	switch {
	case p.EmergencyStop:
		return "emergency stop"
	case p.Active:
		return "active"
	case p.SoftCapMet:
		return "ended (soft cap met)"
	default:
		return "ended (soft cap not met)"
	}
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
