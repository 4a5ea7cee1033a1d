package state

import (
	"math/big"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/presale"
)

// RefreshKind names one of the three independently scheduled read batches.
type RefreshKind int

// Refresh kinds.
const (
	RefreshStatic RefreshKind = iota
	RefreshDynamic
	RefreshUser
	numRefreshKinds
)

func (k RefreshKind) String() string {
	switch k {
	case RefreshStatic:
		return "static"
	case RefreshDynamic:
		return "dynamic"
	case RefreshUser:
		return "user"
	default:
		return "unknown"
	}
}

// RefreshResult is the outcome of one batch. A non-nil Err (including a
// not-ready precondition) resets the batch's entity to its defaults.
type RefreshResult struct {
	Kind    RefreshKind
	Static  presale.StaticData
	Dynamic presale.DynamicData
	User    presale.UserData
	Err     error
}

// DefaultStatic is the "unknown" static configuration.
func DefaultStatic() StaticConfig {
	return StaticConfig{StaticData: presale.StaticData{
		Rate:            new(big.Int),
		HardCap:         new(big.Int),
		SoftCap:         new(big.Int),
		MinContribution: new(big.Int),
		MaxContribution: new(big.Int),
	}}
}

// DefaultDynamic is the "unknown" presale status.
func DefaultDynamic() DynamicState {
	return DynamicState{DynamicData: presale.DynamicData{TotalRaised: new(big.Int)}}
}

// DefaultUser is the empty user position.
func DefaultUser() UserPosition {
	return UserPosition{UserData: presale.UserData{
		Contribution:  new(big.Int),
		NativeBalance: new(big.Int),
		TokenBalance:  new(big.Int),
	}}
}

// Initial is the state of a freshly selected network with no session.
func Initial(network string) Snapshot {
	return Snapshot{
		Network: network,
		Static:  DefaultStatic(),
		Dynamic: DefaultDynamic(),
		User:    DefaultUser(),
	}
}

// Reduce applies one refresh result to prev. All fields of the batch change
// together: either every value from r, or every default.
func Reduce(prev Snapshot, r RefreshResult) Snapshot {
	next := prev
	switch r.Kind {
	case RefreshStatic:
		if r.Err != nil {
			next.Static = DefaultStatic()
			break
		}
		next.Static = StaticConfig{StaticData: normalizeStatic(r.Static), Loaded: true}
	case RefreshDynamic:
		if r.Err != nil {
			next.Dynamic = DefaultDynamic()
			break
		}
		d := r.Dynamic
		d.TotalRaised = chain.OrZero(d.TotalRaised)
		next.Dynamic = DynamicState{DynamicData: d, Loaded: true}
	case RefreshUser:
		if r.Err != nil {
			next.User = DefaultUser()
			break
		}
		u := r.User
		u.Contribution = chain.OrZero(u.Contribution)
		u.NativeBalance = chain.OrZero(u.NativeBalance)
		u.TokenBalance = chain.OrZero(u.TokenBalance)
		next.User = UserPosition{UserData: u, Loaded: true}
	}
	return next
}

// WithSession replaces the session, keeping contract data.
func WithSession(prev Snapshot, s Session) Snapshot {
	next := prev
	next.Session = s
	return next
}

func normalizeStatic(s presale.StaticData) presale.StaticData {
	s.Rate = chain.OrZero(s.Rate)
	s.HardCap = chain.OrZero(s.HardCap)
	s.SoftCap = chain.OrZero(s.SoftCap)
	s.MinContribution = chain.OrZero(s.MinContribution)
	s.MaxContribution = chain.OrZero(s.MaxContribution)
	return s
}
