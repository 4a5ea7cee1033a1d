// Package chain provides network descriptors and common utilities shared by the
// wallet, contract and service layers.
package chain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// MaxTypoDistance is the largest edit distance for a "did you mean" suggestion.
const MaxTypoDistance = 2

// NativeCurrency describes the gas token of a network.
type NativeCurrency struct {
	Name     string `yaml:"name" json:"name"`
	Symbol   string `yaml:"symbol" json:"symbol"`
	Decimals int    `yaml:"decimals" json:"decimals"`
}

// Network is one selectable deployment of the presale.
type Network struct {
	Key            string         `yaml:"key" json:"key"`
	Name           string         `yaml:"name" json:"name"`
	ChainID        uint64         `yaml:"chain_id" json:"chain_id"`
	RPCURL         string         `yaml:"rpc_url" json:"rpc_url"`
	TokenAddress   string         `yaml:"token_address" json:"token_address"`
	PresaleAddress string         `yaml:"presale_address" json:"presale_address"`
	Explorer       string         `yaml:"explorer" json:"explorer"`
	NativeCurrency NativeCurrency `yaml:"native_currency" json:"native_currency"`
}

// ChainIDHex returns the chain id in the 0x-prefixed form wallets expect.
func (n Network) ChainIDHex() string {
	return hexutil.EncodeUint64(n.ChainID)
}

// PresaleContract returns the presale contract address.
func (n Network) PresaleContract() common.Address {
	return common.HexToAddress(n.PresaleAddress)
}

// TokenContract returns the sale token address.
func (n Network) TokenContract() common.Address {
	return common.HexToAddress(n.TokenAddress)
}

// Symbol returns the native currency symbol, falling back to the network key.
func (n Network) Symbol() string {
	if n.NativeCurrency.Symbol != "" {
		return n.NativeCurrency.Symbol
	}
	return strings.ToUpper(n.Key)
}

// Decimals returns the native currency decimals, defaulting to 18.
func (n Network) Decimals() int {
	if n.NativeCurrency.Decimals > 0 {
		return n.NativeCurrency.Decimals
	}
	return 18
}

// TxURL returns the explorer link for a transaction hash, or "" without an explorer.
func (n Network) TxURL(hash string) string {
	if n.Explorer == "" || hash == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/tx/" + hash
}

// AddressURL returns the explorer link for an address, or "" without an explorer.
func (n Network) AddressURL(address string) string {
	if n.Explorer == "" || address == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/address/" + address
}

// Validate checks that the descriptor is usable.
func (n Network) Validate() error {
	if strings.TrimSpace(n.Key) == "" {
		return presaleerr.WithMessage(presaleerr.ErrConfigInvalid, "network key is required")
	}
	if n.ChainID == 0 {
		return presaleerr.WithDetails(
			presaleerr.WithMessage(presaleerr.ErrConfigInvalid, "network chain id is required"),
			map[string]string{"network": n.Key},
		)
	}
	if strings.TrimSpace(n.RPCURL) == "" {
		return presaleerr.WithDetails(
			presaleerr.WithMessage(presaleerr.ErrConfigInvalid, "network rpc url is required"),
			map[string]string{"network": n.Key},
		)
	}
	for _, f := range []struct{ field, addr string }{
		{"presale_address", n.PresaleAddress},
		{"token_address", n.TokenAddress},
	} {
		if !common.IsHexAddress(f.addr) {
			return presaleerr.WithDetails(presaleerr.ErrInvalidAddress, map[string]string{
				"network": n.Key,
				"field":   f.field,
				"value":   f.addr,
			})
		}
	}
	return nil
}

// ParseChainIDHex parses a wallet-reported chain id. Hex is expected; leading
// zeros are tolerated since some wallets pad them.
func ParseChainIDHex(s string) (uint64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if !strings.HasPrefix(s, "0x") {
		return 0, presaleerr.WithDetails(presaleerr.ErrInvalidInput, map[string]string{"chain_id": s})
	}
	v, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return 0, presaleerr.WithCause(
			presaleerr.WithDetails(presaleerr.ErrInvalidInput, map[string]string{"chain_id": s}),
			err,
		)
	}
	return v, nil
}

// TruncateAddress shortens an address for display: 0x1234...abcd.
func TruncateAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// SameAddress compares two hex addresses case-insensitively.
func SameAddress(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// Registry is the set of configured networks, keyed by Network.Key.
type Registry struct {
	networks []Network
	byKey    map[string]Network
}

// NewRegistry validates the networks and indexes them by key.
func NewRegistry(networks []Network) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Network, len(networks))}
	for _, n := range networks {
		if err := n.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(n.Key)
		if _, dup := r.byKey[key]; dup {
			return nil, presaleerr.WithDetails(
				presaleerr.WithMessage(presaleerr.ErrConfigInvalid, "duplicate network key"),
				map[string]string{"network": n.Key},
			)
		}
		r.byKey[key] = n
		r.networks = append(r.networks, n)
	}
	return r, nil
}

// Lookup returns the network for key. Unknown keys get a suggestion when a
// configured key is close enough.
func (r *Registry) Lookup(key string) (Network, error) {
	if n, ok := r.byKey[strings.ToLower(strings.TrimSpace(key))]; ok {
		return n, nil
	}

	err := presaleerr.WithDetails(presaleerr.ErrUnknownNetwork, map[string]string{"network": key})
	if suggestion := r.Suggest(key); suggestion != "" {
		return Network{}, presaleerr.WithSuggestion(err, fmt.Sprintf("Did you mean %q?", suggestion))
	}
	return Network{}, presaleerr.WithSuggestion(err, "Available networks: "+strings.Join(r.Keys(), ", "))
}

// Suggest returns the closest configured key, or "" when none is close.
func (r *Registry) Suggest(key string) string {
	key = strings.ToLower(key)
	minDist := math.MaxInt
	var suggestion string
	for _, k := range r.Keys() {
		dist := levenshtein.ComputeDistance(key, k)
		if dist < minDist {
			minDist = dist
			suggestion = k
		}
	}
	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// ByChainID returns the first network with the given chain id.
func (r *Registry) ByChainID(id uint64) (Network, bool) {
	for _, n := range r.networks {
		if n.ChainID == id {
			return n, true
		}
	}
	return Network{}, false
}

// Networks returns the networks in configuration order.
func (r *Registry) Networks() []Network {
	out := make([]Network, len(r.networks))
	copy(out, r.networks)
	return out
}

// Keys returns the sorted network keys.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
