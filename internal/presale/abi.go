// Package presale binds the presale and sale-token contracts: a batched,
// concurrent read surface on the network RPC and a signer-bound write surface.
package presale

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// PresaleABIJSON is the subset of the presale contract the dashboard uses.
const PresaleABIJSON = `[
  {"type":"function","name":"rate","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"hardCap","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"softCap","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"minContribution","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"maxContribution","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"presaleActive","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"emergencyStop","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"tokensClaimable","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"totalRaised","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"contributions","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"claimed","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"buyTokensWithETH","stateMutability":"payable","inputs":[],"outputs":[]},
  {"type":"function","name":"claimTokens","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"claimRefund","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"setRate","stateMutability":"nonpayable","inputs":[{"name":"newRate","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"togglePresale","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"toggleEmergencyStop","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"enableTokenClaims","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"withdrawFunds","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"error","name":"OwnableUnauthorizedAccount","inputs":[{"name":"account","type":"address"}]}
]`

// TokenABIJSON is the ERC-20 subset read for the sale token.
const TokenABIJSON = `[
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// Contract method names.
const (
	MethodRate                = "rate"
	MethodHardCap             = "hardCap"
	MethodSoftCap             = "softCap"
	MethodMinContribution     = "minContribution"
	MethodMaxContribution     = "maxContribution"
	MethodOwner               = "owner"
	MethodPresaleActive       = "presaleActive"
	MethodEmergencyStop       = "emergencyStop"
	MethodTokensClaimable     = "tokensClaimable"
	MethodTotalRaised         = "totalRaised"
	MethodContributions       = "contributions"
	MethodClaimed             = "claimed"
	MethodBuyTokensWithETH    = "buyTokensWithETH"
	MethodClaimTokens         = "claimTokens"
	MethodClaimRefund         = "claimRefund"
	MethodSetRate             = "setRate"
	MethodTogglePresale       = "togglePresale"
	MethodToggleEmergencyStop = "toggleEmergencyStop"
	MethodEnableTokenClaims   = "enableTokenClaims"
	MethodWithdrawFunds       = "withdrawFunds"

	MethodDecimals  = "decimals"
	MethodSymbol    = "symbol"
	MethodBalanceOf = "balanceOf"
)

// ParsePresaleABI parses PresaleABIJSON.
func ParsePresaleABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(PresaleABIJSON))
}

// ParseTokenABI parses TokenABIJSON.
func ParseTokenABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(TokenABIJSON))
}
