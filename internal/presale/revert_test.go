package presale_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/presale/internal/presale"
	"github.com/mrz1836/presale/internal/wallet"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

func TestRevertReason(t *testing.T) {
	t.Parallel()
	parsed, err := presale.ParsePresaleABI()
	require.NoError(t, err)

	owner := common.HexToAddress("0x00000000000000000000000000000000000000BB")
	custom, err := parsed.Errors["OwnableUnauthorizedAccount"].Inputs.Pack(owner)
	require.NoError(t, err)
	customData := hexutil.Encode(append(parsed.Errors["OwnableUnauthorizedAccount"].ID.Bytes()[:4], custom...))

	tests := []struct {
		name     string
		err      error
		reason   string
		isRevert bool
	}{
		{
			name:     "abi data wins over message text",
			err:      dataError{code: 3, msg: "execution reverted: something else", data: revertPayload(t, "Below minimum contribution")},
			reason:   "Below minimum contribution",
			isRevert: true,
		},
		{
			name:     "data behind wrapping",
			err:      fmt.Errorf("failed to estimate gas needed: %w", dataError{code: 3, msg: "execution reverted", data: revertPayload(t, "Hard cap reached")}),
			reason:   "Hard cap reached",
			isRevert: true,
		},
		{
			name:     "custom error",
			err:      dataError{code: 3, msg: "execution reverted", data: customData},
			reason:   "OwnableUnauthorizedAccount(" + owner.Hex() + ")",
			isRevert: true,
		},
		{
			name:     "message text",
			err:      errors.New("failed to estimate gas needed: execution reverted: Presale not active"),
			reason:   "Presale not active",
			isRevert: true,
		},
		{
			name:     "bare revert",
			err:      errors.New("execution reverted"),
			reason:   "",
			isRevert: true,
		},
		{
			name:     "undecodable data falls back to text",
			err:      dataError{code: 3, msg: "execution reverted: Nope", data: "0xdeadbeef"},
			reason:   "Nope",
			isRevert: true,
		},
		{
			name: "not a revert",
			err:  errors.New("insufficient funds for gas * price + value"),
		},
		{
			name: "nil",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			reason, ok := presale.RevertReason(parsed, tc.err)
			assert.Equal(t, tc.isRevert, ok)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestRevertData(t *testing.T) {
	t.Parallel()

	data, ok := presale.RevertData(dataError{data: "0x08c379a0"})
	require.True(t, ok)
	assert.Equal(t, []byte{0x08, 0xc3, 0x79, 0xa0}, data)

	data, ok = presale.RevertData(dataError{data: hexutil.Bytes{0x01}})
	require.True(t, ok)
	assert.Equal(t, []byte{0x01}, data)

	_, ok = presale.RevertData(dataError{data: "not hex"})
	assert.False(t, ok)

	_, ok = presale.RevertData(dataError{data: 12})
	assert.False(t, ok)

	_, ok = presale.RevertData(errors.New("plain"))
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	t.Parallel()
	parsed, err := presale.ParsePresaleABI()
	require.NoError(t, err)

	tests := []struct {
		name    string
		err     error
		target  error
		message string
	}{
		{
			name:    "user rejection",
			err:     &wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "User denied transaction signature."},
			target:  presaleerr.ErrTransactionRejected,
			message: "transaction was rejected in the wallet",
		},
		{
			name:    "revert with reason",
			err:     errors.New("execution reverted: Already claimed"),
			target:  presaleerr.ErrTransactionReverted,
			message: "Already claimed",
		},
		{
			name:    "bare revert keeps default message",
			err:     errors.New("execution reverted"),
			target:  presaleerr.ErrTransactionReverted,
			message: "transaction reverted",
		},
		{
			name:    "provider message",
			err:     fmt.Errorf("send: %w", dataError{code: -32000, msg: "insufficient funds for gas * price + value"}),
			target:  presaleerr.ErrTransactionFailed,
			message: "insufficient funds for gas * price + value",
		},
		{
			name:    "plain error",
			err:     errors.New("nonce too low"),
			target:  presaleerr.ErrTransactionFailed,
			message: "nonce too low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := presale.Classify(parsed, tc.err)
			require.ErrorIs(t, got, tc.target)
			require.ErrorIs(t, got, tc.err)
			assert.Equal(t, tc.message, presaleerr.MessageOf(got))
		})
	}

	assert.NoError(t, presale.Classify(parsed, nil))
}
