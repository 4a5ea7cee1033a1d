package presale

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mrz1836/presale/internal/wallet"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

const revertMarker = "execution reverted"

// RevertData returns the raw revert payload carried by a JSON-RPC data error.
func RevertData(err error) ([]byte, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil, false
	}
	switch v := dataErr.ErrorData().(type) {
	case string:
		data, derr := hexutil.Decode(v)
		if derr != nil {
			return nil, false
		}
		return data, true
	case hexutil.Bytes:
		return v, true
	case []byte:
		return v, true
	}
	return nil, false
}

// RevertReason extracts the revert reason from err. The bool reports whether
// err is a revert at all; the reason may be empty for a bare revert.
// ABI-encoded revert data wins over the node's message text.
func RevertReason(parsed abi.ABI, err error) (string, bool) {
	if err == nil {
		return "", false
	}

	if data, ok := RevertData(err); ok && len(data) >= 4 {
		if reason, uerr := abi.UnpackRevert(data); uerr == nil {
			return reason, true
		}
		if reason, ok := customError(parsed, data); ok {
			return reason, true
		}
	}

	msg := err.Error()
	idx := strings.Index(msg, revertMarker)
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimSpace(msg[idx+len(revertMarker):])
	return strings.TrimSpace(strings.TrimPrefix(rest, ":")), true
}

// customError renders data as one of the ABI's declared errors.
func customError(parsed abi.ABI, data []byte) (string, bool) {
	for name, e := range parsed.Errors {
		if !bytes.Equal(e.ID[:4], data[:4]) {
			continue
		}
		args, err := e.Inputs.Unpack(data[4:])
		if err != nil || len(args) == 0 {
			return name, true
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", ")), true
	}
	return "", false
}

// providerMessage is the wallet or node message of err.
func providerMessage(err error) string {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Error()
	}
	return err.Error()
}

// Classify maps a submission or confirmation error to the transaction taxonomy.
// Signature refusals become TransactionRejected, reverts TransactionReverted
// (message = revert reason when known), everything else TransactionFailed
// carrying the provider message.
func Classify(parsed abi.ABI, err error) error {
	if err == nil {
		return nil
	}
	if wallet.IsUserRejection(err) {
		return presaleerr.WithCause(presaleerr.ErrTransactionRejected, err)
	}
	if reason, ok := RevertReason(parsed, err); ok {
		out := presaleerr.WithCause(presaleerr.ErrTransactionReverted, err)
		if reason != "" {
			out = presaleerr.WithMessage(out, reason)
		}
		return out
	}
	out := presaleerr.WithCause(presaleerr.ErrTransactionFailed, err)
	if msg := providerMessage(err); msg != "" {
		out = presaleerr.WithMessage(out, msg)
	}
	return out
}
