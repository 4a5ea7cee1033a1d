package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/presale/internal/chain"
)

func TestProviderError(t *testing.T) {
	t.Parallel()
	err := &ProviderError{Code: CodeUnrecognizedChain, Message: "unknown chain", Data: "0x61"}
	assert.Equal(t, "wallet error 4902: unknown chain", err.Error())
	assert.Equal(t, CodeUnrecognizedChain, err.ErrorCode())
	assert.Equal(t, "0x61", err.ErrorData())
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	code, ok := ErrorCode(fmt.Errorf("switch: %w", &ProviderError{Code: CodeUserRejected}))
	require.True(t, ok)
	assert.Equal(t, CodeUserRejected, code)

	_, ok = ErrorCode(assert.AnError)
	assert.False(t, ok)

	assert.True(t, IsUserRejection(&ProviderError{Code: CodeUserRejected}))
	assert.False(t, IsUserRejection(&ProviderError{Code: CodeInternal}))
	assert.False(t, IsUserRejection(nil))
}

func TestEventKind_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "accountsChanged", EventAccountsChanged.String())
	assert.Equal(t, "chainChanged", EventChainChanged.String())
	assert.Equal(t, "unknown", EventKind(0).String())
}

func TestAddChainParams_JSON(t *testing.T) {
	t.Parallel()
	params := AddChainParamsFor(chain.Network{
		Key:            "bsctest",
		Name:           "BSC Testnet",
		ChainID:        97,
		RPCURL:         "https://data-seed-prebsc-1-s1.binance.org:8545/",
		Explorer:       "https://testnet.bscscan.com",
		NativeCurrency: chain.NativeCurrency{Name: "BNB", Symbol: "tBNB", Decimals: 18},
	})

	data, err := json.Marshal(params)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"chainId": "0x61",
		"chainName": "BSC Testnet",
		"nativeCurrency": {"name": "BNB", "symbol": "tBNB", "decimals": 18},
		"rpcUrls": ["https://data-seed-prebsc-1-s1.binance.org:8545/"],
		"blockExplorerUrls": ["https://testnet.bscscan.com"]
	}`, string(data))

	noExplorer, err := json.Marshal(AddChainParamsFor(chain.Network{ChainID: 1, RPCURL: "http://x"}))
	require.NoError(t, err)
	assert.NotContains(t, string(noExplorer), "blockExplorerUrls")
}

func TestEventHub_FanOutAndCancel(t *testing.T) {
	t.Parallel()
	var hub eventHub

	ch1, cancel1 := hub.subscribe(context.Background())
	ch2, cancel2 := hub.subscribe(context.Background())
	assert.Equal(t, 2, hub.count())

	hub.emit(Event{Kind: EventChainChanged, ChainID: 97})
	assert.Equal(t, uint64(97), (<-ch1).ChainID)
	assert.Equal(t, uint64(97), (<-ch2).ChainID)

	cancel1()
	cancel1()
	_, open := <-ch1
	assert.False(t, open)
	assert.Equal(t, 1, hub.count())

	hub.emit(Event{Kind: EventAccountsChanged})
	assert.Equal(t, EventAccountsChanged, (<-ch2).Kind)
	cancel2()
	assert.Equal(t, 0, hub.count())
}

func TestEventHub_ContextCancel(t *testing.T) {
	t.Parallel()
	var hub eventHub
	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := hub.subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return hub.count() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-ch
	assert.False(t, open)
}

func TestEventHub_BlockedSubscriberReleasedByCancel(t *testing.T) {
	t.Parallel()
	var hub eventHub
	_, cancel := hub.subscribe(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 32; i++ {
			hub.emit(Event{Kind: EventAccountsChanged, Accounts: []common.Address{{byte(i)}}})
		}
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	wg.Wait()
}
