package state

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/presale/internal/presale"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

func TestStore_CommitApplies(t *testing.T) {
	t.Parallel()
	s := NewStore("bsctest")

	tk := s.Begin(RefreshStatic)
	require.NoError(t, s.Commit(tk, RefreshResult{Static: loadedStatic()}))

	snap := s.Snapshot()
	assert.True(t, snap.Static.Loaded)
	assert.Equal(t, "INF", snap.Static.TokenSymbol)
}

func TestStore_CommitUsesTicketKind(t *testing.T) {
	t.Parallel()
	s := NewStore("x")
	tk := s.Begin(RefreshDynamic)
	require.NoError(t, s.Commit(tk, RefreshResult{Kind: RefreshStatic, Dynamic: presale.DynamicData{PresaleActive: true}}))
	assert.True(t, s.Snapshot().Dynamic.PresaleActive)
	assert.False(t, s.Snapshot().Static.Loaded)
}

func TestStore_StaleAfterReset(t *testing.T) {
	t.Parallel()
	s := NewStore("infinaeon")

	old := s.Begin(RefreshDynamic)
	s.Reset("bsctest")

	err := s.Commit(old, RefreshResult{Dynamic: presale.DynamicData{TotalRaised: eth(9), PresaleActive: true}})
	require.ErrorIs(t, err, presaleerr.ErrStaleContext)
	assert.NotEqual(t, "superseded by a later refresh", presaleerr.MessageOf(err))

	snap := s.Snapshot()
	assert.Equal(t, "bsctest", snap.Network)
	assert.False(t, snap.Dynamic.Loaded)
	assert.Equal(t, 0, snap.Dynamic.TotalRaised.Sign(), "no value from the previous network may leak")
}

func TestStore_SupersededRefreshDiscarded(t *testing.T) {
	t.Parallel()
	s := NewStore("x")

	first := s.Begin(RefreshUser)
	second := s.Begin(RefreshUser)

	require.NoError(t, s.Commit(second, RefreshResult{User: presale.UserData{Contribution: eth(2)}}))
	err := s.Commit(first, RefreshResult{User: presale.UserData{Contribution: eth(1)}})
	require.ErrorIs(t, err, presaleerr.ErrStaleContext)
	assert.Equal(t, "superseded by a later refresh", presaleerr.MessageOf(err))
	assert.Equal(t, eth(2), s.Snapshot().User.Contribution)

	// other kinds keep their own sequence
	dyn := s.Begin(RefreshDynamic)
	require.NoError(t, s.Commit(dyn, RefreshResult{Dynamic: presale.DynamicData{TotalRaised: eth(3)}}))
}

func TestStore_DoubleCommitRejected(t *testing.T) {
	t.Parallel()
	s := NewStore("x")
	tk := s.Begin(RefreshStatic)
	require.NoError(t, s.Commit(tk, RefreshResult{Static: loadedStatic()}))
	require.ErrorIs(t, s.Commit(tk, RefreshResult{Static: loadedStatic()}), presaleerr.ErrStaleContext)
}

func TestStore_EpochMovesOnReset(t *testing.T) {
	t.Parallel()
	s := NewStore("x")
	e := s.Epoch()
	s.Reset("x")
	assert.Equal(t, e+1, s.Epoch())
}

func TestStore_SessionKeepsData(t *testing.T) {
	t.Parallel()
	s := NewStore("x")
	require.NoError(t, s.Commit(s.Begin(RefreshStatic), RefreshResult{Static: loadedStatic()}))
	epoch := s.Epoch()

	s.SetSession(Session{Connected: true, Address: common.Address{1}, ChainID: 97, WrongNetwork: true})
	snap := s.Snapshot()
	assert.True(t, snap.Session.WrongNetwork)
	assert.True(t, snap.Static.Loaded)
	assert.Equal(t, epoch, s.Epoch())
}

func TestStore_TransactionRecords(t *testing.T) {
	t.Parallel()
	s := NewStore("x")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	a := s.BeginTx(KindContribute)
	b := s.BeginTx(KindSetRate)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, fixed, a.Started)

	hash := common.HexToHash("0x01")
	s.SetTxHash(a.ID, hash)

	snap := s.Snapshot()
	require.Len(t, snap.Pending, 2)
	assert.Equal(t, hash, snap.Pending[0].Hash)
	assert.True(t, snap.HasPending(KindSetRate))
	assert.False(t, snap.HasPending(KindWithdraw))

	done, ok := s.FinishTx(a.ID, StatusConfirmed, "")
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, done.Status)
	assert.Equal(t, hash, done.Hash)
	assert.Len(t, s.Snapshot().Pending, 1)

	_, ok = s.FinishTx(a.ID, StatusConfirmed, "")
	assert.False(t, ok)

	failed, ok := s.FinishTx(b.ID, StatusFailed, "Ownable: caller is not the owner")
	require.True(t, ok)
	assert.Equal(t, "Ownable: caller is not the owner", failed.ErrorReason)
	assert.Nil(t, s.Snapshot().Pending)
}

func TestStore_ResetDropsPending(t *testing.T) {
	t.Parallel()
	s := NewStore("x")
	rec := s.BeginTx(KindClaimTokens)
	s.Reset("x")
	assert.Empty(t, s.Snapshot().Pending)
	_, ok := s.FinishTx(rec.ID, StatusConfirmed, "")
	assert.False(t, ok)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	t.Parallel()
	s := NewStore("x")
	s.BeginTx(KindWithdraw)
	snap := s.Snapshot()
	snap.Pending[0].ErrorReason = "mutated"
	assert.Empty(t, s.Snapshot().Pending[0].ErrorReason)
}

func TestStore_Subscribe(t *testing.T) {
	t.Parallel()
	s := NewStore("x")

	ch, cancel := s.Subscribe()
	initial := <-ch
	assert.False(t, initial.Static.Loaded)

	// several updates collapse into the latest
	s.SetSession(Session{Connected: true, Address: common.Address{1}, ChainID: 97})
	require.NoError(t, s.Commit(s.Begin(RefreshStatic), RefreshResult{Static: loadedStatic()}))

	latest := <-ch
	assert.True(t, latest.Static.Loaded)
	assert.True(t, latest.Session.Connected)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	s.Reset("x")
}

func TestStore_ConcurrentCommits(t *testing.T) {
	t.Parallel()
	s := NewStore("x")
	ch, cancel := s.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tk := s.Begin(RefreshDynamic)
			_ = s.Commit(tk, RefreshResult{Dynamic: presale.DynamicData{TotalRaised: big.NewInt(int64(i))}})
			if i%5 == 0 {
				s.Reset("x")
			}
		}(i)
	}
	wg.Wait()

	select {
	case <-ch:
	default:
		t.Fatal("subscriber should hold the latest snapshot")
	}
}
