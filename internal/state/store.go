package state

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// Ticket identifies one refresh: the context epoch it was started in and its
// sequence number among refreshes of the same kind.
type Ticket struct {
	Kind  RefreshKind
	Epoch uint64
	Seq   uint64
}

// Store owns the current Snapshot. Every reset of the (session, network)
// context moves the epoch, so results fetched for an older context are
// rejected on Commit.
type Store struct {
	mu      sync.Mutex
	snap    Snapshot
	epoch   uint64
	issued  [numRefreshKinds]uint64
	applied [numRefreshKinds]uint64
	nextTx  uint64
	subs    map[int]chan Snapshot
	nextSub int
	now     func() time.Time
}

// NewStore creates a store with network selected and nothing loaded.
func NewStore(network string) *Store {
	return &Store{
		snap: Initial(network),
		subs: make(map[int]chan Snapshot),
		now:  time.Now,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Epoch returns the current context epoch.
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Reset discards the session, all contract data and pending records, selects
// network and invalidates every outstanding ticket.
func (s *Store) Reset(network string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.snap = Initial(network)
	s.publishLocked()
}

// SetSession replaces the session without touching contract data.
func (s *Store) SetSession(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = WithSession(s.snap, sess)
	s.publishLocked()
}

// Begin issues a ticket for a refresh of kind.
func (s *Store) Begin(kind RefreshKind) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[kind]++
	return Ticket{Kind: kind, Epoch: s.epoch, Seq: s.issued[kind]}
}

// Commit applies r if t is still current. It returns ErrStaleContext when the
// epoch moved since Begin or a later refresh of the same kind was applied.
func (s *Store) Commit(t Ticket, r RefreshResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Epoch != s.epoch {
		return presaleerr.ErrStaleContext
	}
	if t.Seq <= s.applied[t.Kind] {
		return presaleerr.WithMessage(presaleerr.ErrStaleContext, "superseded by a later refresh")
	}
	r.Kind = t.Kind
	s.applied[t.Kind] = t.Seq
	s.snap = Reduce(s.snap, r)
	s.publishLocked()
	return nil
}

// BeginTx records a pending transaction of kind and returns its record.
func (s *Store) BeginTx(kind TxKind) TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTx++
	rec := TransactionRecord{ID: s.nextTx, Kind: kind, Status: StatusPending, Started: s.now()}
	s.snap.Pending = append(append([]TransactionRecord(nil), s.snap.Pending...), rec)
	s.publishLocked()
	return rec
}

// SetTxHash attaches the on-chain hash to a pending record.
func (s *Store) SetTxHash(id uint64, hash common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := append([]TransactionRecord(nil), s.snap.Pending...)
	for i := range pending {
		if pending[i].ID == id {
			pending[i].Hash = hash
			s.snap.Pending = pending
			s.publishLocked()
			return
		}
	}
}

// FinishTx drops a pending record and returns it with its final status.
// The bool is false when the record was already discarded by a Reset.
func (s *Store) FinishTx(id uint64, status TxStatus, reason string) (TransactionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := make([]TransactionRecord, 0, len(s.snap.Pending))
	var done TransactionRecord
	found := false
	for _, r := range s.snap.Pending {
		if r.ID == id {
			done, found = r, true
			continue
		}
		pending = append(pending, r)
	}
	if !found {
		return TransactionRecord{}, false
	}
	done.Status = status
	done.ErrorReason = reason
	if len(pending) == 0 {
		pending = nil
	}
	s.snap.Pending = pending
	s.publishLocked()
	return done, true
}

// Subscribe returns a channel that always holds the latest snapshot. Slow
// readers skip intermediate states. cancel closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Snapshot, 1)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.copyLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Store) copyLocked() Snapshot {
	c := s.snap
	if len(s.snap.Pending) > 0 {
		c.Pending = append([]TransactionRecord(nil), s.snap.Pending...)
	}
	return c
}

// publishLocked hands the latest snapshot to every subscriber, replacing an
// unread one.
func (s *Store) publishLocked() {
	for _, ch := range s.subs {
		snap := s.copyLocked()
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
