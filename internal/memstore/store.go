// Package memstore is an in-process implementation of every repository port.
// It enforces the same unique keys, compare-and-swap writes and row locking
// as the Postgres schema so services behave identically against either store.
// Transactions are serialized and keep an undo log of their own writes.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nullityv3/home-hero-sub002/internal/domain"
	"github.com/nullityv3/home-hero-sub002/internal/port"
)

type txKey struct{}

var errNoTx = errors.New("memstore: row lock requested outside a transaction")

type row[V any] struct {
	v   V
	seq int64
	// ver changes on every write of the row.
	ver int64
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	seq  int64

	requests      map[uuid.UUID]row[domain.ServiceRequest]
	acceptances   map[uuid.UUID]row[domain.Acceptance]
	heroes        map[domain.HeroRecordID]row[domain.Hero]
	wallets       map[uuid.UUID]row[domain.HeroWallet]
	transactions  map[uuid.UUID]row[domain.WalletTransaction]
	withdrawals   map[uuid.UUID]row[domain.WithdrawalRequest]
	notifications map[uuid.UUID]row[domain.Notification]
}

func New() *Store {
	return &Store{
		requests:      make(map[uuid.UUID]row[domain.ServiceRequest]),
		acceptances:   make(map[uuid.UUID]row[domain.Acceptance]),
		heroes:        make(map[domain.HeroRecordID]row[domain.Hero]),
		wallets:       make(map[uuid.UUID]row[domain.HeroWallet]),
		transactions:  make(map[uuid.UUID]row[domain.WalletTransaction]),
		withdrawals:   make(map[uuid.UUID]row[domain.WithdrawalRequest]),
		notifications: make(map[uuid.UUID]row[domain.Notification]),
	}
}

func (s *Store) Requests() port.RequestRepository           { return requestRepo{s} }
func (s *Store) Acceptances() port.AcceptanceRepository     { return acceptanceRepo{s} }
func (s *Store) Heroes() port.HeroRepository                { return heroRepo{s} }
func (s *Store) Wallets() port.WalletRepository             { return walletRepo{s} }
func (s *Store) Transactions() port.TransactionRepository   { return transactionRepo{s} }
func (s *Store) Withdrawals() port.WithdrawalRepository     { return withdrawalRepo{s} }
func (s *Store) Notifications() port.NotificationRepository { return notificationRepo{s} }

// WithinTx serializes fn against every other transaction. When fn fails,
// only the rows fn wrote are put back, and only if nobody wrote them since.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &txLog{}
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		s.rollback(log)
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*txLog)
	return ok
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

type txLog struct {
	undo []func()
}

func (s *Store) rollback(log *txLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(log.undo) - 1; i >= 0; i-- {
		log.undo[i]()
	}
}

func record(ctx context.Context, fn func()) {
	if log, ok := ctx.Value(txKey{}).(*txLog); ok {
		log.undo = append(log.undo, fn)
	}
}

// put writes r under k. The caller holds s.mu.
func put[K comparable, V any](ctx context.Context, s *Store, m map[K]row[V], k K, r row[V]) {
	prev, existed := m[k]
	if r.seq == 0 {
		r.seq = s.nextSeq()
	}
	r.ver = s.nextSeq()
	m[k] = r
	record(ctx, func() {
		if cur, ok := m[k]; !ok || cur.ver != r.ver {
			return
		}
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
}

// remove deletes k. The caller holds s.mu.
func remove[K comparable, V any](ctx context.Context, m map[K]row[V], k K) {
	prev, existed := m[k]
	if !existed {
		return
	}
	delete(m, k)
	record(ctx, func() {
		if _, ok := m[k]; !ok {
			m[k] = prev
		}
	})
}

// sorted returns the rows of m ordered by less, falling back to insertion order.
func sorted[K comparable, V any](m map[K]row[V], keep func(V) bool, less func(a, b V) int) []V {
	rows := make([]row[V], 0, len(m))
	for _, r := range m {
		if keep == nil || keep(r.v) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if less != nil {
			if c := less(rows[i].v, rows[j].v); c != 0 {
				return c < 0
			}
		}
		return rows[i].seq < rows[j].seq
	})
	out := make([]V, len(rows))
	for i, r := range rows {
		out[i] = r.v
	}
	return out
}

func page[V any](items []V, limit, offset int) []V {
	if offset >= len(items) {
		return []V{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
