package memory

import (
	"context"
	"maps"
	"sync"

	models "portal/internal/domain/models/docsystem"
	"portal/internal/domain/repositories"
)

type shareKey struct {
	documentID string
	granteeID  string
}

// Store is the shared state behind every in-memory repository.
// One mutex guards everything; a transaction holds it until commit.
type Store struct {
	mu        sync.Mutex
	folders   map[string]models.Folder
	documents map[string]models.Document
	shares    map[shareKey]models.Share
	users     map[string]models.Grantee
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		folders:   make(map[string]models.Folder),
		documents: make(map[string]models.Document),
		shares:    make(map[shareKey]models.Share),
		users:     make(map[string]models.Grantee),
	}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// do runs fn under the store lock, unless ctx already holds it through ExecTx
func (s *Store) do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type snapshot struct {
	folders   map[string]models.Folder
	documents map[string]models.Document
	shares    map[shareKey]models.Share
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		folders:   maps.Clone(s.folders),
		documents: maps.Clone(s.documents),
		shares:    maps.Clone(s.shares),
	}
}

func (s *Store) restore(snap snapshot) {
	s.folders = snap.folders
	s.documents = snap.documents
	s.shares = snap.shares
}

// TransactionManager serializes transactions over a Store and rolls back
// every write when fn fails.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx executes a function within a transaction
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	s := tm.store
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.restore(snap)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}
