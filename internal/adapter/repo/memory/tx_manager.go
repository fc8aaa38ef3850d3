package memory

import "context"

// TxManager serializes mutations on the store. It gives the same
// one-turn-at-a-time guarantee the SQL transaction gives in production.
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) TxManager {
	return TxManager{store: store}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return fn(ctx)
}
