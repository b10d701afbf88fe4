package memory

import (
	"context"
	"sync"
)

type txKey struct{}

// TxManager выполняет транзакции строго по одной.
// Единый мьютекс заменяет блокировки строк PostgreSQL; при ошибке состояние бронирований откатывается.
type TxManager struct {
	store *Store
	mu    sync.Mutex
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Do выполняет fn в транзакции; вложенный вызов переиспользует текущую
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	saved := m.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			m.store.restore(saved)
			panic(p)
		}
		if err != nil {
			m.store.restore(saved)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

// DoSerializable в памяти совпадает с Do: транзакции и так выполняются последовательно
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}
