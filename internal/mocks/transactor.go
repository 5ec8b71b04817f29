package mocks

import (
	"context"

	"github.com/phrazzld/taskman/internal/store"
)

// NoopTransactor implements store.Transactor by calling fn with a nil
// transaction. Fake stores ignore the transaction, so the function's writes
// go straight to them.
type NoopTransactor struct {
	// Err, when set, is returned instead of calling fn.
	Err error

	// Calls counts WithinTx invocations.
	Calls int
}

var _ store.Transactor = (*NoopTransactor)(nil)

// WithinTx implements store.Transactor.
func (m *NoopTransactor) WithinTx(ctx context.Context, fn store.TxFn) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, nil)
}
