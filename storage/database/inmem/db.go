package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/promotion"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user      *table[user.User]
		student   *table[student.Student]
		grade     *table[grade.Record]
		promotion *table[promotion.Record]

		txMu sync.Mutex
	}

	// table keeps rows by ID and remembers their insertion order.
	table[T any] struct {
		sync.RWMutex
		rows  map[string]T
		order []string
	}

	// txLog records how to undo every row written inside a transaction.
	txLog struct {
		undo []func()
	}

	txKey struct{}
)

var _ core.Transactor = (*DB)(nil)

func Open() *DB {
	return &DB{
		user:      newTable[user.User](),
		student:   newTable[student.Student](),
		grade:     newTable[grade.Record](),
		promotion: newTable[promotion.Record](),
	}
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

// all returns the rows in insertion order. Callers must hold the lock.
func (t *table[T]) all() []T {
	rows := make([]T, 0, len(t.order))
	for _, id := range t.order {
		rows = append(rows, t.rows[id])
	}
	return rows
}

// put inserts or replaces a row. Callers must hold the write lock.
func (t *table[T]) put(ctx context.Context, id string, row T) {
	t.journal(ctx, id)
	t.set(id, row, -1)
}

// remove deletes a row. Callers must hold the write lock.
func (t *table[T]) remove(ctx context.Context, id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.journal(ctx, id)
	t.delete(id)
	return true
}

// set stores row; a new id goes at pos in the insertion order (at the end when pos < 0).
func (t *table[T]) set(id string, row T, pos int) {
	if _, ok := t.rows[id]; !ok {
		if pos < 0 || pos > len(t.order) {
			pos = len(t.order)
		}
		t.order = append(t.order, "")
		copy(t.order[pos+1:], t.order[pos:])
		t.order[pos] = id
	}
	t.rows[id] = row
}

func (t *table[T]) delete(id string) {
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// journal remembers the current state of row id when ctx carries a transaction.
// Callers must hold the write lock.
func (t *table[T]) journal(ctx context.Context, id string) {
	tx, ok := ctx.Value(txKey{}).(*txLog)
	if !ok {
		return
	}

	prev, existed := t.rows[id]
	pos := -1
	for i, oid := range t.order {
		if oid == id {
			pos = i
			break
		}
	}
	tx.undo = append(tx.undo, func() {
		t.Lock()
		defer t.Unlock()
		if existed {
			t.set(id, prev, pos)
		} else {
			t.delete(id)
		}
	})
}

func (tx *txLog) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
}

// RunInTx runs fn and undoes the rows it wrote if fn fails. Rows written
// outside the transaction are left alone.
// Transactions are serialized; nested calls join the outer transaction.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txLog); ok {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	tx := new(txLog)
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		tx.rollback()
		return err
	}
	return nil
}
