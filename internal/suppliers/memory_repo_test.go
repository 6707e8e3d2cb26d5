package suppliers

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
)

// memorySupplierRepo is an in-memory Repository. WithTx holds the store lock
// for the whole callback, which mirrors the row lock taken by GetForUpdate.
type memorySupplierRepo struct {
	mu        sync.Mutex
	rows      map[int64]Supplier
	nextID    int64
	insertErr error
	findCalls int
}

type memorySupplierTx struct {
	repo *memorySupplierRepo
}

func newMemorySupplierRepo() *memorySupplierRepo {
	return &memorySupplierRepo{rows: make(map[int64]Supplier)}
}

func (r *memorySupplierRepo) Insert(ctx context.Context, s *Supplier) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return 0, persistenceError("insert", r.insertErr)
	}
	r.nextID++
	row := cloneSupplier(*s)
	row.ID = r.nextID
	r.rows[row.ID] = row
	return row.ID, nil
}

func (r *memorySupplierRepo) Find(ctx context.Context, f Filter) ([]Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	f = f.normalized()
	ids := slices.Sorted(maps.Keys(r.rows))
	var out []Supplier
	for _, id := range ids {
		if row := r.rows[id]; f.matches(row) {
			out = append(out, cloneSupplier(row))
		}
	}
	return out, nil
}

func (r *memorySupplierRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return notFound(id)
	}
	delete(r.rows, id)
	return nil
}

func (r *memorySupplierRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := maps.Clone(r.rows)
	if err := fn(ctx, &memorySupplierTx{repo: r}); err != nil {
		r.rows = snapshot
		return err
	}
	return nil
}

func (tx *memorySupplierTx) GetForUpdate(ctx context.Context, id int64) (*Supplier, error) {
	row, ok := tx.repo.rows[id]
	if !ok {
		return nil, notFound(id)
	}
	out := cloneSupplier(row)
	return &out, nil
}

func (tx *memorySupplierTx) Update(ctx context.Context, s *Supplier) error {
	if _, ok := tx.repo.rows[s.ID]; !ok {
		return notFound(s.ID)
	}
	tx.repo.rows[s.ID] = cloneSupplier(*s)
	return nil
}

func (r *memorySupplierRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func cloneSupplier(s Supplier) Supplier {
	s.Email = cloneString(s.Email)
	s.Address = cloneString(s.Address)
	s.Products = slices.Clone(s.Products)
	return s
}

var errBoom = errors.New("boom")

func strPtr(s string) *string {
	return &s
}
