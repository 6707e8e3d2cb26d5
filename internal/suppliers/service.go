package suppliers

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// OperationRecorder receives the outcome of every service operation.
type OperationRecorder interface {
	RecordOperation(op, outcome string, elapsed time.Duration)
}

// ServiceConfig carries optional collaborators of Service.
type ServiceConfig struct {
	Cache   *Cache
	Logger  *slog.Logger
	Metrics OperationRecorder
}

// Service implements the supplier lifecycle on top of a Repository.
type Service struct {
	repo    Repository
	cache   *Cache
	logger  *slog.Logger
	metrics OperationRecorder
}

// NewService constructs the supplier service.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cfg.Cache, logger: logger, metrics: cfg.Metrics}
}

// FindAll returns every supplier matching f in id order. A non-empty filter
// that matches nothing fails with NotFound; an empty filter never does.
func (s *Service) FindAll(ctx context.Context, f Filter) (list []Supplier, err error) {
	defer s.observe("find_all", time.Now(), &err)
	f = f.normalized()
	list, err = s.lookup(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 && !f.IsEmpty() {
		return nil, newError(CodeNotFound, "no supplier matches the given filters")
	}
	return list, nil
}

// FindFirst returns the lowest-id supplier matching f.
func (s *Service) FindFirst(ctx context.Context, f Filter) (Supplier, error) {
	list, err := s.FindAll(ctx, f)
	if err != nil {
		return Supplier{}, err
	}
	if len(list) == 0 {
		return Supplier{}, newError(CodeNotFound, "no supplier found")
	}
	return list[0], nil
}

// Get returns the supplier with id.
func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	sup, err := s.FindFirst(ctx, ByID(id))
	if errors.Is(err, ErrNotFound) {
		return Supplier{}, notFound(id)
	}
	return sup, err
}

// List returns all suppliers.
func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	return s.FindAll(ctx, Filter{})
}

// Create persists a validated supplier and returns it with its assigned id.
// Any id carried by sup is discarded.
func (s *Service) Create(ctx context.Context, sup *Supplier) (out Supplier, err error) {
	defer s.observe("create", time.Now(), &err)
	if sup == nil {
		return Supplier{}, newError(CodeMissingInfo, "supplier data is required")
	}
	// Re-run construction so values assembled by hand are held to the same rules.
	valid, err := New(sup.Name, sup.Email, sup.Address, sup.Products)
	if err != nil {
		return Supplier{}, err
	}
	id, err := s.repo.Insert(ctx, valid)
	if err != nil {
		return Supplier{}, err
	}
	valid.ID = id
	s.invalidate(ctx)
	return *valid, nil
}

// Update applies p to the stored supplier. Concurrent updates of the same
// supplier are serialized by a row lock and the last one wins.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (out Supplier, err error) {
	defer s.observe("update", time.Now(), &err)
	return s.modify(ctx, id, func(cur *Supplier) (*Supplier, error) {
		return cur.Apply(p)
	})
}

// AddProducts appends ids to the stored supplier's product set.
func (s *Service) AddProducts(ctx context.Context, id int64, ids []int64) (out Supplier, err error) {
	defer s.observe("add_products", time.Now(), &err)
	return s.modify(ctx, id, func(cur *Supplier) (*Supplier, error) {
		return cur.WithProducts(ids)
	})
}

// Delete removes the supplier with id.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	defer s.observe("delete", time.Now(), &err)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// WarmCache loads the unfiltered listing into the cache.
func (s *Service) WarmCache(ctx context.Context) (int, error) {
	if !s.cache.enabled() {
		return 0, nil
	}
	// The key is built first so a bump during the read leaves the listing
	// under a stale version.
	key, err := s.cache.BuildKey(ctx, "suppliers", "find", Filter{}.cacheKey())
	if err != nil {
		return 0, err
	}
	list, err := s.repo.Find(ctx, Filter{})
	if err != nil {
		return 0, err
	}
	if err := s.cache.Store(ctx, key, list); err != nil {
		return 0, err
	}
	return len(list), nil
}

func (s *Service) modify(ctx context.Context, id int64, change func(*Supplier) (*Supplier, error)) (Supplier, error) {
	var result Supplier
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		cur, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		next, err := change(cur)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, next); err != nil {
			return err
		}
		result = *next
		return nil
	})
	if err != nil {
		return Supplier{}, err
	}
	s.invalidate(ctx)
	return result, nil
}

// lookup reads through the cache. Cache failures fall back to the repository.
func (s *Service) lookup(ctx context.Context, f Filter) ([]Supplier, error) {
	if !s.cache.enabled() {
		return s.repo.Find(ctx, f)
	}
	key, err := s.cache.BuildKey(ctx, "suppliers", "find", f.cacheKey())
	if err != nil {
		s.logger.Warn("supplier cache unavailable", slog.Any("error", err))
		return s.repo.Find(ctx, f)
	}
	var list []Supplier
	err = s.cache.FetchJSON(ctx, key, &list, func(ctx context.Context) (any, error) {
		return s.repo.Find(ctx, f)
	})
	if err == nil {
		return list, nil
	}
	var se *Error
	if errors.As(err, &se) {
		return nil, err
	}
	s.logger.Warn("supplier cache read failed", slog.String("key", key), slog.Any("error", err))
	return s.repo.Find(ctx, f)
}

func (s *Service) invalidate(ctx context.Context) {
	if _, err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("supplier cache bump failed", slog.Any("error", err))
	}
}

func (s *Service) observe(op string, start time.Time, errp *error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if *errp != nil {
		outcome = "error"
		var se *Error
		if errors.As(*errp, &se) {
			outcome = string(se.Code)
		}
	}
	s.metrics.RecordOperation(op, outcome, time.Since(start))
}
