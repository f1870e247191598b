package storage

import (
	"sync"

	"go.uber.org/zap"

	"github.com/eugenenazirov/checkout/internal/catalog"
	"github.com/eugenenazirov/checkout/internal/checkout"
)

// Storage provides access to the catalog used for checkout and the Pricer built from it.
type Storage interface {
	GetCatalog() (catalog.Catalog, error)
	GetPricer() (*checkout.Pricer, error)
	SetCatalog(cat catalog.Catalog) error
}

// Option configures a MemoryStorage.
type Option func(*MemoryStorage)

// WithLogger sets the logger used to report deals dropped during catalog loads.
func WithLogger(logger *zap.Logger) Option {
	return func(s *MemoryStorage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEvaluateOptions sets the options every Pricer is built with.
func WithEvaluateOptions(opts ...checkout.EvaluateOption) Option {
	return func(s *MemoryStorage) {
		s.evalOpts = opts
	}
}

// MemoryStorage keeps the catalog in-memory and guards access with a RWMutex.
// The Pricer is rebuilt on every SetCatalog so deals are parsed once per load.
type MemoryStorage struct {
	mu       sync.RWMutex
	catalog  catalog.Catalog
	pricer   *checkout.Pricer
	logger   *zap.Logger
	evalOpts []checkout.EvaluateOption
}

// NewMemoryStorage initialises storage with the default catalog.
func NewMemoryStorage(opts ...Option) *MemoryStorage {
	s := &MemoryStorage{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.catalog = catalog.Default()
	s.pricer = s.buildPricer(s.catalog)
	return s
}

// GetCatalog returns a defensive copy of the current catalog.
func (s *MemoryStorage) GetCatalog() (catalog.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.catalog.Clone(), nil
}

// GetPricer returns the Pricer for the current catalog. Pricers are immutable,
// so the same instance is shared by all callers until the catalog changes.
func (s *MemoryStorage) GetPricer() (*checkout.Pricer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pricer, nil
}

// SetCatalog validates and stores cat, replacing the current Pricer.
func (s *MemoryStorage) SetCatalog(cat catalog.Catalog) error {
	if err := cat.Validate(); err != nil {
		return err
	}

	owned := cat.Clone()
	pricer := s.buildPricer(owned)

	s.mu.Lock()
	s.catalog = owned
	s.pricer = pricer
	s.mu.Unlock()

	return nil
}

func (s *MemoryStorage) buildPricer(cat catalog.Catalog) *checkout.Pricer {
	pricer := cat.Pricer(s.evalOpts...)
	for _, rejected := range pricer.Rejected() {
		s.logger.Warn("deal dropped",
			zap.String("item", rejected.Item),
			zap.String("deal", rejected.Text),
			zap.Error(rejected.Err),
		)
	}
	s.logger.Info("catalog loaded",
		zap.Int("items", len(cat.Items)),
		zap.Int("deals", len(pricer.Deals())),
		zap.Int("rejected_deals", len(pricer.Rejected())),
	)
	return pricer
}
