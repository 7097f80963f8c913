package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/repository"
)

const (
	catalogCategoriesKey  = "categories"
	catalogDepartmentsKey = "departments"
)

// CatalogService serves active categories and departments from a small expiring
// in-process LRU. Lifecycle code paths read reference data directly and never go
// through this cache.
type CatalogService struct {
	categories  repository.CategoryRepository
	departments repository.DepartmentRepository
	cache       *expirable.LRU[string, any]
	metrics     *observability.Metrics
}

// NewCatalogService builds the service.
func NewCatalogService(categories repository.CategoryRepository, departments repository.DepartmentRepository, size int, ttl time.Duration, metrics *observability.Metrics) *CatalogService {
	if size <= 0 {
		size = 16
	}
	return &CatalogService{
		categories:  categories,
		departments: departments,
		cache:       expirable.NewLRU[string, any](size, nil, ttl),
		metrics:     metrics,
	}
}

// ListActiveCategories returns categories accepting new complaints.
func (s *CatalogService) ListActiveCategories(ctx context.Context) ([]domain.ComplaintCategory, error) {
	if cached, ok := s.cache.Get(catalogCategoriesKey); ok {
		s.metrics.CacheLookup("catalog", true)
		return cached.([]domain.ComplaintCategory), nil
	}
	s.metrics.CacheLookup("catalog", false)
	items, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.ComplaintCategory{}
	}
	s.cache.Add(catalogCategoriesKey, items)
	return items, nil
}

// ListActiveDepartments returns active departments.
func (s *CatalogService) ListActiveDepartments(ctx context.Context) ([]domain.Department, error) {
	if cached, ok := s.cache.Get(catalogDepartmentsKey); ok {
		s.metrics.CacheLookup("catalog", true)
		return cached.([]domain.Department), nil
	}
	s.metrics.CacheLookup("catalog", false)
	items, err := s.departments.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Department{}
	}
	s.cache.Add(catalogDepartmentsKey, items)
	return items, nil
}

// Purge drops every cached entry.
func (s *CatalogService) Purge() {
	s.cache.Purge()
}
