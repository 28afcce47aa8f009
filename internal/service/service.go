// Package service is the read-side orchestration over the store. It
// validates presence, delegates, logs failures with context, and
// surfaces them as opaque operational errors: the underlying cause is
// logged here and never re-exposed to callers.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fleetwatch/fleetwatch/internal/store"
)

// DefaultAdvisoryLimit caps advisory listings when the caller does not
// supply a limit.
const DefaultAdvisoryLimit = 10

// Opaque operational errors returned to callers.
var (
	ErrCreateProduct     = errors.New("error creating product")
	ErrUpdateProduct     = errors.New("error updating product")
	ErrDeleteProduct     = errors.New("error deleting product")
	ErrFetchProducts     = errors.New("error fetching products")
	ErrFetchTags         = errors.New("error fetching product tags")
	ErrFetchRepositories = errors.New("error fetching repositories")
	ErrFetchAdvisories   = errors.New("error fetching security advisories")
	ErrFetchPullRequests = errors.New("error fetching pull requests")
)

// Store is the persistence collaborator used by the read path.
type Store interface {
	InsertProduct(name string, tags []string) error
	UpdateProduct(id, name string, tags []string) error
	GetProductByID(id string) (*store.Product, error)
	GetAllProducts() ([]store.Product, error)
	DeleteProduct(id string) error
	GetAllProductTags() ([]string, error)
	GetRepositoriesByProductID(productID string) ([]store.Repository, error)
	GetSecurityAdvisoriesByProductID(productID string, limit int) ([]store.SecurityAdvisory, error)
	GetAllSecurityAdvisories(limit int) ([]store.SecurityAdvisory, error)
	GetOpenPullRequestsByProductID(productID string) ([]store.PullRequest, error)
	GetOpenPullRequests() ([]store.PullRequest, error)
}

// Service aggregates products, repositories, advisories and pull
// requests for presentation.
type Service struct {
	store  Store
	logger *slog.Logger
}

// New creates a Service with injected collaborators.
func New(st Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// CreateProduct creates a named product grouping the given topics.
// Inputs are validated for presence only.
func (s *Service) CreateProduct(name string, tags []string) error {
	if name == "" {
		return fmt.Errorf("product name is required")
	}
	if len(tags) == 0 {
		return fmt.Errorf("product tags are required")
	}
	if err := s.store.InsertProduct(name, tags); err != nil {
		s.logger.Error("failed to create product", "name", name, "error", err)
		return ErrCreateProduct
	}
	return nil
}

// UpdateProduct replaces a product's name and tag set.
func (s *Service) UpdateProduct(id, name string, tags []string) error {
	if id == "" {
		return fmt.Errorf("product id is required")
	}
	if name == "" {
		return fmt.Errorf("product name is required")
	}
	if len(tags) == 0 {
		return fmt.Errorf("product tags are required")
	}
	if err := s.store.UpdateProduct(id, name, tags); err != nil {
		s.logger.Error("failed to update product", "id", id, "error", err)
		return ErrUpdateProduct
	}
	return nil
}

// GetProduct returns one product by id.
func (s *Service) GetProduct(id string) (*store.Product, error) {
	product, err := s.store.GetProductByID(id)
	if err != nil {
		s.logger.Error("failed to fetch product", "id", id, "error", err)
		return nil, ErrFetchProducts
	}
	return product, nil
}

// ListProducts returns all products.
func (s *Service) ListProducts() ([]store.Product, error) {
	products, err := s.store.GetAllProducts()
	if err != nil {
		s.logger.Error("failed to fetch products", "error", err)
		return nil, ErrFetchProducts
	}
	s.logger.Info("fetched products", "total", len(products))
	return products, nil
}

// DeleteProduct removes a product by id.
func (s *Service) DeleteProduct(id string) error {
	if id == "" {
		return fmt.Errorf("product id is required")
	}
	if err := s.store.DeleteProduct(id); err != nil {
		s.logger.Error("failed to delete product", "id", id, "error", err)
		return ErrDeleteProduct
	}
	return nil
}

// ListProductTags returns the deduplicated union of tags across all
// products.
func (s *Service) ListProductTags() ([]string, error) {
	tags, err := s.store.GetAllProductTags()
	if err != nil {
		s.logger.Error("failed to fetch product tags", "error", err)
		return nil, ErrFetchTags
	}
	return tags, nil
}

// ListRepositoriesForProduct returns the repositories currently
// belonging to the product.
func (s *Service) ListRepositoriesForProduct(productID string) ([]store.Repository, error) {
	repos, err := s.store.GetRepositoriesByProductID(productID)
	if err != nil {
		s.logger.Error("failed to fetch repositories", "product", productID, "error", err)
		return nil, ErrFetchRepositories
	}
	s.logger.Info("fetched repositories", "product", productID, "total", len(repos))
	return repos, nil
}

// ListSecurityAdvisoriesForProduct returns the product's open
// advisories, newest first. A limit of zero or less falls back to
// DefaultAdvisoryLimit.
func (s *Service) ListSecurityAdvisoriesForProduct(productID string, limit int) ([]store.SecurityAdvisory, error) {
	if limit <= 0 {
		limit = DefaultAdvisoryLimit
	}
	advisories, err := s.store.GetSecurityAdvisoriesByProductID(productID, limit)
	if err != nil {
		s.logger.Error("failed to fetch security advisories", "product", productID, "error", err)
		return nil, ErrFetchAdvisories
	}
	s.logger.Info("fetched security advisories", "product", productID, "total", len(advisories))
	return advisories, nil
}

// ListAllSecurityAdvisories returns open advisories across every
// tracked repository.
func (s *Service) ListAllSecurityAdvisories(limit int) ([]store.SecurityAdvisory, error) {
	if limit <= 0 {
		limit = DefaultAdvisoryLimit
	}
	advisories, err := s.store.GetAllSecurityAdvisories(limit)
	if err != nil {
		s.logger.Error("failed to fetch security advisories", "error", err)
		return nil, ErrFetchAdvisories
	}
	return advisories, nil
}

// ListOpenPullRequestsForProduct returns open pull requests scoped to
// the product's repositories.
func (s *Service) ListOpenPullRequestsForProduct(productID string) ([]store.PullRequest, error) {
	prs, err := s.store.GetOpenPullRequestsByProductID(productID)
	if err != nil {
		s.logger.Error("failed to fetch pull requests", "product", productID, "error", err)
		return nil, ErrFetchPullRequests
	}
	return prs, nil
}

// ListOpenPullRequests returns all open pull requests.
func (s *Service) ListOpenPullRequests() ([]store.PullRequest, error) {
	prs, err := s.store.GetOpenPullRequests()
	if err != nil {
		s.logger.Error("failed to fetch pull requests", "error", err)
		return nil, ErrFetchPullRequests
	}
	return prs, nil
}
