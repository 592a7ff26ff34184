package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/salesdeskhq/salesdesk-backend/pkg/db/models"
	pkgerrors "github.com/salesdeskhq/salesdesk-backend/pkg/errors"
)

type productRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes read-only product operations.
type Service interface {
	List(ctx context.Context, activeOnly bool) ([]models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo productRepository
}

// NewService builds a product service with the provided repository.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	products, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	return products, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", id))
	}
	return product, nil
}
