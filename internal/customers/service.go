package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/salesdeskhq/salesdesk-backend/pkg/db/models"
	pkgerrors "github.com/salesdeskhq/salesdesk-backend/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes customer CRUD operations.
type Service interface {
	List(ctx context.Context) ([]models.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateCustomerInput captures an explicit customer creation.
type CreateCustomerInput struct {
	Name      string
	Email     *string
	Phone     *string
	Address   *string
	Company   *string
	CreatedBy uuid.UUID
}

// UpdateCustomerInput replaces the editable customer fields. created_by is
// immutable after creation.
type UpdateCustomerInput struct {
	Name    string
	Email   *string
	Phone   *string
	Address *string
	Company *string
}

type service struct {
	repo  Repository
	users userRepository
}

// NewService builds a customer service with the provided repositories.
func NewService(repo Repository, users userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, users: users}, nil
}

func (s *service) List(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing customers")
	}
	return customers, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByIDWithAssociations(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading customer")
	}
	if customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("customer %s not found", id))
	}
	return customer, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "created_by is required")
	}

	user, err := s.users.FindByID(ctx, input.CreatedBy)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("user %s not found", input.CreatedBy))
	}

	customer := &models.Customer{
		ID:        uuid.New(),
		Name:      name,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		Company:   input.Company,
		CreatedBy: input.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating customer")
	}
	return customer, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading customer")
	}
	if customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("customer %s not found", id))
	}

	now := time.Now().UTC()
	customer.Name = name
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.Address = input.Address
	customer.Company = input.Company
	customer.UpdatedAt = &now

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating customer")
	}
	return customer, nil
}

// Delete removes the customer row. Sales and ledger entries are left in
// place; historical records outlive the customer.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading customer")
	}
	if customer == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("customer %s not found", id))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting customer")
	}
	return nil
}
