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

// Resolve returns the customer a sale should be attributed to. A supplied id
// must exist; it is never silently ignored. Otherwise the name is matched
// case-insensitively against existing customers, creating a bare record
// (name and created_by only) when no match exists. Callers run this inside
// their own transaction so the created row commits or rolls back with the
// sale.
func Resolve(ctx context.Context, repo Repository, customerID *uuid.UUID, customerName string, fallbackCreatedBy uuid.UUID) (*models.Customer, error) {
	if customerID != nil {
		customer, err := repo.FindByID(ctx, *customerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading customer")
		}
		if customer == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("customer %s not found", *customerID))
		}
		return customer, nil
	}

	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "either customer id or customer name must be provided")
	}

	existing, err := repo.FindByNameFold(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "searching customer by name")
	}
	if existing != nil {
		// Reuse as-is; contact fields are never merged from a sale.
		return existing, nil
	}

	customer := &models.Customer{
		ID:        uuid.New(),
		Name:      name,
		CreatedBy: fallbackCreatedBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating customer")
	}
	return customer, nil
}
