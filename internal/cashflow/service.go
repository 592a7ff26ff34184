package cashflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salesdeskhq/salesdesk-backend/pkg/db/models"
	"github.com/salesdeskhq/salesdesk-backend/pkg/enums"
	pkgerrors "github.com/salesdeskhq/salesdesk-backend/pkg/errors"
)

// Service exposes the balance views and manual ledger entry creation.
type Service interface {
	BalanceSummary(ctx context.Context) ([]BalanceDTO, error)
	BalanceByID(ctx context.Context, id uuid.UUID) (*BalanceDTO, error)
	LatestBalance(ctx context.Context) (*BalanceDTO, error)
	CreateEntry(ctx context.Context, input CreateEntryInput) (*models.CashFlowEntry, error)
}

// BalanceDTO is the capital cash balance projection returned by every
// /cashflow read endpoint.
type BalanceDTO struct {
	ID        uuid.UUID       `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateEntryInput captures a manual ledger entry (adjustments, expenses).
// Unrecognized flow types are stored but never contribute to the balance.
type CreateEntryInput struct {
	FlowType    string
	ReferenceID *uuid.UUID
	Amount      decimal.Decimal
	FlowDate    *time.Time
	Info        *string
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a cash-flow service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cashflow repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// BalanceSummary returns the recomputed balance as a single-element list,
// keeping the shape of the collection endpoint.
func (s *service) BalanceSummary(ctx context.Context) ([]BalanceDTO, error) {
	dto, err := s.LatestBalance(ctx)
	if err != nil {
		return nil, err
	}
	return []BalanceDTO{*dto}, nil
}

// BalanceByID echoes the requested id back. The balance is always the
// global recomputation; the id never filters history. That mirrors the
// behavior the API has always had and callers depend on the shape.
func (s *service) BalanceByID(ctx context.Context, id uuid.UUID) (*BalanceDTO, error) {
	dto, err := s.LatestBalance(ctx)
	if err != nil {
		return nil, err
	}
	dto.ID = id
	return dto, nil
}

// LatestBalance recomputes the balance over the full ledger. An empty
// ledger is a documented zero state, not an error: nil id, zero balance,
// updated now.
func (s *service) LatestBalance(ctx context.Context) (*BalanceDTO, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading ledger")
	}
	balance := ComputeBalance(entries)

	latest, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading latest ledger entry")
	}
	if latest == nil {
		return &BalanceDTO{
			ID:        uuid.Nil,
			Balance:   decimal.Zero,
			UpdatedAt: s.now().UTC(),
		}, nil
	}

	return &BalanceDTO{
		ID:        latest.ID,
		Balance:   balance,
		UpdatedAt: latest.FlowDate,
	}, nil
}

func (s *service) CreateEntry(ctx context.Context, input CreateEntryInput) (*models.CashFlowEntry, error) {
	flowType := strings.TrimSpace(input.FlowType)
	if flowType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "flow type is required")
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}

	flowDate := s.now().UTC()
	if input.FlowDate != nil {
		flowDate = *input.FlowDate
	}

	entry := &models.CashFlowEntry{
		ID:          uuid.New(),
		FlowType:    enums.FlowType(flowType),
		ReferenceID: input.ReferenceID,
		Amount:      input.Amount,
		FlowDate:    flowDate,
		Info:        input.Info,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating ledger entry")
	}
	return entry, nil
}
