package cashflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salesdeskhq/salesdesk-backend/pkg/db/models"
	pkgerrors "github.com/salesdeskhq/salesdesk-backend/pkg/errors"
)

type fakeRepository struct {
	entries  []models.CashFlowEntry
	createFn func(ctx context.Context, entry *models.CashFlowEntry) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.CashFlowEntry) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeRepository) List(ctx context.Context) ([]models.CashFlowEntry, error) {
	return f.entries, nil
}

func (f *fakeRepository) Latest(ctx context.Context) (*models.CashFlowEntry, error) {
	if len(f.entries) == 0 {
		return nil, nil
	}
	latest := f.entries[0]
	for _, e := range f.entries[1:] {
		if e.FlowDate.After(latest.FlowDate) {
			latest = e
		}
	}
	return &latest, nil
}

func TestLatestBalance_EmptyLedgerZeroState(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	dto, err := svc.LatestBalance(context.Background())
	if err != nil {
		t.Fatalf("LatestBalance error: %v", err)
	}
	if dto.ID != uuid.Nil {
		t.Fatalf("expected nil id on empty ledger, got %s", dto.ID)
	}
	if !dto.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", dto.Balance)
	}
	if dto.UpdatedAt.IsZero() {
		t.Fatal("expected updated_at to be populated")
	}
}

func TestLatestBalance_UsesLatestFlowDate(t *testing.T) {
	older := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	latestID := uuid.New()

	repo := &fakeRepository{entries: []models.CashFlowEntry{
		{ID: uuid.New(), FlowType: "SALES", Amount: decimal.RequireFromString("100.00"), FlowDate: older},
		{ID: latestID, FlowType: "EXPENSE", Amount: decimal.RequireFromString("25.00"), FlowDate: newer},
	}}
	svc, _ := NewService(repo)

	dto, err := svc.LatestBalance(context.Background())
	if err != nil {
		t.Fatalf("LatestBalance error: %v", err)
	}
	if dto.ID != latestID {
		t.Fatalf("expected latest entry id %s, got %s", latestID, dto.ID)
	}
	if want := decimal.RequireFromString("75.00"); !dto.Balance.Equal(want) {
		t.Fatalf("balance = %s, want %s", dto.Balance, want)
	}
	if !dto.UpdatedAt.Equal(newer) {
		t.Fatalf("updated_at = %v, want %v", dto.UpdatedAt, newer)
	}
}

func TestBalanceByID_EchoesIDWithGlobalBalance(t *testing.T) {
	repo := &fakeRepository{entries: []models.CashFlowEntry{
		{ID: uuid.New(), FlowType: "SALES", Amount: decimal.RequireFromString("10.00"), FlowDate: time.Now()},
	}}
	svc, _ := NewService(repo)

	requested := uuid.New()
	dto, err := svc.BalanceByID(context.Background(), requested)
	if err != nil {
		t.Fatalf("BalanceByID error: %v", err)
	}
	if dto.ID != requested {
		t.Fatalf("expected requested id to be echoed, got %s", dto.ID)
	}
	if want := decimal.RequireFromString("10.00"); !dto.Balance.Equal(want) {
		t.Fatalf("balance = %s, want %s", dto.Balance, want)
	}
}

func TestBalanceSummary_SingleElement(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	list, err := svc.BalanceSummary(context.Background())
	if err != nil {
		t.Fatalf("BalanceSummary error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected single-element summary, got %d", len(list))
	}
}

func TestCreateEntry(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	info := "owner adjustment"
	entry, err := svc.CreateEntry(context.Background(), CreateEntryInput{
		FlowType: " ADJUSTMENT_OUT ",
		Amount:   decimal.RequireFromString("20.00"),
		Info:     &info,
	})
	if err != nil {
		t.Fatalf("CreateEntry error: %v", err)
	}
	if entry.FlowType != "ADJUSTMENT_OUT" {
		t.Fatalf("expected trimmed flow type, got %q", entry.FlowType)
	}
	if entry.FlowDate.IsZero() {
		t.Fatal("expected flow date default")
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected one persisted entry, got %d", len(repo.entries))
	}
}

func TestCreateEntry_Validation(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	_, err := svc.CreateEntry(context.Background(), CreateEntryInput{Amount: decimal.Zero})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing flow type, got %v", err)
	}

	_, err = svc.CreateEntry(context.Background(), CreateEntryInput{
		FlowType: "EXPENSE",
		Amount:   decimal.RequireFromString("-1.00"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative amount, got %v", err)
	}
	if len(repo.entries) != 0 {
		t.Fatalf("validation failures must write nothing, got %d entries", len(repo.entries))
	}
}
