package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salesdeskhq/salesdesk-backend/internal/cashflow"
	"github.com/salesdeskhq/salesdesk-backend/internal/customers"
	"github.com/salesdeskhq/salesdesk-backend/pkg/config"
	"github.com/salesdeskhq/salesdesk-backend/pkg/db"
	"github.com/salesdeskhq/salesdesk-backend/pkg/db/models"
	"github.com/salesdeskhq/salesdesk-backend/pkg/enums"
	pkgerrors "github.com/salesdeskhq/salesdesk-backend/pkg/errors"
	"github.com/salesdeskhq/salesdesk-backend/pkg/logger"
)

// TxRunner executes fn inside a database transaction. *db.Client satisfies
// it; tests substitute their own runner.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes sale posting and read access.
type Service interface {
	Post(ctx context.Context, input PostSaleInput) (*SaleDTO, error)
	List(ctx context.Context, filter Filter) ([]SaleDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*SaleDTO, error)
}

// PostSaleInput captures a sale posting request. Exactly one of CustomerID
// or CustomerName identifies the customer; when both are present the id
// wins and must exist.
type PostSaleInput struct {
	CustomerID   *uuid.UUID
	CustomerName string
	ProductID    uuid.UUID
	Quantity     int
	Amount       decimal.Decimal
	CashierName  *string
	SaleDate     *time.Time
	CreatedBy    uuid.UUID
}

// SaleDTO flattens the joined sale row for API consumers.
type SaleDTO struct {
	ID                uuid.UUID       `json:"id"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Quantity          int             `json:"quantity"`
	Amount            decimal.Decimal `json:"amount"`
	CashierName       *string         `json:"cashier_name,omitempty"`
	SaleDate          time.Time       `json:"sale_date"`
	CreatedBy         uuid.UUID       `json:"created_by"`
	CreatedByUsername string          `json:"created_by_username,omitempty"`
}

type service struct {
	tx        TxRunner
	repo      Repository
	customers customers.Repository
	ledger    cashflow.Repository
	products  productRepository
	users     userRepository
	cfg       config.SalesConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the sale poster with its collaborators.
func NewService(
	tx TxRunner,
	repo Repository,
	customerRepo customers.Repository,
	ledgerRepo cashflow.Repository,
	productRepo productRepository,
	userRepo userRepository,
	cfg config.SalesConfig,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil || customerRepo == nil || ledgerRepo == nil || productRepo == nil || userRepo == nil {
		return nil, fmt.Errorf("all repositories required")
	}
	if cfg.TxMaxRetries < 0 {
		return nil, fmt.Errorf("tx max retries must not be negative")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		customers: customerRepo,
		ledger:    ledgerRepo,
		products:  productRepo,
		users:     userRepo,
		cfg:       cfg,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Post records a sale and its matching SALES ledger entry in one
// transaction. Validation failures surface before any write; once the
// transaction body starts, either both rows commit or neither does.
// Transient infrastructure failures retry the whole transaction; business
// failures never retry.
func (s *service) Post(ctx context.Context, input PostSaleInput) (*SaleDTO, error) {
	if input.CustomerID == nil && strings.TrimSpace(input.CustomerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "either customer id or customer name must be provided")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "created_by is required")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s not found", input.ProductID))
	}

	user, err := s.users.FindByID(ctx, input.CreatedBy)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("user %s not found", input.CreatedBy))
	}

	saleDate := s.now().UTC()
	if input.SaleDate != nil {
		saleDate = *input.SaleDate
	}

	var saleID uuid.UUID
	post := func(ctx context.Context) error {
		saleID = uuid.Nil
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			customer, err := customers.Resolve(ctx, s.customers.WithTx(tx), input.CustomerID, input.CustomerName, input.CreatedBy)
			if err != nil {
				return err
			}

			sale := &models.Sale{
				ID:          uuid.New(),
				CustomerID:  customer.ID,
				ProductID:   product.ID,
				Quantity:    input.Quantity,
				Amount:      input.Amount,
				CashierName: input.CashierName,
				SaleDate:    saleDate,
				CreatedBy:   input.CreatedBy,
			}
			if err := s.repo.WithTx(tx).Create(ctx, sale); err != nil {
				return fmt.Errorf("inserting sale: %w", err)
			}

			info := fmt.Sprintf("Sales transaction: %s x%d to %s", product.Name, sale.Quantity, customer.Name)
			entry := &models.CashFlowEntry{
				ID:          uuid.New(),
				FlowType:    enums.FlowTypeSales,
				ReferenceID: &sale.ID,
				Amount:      sale.Amount,
				FlowDate:    sale.SaleDate,
				Info:        &info,
			}
			if err := s.ledger.WithTx(tx).Create(ctx, entry); err != nil {
				return fmt.Errorf("inserting ledger entry: %w", err)
			}

			saleID = sale.ID
			return nil
		})
		if err != nil && db.IsTransient(err) {
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("transient failure posting sale, will retry: %v", err))
			}
			return retry.RetryableError(err)
		}
		return err
	}

	backoff := retry.WithMaxRetries(uint64(s.cfg.TxMaxRetries), retry.NewExponential(s.cfg.TxRetryBackoff))
	if err := retry.Do(ctx, backoff, post); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "posting sale")
	}

	return s.Get(ctx, saleID)
}

func (s *service) List(ctx context.Context, filter Filter) ([]SaleDTO, error) {
	sales, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing sales")
	}
	dtos := make([]SaleDTO, 0, len(sales))
	for i := range sales {
		dtos = append(dtos, toDTO(&sales[i]))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SaleDTO, error) {
	sale, err := s.repo.FindByIDWithAssociations(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading sale")
	}
	if sale == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("sale %s not found", id))
	}
	dto := toDTO(sale)
	return &dto, nil
}

func toDTO(sale *models.Sale) SaleDTO {
	dto := SaleDTO{
		ID:          sale.ID,
		CustomerID:  sale.CustomerID,
		ProductID:   sale.ProductID,
		Quantity:    sale.Quantity,
		Amount:      sale.Amount,
		CashierName: sale.CashierName,
		SaleDate:    sale.SaleDate,
		CreatedBy:   sale.CreatedBy,
	}
	if sale.Customer != nil {
		dto.CustomerName = sale.Customer.Name
	}
	if sale.Product != nil {
		dto.ProductName = sale.Product.Name
	}
	if sale.User != nil {
		dto.CreatedByUsername = sale.User.Username
	}
	return dto
}
