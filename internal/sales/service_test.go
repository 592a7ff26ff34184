package sales

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/salesdeskhq/salesdesk-backend/internal/cashflow"
	"github.com/salesdeskhq/salesdesk-backend/internal/customers"
	"github.com/salesdeskhq/salesdesk-backend/internal/products"
	"github.com/salesdeskhq/salesdesk-backend/internal/users"
	"github.com/salesdeskhq/salesdesk-backend/pkg/config"
	"github.com/salesdeskhq/salesdesk-backend/pkg/db/models"
	pkgerrors "github.com/salesdeskhq/salesdesk-backend/pkg/errors"
)

var salesDDL = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		address TEXT,
		company TEXT,
		created_by TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		sku TEXT NOT NULL,
		price NUMERIC NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE sales (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		amount NUMERIC NOT NULL,
		cashier_name TEXT,
		sale_date DATETIME NOT NULL,
		created_by TEXT NOT NULL
	)`,
	`CREATE TABLE cashflow (
		id TEXT PRIMARY KEY,
		flow_type TEXT NOT NULL,
		reference_id TEXT,
		amount NUMERIC NOT NULL,
		flow_date DATETIME NOT NULL,
		info TEXT
	)`,
}

func newSalesDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:sales_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range salesDDL {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// flakyTxRunner fails with the configured error a number of times before
// delegating to the real runner.
type flakyTxRunner struct {
	inner    TxRunner
	failures int
	err      error
	attempts int
}

func (r *flakyTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.attempts++
	if r.attempts <= r.failures {
		return r.err
	}
	return r.inner.WithTx(ctx, fn)
}

type failingLedgerRepo struct {
	cashflow.Repository
}

func (f *failingLedgerRepo) WithTx(tx *gorm.DB) cashflow.Repository {
	return f
}

func (f *failingLedgerRepo) Create(ctx context.Context, entry *models.CashFlowEntry) error {
	return errors.New("ledger unavailable")
}

type fixture struct {
	db      *gorm.DB
	svc     Service
	user    models.User
	product models.Product
}

func newFixture(t *testing.T, opts ...func(*fixtureConfig)) *fixture {
	t.Helper()
	conn := newSalesDB(t)

	fc := &fixtureConfig{
		tx:     gormTxRunner{db: conn},
		ledger: cashflow.NewRepository(conn),
	}
	for _, opt := range opts {
		opt(fc)
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     "cashier1",
		Email:        "cashier1@example.com",
		PasswordHash: "x",
		Role:         "staff",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, conn.Create(&user).Error)

	product := models.Product{
		ID:        uuid.New(),
		Name:      "Widget",
		SKU:       "WID-001",
		Price:     decimal.RequireFromString("19.99"),
		Stock:     10,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, conn.Create(&product).Error)

	svc, err := NewService(
		fc.tx,
		NewRepository(conn),
		customers.NewRepository(conn),
		fc.ledger,
		products.NewRepository(conn),
		users.NewRepository(conn),
		config.SalesConfig{TxMaxRetries: 3, TxRetryBackoff: time.Millisecond},
		nil,
	)
	require.NoError(t, err)

	return &fixture{db: conn, svc: svc, user: user, product: product}
}

type fixtureConfig struct {
	tx     TxRunner
	ledger cashflow.Repository
}

func (f *fixture) seedCustomer(t *testing.T, name string) models.Customer {
	t.Helper()
	customer := models.Customer{
		ID:        uuid.New(),
		Name:      name,
		CreatedBy: f.user.ID,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(&customer).Error)
	return customer
}

func (f *fixture) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(model).Count(&count).Error)
	return count
}

func TestPost_ByCustomerID(t *testing.T) {
	fx := newFixture(t)
	customer := fx.seedCustomer(t, "ACME CO")

	saleDate := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	dto, err := fx.svc.Post(context.Background(), PostSaleInput{
		CustomerID: &customer.ID,
		ProductID:  fx.product.ID,
		Quantity:   3,
		Amount:     decimal.RequireFromString("59.97"),
		SaleDate:   &saleDate,
		CreatedBy:  fx.user.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, customer.ID, dto.CustomerID)
	assert.Equal(t, "ACME CO", dto.CustomerName)
	assert.Equal(t, "Widget", dto.ProductName)
	assert.Equal(t, "cashier1", dto.CreatedByUsername)
	assert.True(t, dto.Amount.Equal(decimal.RequireFromString("59.97")))

	assert.EqualValues(t, 1, fx.countRows(t, &models.Sale{}))
	assert.EqualValues(t, 1, fx.countRows(t, &models.CashFlowEntry{}))

	var entry models.CashFlowEntry
	require.NoError(t, fx.db.First(&entry).Error)
	assert.EqualValues(t, "SALES", entry.FlowType)
	require.NotNil(t, entry.ReferenceID)
	assert.Equal(t, dto.ID, *entry.ReferenceID)
	assert.True(t, entry.Amount.Equal(dto.Amount))
	assert.True(t, entry.FlowDate.Equal(saleDate))
	require.NotNil(t, entry.Info)
	assert.Equal(t, "Sales transaction: Widget x3 to ACME CO", *entry.Info)
}

func TestPost_NewNameCreatesCustomer(t *testing.T) {
	fx := newFixture(t)

	dto, err := fx.svc.Post(context.Background(), PostSaleInput{
		CustomerName: "Globex",
		ProductID:    fx.product.ID,
		Quantity:     1,
		Amount:       decimal.RequireFromString("19.99"),
		CreatedBy:    fx.user.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Globex", dto.CustomerName)

	assert.EqualValues(t, 1, fx.countRows(t, &models.Customer{}))

	var customer models.Customer
	require.NoError(t, fx.db.First(&customer).Error)
	assert.Equal(t, fx.user.ID, customer.CreatedBy)
	assert.Nil(t, customer.Email)
}

func TestPost_ExistingNameReusedCaseInsensitive(t *testing.T) {
	fx := newFixture(t)
	existing := fx.seedCustomer(t, "ACME CO")

	dto, err := fx.svc.Post(context.Background(), PostSaleInput{
		CustomerName: "Acme Co",
		ProductID:    fx.product.ID,
		Quantity:     2,
		Amount:       decimal.RequireFromString("39.98"),
		CreatedBy:    fx.user.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, dto.CustomerID)
	assert.Equal(t, "ACME CO", dto.CustomerName)
	assert.EqualValues(t, 1, fx.countRows(t, &models.Customer{}))
}

func TestPost_MissingIdentification(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Post(context.Background(), PostSaleInput{
		CustomerName: "   ",
		ProductID:    fx.product.ID,
		Quantity:     1,
		Amount:       decimal.RequireFromString("19.99"),
		CreatedBy:    fx.user.ID,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	assert.EqualValues(t, 0, fx.countRows(t, &models.Sale{}))
	assert.EqualValues(t, 0, fx.countRows(t, &models.CashFlowEntry{}))
}

func TestPost_NonPositiveAmount(t *testing.T) {
	fx := newFixture(t)
	customer := fx.seedCustomer(t, "ACME CO")

	for _, amount := range []string{"0", "-19.99"} {
		_, err := fx.svc.Post(context.Background(), PostSaleInput{
			CustomerID: &customer.ID,
			ProductID:  fx.product.ID,
			Quantity:   1,
			Amount:     decimal.RequireFromString(amount),
			CreatedBy:  fx.user.ID,
		})
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, amount)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code(), amount)
	}

	assert.EqualValues(t, 0, fx.countRows(t, &models.Sale{}))
	assert.EqualValues(t, 0, fx.countRows(t, &models.CashFlowEntry{}))
}

func TestPost_UnknownProduct(t *testing.T) {
	fx := newFixture(t)
	customer := fx.seedCustomer(t, "ACME CO")

	_, err := fx.svc.Post(context.Background(), PostSaleInput{
		CustomerID: &customer.ID,
		ProductID:  uuid.New(),
		Quantity:   1,
		Amount:     decimal.RequireFromString("19.99"),
		CreatedBy:  fx.user.ID,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.EqualValues(t, 0, fx.countRows(t, &models.Sale{}))
}

func TestPost_UnknownUser(t *testing.T) {
	fx := newFixture(t)
	customer := fx.seedCustomer(t, "ACME CO")

	_, err := fx.svc.Post(context.Background(), PostSaleInput{
		CustomerID: &customer.ID,
		ProductID:  fx.product.ID,
		Quantity:   1,
		Amount:     decimal.RequireFromString("19.99"),
		CreatedBy:  uuid.New(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.EqualValues(t, 0, fx.countRows(t, &models.Sale{}))
}

func TestPost_UnknownCustomerID(t *testing.T) {
	fx := newFixture(t)
	missing := uuid.New()

	_, err := fx.svc.Post(context.Background(), PostSaleInput{
		CustomerID: &missing,
		ProductID:  fx.product.ID,
		Quantity:   1,
		Amount:     decimal.RequireFromString("19.99"),
		CreatedBy:  fx.user.ID,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	assert.EqualValues(t, 0, fx.countRows(t, &models.Sale{}))
	assert.EqualValues(t, 0, fx.countRows(t, &models.Customer{}))
}

func TestPost_LedgerFailureRollsBackEverything(t *testing.T) {
	fx := newFixture(t, func(fc *fixtureConfig) {
		fc.ledger = &failingLedgerRepo{}
	})

	_, err := fx.svc.Post(context.Background(), PostSaleInput{
		CustomerName: "Globex",
		ProductID:    fx.product.ID,
		Quantity:     1,
		Amount:       decimal.RequireFromString("19.99"),
		CreatedBy:    fx.user.ID,
	})
	require.Error(t, err)

	assert.EqualValues(t, 0, fx.countRows(t, &models.Sale{}))
	assert.EqualValues(t, 0, fx.countRows(t, &models.CashFlowEntry{}))
	assert.EqualValues(t, 0, fx.countRows(t, &models.Customer{}), "implicit customer must roll back with the sale")
}

func TestPost_TransientFailureRetries(t *testing.T) {
	var runner *flakyTxRunner
	fx := newFixture(t, func(fc *fixtureConfig) {
		runner = &flakyTxRunner{inner: fc.tx, failures: 2, err: driver.ErrBadConn}
		fc.tx = runner
	})
	customer := fx.seedCustomer(t, "ACME CO")

	dto, err := fx.svc.Post(context.Background(), PostSaleInput{
		CustomerID: &customer.ID,
		ProductID:  fx.product.ID,
		Quantity:   1,
		Amount:     decimal.RequireFromString("19.99"),
		CreatedBy:  fx.user.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, runner.attempts)
	assert.NotEqual(t, uuid.Nil, dto.ID)
	assert.EqualValues(t, 1, fx.countRows(t, &models.Sale{}))
	assert.EqualValues(t, 1, fx.countRows(t, &models.CashFlowEntry{}))
}

func TestPost_NonTransientFailureDoesNotRetry(t *testing.T) {
	var runner *flakyTxRunner
	fx := newFixture(t, func(fc *fixtureConfig) {
		runner = &flakyTxRunner{inner: fc.tx, failures: 10, err: errors.New("constraint violated")}
		fc.tx = runner
	})
	customer := fx.seedCustomer(t, "ACME CO")

	_, err := fx.svc.Post(context.Background(), PostSaleInput{
		CustomerID: &customer.ID,
		ProductID:  fx.product.ID,
		Quantity:   1,
		Amount:     decimal.RequireFromString("19.99"),
		CreatedBy:  fx.user.ID,
	})
	require.Error(t, err)
	assert.Equal(t, 1, runner.attempts)
}

func TestCustomerDelete_LeavesLedgerIntact(t *testing.T) {
	fx := newFixture(t)
	customer := fx.seedCustomer(t, "ACME CO")

	_, err := fx.svc.Post(context.Background(), PostSaleInput{
		CustomerID: &customer.ID,
		ProductID:  fx.product.ID,
		Quantity:   1,
		Amount:     decimal.RequireFromString("19.99"),
		CreatedBy:  fx.user.ID,
	})
	require.NoError(t, err)

	require.NoError(t, customers.NewRepository(fx.db).Delete(context.Background(), customer.ID))

	assert.EqualValues(t, 0, fx.countRows(t, &models.Customer{}))
	assert.EqualValues(t, 1, fx.countRows(t, &models.Sale{}))
	assert.EqualValues(t, 1, fx.countRows(t, &models.CashFlowEntry{}), "ledger history outlives the customer")
}

func TestList_CustomerFilterTakesPriority(t *testing.T) {
	fx := newFixture(t)
	acme := fx.seedCustomer(t, "ACME CO")
	globex := fx.seedCustomer(t, "Globex")

	post := func(customerID uuid.UUID, saleDate time.Time) {
		_, err := fx.svc.Post(context.Background(), PostSaleInput{
			CustomerID: &customerID,
			ProductID:  fx.product.ID,
			Quantity:   1,
			Amount:     decimal.RequireFromString("19.99"),
			SaleDate:   &saleDate,
			CreatedBy:  fx.user.ID,
		})
		require.NoError(t, err)
	}
	post(acme.ID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	post(acme.ID, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))
	post(globex.ID, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	list, err := fx.svc.List(context.Background(), Filter{CustomerID: &acme.ID, From: &from})
	require.NoError(t, err)
	require.Len(t, list, 2, "date range must be ignored when a customer id is set")
	assert.True(t, list[0].SaleDate.After(list[1].SaleDate), "newest first")

	ranged, err := fx.svc.List(context.Background(), Filter{From: &from})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}

func TestGet_NotFound(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
