package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salesdeskhq/salesdesk-backend/api/responses"
	"github.com/salesdeskhq/salesdesk-backend/api/validators"
	"github.com/salesdeskhq/salesdesk-backend/internal/sales"
	pkgerrors "github.com/salesdeskhq/salesdesk-backend/pkg/errors"
	"github.com/salesdeskhq/salesdesk-backend/pkg/logger"
)

type postSaleRequest struct {
	CustomerID   *string          `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	CustomerName string           `json:"customer_name,omitempty" validate:"omitempty,max=255"`
	ProductID    string           `json:"product_id" validate:"required,uuid"`
	Quantity     int              `json:"quantity" validate:"required,gt=0"`
	Amount       *decimal.Decimal `json:"amount" validate:"required"`
	CashierName  *string          `json:"cashier_name,omitempty" validate:"omitempty,max=255"`
	SaleDate     *time.Time       `json:"sale_date,omitempty"`
	CreatedBy    string           `json:"created_by" validate:"required,uuid"`
}

func SaleCreate(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req postSaleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var customerID *uuid.UUID
		if req.CustomerID != nil {
			parsed, err := uuid.Parse(*req.CustomerID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer_id"))
				return
			}
			customerID = &parsed
		}

		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id"))
			return
		}

		createdBy, err := uuid.Parse(req.CreatedBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid created_by"))
			return
		}

		dto, err := svc.Post(r.Context(), sales.PostSaleInput{
			CustomerID:   customerID,
			CustomerName: req.CustomerName,
			ProductID:    productID,
			Quantity:     req.Quantity,
			Amount:       *req.Amount,
			CashierName:  req.CashierName,
			SaleDate:     req.SaleDate,
			CreatedBy:    createdBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func SaleList(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.ParseQueryUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryTime(r, "startDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "endDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), sales.Filter{
			CustomerID: customerID,
			From:       from,
			To:         to,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func SaleDetail(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
