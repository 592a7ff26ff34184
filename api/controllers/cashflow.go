package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salesdeskhq/salesdesk-backend/api/responses"
	"github.com/salesdeskhq/salesdesk-backend/api/validators"
	"github.com/salesdeskhq/salesdesk-backend/internal/cashflow"
	pkgerrors "github.com/salesdeskhq/salesdesk-backend/pkg/errors"
	"github.com/salesdeskhq/salesdesk-backend/pkg/logger"
)

type createCashFlowRequest struct {
	FlowType    string           `json:"flow_type" validate:"required,max=20"`
	ReferenceID *string          `json:"reference_id,omitempty" validate:"omitempty,uuid"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	FlowDate    *time.Time       `json:"flow_date,omitempty"`
	Info        *string          `json:"info,omitempty" validate:"omitempty,max=500"`
}

func CashFlowSummary(svc cashflow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.BalanceSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CashFlowLatest(svc cashflow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := svc.LatestBalance(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CashFlowByID echoes the requested id with the global balance. The id has
// never filtered the ledger and existing clients rely on the shape.
func CashFlowByID(svc cashflow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "cashflowId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.BalanceByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func CashFlowCreate(svc cashflow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCashFlowRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var referenceID *uuid.UUID
		if req.ReferenceID != nil {
			parsed, err := uuid.Parse(*req.ReferenceID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reference_id"))
				return
			}
			referenceID = &parsed
		}

		entry, err := svc.CreateEntry(r.Context(), cashflow.CreateEntryInput{
			FlowType:    req.FlowType,
			ReferenceID: referenceID,
			Amount:      *req.Amount,
			FlowDate:    req.FlowDate,
			Info:        req.Info,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}
