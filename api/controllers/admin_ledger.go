package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Swapnil-code-maker/swiftstore-backend/api/middleware"
	"github.com/Swapnil-code-maker/swiftstore-backend/api/responses"
	"github.com/Swapnil-code-maker/swiftstore-backend/api/validators"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/ledger"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/logger"
)

type settleRequest struct {
	VendorID uuid.UUID `json:"vendor_id" validate:"required"`
}

// ListLedger returns payout entries, optionally filtered by vendor and
// status.
func ListLedger(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters ledger.EntryFilters
		if filters.VendorID, err = validators.ParseQueryUUID(r, "vendor_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseLedgerEntryStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger entry status"))
				return
			}
			filters.Status = &parsed
		}

		list, err := svc.ListLedger(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SettleLedger marks a vendor's pending entries settled.
func SettleLedger(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body settleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Settle(r.Context(), ledger.SettleInput{
			VendorID:     body.VendorID,
			AdminUserID:  adminID,
			AdminRoleRaw: middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListRevenue returns daily revenue aggregates within the given range.
func ListRevenue(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filters ledger.RevenueFilters
		var err error
		if filters.From, err = validators.ParseQueryDate(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.To, err = validators.ParseQueryDate(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListRevenue(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"revenue": rows})
	}
}
