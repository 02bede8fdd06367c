package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Swapnil-code-maker/swiftstore-backend/api/middleware"
	"github.com/Swapnil-code-maker/swiftstore-backend/api/responses"
	"github.com/Swapnil-code-maker/swiftstore-backend/api/validators"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/orders"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/logger"
)

type itemsDecisionRequest struct {
	Decision string      `json:"decision" validate:"required,oneof=approve reject"`
	ItemIDs  []uuid.UUID `json:"item_ids" validate:"required,min=1"`
	Reason   *string     `json:"reason"`
}

// ListVendorOrders returns orders containing at least one of the
// vendor's items.
func ListVendorOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListVendorOrders(r.Context(), vendorID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ItemsDecision records the vendor's approve/reject call on their items.
func ItemsDecision(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body itemsDecisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.ItemsDecision(r.Context(), orders.ItemsDecisionInput{
			OrderID:     orderID,
			ItemIDs:     body.ItemIDs,
			Decision:    orders.ItemDecision(body.Decision),
			Reason:      body.Reason,
			ActorUserID: vendorID,
			ActorRole:   middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}
