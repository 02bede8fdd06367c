package controllers

import (
	"net/http"

	"github.com/Swapnil-code-maker/swiftstore-backend/api/responses"
	"github.com/Swapnil-code-maker/swiftstore-backend/api/validators"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/ratings"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/logger"
)

type rateOrderRequest struct {
	Score   int     `json:"score" validate:"required,gte=1,lte=5"`
	Comment *string `json:"comment"`
}

// RateOrder records the customer's score for the delivering agent.
func RateOrder(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rateOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RateOrder(r.Context(), ratings.RateOrderInput{
			OrderID:    orderID,
			CustomerID: customerID,
			Score:      body.Score,
			Comment:    body.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}
