package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Swapnil-code-maker/swiftstore-backend/api/middleware"
	"github.com/Swapnil-code-maker/swiftstore-backend/api/responses"
	"github.com/Swapnil-code-maker/swiftstore-backend/api/validators"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/complaints"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/logger"
)

type submitComplaintRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Subject string    `json:"subject" validate:"required,min=3"`
	Body    string    `json:"body" validate:"required,min=20"`
}

type complaintReplyRequest struct {
	Reply string `json:"reply" validate:"required,min=1"`
}

// SubmitComplaint files a complaint against one of the customer's orders.
func SubmitComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitComplaintRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Submit(r.Context(), complaints.SubmitInput{
			OrderID:    body.OrderID,
			CustomerID: customerID,
			Subject:    body.Subject,
			Body:       body.Body,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// ListCustomerComplaints returns the customer's own complaints.
func ListCustomerComplaints(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListForCustomer(r.Context(), customerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ReplyComplaint records a vendor or admin response.
func ReplyComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		complaintID, err := pathUUID(r, "complaintId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body complaintReplyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Reply(r.Context(), complaints.ReplyInput{
			ComplaintID: complaintID,
			Reply:       body.Reply,
			ActorUserID: userID,
			ActorRole:   enums.UserRole(middleware.RoleFromContext(r.Context())),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "replied"})
	}
}

// CloseComplaint resolves a complaint.
func CloseComplaint(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		complaintID, err := pathUUID(r, "complaintId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Close(r.Context(), complaints.CloseInput{
			ComplaintID: complaintID,
			ActorUserID: userID,
			ActorRole:   enums.UserRole(middleware.RoleFromContext(r.Context())),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "closed"})
	}
}

// ListComplaints returns all complaints for support staff, optionally
// filtered by status.
func ListComplaints(svc complaints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.ComplaintStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseComplaintStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid complaint status"))
				return
			}
			status = &parsed
		}

		list, err := svc.List(r.Context(), params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
