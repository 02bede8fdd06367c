package controllers

import (
	"net/http"

	"github.com/Swapnil-code-maker/swiftstore-backend/api/responses"
	"github.com/Swapnil-code-maker/swiftstore-backend/internal/users"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/logger"
)

// VerifyAgent marks a delivery agent's profile verified so the agent
// can start receiving assignments.
func VerifyAgent(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentUserID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.VerifyAgent(r.Context(), agentUserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "verified"})
	}
}
