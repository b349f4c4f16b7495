package controllers

import (
	"net/http"

	"github.com/angelmondragon/kbeauty-storefront/api/responses"
	"github.com/angelmondragon/kbeauty-storefront/api/validators"
	"github.com/angelmondragon/kbeauty-storefront/internal/newsletter"
	"github.com/angelmondragon/kbeauty-storefront/pkg/logger"
)

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// Subscribe signs an address up for the newsletter. No sign-in is needed.
func Subscribe(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload subscribeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Subscribe(r.Context(), payload.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusCreated
		if result.AlreadySubscribed {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}
