package v1

import (
	"net/http"

	"zelora-backend/internal/domain"
)

// userFrom pulls the authenticated user placed in the context by the auth
// middleware.
func userFrom(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	return user, ok && user != nil
}
