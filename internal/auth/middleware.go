package auth

import (
	"errors"
	"log/slog"
	"net/http"
)

// RequireAuth enforces authentication on protected routes.
//
// It verifies the Authorization header, stores the identity in the request
// context, and stops the chain with 401 on any failure. A missing
// credential and an invalid one both map to 401 at the wire; the
// distinction only shows up in the log.
//
// Verification always completes before any handler logic runs — handlers
// downstream can rely on IdentityFromContext returning a verified value.
func RequireAuth(verifier *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := verifier.Verify(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if !errors.Is(err, ErrNoCredential) {
					logger.Warn("credential rejected",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
				}
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
