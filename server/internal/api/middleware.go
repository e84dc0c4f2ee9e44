package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pingpanel/pingpanel/server/internal/auth"
	"github.com/pingpanel/pingpanel/server/internal/billing"
	"github.com/pingpanel/pingpanel/server/internal/store"
)

type contextKey string

const identityKey contextKey = "identity"

// authMiddleware attaches the caller's identity when a bearer token is
// present. Requests without a token continue anonymously; an invalid token
// is rejected.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		identity, err := s.authProvider.ValidateToken(r.Context(), authHeader[7:])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ensureUserMiddleware maps an externally authenticated identity to a local
// user, creating a FREE user the first time the subject is seen.
func (s *Server) ensureUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := getIdentityFromContext(r.Context())
		if identity == nil || identity.Subject == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		user, err := s.store.GetUserByExternalID(ctx, identity.Subject)
		if err != nil {
			s.logger.Error("look up external user", "subject", identity.Subject, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if user == nil {
			user = &store.User{
				ID:         uuid.New().String(),
				ExternalID: identity.Subject,
				Username:   identity.Username,
				Role:       "user",
				Plan:       string(billing.PlanFree),
				CreatedAt:  time.Now(),
			}
			if err := s.store.CreateUser(ctx, user); err != nil {
				// A concurrent request may have provisioned the same subject.
				existing, getErr := s.store.GetUserByExternalID(ctx, identity.Subject)
				if getErr != nil || existing == nil {
					s.logger.Error("provision external user", "subject", identity.Subject, "error", err)
					writeError(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				user = existing
			} else {
				s.logger.Info("provisioned user", "user_id", user.ID, "subject", identity.Subject)
			}
		}

		resolved := *identity
		resolved.UserID = user.ID
		resolved.Role = user.Role
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, identityKey, &resolved)))
	})
}

func getIdentityFromContext(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(identityKey).(*auth.Identity)
	return identity
}

// userIDFromContext returns the authenticated user ID or "".
func userIDFromContext(ctx context.Context) string {
	if identity := getIdentityFromContext(ctx); identity != nil {
		return identity.UserID
	}
	return ""
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func makeCORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 1 && allowedOrigins[0] == "*"
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" && originSet[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
