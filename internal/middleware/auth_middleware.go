package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/senseihimanshu/blood-donation/internal/domain"
	"github.com/senseihimanshu/blood-donation/pkg/jwtutil"
	"github.com/senseihimanshu/blood-donation/pkg/response"
)

type contextKey string

// ContextIdentity carries the authenticated principal, resolved once here
// and never re-derived downstream.
const ContextIdentity contextKey = "identity"

type AuthMiddleware struct {
	signer *jwtutil.Signer
}

func NewAuthMiddleware(signer *jwtutil.Signer) *AuthMiddleware {
	return &AuthMiddleware{signer: signer}
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Browsers cannot set headers on websocket upgrades.
	return r.URL.Query().Get("token")
}

// Require verifies the bearer token and stores the tagged identity in the
// request context.
func (am *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		claims, err := am.signer.Verify(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Token is not valid")
			return
		}

		role := domain.Role(claims.Role)
		if role != domain.RoleDonor && role != domain.RoleHospital {
			response.Error(w, http.StatusUnauthorized, "Token is not valid")
			return
		}

		identity := domain.Identity{ID: claims.SubjectID, Role: role}
		ctx := context.WithValue(r.Context(), ContextIdentity, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFrom returns the authenticated identity stored by Require.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(ContextIdentity).(domain.Identity)
	return identity, ok
}
