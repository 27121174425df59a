package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const adminTokenIssuer = "toolhaus"

// RequireAdmin validates the bearer token on admin routes. Tokens are HS256
// JWTs signed with the admin token secret and must carry the toolhaus issuer.
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	secret := []byte(h.config.AdminTokenSecret)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := h.loggerFromContext(r.Context())

		auth := r.Header.Get("Authorization")
		if auth == "" {
			h.writeError(w, http.StatusUnauthorized, "missing authorization")
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			h.writeError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		},
			jwt.WithValidMethods([]string{"HS256"}),
			jwt.WithIssuer(adminTokenIssuer),
			jwt.WithExpirationRequired(),
		)
		if err != nil || !token.Valid {
			logger.Warn("rejected admin token", "error", err)
			h.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
