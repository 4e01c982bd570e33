package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// RequireAPIKey validates the shared secret on control routes. The token
// comes from either the X-API-Key header or a bearer Authorization header.
func (s *Server) RequireAPIKey() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-API-Key")
			if token == "" {
				authHeader := r.Header.Get("Authorization")
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					token = parts[1]
				}
			}

			if token == "" || !s.validAPIKey(token) {
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			next(w, r)
		}
	}
}

// validAPIKey prefers the configured bcrypt hash; the plaintext comparison
// fallback is constant-time.
func (s *Server) validAPIKey(token string) bool {
	if hash := s.config.GetAPIKeyHash(); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.config.GetAPIKey())) == 1
}
