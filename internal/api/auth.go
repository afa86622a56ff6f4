package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// bearerPrefix is the Authorization scheme accepted on protected routes.
const bearerPrefix = "Bearer "

// authMiddleware requires an HS256 bearer token signed with the configured
// secret. With no secret configured the route is open.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := s.secCfg.JWT.Secret
		if secret == "" {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			writeUnauthorized(w, "bearer token required")
			return
		}

		subject, err := validateToken(strings.TrimPrefix(header, bearerPrefix), secret)
		if err != nil {
			s.logger.Warn("rejected bearer token",
				"path", r.URL.Path,
				"request_id", r.Context().Value(ctxKeyRequestID),
				"error", err,
			)
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		s.logger.Debug("bearer token accepted", "subject", subject, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// validateToken parses an HS256 token and returns its subject. Expiry is
// enforced when the token carries an exp claim.
func validateToken(raw, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("reading subject: %w", err)
	}
	return subject, nil
}
