package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// requireBearer rejects requests without a valid HS256 bearer token signed
// with secret.
func requireBearer(secret []byte) func(http.Handler) http.Handler {
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			token, err := parser.Parse(raw, keyFunc)
			if err != nil {
				slog.Debug("rejected bearer token", "err", err, "path", r.URL.Path)
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}
			if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
				slog.Debug("authenticated request", "sub", sub, "path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
		})
	}
}
