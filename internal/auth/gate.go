// Package auth gates the publish surface behind a single shared control
// token, an adaptation of the bcrypt password check in pkg/crypto down to
// its simplest useful shape for a system with no user accounts: one
// operator-issued token, hashed once at deploy time and handed to every
// trusted reader.
package auth

import (
	"net/http"
	"strings"

	"arbitrage/pkg/crypto"
)

// Gate checks a bearer token against a bcrypt hash. A Gate built with an
// empty hash is disabled and lets every request through — the default,
// matching a deployment with no control surface exposed publicly.
type Gate struct {
	hash string
}

// NewGate builds a Gate from a bcrypt hash of the expected token. An empty
// hash disables the gate.
func NewGate(tokenHash string) *Gate {
	return &Gate{hash: strings.TrimSpace(tokenHash)}
}

// Enabled reports whether this Gate rejects unauthenticated requests.
func (g *Gate) Enabled() bool {
	return g.hash != ""
}

// Allow reports whether the bearer token presented in an Authorization
// header matches the configured hash. Always true when the gate is
// disabled.
func (g *Gate) Allow(authorizationHeader string) bool {
	if !g.Enabled() {
		return true
	}
	token, ok := strings.CutPrefix(authorizationHeader, "Bearer ")
	if !ok || token == "" {
		return false
	}
	return crypto.CheckPasswordMatch(token, g.hash)
}

// Middleware rejects any request that doesn't present a valid bearer token
// with 401 Unauthorized. A disabled Gate is a no-op pass-through.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Allow(r.Header.Get("Authorization")) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="control"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
