package control

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// requireBearer wraps handler with the shared-secret auth check every
// state-changing request needs (§6). Comparison runs in constant time to
// avoid a timing side-channel on the secret.
func requireBearer(secret string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if secret == "" {
			handler(w, r)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		handler(w, r)
	}
}
