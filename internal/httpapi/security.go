package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/astgolf/proshop/internal/domain/auth"
)

// APIKeyHeader carries the admin API key.
const APIKeyHeader = "X-API-Key"

// apiKeyGuard authenticates admin requests via HMAC-SHA256 hashed API keys.
type apiKeyGuard struct {
	apikeys auth.Repository
	pepper  []byte
}

// require wraps h, rejecting requests whose API key does not hash to a known
// active key. Comparison is constant-time to avoid timing side-channels.
func (g *apiKeyGuard) require(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			respondErrorMessage(w, http.StatusUnauthorized, "missing api key")
			return
		}

		mac := hmac.New(sha256.New, g.pepper)
		mac.Write([]byte(key))
		hash := mac.Sum(nil)

		info, err := g.apikeys.FindByHash(r.Context(), hex.EncodeToString(hash))
		if err != nil {
			respondErrorMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		stored, err := hex.DecodeString(info.KeyHash)
		if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
			respondErrorMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		h.ServeHTTP(w, r)
	})
}
