package upbit

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// authToken builds the JWT bearer token Upbit's private endpoints require:
// HS256 over {access_key, nonce, query_hash, query_hash_alg}, where
// query_hash is the SHA512 hex digest of the raw query string. queryString
// may be empty for endpoints without parameters.
func authToken(accessKey, secretKey, queryString string) (string, error) {
	claims := map[string]any{
		"access_key": accessKey,
		"nonce":      uuid.NewString(),
	}
	if queryString != "" {
		h := sha512.Sum512([]byte(queryString))
		claims["query_hash"] = hex.EncodeToString(h[:])
		claims["query_hash_alg"] = "SHA512"
	}

	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	hb, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("marshal JWT header: %w", err)
	}
	cb, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal JWT claims: %w", err)
	}

	enc := base64.RawURLEncoding
	signingInput := enc.EncodeToString(hb) + "." + enc.EncodeToString(cb)

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(signingInput))
	signature := enc.EncodeToString(mac.Sum(nil))

	return signingInput + "." + signature, nil
}
