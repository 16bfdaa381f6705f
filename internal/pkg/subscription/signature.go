package subscription

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifySharedSecret compares the Authorization header against the configured
// webhook token in constant time. The provider sends the token either bare or
// with a Bearer prefix.
func VerifySharedSecret(authorizationHeader, token string) bool {
	header := strings.TrimSpace(authorizationHeader)
	secret := strings.TrimSpace(token)
	if header == "" || secret == "" {
		return false
	}
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		header = strings.TrimSpace(header[7:])
	}
	return hmac.Equal([]byte(header), []byte(secret))
}

// VerifySignature checks a hex-encoded HMAC-SHA256 of the raw payload, for
// deployments where the provider signs bodies instead of sending a static
// token.
func VerifySignature(payload []byte, signatureHeader, signingSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(signingSecret)
	if sig == "" || secret == "" {
		return false
	}

	decoded, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decoded)
}
