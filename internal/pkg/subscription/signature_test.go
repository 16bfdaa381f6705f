package subscription

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestVerifySharedSecret(t *testing.T) {
	if !VerifySharedSecret("top-secret", "top-secret") {
		t.Fatalf("expected bare token to validate")
	}
	if !VerifySharedSecret("Bearer top-secret", "top-secret") {
		t.Fatalf("expected bearer token to validate")
	}
	if VerifySharedSecret("wrong", "top-secret") {
		t.Fatalf("expected mismatched token to fail")
	}
	if VerifySharedSecret("", "top-secret") {
		t.Fatalf("expected empty header to fail")
	}
	if VerifySharedSecret("top-secret", "") {
		t.Fatalf("expected unconfigured secret to fail closed")
	}
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"event":{"type":"RENEWAL"}}`)
	secret := "signing-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	validSig := hex.EncodeToString(mac.Sum(nil))

	if !VerifySignature(payload, validSig, secret) {
		t.Fatalf("expected signature to validate")
	}
	if VerifySignature(payload, "deadbeef", secret) {
		t.Fatalf("expected invalid signature to fail")
	}
	if VerifySignature(payload, validSig, "other-secret") {
		t.Fatalf("expected wrong secret to fail")
	}
}
