package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the gateway signature: HMAC-SHA256 over
// "sessionID|paymentID" with the shared secret, hex encoded.
func Sign(secret, sessionID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the signature and compares in constant time
func VerifySignature(secret, sessionID, paymentID, signature string) bool {
	expected := Sign(secret, sessionID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
