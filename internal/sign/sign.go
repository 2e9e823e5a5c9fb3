// Package sign computes and verifies HMAC-SHA256 signatures over
// serialized request bodies.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the lowercase hex HMAC-SHA256 of payload under secret.
// Deterministic: identical inputs always yield identical output. The
// signature must be computed over the exact bytes that go on the wire;
// re-serializing the body invalidates verification on the receiving side.
func Sign(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares in constant time.
func Verify(payload []byte, signature string, secret []byte) bool {
	return hmac.Equal([]byte(Sign(payload, secret)), []byte(signature))
}
