package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Sign returns the signature header value of a payload: HMAC-SHA256 over
// "{timestamp}.{event_id}.{body}", hex encoded with an algorithm prefix
func Sign(secret string, timestamp int64, eventID string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = fmt.Fprintf(h, "%d.%s.", timestamp, eventID)
	h.Write(payload)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether signature is the valid signature of the payload
func Verify(secret string, timestamp int64, eventID string, payload []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, timestamp, eventID, payload)), []byte(signature))
}
