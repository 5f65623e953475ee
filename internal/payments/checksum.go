package payments

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// ComputeChecksum builds the X-VERIFY header value the gateway expects:
// sha256(base64Payload + apiPath + saltKey) followed by "###" and the salt
// index identifying which salt key was used.
func ComputeChecksum(base64Payload, apiPath, saltKey, saltIndex string) string {
	sum := sha256.Sum256([]byte(base64Payload + apiPath + saltKey))
	return hex.EncodeToString(sum[:]) + "###" + saltIndex
}

// VerifyChecksum checks an inbound X-VERIFY header against the payload it
// claims to sign. Comparison is constant time.
func VerifyChecksum(received, base64Payload, apiPath, saltKey, saltIndex string) bool {
	expected := ComputeChecksum(base64Payload, apiPath, saltKey, saltIndex)
	return subtle.ConstantTimeCompare([]byte(received), []byte(expected)) == 1
}

// StatusPath builds the gateway status-check path for an order
func StatusPath(merchantID, orderID string) string {
	return fmt.Sprintf("/pg/v1/status/%s/%s", merchantID, orderID)
}

// PayPath is the gateway payment-initiation path
const PayPath = "/pg/v1/pay"
