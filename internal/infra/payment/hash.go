package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// FormatAmount renders an amount in sen using senangPay's decimal
// convention: no trailing zeros, no thousands separators. 1000 -> "10",
// 1050 -> "10.5", 1055 -> "10.55". The rendering feeds the checkout hash,
// so it must match the gateway's own serialization bit for bit.
func FormatAmount(sen int64) string {
	return strconv.FormatFloat(float64(sen)/100, 'f', -1, 64)
}

// GenerateHash computes the checkout hash sent TO senangPay:
// HMAC-SHA256 keyed by the secret over secret||detail||amount||orderID.
func GenerateHash(secretKey, detail string, amountSen int64, orderID string) string {
	payload := secretKey + detail + FormatAmount(amountSen) + orderID
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHash recomputes the callback hash over
// secret||statusID||orderID||transactionID||msg and compares it against the
// supplied value in constant time.
func VerifyHash(secretKey, statusID, orderID, transactionID, msg, hash string) bool {
	payload := secretKey + statusID + orderID + transactionID + msg
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(payload))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(hash)))
}
