// internal/daily/daily.go
//
// Deterministic word selection for the daily puzzle. The answer index for a
// date is HMAC-SHA256(salt, YYYY-MM-DD) mod the answer count, so every
// instance of the service agrees on the day's word without coordination,
// and the sequence is unguessable without the salt.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns the deterministic answer index for a date.
func WordIndex(date time.Time, salt string, answersLen int) int {
	if answersLen <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(answersLen))
}
