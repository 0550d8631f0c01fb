package daily

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the food seed shared by every daily game on t's date:
// the first 8 bytes of BLAKE2b-256 keyed with salt over the date key.
// Salts longer than 64 bytes are rejected by blake2b.
func Seed(t time.Time, salt string) (uint64, error) {
	h, err := blake2b.New256([]byte(salt))
	if err != nil {
		return 0, fmt.Errorf("daily seed: %w", err)
	}
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)
	n := binary.BigEndian.Uint64(sum[:8])
	if n == 0 {
		// zero asks the engine for a clock seed
		n = 1
	}
	return n, nil
}
