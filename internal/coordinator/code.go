package coordinator

import (
	"crypto/rand"
	"strings"
)

// CodeLength is the number of characters in a room code.
const CodeLength = 6

// NewCode returns a random room code of uppercase letters and the digits
// 2-7 (base32), which avoids the easily confused 0/O and 1/I pairs.
func NewCode() string {
	return rand.Text()[:CodeLength]
}

// NormalizeCode makes user-typed codes comparable with generated ones.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
