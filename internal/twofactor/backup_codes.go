package twofactor

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const backupCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateBackupCodes draws count independent random codes from the uppercase
// alphanumeric alphabet. Collisions within a batch are not checked: with 36^8
// possible codes and only 10 per user the odds are negligible.
func generateBackupCodes(count int, length int) []string {
	alphabetLen := big.NewInt(int64(len(backupCodeAlphabet)))
	codes := make([]string, count)
	for i := range codes {
		var b strings.Builder
		b.Grow(length)
		for j := 0; j < length; j++ {
			n, _ := rand.Int(rand.Reader, alphabetLen)
			b.WriteByte(backupCodeAlphabet[n.Int64()])
		}
		codes[i] = b.String()
	}
	return codes
}

// consumeBackupCode matches the candidate case-insensitively against the list
// and, on a hit, returns the list with that entry removed. The caller must
// persist the shrunk list before reporting success.
func consumeBackupCode(codes []string, candidate string) (bool, []string) {
	candidate = strings.ToUpper(strings.TrimSpace(candidate))
	for i, code := range codes {
		if code == candidate {
			remaining := make([]string, 0, len(codes)-1)
			remaining = append(remaining, codes[:i]...)
			remaining = append(remaining, codes[i+1:]...)
			return true, remaining
		}
	}
	return false, codes
}
