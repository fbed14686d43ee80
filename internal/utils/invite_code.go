package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// inviteAlphabet has 32 symbols; 0, 1, I and O are left out.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	inviteGroups    = 3
	inviteGroupSize = 4
)

// GenerateInviteCode generates a random organization invite code in the format
// XXXX-XXXX-XXXX.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, inviteGroups*inviteGroupSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	var b strings.Builder
	for i, r := range buf {
		if i > 0 && i%inviteGroupSize == 0 {
			b.WriteByte('-')
		}
		// 256 is a multiple of 32, so the modulus is unbiased.
		b.WriteByte(inviteAlphabet[int(r)%len(inviteAlphabet)])
	}
	return b.String(), nil
}

// NormalizeInviteCode uppercases a user-typed code and trims surrounding space.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
