package plan

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// inviteAlphabet deliberately omits 0/O, 1/I/L and U/V so codes read
// unambiguously when shared over voice or handwriting.
const inviteAlphabet = "23456789ABCDEFGHJKMNPQRSTWXYZ"

const inviteCodeLength = 6

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		buf[i] = inviteAlphabet[n.Int64()]
	}
	return string(buf), nil
}
