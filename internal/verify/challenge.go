package verify

import (
	"crypto/rand"
	"math/big"
)

const (
	challengePrefix   = "ci5_"
	challengeLength   = 6
	challengeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// NewChallenge returns "ci5_" followed by six lowercase alphanumerics.
func NewChallenge() (string, error) {
	b := make([]byte, challengeLength)
	limit := big.NewInt(int64(len(challengeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = challengeAlphabet[n.Int64()]
	}
	return challengePrefix + string(b), nil
}

// Command is what the operator runs on the device.
func Command(challenge string) string {
	return "ci5 verify " + challenge
}
