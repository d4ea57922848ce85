package invite

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const (
	CodeLength   = 8
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Invite is a capability: whoever holds Code may submit birthdays for the
// owner and read the owner's calendar feed.
type Invite struct {
	Code      string
	OwnerId   uuid.UUID
	CreatedAt time.Time
}

// GenerateCode returns a random code of CodeLength uppercase letters and digits.
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
