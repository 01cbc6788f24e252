package token

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// RandomCode draws n characters from alphabet using crypto/rand. Used for
// user-facing redemption codes, where the shape matters more than entropy;
// uniqueness is enforced by the store, not here.
func RandomCode(alphabet string, n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		b[i] = alphabet[num.Int64()]
	}
	return string(b), nil
}

// NewAPIToken returns an opaque bearer token for a user account.
func NewAPIToken() string {
	return uuid.NewString()
}
