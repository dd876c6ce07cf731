package identity

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// CodeGenerator produces one time codes. The default draws six digit codes
// independently and uniformly at random; tests inject deterministic ones.
type CodeGenerator func() string

// GenerateCode returns a six digit code, uniform over [100000, 999999].
// Codes carry no expiry and no distinctness guarantee: each draw is
// independent of every prior code for the same account.
func GenerateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		// crypto/rand only fails when the platform entropy source is broken,
		// at which point serving auth traffic is not an option either.
		panic(err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10)
}
