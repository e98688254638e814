package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateCode samples length distinct characters from alphabet. The result
// is the confirmation code mailed at signup; a fresh call overwrites any
// code still outstanding for the user.
func GenerateCode(alphabet string, length int) (string, error) {
	symbols := []rune(alphabet)
	if length <= 0 || length > len(symbols) {
		return "", fmt.Errorf("code length %d out of range for alphabet of %d symbols", length, len(symbols))
	}
	// Partial Fisher-Yates shuffle: the first length positions become the
	// code, so no symbol repeats.
	for i := 0; i < length; i++ {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(len(symbols)-i)))
		if err != nil {
			return "", err
		}
		k := i + int(j.Int64())
		symbols[i], symbols[k] = symbols[k], symbols[i]
	}
	return string(symbols[:length]), nil
}
