package game

import (
	"crypto/rand"
	"math/big"
)

// randIntn returns a uniform random int in [0, n) from the OS entropy source.
// Game fairness (shuffles, tie-breaks, oracle noise) must not depend on a
// seedable PRNG.
func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken, at which
		// point the process cannot run a fair game at all.
		panic("entropy source unavailable: " + err.Error())
	}
	return int(v.Int64())
}

// randBool returns true with probability p.
func randBool(p float64) bool {
	const resolution = 1 << 30
	return randIntn(resolution) < int(p*float64(resolution))
}

// randBytes fills and returns a fresh buffer of n random bytes.
func randBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("entropy source unavailable: " + err.Error())
	}
	return b
}
