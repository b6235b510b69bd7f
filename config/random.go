package config

import (
	"math/rand"
	"time"
)

const randomTrailerCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomTrailer returns a random lowercase-alphanumeric string of the
// given length, used to mint request IDs and job IDs.
func RandomTrailer(length int) string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	res := make([]byte, length)
	for i := 0; i < length; i++ {
		res[i] = randomTrailerCharset[r.Intn(len(randomTrailerCharset))]
	}
	return string(res)
}
