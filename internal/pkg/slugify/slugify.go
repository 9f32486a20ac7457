// Package slugify derives URL-safe unique identifiers from free text.
package slugify

import (
	"math/rand/v2"

	"github.com/gosimple/slug"
)

const (
	suffixLen      = 6
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Make returns a slug of the form "<slugified-text>-<6 random chars>".
// Collisions are not checked against existing slugs; the suffix space is
// large enough that the unique index catching one is a practical non-event.
func Make(text string) string {
	return slug.Make(text) + "-" + randomSuffix(suffixLen)
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return string(b)
}
