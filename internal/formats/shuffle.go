package formats

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/oyna-edu/gameplay-service/internal/models"
)

// ShuffleOptions returns the options in an order that is random per
// participant but stable across repeated renders of the same question. The
// order is derived from the token, so no per-participant state is stored.
func ShuffleOptions(options []models.Option, token string, questionID uint) []models.Option {
	shuffled := make([]models.Option, len(options))
	copy(shuffled, options)

	rng := rand.New(rand.NewSource(shuffleSeed(token, questionID)))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled
}

func shuffleSeed(token string, questionID uint) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", token, questionID)
	return int64(h.Sum64())
}
