package notify

import (
	"math/rand/v2"
	"time"
)

// Clock yields the current instant. Injected so tests can pin "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Rand is the randomness the engine consumes: batch sizes, shuffle order,
// message choice, jitter. Injected so tests can pin outcomes.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// systemRand delegates to math/rand/v2's shared source, which is safe for
// concurrent use by the dispatch goroutines.
type systemRand struct{}

func (systemRand) IntN(n int) int                     { return rand.IntN(n) }
func (systemRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }
