package tasks

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"

	"github.com/desertthunder/tunename/internal/models"
)

// Sampler draws contacts uniformly at random without replacement.
//
// A Sampler is safe for concurrent use.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler returns a deterministic Sampler for the given seed.
func NewSampler(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomSampler returns a Sampler seeded from the operating system's entropy source.
func NewRandomSampler() *Sampler {
	var seed [32]byte
	crand.Read(seed[:])
	return &Sampler{rng: rand.New(rand.NewChaCha8(seed))}
}

// Sample picks n contacts from pool and returns them along with the contacts left over.
//
// When pool holds n or fewer contacts all of them are chosen. A non-positive n chooses none.
// pool itself is never modified.
func (s *Sampler) Sample(n int, pool []models.Contact) (chosen, remaining []models.Contact) {
	remaining = make([]models.Contact, len(pool))
	copy(remaining, pool)

	if n <= 0 {
		return []models.Contact{}, remaining
	}
	n = min(n, len(remaining))

	s.mu.Lock()
	defer s.mu.Unlock()

	// Partial Fisher-Yates: the first n slots become the sample.
	for i := range n {
		j := i + s.rng.IntN(len(remaining)-i)
		remaining[i], remaining[j] = remaining[j], remaining[i]
	}

	chosen = make([]models.Contact, n)
	copy(chosen, remaining[:n])
	return chosen, remaining[n:]
}
