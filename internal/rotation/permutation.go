package rotation

import (
	"errors"
	"sync"

	mtwist "blitter.com/go/mtwist"
)

// ErrPoolInvariant is returned when an inverse lookup or a cross-pool
// mapping would violate the pool-split invariant. This is unreachable
// under a correct construction and is reported as an
// internal-consistency error, never a silent pass-through; the
// scramble package wraps it as obs.KindUnmappableCharacter, which the
// event loops log and skip.
var ErrPoolInvariant = errors.New("rotation: pool invariant violated")

// Permutation is P_c: the pair of bijections over L and S for one
// counter value, stored as fixed-size forward and inverse arrays
// rather than a map, per the redesign flag against map-based
// permutation storage.
type Permutation struct {
	Counter uint64

	letterFwd [len(Letters)]byte
	letterInv [len(Letters)]byte
	symbolFwd [len(Symbols)]byte
	symbolInv [len(Symbols)]byte
}

// Forward maps a lowercase pool character through P_c. The input
// must already be lowercase; case is restored by the caller.
func (p *Permutation) Forward(x byte) (byte, error) {
	if i, ok := indexOf(Letters[:], x); ok {
		return p.letterFwd[i], nil
	}
	if i, ok := indexOf(Symbols[:], x); ok {
		return p.symbolFwd[i], nil
	}
	return 0, ErrPoolInvariant
}

// Inverse maps a lowercase pool character through P_c^{-1}.
func (p *Permutation) Inverse(y byte) (byte, error) {
	if i, ok := indexOf(Letters[:], y); ok {
		return p.letterInv[i], nil
	}
	if i, ok := indexOf(Symbols[:], y); ok {
		return p.symbolInv[i], nil
	}
	return 0, ErrPoolInvariant
}

func indexOf(pool []byte, b byte) (int, bool) {
	for i, p := range pool {
		if p == b {
			return i, true
		}
	}
	return -1, false
}

// Build constructs P_c from seed(c): seed a Mersenne-Twister
// generator with the 32-byte seed, Fisher-Yates shuffle a copy of L,
// then continue drawing from the same generator state to shuffle a
// copy of S (no re-seeding between the two). This exact sequence is
// the single hardest interoperability contract in the system — A and
// B must derive bit-identical permutations from the same seed.
func Build(counter uint64, seed [32]byte) *Permutation {
	prng := mtwist.New()
	prng.SeedFullState(seed[:])

	shuffledLetters := Letters
	fisherYates(shuffledLetters[:], prng)

	shuffledSymbols := Symbols
	fisherYates(shuffledSymbols[:], prng)

	p := &Permutation{Counter: counter}
	for i, orig := range Letters {
		p.letterFwd[i] = shuffledLetters[i]
		p.letterInv[indexOf(Letters[:], shuffledLetters[i])] = orig
	}
	for i, orig := range Symbols {
		p.symbolFwd[i] = shuffledSymbols[i]
		p.symbolInv[indexOf(Symbols[:], shuffledSymbols[i])] = orig
	}
	return p
}

// fisherYates shuffles pool in place, drawing from prng for each
// swap index. Walking from the last element down to index 1 and
// drawing an index in [0, i] at each step is the standard modern
// Fisher-Yates; both peers must use this exact walk direction and
// draw order to stay interoperable.
func fisherYates(pool []byte, prng *mtwist.MT19937_64) {
	for i := len(pool) - 1; i > 0; i-- {
		j := int(uint64(prng.Int63()) % uint64(i+1))
		pool[i], pool[j] = pool[j], pool[i]
	}
}

// Cache is the one-slot permutation memo spec.md §3 calls the only
// required cache, keyed by the last-used counter. It is touched only
// by the single event-loop goroutine of its owning peer, so it needs
// no locking in production use; the mutex here exists solely so
// tests may share a Cache across goroutines without data races.
type Cache struct {
	mu   sync.Mutex
	key  [32]byte
	last *Permutation
}

// NewCache builds a cache bound to a fixed symmetric key.
func NewCache(key [32]byte) *Cache {
	return &Cache{key: key}
}

// Get returns P_c for counter, building and caching it if the last
// cached entry was for a different counter.
func (c *Cache) Get(counter uint64) *Permutation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last != nil && c.last.Counter == counter {
		return c.last
	}
	c.last = Build(counter, Seed(c.key, counter))
	return c.last
}
