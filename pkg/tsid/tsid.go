// Package tsid generates time-sortable 64-bit entity identifiers and
// converts them to and from their canonical 13-character string form.
//
// Layout: 42 bits of milliseconds since 2020-01-01T00:00:00Z, a 10-bit
// node discriminator and a 12-bit per-millisecond counter. Two processes
// never need to coordinate: collisions are avoided by the node bits.
package tsid

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"time"
)

// ErrInvalidID is returned by Decode for strings that are not the
// canonical encoding of a value in [0, math.MaxInt64].
var ErrInvalidID = errors.New("invalid identifier")

const (
	// Custom epoch: 2020-01-01T00:00:00Z in Unix milliseconds.
	epochMillis = int64(1577836800000)

	nodeBits    = 10
	counterBits = 12

	nodeMask    = (1 << nodeBits) - 1
	counterMask = (1 << counterBits) - 1

	// Crockford base32. 13 chars * 5 bits = 65 bits; the first character
	// only ever carries the top 4 bits of the value.
	alphabet   = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	encodedLen = 13
)

// decodeTable maps a byte to its Crockford value, or -1 when the byte is
// not part of the alphabet. Lowercase and the usual aliases (O->0, I/L->1)
// are accepted on input; Encode always emits the canonical uppercase form.
var decodeTable = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		t[c] = int8(i)
		if c >= 'A' && c <= 'Z' {
			t[c+'a'-'A'] = int8(i)
		}
	}
	for _, alias := range []struct {
		chars string
		value int8
	}{{"Oo", 0}, {"IiLl", 1}} {
		for i := 0; i < len(alias.chars); i++ {
			t[alias.chars[i]] = alias.value
		}
	}
	return t
}()

// Generator produces unique, monotonically increasing identifiers.
// Safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	node    int64
	counter int64
	last    int64 // last millisecond used, relative to the custom epoch
	now     func() time.Time
}

// NewGenerator returns a generator bound to the low 10 bits of node.
func NewGenerator(node int64) *Generator {
	return &Generator{node: node & nodeMask, now: time.Now}
}

// randomNode draws a node discriminator from crypto/rand.
func randomNode() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// Fall back to the clock; uniqueness within the process still
		// holds through the counter.
		return time.Now().UnixNano() & nodeMask
	}
	return int64(binary.BigEndian.Uint64(b[:])) & nodeMask
}

// Generate returns a fresh identifier. Identifiers from one generator are
// strictly increasing, even across clock adjustments: the millisecond
// component never moves backwards, and a counter overflow rolls it forward.
func (g *Generator) Generate() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli() - epochMillis
	if ms < g.last {
		ms = g.last
	}
	if ms == g.last {
		g.counter = (g.counter + 1) & counterMask
		if g.counter == 0 {
			ms++
		}
	} else {
		g.counter = 0
	}
	g.last = ms

	return ms<<(nodeBits+counterBits) | g.node<<counterBits | g.counter
}

var defaultGenerator = NewGenerator(randomNode())

// Generate returns a fresh identifier from the process-wide generator.
func Generate() int64 {
	return defaultGenerator.Generate()
}

// Encode renders id as its fixed-width 13-character canonical string.
// It is only defined for ids already known valid (non-negative).
func Encode(id int64) string {
	n := uint64(id)
	var out [encodedLen]byte
	for i := 0; i < encodedLen; i++ {
		shift := uint(5 * (encodedLen - 1 - i))
		out[i] = alphabet[(n>>shift)&0x1F]
	}
	return string(out[:])
}

// Decode is the inverse of Encode. It rejects strings that are not exactly
// 13 characters, contain bytes outside the Crockford alphabet, or decode
// to a value outside [0, math.MaxInt64].
func Decode(s string) (int64, error) {
	if len(s) != encodedLen {
		return 0, ErrInvalidID
	}
	var n uint64
	for i := 0; i < encodedLen; i++ {
		v := decodeTable[s[i]]
		if v < 0 {
			return 0, ErrInvalidID
		}
		if i == 0 && v > 0x0F {
			// The top character carries only 4 bits.
			return 0, ErrInvalidID
		}
		n = n<<5 | uint64(v)
	}
	if n > math.MaxInt64 {
		return 0, ErrInvalidID
	}
	return int64(n), nil
}
