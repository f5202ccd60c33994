package pipeline

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Digest is an order-sensitive xxh3 hash of a stream of uint64 values.
// Two digests are equal only if they saw the same values in the same order
// (up to hash collisions).
type Digest struct {
	h   *xxh3.Hasher
	buf [8]byte
}

// NewDigest creates an empty Digest.
func NewDigest() *Digest {
	return &Digest{h: xxh3.New()}
}

// Add appends v to the stream.
func (d *Digest) Add(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	_, _ = d.h.Write(d.buf[:])
}

// Sum64 returns the hash of everything added so far.
func (d *Digest) Sum64() uint64 {
	return d.h.Sum64()
}

// Verifier checks a consumed stream that should be exactly 0..n-1 in order.
// Not safe for concurrent use; feed it from the consumer goroutine.
type Verifier struct {
	n    uint64
	seen []uint64 // bitmap of values observed at least once

	next       uint64 // value expected next if the stream is in order
	received   uint64
	duplicates uint64
	outOfRange uint64
	reordered  uint64

	digest *Digest
}

// NewVerifier creates a Verifier for the values 0..n-1.
func NewVerifier(n uint64) *Verifier {
	return &Verifier{
		n:      n,
		seen:   make([]uint64, (n+63)/64),
		digest: NewDigest(),
	}
}

// Observe records one consumed value.
func (v *Verifier) Observe(x uint64) {
	v.received++
	v.digest.Add(x)

	if x != v.next {
		v.reordered++
	}
	v.next = x + 1

	if x >= v.n {
		v.outOfRange++
		return
	}
	word, bit := x/64, uint64(1)<<(x%64)
	if v.seen[word]&bit != 0 {
		v.duplicates++
		return
	}
	v.seen[word] |= bit
}

// Sum64 returns the digest of the consumed stream.
func (v *Verifier) Sum64() uint64 {
	return v.digest.Sum64()
}

// Summary is the outcome of a verification.
type Summary struct {
	Received   uint64
	Missing    uint64
	Duplicates uint64
	OutOfRange uint64
	Reordered  uint64
}

// Summary counts what was received and what is missing.
func (v *Verifier) Summary() Summary {
	unique := v.received - v.duplicates - v.outOfRange
	return Summary{
		Received:   v.received,
		Missing:    v.n - unique,
		Duplicates: v.duplicates,
		OutOfRange: v.outOfRange,
		Reordered:  v.reordered,
	}
}

// Check returns ErrStreamMismatch, wrapped with the counts, unless every
// value 0..n-1 arrived exactly once and in order. If producerDigest is
// non-zero it must also equal the consumed stream's digest.
func (v *Verifier) Check(producerDigest uint64) error {
	s := v.Summary()
	if s.Missing != 0 || s.Duplicates != 0 || s.OutOfRange != 0 || s.Reordered != 0 {
		return fmt.Errorf("%w: received=%d missing=%d duplicates=%d out_of_range=%d reordered=%d",
			ErrStreamMismatch, s.Received, s.Missing, s.Duplicates, s.OutOfRange, s.Reordered)
	}
	if producerDigest != 0 && producerDigest != v.Sum64() {
		return fmt.Errorf("%w: digest %016x, producer digest %016x", ErrStreamMismatch, v.Sum64(), producerDigest)
	}
	return nil
}
