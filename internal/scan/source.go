// Package scan turns a raw byte stream into a sequence of code units under
// one of three input regimes: single bytes, generic character-map decoding,
// or UTF-8 with recoverable decode errors. All three strategies sit behind
// the Source interface so the quoting engine never branches on the regime.
package scan

import "errors"

// Error definitions for the scan package
var (
	// ErrDecodeFatal is returned by the character-map source when a byte
	// sequence cannot be decoded. Unlike the UTF-8 source there is no safe
	// resynchronization point, so the run is aborted rather than recovered.
	ErrDecodeFatal = errors.New("unrecoverable byte sequence in input")
)

// Unit is one logical unit of input: a Unicode scalar value together with
// the exact raw bytes it was decoded from, so the bytes can be re-emitted
// verbatim without a round-trip re-encode. A Unit is immutable once
// produced.
type Unit struct {
	// Scalar is the decoded scalar value, or the raw byte value when Valid
	// is false.
	Scalar rune
	// Width is the number of raw bytes backing the unit (1-4).
	Width int
	// Valid is false when decoding failed and the unit carries a single raw
	// byte instead of a scalar.
	Valid bool

	raw [maxUnitBytes]byte
}

// maxUnitBytes is the widest encoding any regime produces for one unit.
const maxUnitBytes = 4

// Raw returns the original bytes of the unit. For an invalid unit this is
// the single offending byte.
func (u Unit) Raw() []byte { return u.raw[:u.Width] }

// IsNUL reports whether the unit is a decoded NUL, the in-band record
// terminator.
func (u Unit) IsNUL() bool { return u.Valid && u.Scalar == 0 }

func newUnit(r rune, raw ...byte) Unit {
	u := Unit{Scalar: r, Width: len(raw), Valid: true}
	copy(u.raw[:], raw)
	return u
}

func newInvalidUnit(b byte) Unit {
	u := Unit{Scalar: rune(b), Width: 1}
	u.raw[0] = b
	return u
}

// Source yields code units one at a time with one-unit pushback. Next
// returns io.EOF at end of input. Implementations are not safe for
// concurrent use; the pipeline is strictly pull-based and single-threaded.
type Source interface {
	Next() (Unit, error)
	// Unget pushes a unit back so the next call to Next returns it again.
	// At most one unit may be pending at a time.
	Unget(Unit)
}
