package scan

import (
	"bufio"
	"io"
)

// ByteSource yields one unit per input byte. It serves single-byte locales,
// including the portable C/ASCII locale, and the UTF-8 locale under minimal
// quoting where byte-wise handling is equivalent.
type ByteSource struct {
	r       *bufio.Reader
	pending Unit
	hasPend bool
}

// NewByteSource returns a Source reading single bytes from r.
func NewByteSource(r io.Reader) *ByteSource {
	return &ByteSource{r: bufio.NewReader(r)}
}

// Next returns the next byte as a unit, or io.EOF.
func (s *ByteSource) Next() (Unit, error) {
	if s.hasPend {
		s.hasPend = false
		return s.pending, nil
	}
	b, err := s.r.ReadByte()
	if err != nil {
		return Unit{}, err
	}
	return newUnit(rune(b), b), nil
}

// Unget pushes u back; the next Next returns it unchanged.
func (s *ByteSource) Unget(u Unit) {
	s.pending = u
	s.hasPend = true
}
