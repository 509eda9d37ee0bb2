package scan

import (
	"bufio"
	"io"
)

// UTF8Source decodes UTF-8 itself instead of leaning on a library decoder so
// that malformed sequences are recoverable without losing bytes: a failed
// decode consumes exactly one byte and returns it as an invalid unit, and
// every byte read ahead during validation is retried by a fresh decode
// attempt. The pending queue is sized so that a full four-byte unit plus one
// pushback can never overflow it.
type UTF8Source struct {
	r *bufio.Reader
	// q holds raw bytes read ahead of the decoder, front first. Capacity
	// covers the widest unit (4 bytes) plus a pushed-back unit of the same
	// width, making pushback depth 1 always safe.
	q  [2 * maxUnitBytes]byte
	qn int
}

// NewUTF8Source returns a Source decoding UTF-8 units from r.
func NewUTF8Source(r io.Reader) *UTF8Source {
	return &UTF8Source{r: bufio.NewReader(r)}
}

// Next returns the next decoded unit. On a malformed sequence it returns the
// single offending byte as an invalid unit and leaves subsequent bytes in
// place for the next call.
func (s *UTF8Source) Next() (Unit, error) {
	b0, err := s.readByte()
	if err != nil {
		return Unit{}, err
	}
	if b0 < 0x80 {
		return newUnit(rune(b0), b0), nil
	}

	// Leading byte determines the expected sequence length. Bare
	// continuation bytes and the invalid 0xF8-0xFF leaders fail immediately.
	var want int
	switch {
	case b0&0xE0 == 0xC0:
		want = 2
	case b0&0xF0 == 0xE0:
		want = 3
	case b0&0xF8 == 0xF0:
		want = 4
	default:
		return newInvalidUnit(b0), nil
	}

	var tail [maxUnitBytes - 1]byte
	read := 0
	for ; read < want-1; read++ {
		b, err := s.readByte()
		if err != nil {
			break
		}
		tail[read] = b
		if b&0xC0 != 0x80 {
			read++
			break
		}
	}

	u, ok := decodeSequence(b0, tail[:read], want)
	if !ok {
		// The leading byte alone is consumed; everything read past it gets
		// a fresh decode attempt.
		s.pushFront(tail[:read])
		return newInvalidUnit(b0), nil
	}
	return u, nil
}

// decodeSequence assembles and validates a multi-byte sequence. It rejects
// short reads, stray non-continuation bytes, overlong encodings, surrogates,
// and values beyond U+10FFFF.
func decodeSequence(b0 byte, tail []byte, want int) (Unit, bool) {
	if len(tail) != want-1 {
		return Unit{}, false
	}
	for _, b := range tail {
		if b&0xC0 != 0x80 {
			return Unit{}, false
		}
	}
	switch want {
	case 2:
		r := rune(b0&0x1F)<<6 | rune(tail[0]&0x3F)
		if r < 0x80 {
			return Unit{}, false
		}
		return newUnit(r, b0, tail[0]), true
	case 3:
		r := rune(b0&0x0F)<<12 | rune(tail[0]&0x3F)<<6 | rune(tail[1]&0x3F)
		if r < 0x800 || (r >= 0xD800 && r <= 0xDFFF) {
			return Unit{}, false
		}
		return newUnit(r, b0, tail[0], tail[1]), true
	default:
		r := rune(b0&0x07)<<18 | rune(tail[0]&0x3F)<<12 | rune(tail[1]&0x3F)<<6 | rune(tail[2]&0x3F)
		if r < 0x10000 || r >= 0x110000 {
			return Unit{}, false
		}
		return newUnit(r, b0, tail[0], tail[1], tail[2]), true
	}
}

// Unget re-queues the unit's raw bytes, restoring the exact original input.
func (s *UTF8Source) Unget(u Unit) {
	s.pushFront(u.Raw())
}

func (s *UTF8Source) readByte() (byte, error) {
	if s.qn > 0 {
		b := s.q[0]
		copy(s.q[:], s.q[1:s.qn])
		s.qn--
		return b, nil
	}
	return s.r.ReadByte()
}

func (s *UTF8Source) pushFront(bs []byte) {
	if len(bs) == 0 {
		return
	}
	copy(s.q[len(bs):], s.q[:s.qn])
	copy(s.q[:], bs)
	s.qn += len(bs)
}
