package scan

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// WideSource decodes input under a non-UTF-8 multi-byte locale through a
// character-map decoder. The decoder offers no safe resynchronization point
// after a malformed sequence, so a decode failure is fatal for the rest of
// the run and surfaces as ErrDecodeFatal; recovery is deliberately not
// attempted here.
type WideSource struct {
	r   *bufio.Reader
	dec *encoding.Decoder

	// fffd is the charset's own encoding of U+FFFD, when it has one.
	// Decoders substitute U+FFFD for undecodable input, so seeing it in the
	// output means a decode failure unless the input genuinely encoded it.
	fffd []byte

	src      [16]byte
	srcN     int
	needMore bool
	atEOF    bool
	pending  Unit
	hasPend  bool
	// sticky is the first fatal error; once decoding fails there is no way
	// back, so every later call reports the same condition.
	sticky error
}

// NewWideSource returns a Source decoding units from r with enc's decoder.
func NewWideSource(r io.Reader, enc encoding.Encoding) *WideSource {
	s := &WideSource{r: bufio.NewReader(r), dec: enc.NewDecoder()}
	if encoded, err := enc.NewEncoder().Bytes([]byte(string(utf8.RuneError))); err == nil {
		s.fffd = encoded
	}
	return s
}

// Next returns the next decoded unit, io.EOF at end of input, or
// ErrDecodeFatal when the charset decoder cannot make sense of the input.
func (s *WideSource) Next() (Unit, error) {
	if s.hasPend {
		s.hasPend = false
		return s.pending, nil
	}
	if s.sticky != nil {
		return Unit{}, s.sticky
	}
	u, err := s.next()
	if err != nil && err != io.EOF {
		s.sticky = err
	}
	return u, err
}

func (s *WideSource) next() (Unit, error) {
	for {
		if s.srcN == 0 && s.atEOF {
			return Unit{}, io.EOF
		}
		if !s.atEOF && (s.srcN == 0 || s.needMore) {
			if s.srcN == len(s.src) {
				// The decoder made no progress on a full buffer.
				return Unit{}, ErrDecodeFatal
			}
			b, err := s.r.ReadByte()
			switch err {
			case nil:
				s.src[s.srcN] = b
				s.srcN++
			case io.EOF:
				s.atEOF = true
			default:
				return Unit{}, err
			}
			s.needMore = false
		}

		var dst [utf8.UTFMax]byte
		nDst, nSrc, err := s.dec.Transform(dst[:], s.src[:s.srcN], s.atEOF)
		if nDst > 0 {
			r, _ := utf8.DecodeRune(dst[:nDst])
			if nSrc < 1 || nSrc > maxUnitBytes {
				return Unit{}, ErrDecodeFatal
			}
			u := newUnit(r, s.src[:nSrc]...)
			copy(s.src[:], s.src[nSrc:s.srcN])
			s.srcN -= nSrc
			if r == utf8.RuneError && !bytes.Equal(u.Raw(), s.fffd) {
				return Unit{}, ErrDecodeFatal
			}
			return u, nil
		}
		switch {
		case err == nil || err == transform.ErrShortSrc:
			if s.atEOF {
				if s.srcN == 0 {
					return Unit{}, io.EOF
				}
				// A dangling partial sequence at EOF that the decoder will
				// not consume: nothing recoverable remains.
				return Unit{}, ErrDecodeFatal
			}
			s.needMore = true
		default:
			return Unit{}, ErrDecodeFatal
		}
	}
}

// Unget pushes u back; the next Next returns it unchanged.
func (s *WideSource) Unget(u Unit) {
	s.pending = u
	s.hasPend = true
}
