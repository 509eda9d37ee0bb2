// Package escape renders records as shell tokens. The engine is a small
// state machine over {unquoted, plain-quoted, ANSI-C-quoted} driven by the
// classification of each code unit, with one unit of lookahead to trim
// numeric escapes without ever losing input.
package escape

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/shellsafe/shq/internal/classify"
	"github.com/shellsafe/shq/internal/scan"
)

// Mode selects the quoting repertoire for a run.
type Mode int

const (
	// ModeMinimal uses plain single quotes only: machine-readable output a
	// strictly POSIX shell can consume, with no ANSI-C quoting.
	ModeMinimal Mode = iota
	// ModeStandard uses ANSI-C quoting with named and byte-octal escapes;
	// compatible with bash, busybox sh, ksh, and zsh.
	ModeStandard
	// ModeUnicode additionally renders valid non-ASCII scalars as \uXXXX or
	// \UXXXXXXXX and the escape character as \E. Shorter output, but not
	// understood by busybox sh.
	ModeUnicode
)

// Options fixes the engine's behavior for a run.
type Options struct {
	Mode Mode
	// ASCII marks the single-byte regime, where printability is plain ASCII
	// and the widened visibility options do not apply.
	ASCII    bool
	Classify classify.Options
}

// ansiNames maps the control scalars that have recognized short names inside
// $'...' quoting to their escape letters.
var ansiNames = ['\x1C']byte{
	'\a': 'a', '\b': 'b', '\t': 't', '\n': 'n', '\v': 'v', '\f': 'f', '\r': 'r',
	0x1B: 'E',
}

// Engine escapes one record at a time, pulling units from src and writing
// formatted bytes to w. It owns the only pushback use of src while a record
// is in flight.
type Engine struct {
	src  scan.Source
	w    *bufio.Writer
	opts Options
	// nameLimit bounds the named-escape table: \E is recognized by bash,
	// ksh, and zsh but not busybox sh, so it is only used in ModeUnicode.
	nameLimit rune
	readErr   error
}

// New returns an engine writing to w with the given options.
func New(src scan.Source, w *bufio.Writer, opts Options) *Engine {
	e := &Engine{src: src, w: w, opts: opts, nameLimit: '\x0E'}
	if opts.Mode == ModeUnicode {
		e.nameLimit = '\x1C'
	}
	return e
}

// Err returns the first non-EOF read error encountered, if any. A fatal
// decode error ends emission like EOF but is reported here so the caller can
// map it to its own exit condition.
func (e *Engine) Err() error { return e.readErr }

// end describes why a scanning step stopped yielding units.
type end int

const (
	endNone end = iota // a unit was produced
	endNUL             // record terminator
	endEOF             // input exhausted or read failed
)

// EscapeRecord emits the shell token for one record whose first unit is u.
// It consumes units up to and including the record's NUL terminator, or to
// end of input. terminated reports whether a NUL ended the record.
func (e *Engine) EscapeRecord(u scan.Unit) (terminated bool, err error) {
	// An unquoted leading tilde would trigger shell tilde-expansion, so it
	// is forced into quoting even though it is not otherwise special.
	force := u.Valid && u.Scalar == '~'
	for {
		if force || e.needsEscape(u) {
			force = false
			if u.Valid && u.Scalar == '\'' {
				// A bare quote outside quoting: backslash-escape it, since
				// it cannot open a segment it would itself terminate.
				e.w.WriteString(`\'`)
			} else {
				var fin end
				if e.opts.Mode == ModeMinimal {
					u, fin = e.plainQuoted(u)
				} else {
					u, fin = e.ansiQuoted(u)
				}
				if fin != endNone {
					return fin == endNUL, e.readErr
				}
				// The quoted segment closed early; u is already the next
				// unit, so classify it without reading.
				continue
			}
		} else {
			e.w.Write(u.Raw())
		}
		var fin end
		if u, fin = e.next(); fin != endNone {
			return fin == endNUL, e.readErr
		}
	}
}

// WriteEmpty emits the token for a zero-length record so that an empty
// argument still round-trips.
func (e *Engine) WriteEmpty() {
	e.w.WriteString("''")
}

// plainQuoted copies units raw inside a single-quoted segment until the
// record ends or a quote character forces the segment closed. An
// encountered quote is handed back to the record loop, which escapes it
// bare and may open a fresh segment after it.
func (e *Engine) plainQuoted(u scan.Unit) (scan.Unit, end) {
	e.w.WriteByte('\'')
	for {
		e.w.Write(u.Raw())
		var fin end
		if u, fin = e.next(); fin != endNone {
			e.w.WriteByte('\'')
			return u, fin
		}
		if u.Valid && u.Scalar == '\'' {
			e.w.WriteByte('\'')
			return u, endNone
		}
	}
}

// ansiQuoted renders units inside a $'...' segment until the record ends.
// Printable units pass through raw (with backslash and quote doubled);
// everything else takes the shortest correct escape. The only early exit is
// after a \U escape whose following unit would be misread as a hex digit.
func (e *Engine) ansiQuoted(u scan.Unit) (scan.Unit, end) {
	e.w.WriteString("$'")
	for {
		switch {
		case e.printable(u):
			switch u.Scalar {
			case '\\':
				e.w.WriteString(`\\`)
			case '\'':
				e.w.WriteString(`\'`)
			default:
				e.w.Write(u.Raw())
			}
		case !u.Valid || e.opts.ASCII || u.Scalar < 0x80:
			// A single raw byte: a decode-error byte, any byte-regime unit,
			// or an ASCII control.
			if u.Valid && u.Scalar < e.nameLimit && ansiNames[u.Scalar] != 0 {
				e.w.WriteByte('\\')
				e.w.WriteByte(ansiNames[u.Scalar])
			} else {
				e.writeOctal(u.Scalar)
			}
		case e.opts.Mode != ModeUnicode:
			// Valid multi-byte scalar without Unicode escapes: escape the
			// bytes of its UTF-8 encoding, regardless of the input locale.
			var buf [utf8.UTFMax]byte
			n := utf8.EncodeRune(buf[:], u.Scalar)
			for _, b := range buf[:n] {
				fmt.Fprintf(e.w, `\%03o`, b)
			}
		case u.Scalar <= 0xFFFF:
			if u.Scalar > 0xFFF || e.nextIsHexDigit() {
				fmt.Fprintf(e.w, `\u%04X`, u.Scalar)
			} else {
				fmt.Fprintf(e.w, `\u%X`, u.Scalar)
			}
		default:
			fmt.Fprintf(e.w, `\U%08X`, u.Scalar)
			if e.nextIsHexDigit() {
				// \U escapes cannot be trimmed, so close the segment before
				// a unit that would read as further hex digits.
				e.w.WriteByte('\'')
				return e.next()
			}
		}
		var fin end
		if u, fin = e.next(); fin != endNone {
			e.w.WriteByte('\'')
			return u, fin
		}
	}
}

// writeOctal emits an octal escape for a single byte value, using fewer than
// three digits only when the value allows it and the following unit is not
// itself an octal digit that would be misread as part of the escape.
func (e *Engine) writeOctal(v rune) {
	if v > 0o77 || e.nextIsOctalDigit() {
		fmt.Fprintf(e.w, `\%03o`, v)
	} else {
		fmt.Fprintf(e.w, `\%o`, v)
	}
}

// needsEscape reports whether u triggers a transition out of the unquoted
// state. Minimal mode only reacts to shell-special characters; the other
// modes also escape anything the classifier reports as lacking a glyph.
func (e *Engine) needsEscape(u scan.Unit) bool {
	var cl classify.Class
	switch {
	case !u.Valid:
		cl = classify.NonPrintable
	case e.opts.ASCII:
		cl = classify.ClassifyASCII(u.Scalar)
	default:
		cl = classify.Classify(u.Scalar, e.opts.Classify)
	}
	if e.opts.Mode == ModeMinimal {
		return cl == classify.ShellSpecial
	}
	return cl != classify.Passthrough
}

// printable reports whether u is emitted raw inside an ANSI-quoted segment,
// using the printable predicate widened by the active options.
func (e *Engine) printable(u scan.Unit) bool {
	if !u.Valid {
		return false
	}
	if e.opts.ASCII {
		return u.Scalar >= 0x20 && u.Scalar <= 0x7E
	}
	switch {
	case e.opts.Classify.EscapeMore:
		return classify.IsNotBlank(u.Scalar)
	case e.opts.Classify.EscapeInvisible:
		return classify.IsPrintExt(u.Scalar)
	default:
		return classify.IsPrint(u.Scalar)
	}
}

// next pulls the following unit, folding the record terminator, end of
// input, and read failures into an end marker. The first non-EOF error is
// kept for Err.
func (e *Engine) next() (scan.Unit, end) {
	u, err := e.src.Next()
	switch {
	case err == io.EOF:
		return scan.Unit{}, endEOF
	case err != nil:
		if e.readErr == nil {
			e.readErr = err
		}
		return scan.Unit{}, endEOF
	case u.IsNUL():
		return u, endNUL
	}
	return u, endNone
}

// nextIsOctalDigit peeks one unit ahead; the unit is pushed back untouched.
func (e *Engine) nextIsOctalDigit() bool {
	u, ok := e.peek()
	return ok && u.Valid && u.Scalar >= '0' && u.Scalar <= '7'
}

// nextIsHexDigit peeks one unit ahead for an ASCII hex digit.
func (e *Engine) nextIsHexDigit() bool {
	u, ok := e.peek()
	if !ok || !u.Valid {
		return false
	}
	r := u.Scalar
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (e *Engine) peek() (scan.Unit, bool) {
	u, err := e.src.Next()
	if err != nil {
		return scan.Unit{}, false
	}
	e.src.Unget(u)
	return u, true
}
