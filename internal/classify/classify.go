// Package classify maps Unicode scalar values to the escaping class the
// quoting engine acts on. Classification is a pure function of the scalar
// value and the active option set; nothing here holds state.
package classify

import "unicode"

// Class is the escaping classification of a single scalar value.
type Class int

const (
	// Passthrough means the scalar can be emitted verbatim outside quoting.
	Passthrough Class = iota
	// ShellSpecial means the scalar is visible but must always be quoted or
	// escaped because a POSIX shell would otherwise interpret it.
	ShellSpecial
	// NonPrintable means the scalar has no rendered glyph at all.
	NonPrintable
	// InvisiblePrintable means the scalar is nominally printable yet renders
	// blank by itself. Reported only when the relevant options are set.
	InvisiblePrintable
)

// Options selects the widened visibility checks layered on top of the base
// printable predicate.
type Options struct {
	// EscapeMore treats every blank scalar other than the ASCII space as
	// requiring escaping. It subsumes EscapeInvisible.
	EscapeMore bool
	// EscapeInvisible treats the curated set of zero-width and otherwise
	// self-invisible scalars as requiring escaping.
	EscapeInvisible bool
}

// Classify returns the class of r under opts, using the base printable
// predicate. Byte-regime input uses ClassifyASCII instead.
func Classify(r rune, opts Options) Class {
	if IsShellSpecial(r) {
		return ShellSpecial
	}
	switch {
	case !IsPrint(r):
		return NonPrintable
	case opts.EscapeMore && !IsNotBlank(r):
		return InvisiblePrintable
	case (opts.EscapeMore || opts.EscapeInvisible) && !IsPrintExt(r):
		return InvisiblePrintable
	default:
		return Passthrough
	}
}

// ClassifyASCII classifies a single-byte-regime unit, where printability is
// plain ASCII and the widened visibility options do not apply.
func ClassifyASCII(r rune) Class {
	if IsShellSpecial(r) {
		return ShellSpecial
	}
	if r < 0x20 || r > 0x7E {
		return NonPrintable
	}
	return Passthrough
}

// IsShellSpecial reports whether r is one of the characters that must always
// be escaped or quoted to avoid interpretation by a POSIX shell, regardless
// of printability.
func IsShellSpecial(r rune) bool {
	return r >= 0 && r < int32(len(shellSpecial)) && shellSpecial[r]
}

// IsPrint is the base printable predicate. Format characters (Cf) count as
// printable, matching the C library's iswprint: the soft hyphen, zero-width
// marks, and tag characters escape only under the widened options, never by
// default.
func IsPrint(r rune) bool {
	return unicode.IsGraphic(r) || unicode.Is(unicode.Cf, r)
}

// IsPrintExt reports whether r is printable and has a glyph of its own. It
// excludes the curated invisible set: zero-width marks, bidi controls,
// variation selectors, tag characters, and code points empirically rendered
// blank.
func IsPrintExt(r rune) bool {
	return IsPrint(r) && !unicode.Is(Invisible, r)
}

// IsNotBlank reports whether r has a visible glyph or is the plain ASCII
// space. Blanks
// wider than zero (NBSP, figure space, braille blank, Hangul filler, the
// Unicode space block) report false.
func IsNotBlank(r rune) bool {
	if !IsPrintExt(r) {
		return false
	}
	if r == ' ' {
		return true
	}
	return !unicode.IsSpace(r) && r != 0x2800 && r != 0x3164
}
