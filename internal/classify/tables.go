package classify

import "unicode"

// shellSpecial marks the characters that must always be escaped or quoted to
// avoid interpretation by the shell. See POSIX.1-2017 XCU §2.2. `=` and `%`
// are omitted: as arguments they cannot be misinterpreted. `~` is excluded
// here because only a record-leading tilde is hazardous; the engine handles
// that case itself. `^` is included in case the output lands inside a
// bracket expression (bash recognizes it), and `,` in case it lands inside a
// brace expansion.
var shellSpecial = [128]bool{
	'\t': true, '\n': true,
	' ': true, '!': true, '"': true, '#': true, '$': true, '&': true, '\'': true,
	'(': true, ')': true, '*': true, ',': true,
	';': true, '<': true, '>': true, '?': true,
	'[': true, '\\': true, ']': true, '^': true,
	'`': true,
	'{': true, '|': true, '}': true,
}

// Invisible is the curated set of code points that are printable by the base
// predicate yet render blank by themselves: soft hyphen, combining grapheme
// joiner, bidi and mongolian controls, zero-width marks, variation
// selectors, interlinear annotation and tag characters, plus a few points
// empirically observed to render as blank space. Non-zero-width spaces are
// deliberately absent; IsNotBlank covers those.
var Invisible = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00AD, Hi: 0x00AD, Stride: 1}, // soft hyphen
		{Lo: 0x034F, Hi: 0x034F, Stride: 1}, // combining grapheme joiner
		{Lo: 0x061C, Hi: 0x061C, Stride: 1}, // arabic letter mark
		{Lo: 0x115F, Hi: 0x1160, Stride: 1}, // hangul choseong/jungseong filler
		{Lo: 0x17B4, Hi: 0x17B5, Stride: 1}, // khmer inherent vowels
		{Lo: 0x180B, Hi: 0x180E, Stride: 1}, // mongolian variation selectors
		{Lo: 0x200B, Hi: 0x200F, Stride: 1}, // zero-width marks, bidi marks
		{Lo: 0x202A, Hi: 0x202E, Stride: 1}, // bidi embedding controls
		{Lo: 0x2060, Hi: 0x206F, Stride: 1}, // word joiner, invisible operators
		{Lo: 0xFE00, Hi: 0xFE0F, Stride: 1}, // variation selectors
		{Lo: 0xFEFF, Hi: 0xFEFF, Stride: 1}, // zero-width no-break space
		{Lo: 0xFFA0, Hi: 0xFFA0, Stride: 1}, // halfwidth hangul filler
		{Lo: 0xFFFC, Hi: 0xFFFC, Stride: 1}, // object replacement character
	},
	R32: []unicode.Range32{
		{Lo: 0x1D159, Hi: 0x1D159, Stride: 1}, // musical symbol null notehead
		{Lo: 0x1D173, Hi: 0x1D17A, Stride: 1}, // musical symbol controls
		{Lo: 0xE0001, Hi: 0xE0001, Stride: 1}, // language tag
		{Lo: 0xE0020, Hi: 0xE007F, Stride: 1}, // tag characters
		{Lo: 0xE0100, Hi: 0xE01EF, Stride: 1}, // variation selector supplement
	},
}
