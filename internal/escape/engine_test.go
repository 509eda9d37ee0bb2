package escape

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellsafe/shq/internal/classify"
	"github.com/shellsafe/shq/internal/scan"
)

// render escapes a single record (input must not contain NUL) and returns
// the emitted token.
func render(t *testing.T, input []byte, opts Options) string {
	t.Helper()

	var src scan.Source
	if opts.ASCII {
		src = scan.NewByteSource(bytes.NewReader(input))
	} else {
		src = scan.NewUTF8Source(bytes.NewReader(input))
	}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	eng := New(src, w, opts)

	u, err := src.Next()
	if err == io.EOF {
		eng.WriteEmpty()
	} else {
		require.NoError(t, err)
		terminated, err := eng.EscapeRecord(u)
		require.NoError(t, err)
		assert.False(t, terminated)
	}
	require.NoError(t, w.Flush())
	return buf.String()
}

func TestEscapeRecord_Standard(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain word", []byte("hello"), "hello"},
		{"space opens quoting", []byte("hello world"), "hello$' world'"},
		{"empty input", nil, "''"},
		{"bare quote", []byte("'"), `\'`},
		{"quote mid-word", []byte("don't go"), `don\'t$' go'`},
		{"tab", []byte{0x09}, `$'\t'`},
		{"bell", []byte{0x07}, `$'\a'`},
		{"escape char octal is trimmed", []byte{0x1B}, `$'\33'`},
		{"octal stays short before non-digit", []byte{0x01, 'x'}, `$'\1x'`},
		{"octal padded before octal digit", []byte{0x01, '5'}, `$'\0015'`},
		{"octal padded above 077", []byte{0x7F}, `$'\177'`},
		{"eight is not an octal digit", []byte{0x01, '8'}, `$'\18'`},
		{"leading tilde forced", []byte("~root"), `$'~root'`},
		{"tilde mid-word passes", []byte("a~b"), "a~b"},
		{"invalid byte recovers in place", []byte{'a', 0xFF, 'b'}, `a$'\377b'`},
		{"multibyte scalar passes raw", []byte("héllo"), "héllo"},
		{"non-printable scalar as byte octals", []byte("\u0081"), `$'\302\201'`},
		{"comma is special", []byte("a,b"), `a$',b'`},
		{"equals is not special", []byte("a=b"), "a=b"},
		{"backslash quoted", []byte(`a\b`), `a$'\\b'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.input, Options{Mode: ModeStandard})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeRecord_Minimal(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain word", []byte("hello"), "hello"},
		{"space", []byte("hello world"), "hello' world'"},
		{"quote splices segments", []byte("a'b c"), `a\'b' c'`},
		{"only a quote", []byte("'"), `\'`},
		{"control byte passes raw", []byte{'a', 0x07, 'b'}, "a\x07b"},
		{"leading tilde", []byte("~x"), "'~x'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.input, Options{Mode: ModeMinimal, ASCII: true})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeRecord_Unicode(t *testing.T) {
	// The BOM and the tag characters are format characters, passthrough by
	// default, so escape-invisible is on to reach the \u/\U formatting.
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"escape char named", []byte{0x1B}, `$'\E'`},
		{"short u escape", []byte("\u0081"), `$'\u81'`},
		{"u escape padded before hex digit", []byte("\u0081" + "5"), `$'\u00815'`},
		{"u escape wide value", []byte("\uFEFF"), `$'\uFEFF'`},
		{"astral plane", []byte("\U000E0001"), `$'\U000E0001'`},
		{"astral closes before hex digit", []byte("\U000E0001f"), `$'\U000E0001'f`},
		{"astral stays open before non-hex", []byte("\U000E0001z"), `$'\U000E0001z'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.input, Options{
				Mode:     ModeUnicode,
				Classify: classify.Options{EscapeInvisible: true},
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeRecord_FormatCharactersPassByDefault(t *testing.T) {
	// Without the widened options, format characters are data: the BOM and
	// a tag character come through raw in every non-minimal mode.
	for _, mode := range []Mode{ModeStandard, ModeUnicode} {
		assert.Equal(t, "a\uFEFFb", render(t, []byte("a\uFEFFb"), Options{Mode: mode}))
		assert.Equal(t, "x\U000E0001y", render(t, []byte("x\U000E0001y"), Options{Mode: mode}))
	}
}

func TestEscapeRecord_WidenedVisibility(t *testing.T) {
	nbsp := []byte("a\u00A0b")

	// A no-break space has a glyph slot, so it passes by default.
	assert.Equal(t, "a\u00A0b", render(t, nbsp, Options{Mode: ModeStandard}))

	// With blanks escaped it takes the four-digit form, because the
	// following b reads as a hex digit.
	got := render(t, nbsp, Options{
		Mode:     ModeUnicode,
		Classify: classify.Options{EscapeMore: true},
	})
	assert.Equal(t, `a$'\u00A0b'`, got)

	// A soft hyphen is invisible but not blank.
	soft := []byte("x\u00ADy")
	assert.Equal(t, "x\u00ADy", render(t, soft, Options{Mode: ModeUnicode}))
	got = render(t, soft, Options{
		Mode:     ModeUnicode,
		Classify: classify.Options{EscapeInvisible: true},
	})
	assert.Equal(t, `x$'\uADy'`, got)
}

func TestEscapeRecord_ASCIIRegime(t *testing.T) {
	// In the byte regime every high byte is escaped as itself, never
	// reinterpreted as UTF-8.
	got := render(t, []byte{'a', 0xC3, 0xA9}, Options{Mode: ModeStandard, ASCII: true})
	assert.Equal(t, `a$'\303\251'`, got)
}

func TestMinimalRoundTrip(t *testing.T) {
	inputs := []string{
		"hello",
		"hello world",
		"don't",
		"a'b c'd",
		"''",
		"~home",
		"$(rm -rf /)",
		"a;b|c&d",
		"tab\there",
	}
	for _, in := range inputs {
		t.Run(strconv.Quote(in), func(t *testing.T) {
			tok := render(t, []byte(in), Options{Mode: ModeMinimal, ASCII: true})
			words, err := shellquote.Split(tok)
			require.NoError(t, err)
			require.Len(t, words, 1)
			assert.Equal(t, in, words[0])
		})
	}
}

func TestStandardRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte("hello world"),
		[]byte("don't"),
		{0x01, '5'},
		{0x01, 'x'},
		{0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D},
		{0x1B, '['},
		[]byte("~tilde first"),
		{'a', 0xFF, 'b'},
		[]byte("mixed \t control \x01 bytes"),
		[]byte("héllo wörld"),
		{'\\', '\''},
	}
	for _, in := range inputs {
		t.Run(strconv.Quote(string(in)), func(t *testing.T) {
			tok := render(t, in, Options{Mode: ModeStandard})
			assert.Equal(t, in, ansiUnquote(t, tok))
		})
	}
}

func TestUnicodeRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte("\u0081"),
		[]byte("\u00815"),
		[]byte("\uFEFF after"),
		[]byte("\U000E0001f"),
		{0x1B, 'E'},
	}
	for _, in := range inputs {
		t.Run(strconv.Quote(string(in)), func(t *testing.T) {
			tok := render(t, in, Options{Mode: ModeUnicode})
			assert.Equal(t, in, ansiUnquote(t, tok))
		})
	}
}

// ansiUnquote reverses the emitted quoting the way bash would read it:
// concatenated bare spans, '...' spans, $'...' spans, and backslash escapes.
// Unicode escapes decode to the UTF-8 bytes of the scalar.
func ansiUnquote(t *testing.T, tok string) []byte {
	t.Helper()

	var out bytes.Buffer
	for i := 0; i < len(tok); {
		switch {
		case tok[i] == '\\':
			require.Less(t, i+1, len(tok), "dangling backslash in %q", tok)
			out.WriteByte(tok[i+1])
			i += 2
		case strings.HasPrefix(tok[i:], "$'"):
			i = ansiSpan(t, tok, i+2, &out)
		case tok[i] == '\'':
			end := strings.IndexByte(tok[i+1:], '\'')
			require.GreaterOrEqual(t, end, 0, "unterminated quote in %q", tok)
			out.WriteString(tok[i+1 : i+1+end])
			i += end + 2
		default:
			out.WriteByte(tok[i])
			i++
		}
	}
	return out.Bytes()
}

func ansiSpan(t *testing.T, tok string, i int, out *bytes.Buffer) int {
	t.Helper()

	named := map[byte]byte{
		'a': 7, 'b': 8, 't': 9, 'n': 10, 'v': 11, 'f': 12, 'r': 13, 'E': 27,
	}
	for i < len(tok) {
		c := tok[i]
		if c == '\'' {
			return i + 1
		}
		if c != '\\' {
			out.WriteByte(c)
			i++
			continue
		}
		require.Less(t, i+1, len(tok), "dangling backslash in %q", tok)
		e := tok[i+1]
		switch {
		case e == '\\' || e == '\'':
			out.WriteByte(e)
			i += 2
		case named[e] != 0:
			out.WriteByte(named[e])
			i += 2
		case e >= '0' && e <= '7':
			j := i + 1
			v := 0
			for j < len(tok) && j < i+4 && tok[j] >= '0' && tok[j] <= '7' {
				v = v*8 + int(tok[j]-'0')
				j++
			}
			out.WriteByte(byte(v))
			i = j
		case e == 'u' || e == 'U':
			digits := 4
			if e == 'U' {
				digits = 8
			}
			j := i + 2
			v := 0
			for j < len(tok) && j < i+2+digits && isHex(tok[j]) {
				v = v*16 + hexVal(tok[j])
				j++
			}
			require.Greater(t, j, i+2, "empty unicode escape in %q", tok)
			var buf [utf8.UTFMax]byte
			n := utf8.EncodeRune(buf[:], rune(v))
			out.Write(buf[:n])
			i = j
		default:
			t.Fatalf("unknown escape \\%c in %q", e, tok)
		}
	}
	t.Fatalf("unterminated $' span in %q", tok)
	return i
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}
