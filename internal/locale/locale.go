// Package locale selects the input-encoding regime from the process locale
// environment. Three regimes exist: single bytes for the portable C/ASCII
// locales, UTF-8 with its own tolerant decoder, and generic character-map
// decoding for everything else.
package locale

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Regime is the input decoding strategy for a run.
type Regime int

const (
	// RegimeByte treats every byte as one unit.
	RegimeByte Regime = iota
	// RegimeWide decodes through the locale's character map.
	RegimeWide
	// RegimeUTF8 decodes UTF-8 with per-byte error recovery.
	RegimeUTF8
)

// ErrUnknownCharset is returned when the locale names a charset the
// character-map index does not know; the caller falls back to the byte
// regime.
var ErrUnknownCharset = errors.New("unknown locale charset")

// Detection is the resolved input regime for a run.
type Detection struct {
	Regime  Regime
	Charset string
	// Encoding is the character-map decoder; set only for RegimeWide.
	Encoding encoding.Encoding
}

// asciiNames are the charset spellings that select the byte regime.
var asciiNames = map[string]bool{
	"":               true,
	"c":              true,
	"posix":          true,
	"ansi_x3.4-1968": true,
	"ansi_x3.4-1986": true,
	"us-ascii":       true,
	"ascii":          true,
	"iso-ir-6":       true,
	"646":            true,
}

// Detect resolves the encoding regime from the locale environment, checking
// LC_ALL, LC_CTYPE, and LANG in POSIX priority order. A charset the index
// cannot resolve yields a byte-regime Detection and ErrUnknownCharset.
func Detect(getenv func(string) string) (Detection, error) {
	name := charsetName(getenv)
	lower := strings.ToLower(name)
	switch {
	case asciiNames[lower]:
		return Detection{Regime: RegimeByte, Charset: name}, nil
	case lower == "utf-8" || lower == "utf8":
		return Detection{Regime: RegimeUTF8, Charset: name}, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return Detection{Regime: RegimeByte, Charset: name}, ErrUnknownCharset
	}
	return Detection{Regime: RegimeWide, Charset: name, Encoding: enc}, nil
}

// charsetName extracts the codeset part of the active locale value:
// "en_US.UTF-8@euro" names the charset "UTF-8". A locale without an
// explicit codeset is assumed to be UTF-8, except for the portable C and
// POSIX locales.
func charsetName(getenv func(string) string) string {
	var value string
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := getenv(key); v != "" {
			value = v
			break
		}
	}
	if i := strings.IndexByte(value, '@'); i >= 0 {
		value = value[:i]
	}
	if i := strings.IndexByte(value, '.'); i >= 0 {
		return value[i+1:]
	}
	switch strings.ToLower(value) {
	case "", "c", "posix":
		return value
	}
	return "UTF-8"
}
