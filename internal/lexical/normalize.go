// Package lexical implements the text side of product discovery: Arabic-aware
// normalization, synonym expansion and fuzzy lexical scoring.
package lexical

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Normalize canonicalizes text for both indexing and querying.
//
// Alef variants become bare alef, alef maksura becomes yeh, teh marbuta becomes heh;
// tashkeel and tatweel are dropped; ASCII is lowercased; anything that is not an
// Arabic letter/digit, an ASCII letter/digit or whitespace becomes a space; whitespace
// runs collapse to one space and the result is trimmed.
// Normalize is total and idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(
		runes.Map(unifyLetter),
		runes.Remove(runes.Predicate(isDiacritic)),
		runes.Map(keepOrSpace),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		// Map and Remove do not report errors; the loop below is the same pipeline.
		out = slowNormalize(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

// Tokens splits normalized text into whitespace tokens.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

func slowNormalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		r = unifyLetter(r)
		if isDiacritic(r) {
			continue
		}
		b.WriteRune(keepOrSpace(r))
	}
	return b.String()
}

func unifyLetter(r rune) rune {
	switch r {
	case 'آ', 'أ', 'إ', 'ٱ', 'ٲ', 'ٳ':
		return 'ا'
	case 'ى':
		return 'ي'
	case 'ة':
		return 'ه'
	}
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func isDiacritic(r rune) bool {
	switch {
	case r >= 0x0610 && r <= 0x061A:
		return true
	case r >= 0x064B && r <= 0x065F:
		return true
	case r == 0x0670, r == 0x0640: // superscript alef, tatweel
		return true
	case r >= 0x06D6 && r <= 0x06ED:
		return true
	}
	return false
}

func keepOrSpace(r rune) rune {
	switch {
	case unicode.IsSpace(r):
		return r
	case r < unicode.MaxASCII:
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	case r >= 0x0600 && r <= 0x06FF:
		if isArabicPunct(r) {
			return ' '
		}
		return r
	}
	return ' '
}

// isArabicPunct covers the punctuation that lives inside the Arabic block.
func isArabicPunct(r rune) bool {
	switch r {
	case '،', '؛', '؟', '٪', '٫', '٬', '٭', '۔':
		return true
	}
	return false
}
