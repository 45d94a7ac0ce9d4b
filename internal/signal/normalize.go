package signal

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// leet maps the substitutions children use to slip words past keyword
// filters.
var leet = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
	'$': 's',
	'@': 'a',
	'!': 'i',
	'€': 'e',
}

// urlSafe is the symbol set preserved through normalization so URL-shaped
// text survives for link detection downstream.
func urlSafe(r rune) bool {
	return r == '.' || r == '/' || r == ':' || r == '-'
}

func isArabicDiacritic(r rune) bool {
	// Fathatan through sukun, plus superscript alef.
	return (r >= 0x064B && r <= 0x0652) || r == 0x0670
}

const tatweel = 0x0640

// NormalizeText folds alert text into a canonical matching form: Unicode
// decomposition with combining marks stripped, Arabic diacritics and tatweel
// removed, leetspeak substitutions reversed, mid-word separator obfuscation
// collapsed, and everything outside letters/digits/URL-safe symbols dropped.
func NormalizeText(raw string) string {
	if raw == "" {
		return ""
	}

	lowered := strings.ToLower(raw)
	decomposed := norm.NFKD.String(lowered)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) || isArabicDiacritic(r) || r == tatweel {
			continue
		}
		if mapped, ok := leet[r]; ok {
			b.WriteRune(mapped)
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || urlSafe(r) || r == '_' || r == '*' {
			b.WriteRune(r)
			continue
		}
		// Everything else becomes a word boundary.
		b.WriteRune(' ')
	}

	fields := strings.Fields(b.String())
	for i, tok := range fields {
		fields[i] = collapseSeparators(tok)
	}
	return strings.Join(fields, " ")
}

// collapseSeparators undoes per-character obfuscation such as "l-o-s-e-r" or
// "b.a.d" while leaving genuine dotted tokens like "example.com" intact. A
// token is collapsed when it is split by two or more separators into mostly
// single-character segments.
func collapseSeparators(tok string) string {
	segs := strings.FieldsFunc(tok, func(r rune) bool {
		return r == '.' || r == '-' || r == '_' || r == '*'
	})
	if len(segs) < 3 {
		return strings.Map(dropFiller, tok)
	}
	total := 0
	for _, s := range segs {
		total += len([]rune(s))
	}
	if float64(total)/float64(len(segs)) <= 2 {
		return strings.Join(segs, "")
	}
	return strings.Map(dropFiller, tok)
}

// dropFiller removes the symbols that only exist for obfuscation once a token
// has been ruled out as separator-spam; '.' '/' ':' '-' stay for URLs.
func dropFiller(r rune) rune {
	if r == '*' || r == '_' {
		return -1
	}
	return r
}

// Tokenize splits normalized text into letter/digit runs of at least two
// runes.
func Tokenize(normalized string) []string {
	runs := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(runs))
	for _, run := range runs {
		if len([]rune(run)) >= 2 {
			tokens = append(tokens, run)
		}
	}
	return tokens
}
