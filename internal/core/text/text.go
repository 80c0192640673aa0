// Package text contains the string normalization and distance helpers shared
// by the matching packages. Everything here is pure.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	spaceRe      = regexp.MustCompile(`\s+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	dashSpacedRe = regexp.MustCompile(`\s*-\s*`)
	slashSpaceRe = regexp.MustCompile(`\s*/\s*`)
)

// OrEmpty trims s. It exists so callers read like the nullable checks they replace.
func OrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// FirstNonEmpty returns the first value that is non-empty after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}

// CollapseSpace lowercases, trims and collapses runs of whitespace to one space.
func CollapseSpace(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return spaceRe.ReplaceAllString(s, " ")
}

// Norm lowercases s, replaces punctuation with spaces and collapses whitespace.
func Norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWordRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormTruck keeps only ASCII letters and digits, lowercased.
func NormTruck(s string) string {
	return strings.ToLower(nonAlnumRe.ReplaceAllString(strings.TrimSpace(s), ""))
}

// NormDashes collapses whitespace and tightens " - " to "-".
func NormDashes(s string) string {
	return dashSpacedRe.ReplaceAllString(CollapseSpace(s), "-")
}

// NormSlashes collapses whitespace and tightens " / " to "/".
func NormSlashes(s string) string {
	return slashSpaceRe.ReplaceAllString(CollapseSpace(s), "/")
}

// SquashDoubles collapses runs of the same rune ("llama" -> "lama").
func SquashDoubles(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for i, r := range s {
		if i > 0 && r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

var soundexCodes = map[rune]byte{
	'b': '1', 'f': '1', 'p': '1', 'v': '1',
	'c': '2', 'g': '2', 'j': '2', 'k': '2', 'q': '2', 's': '2', 'x': '2', 'z': '2',
	'd': '3', 't': '3',
	'l': '4',
	'm': '5', 'n': '5',
	'r': '6',
}

// Soundex returns the four character American Soundex code of s.
// Non-letters are ignored; an input without letters yields "".
func Soundex(s string) string {
	var out []byte
	var last byte
	for _, r := range strings.ToLower(s) {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			continue
		}
		code, coded := soundexCodes[r]
		if out == nil {
			out = append(out, byte(unicode.ToUpper(r)))
			last = code
			continue
		}
		switch {
		case coded:
			if code != last {
				out = append(out, code)
			}
			last = code
		case r == 'h' || r == 'w':
			// h and w do not separate equal codes
		default:
			last = 0
		}
		if len(out) == 4 {
			break
		}
	}
	if out == nil {
		return ""
	}
	for len(out) < 4 {
		out = append(out, '0')
	}
	return string(out[:4])
}
