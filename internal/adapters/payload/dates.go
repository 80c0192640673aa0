package payload

import (
	"regexp"
	"strings"
	"time"
)

// Output layouts.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

var (
	labelColonRe = regexp.MustCompile(`^[A-Za-z_\-]+\s*:\s*`)
	labelWordRe  = regexp.MustCompile(`^[A-Za-z_\-]+\s+`)
	meridiemRe   = regexp.MustCompile(`(?i)\s*([ap])\.?m\.?$`)
	mdyPrefixRe  = regexp.MustCompile(`^(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})\b`)
)

// inputLayouts are tried in order. Go's non-padded month, day and hour
// verbs also accept zero-padded input.
var inputLayouts = []string{
	DateTimeLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"1-2-2006 3:04 PM",
	"1-2-2006 3:04:05 PM",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006",
	"1-2-2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006 3:04 PM",
	"January 2, 2006",
}

// ParseTime reads a vendor timestamp in any of the known layouts.
// Timestamps without a zone are taken as written.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = meridiemRe.ReplaceAllStringFunc(s, func(m string) string {
		return " " + strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(m, ".", "")))
	})
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateTime formats a vendor timestamp as "YYYY-MM-DD HH:MM:SS", or "" when
// it cannot be read.
func DateTime(s string) string {
	t, ok := ParseTime(s)
	if !ok {
		return ""
	}
	return t.Format(DateTimeLayout)
}

// LoadDate returns the ISO date a load left the terminal: the at-terminal
// timestamp when readable, else the record's creation time.
func LoadDate(atTerminal, createdAt string) string {
	for _, s := range []string{atTerminal, createdAt} {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if m := mdyPrefixRe.FindStringSubmatch(s); m != nil {
			if t, err := time.Parse("1/2/2006", m[1]+"/"+m[2]+"/"+m[3]); err == nil {
				return t.Format(DateLayout)
			}
		}
		if t, ok := ParseTime(s); ok {
			return t.Format(DateLayout)
		}
	}
	return ""
}

// CleanDeliveryTime strips a leading status label such as "archive" or
// "Delivered:" from a delivery timestamp. Text that already reads as a
// timestamp is returned unchanged.
func CleanDeliveryTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, ok := ParseTime(s); ok {
		return s
	}
	s = labelColonRe.ReplaceAllString(s, "")
	s = labelWordRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
