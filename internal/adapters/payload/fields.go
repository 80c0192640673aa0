package payload

import (
	"regexp"
	"strings"
)

var (
	lineBreakRe    = regexp.MustCompile(`\r\n|\n|\r`)
	properNameRe   = regexp.MustCompile(`\b([A-Z][a-z]+)\s+([A-Z][a-z]+)\b`)
	truckLabelRe   = regexp.MustCompile(`(?i)Truck\s*#?:?\s*([A-Za-z0-9]+)`)
	trailerLabelRe = regexp.MustCompile(`(?i)Trailer\s*#?:?\s*([A-Za-z0-9]+)`)
	truckPairRe    = regexp.MustCompile(`^\s*([A-Za-z0-9]+)\s*[/\-]\s*([A-Za-z0-9]+)\s*$`)
	bareTokenRe    = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// DriverName pulls a person's name out of a carrier block. Vendors put the
// carrier on the first line and the driver on the second; single-line blocks
// fall back to the first "Proper Proper" pair, then the whole text.
func DriverName(carrier string) string {
	carrier = strings.TrimSpace(carrier)
	if carrier == "" {
		return ""
	}
	if lines := lineBreakRe.Split(carrier, -1); len(lines) >= 2 {
		if second := strings.TrimSpace(lines[1]); second != "" {
			return second
		}
	}
	if m := properNameRe.FindStringSubmatch(carrier); m != nil {
		return m[1] + " " + m[2]
	}
	return carrier
}

// TruckNumber extracts the truck token from "Truck #: X", "X/Y" or a bare token.
func TruckNumber(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if m := truckLabelRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := truckPairRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if t := strings.TrimSpace(s); bareTokenRe.MatchString(t) {
		return t
	}
	return ""
}

// TrailerNumber extracts the trailer token from "Trailer #: Y" or "X/Y".
func TrailerNumber(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if m := trailerLabelRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := truckPairRe.FindStringSubmatch(s); m != nil {
		return m[2]
	}
	return ""
}
