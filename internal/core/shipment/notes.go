package shipment

import (
	"regexp"
	"strconv"
	"strings"
)

var boxesRe = regexp.MustCompile(`(?i)\bBOXES:[0-9,\s]+\b`)

// BuildBoxesNote renders box numbers as "BOXES:a,b". Returns "" for none.
func BuildBoxesNote(boxes []int) string {
	if len(boxes) == 0 {
		return ""
	}
	parts := make([]string, len(boxes))
	for i, b := range boxes {
		parts[i] = strconv.Itoa(b)
	}
	return "BOXES:" + strings.Join(parts, ",")
}

// HasBoxes reports whether notes already carry a boxes annotation.
func HasBoxes(notes string) bool {
	return boxesRe.MatchString(notes)
}

// MergeBoxes appends boxesNote to cur unless cur already has one.
// Box numbers never change once written.
func MergeBoxes(cur, boxesNote string) string {
	cur = strings.TrimSpace(cur)
	if boxesNote == "" {
		return cur
	}
	if cur == "" {
		return boxesNote
	}
	if HasBoxes(cur) {
		return cur
	}
	return cur + " | " + boxesNote
}
