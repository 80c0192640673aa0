package shipment

import (
	"math"
	"regexp"
	"strings"
)

// ReplacedMarker is inserted before the extension of superseded attachments.
const ReplacedMarker = "_REPLACED"

// BOL types.
const (
	BOLTypePDF   = "pdf"
	BOLTypeImage = "image"
)

var (
	alreadyReplacedRe = regexp.MustCompile(`_REPLACED\.[A-Za-z0-9]{2,10}(\?.*)?$`)
	hasExtensionRe    = regexp.MustCompile(`\.[A-Za-z0-9]{2,10}($|\?)`)
	imageExtRe        = regexp.MustCompile(`\.(jpg|jpeg|png|gif|webp|bmp|tif|tiff)$`)
)

// BOLType classifies an attachment path by extension, ignoring any query
// string. Unknown extensions return "" and must not be written.
func BOLType(path string) string {
	p := strings.ToLower(path)
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	switch {
	case strings.HasSuffix(p, ".pdf"):
		return BOLTypePDF
	case imageExtRe.MatchString(p):
		return BOLTypeImage
	}
	return ""
}

// ReplacedName inserts ReplacedMarker before the last extension, keeping any
// query string: "a/b.jpg?x=1" becomes "a/b_REPLACED.jpg?x=1".
func ReplacedName(path string) string {
	query := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, query = path[:i], path[i:]
	}
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 {
		return path + ReplacedMarker + query
	}
	return path[:dot] + ReplacedMarker + path[dot:] + query
}

// Supersede returns the superseded form of path and whether it changed.
// Empty paths, paths already marked and paths without a recognisable
// extension are left alone, which makes repeated runs no-ops.
func Supersede(path string) (string, bool) {
	p := strings.TrimSpace(path)
	if p == "" || alreadyReplacedRe.MatchString(p) || !hasExtensionRe.MatchString(p) {
		return path, false
	}
	return ReplacedName(p), true
}

// NetLbs rounds a net weight to whole pounds.
func NetLbs(net float64) int64 {
	return int64(math.Round(net))
}

// Tons converts pounds to short tons rounded to two decimals.
func Tons(net float64) float64 {
	return math.Round(net/2000*100) / 100
}
