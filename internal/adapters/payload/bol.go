package payload

import (
	"strings"

	"github.com/example/loadmatch/internal/core/shipment"
)

// ExtractBOL locates the bill-of-lading reference of a record.
//
// The record's image path wins. Otherwise the first pod_images entry (or
// pod_image, bol_image, ticket_image) is joined onto the payload directory.
// A path whose type cannot be told from its extension is returned with an
// empty type and must not be written.
func ExtractBOL(imagePath, payloadPath string, d Doc) (path, bolType string) {
	if p := strings.TrimSpace(imagePath); p != "" {
		return p, shipment.BOLType(p)
	}

	dir := strings.TrimSpace(payloadPath)
	if dir == "" || d == nil {
		return "", ""
	}

	var first string
	if images := d.Strings("pod_images"); len(images) > 0 {
		first = images[0]
	}
	if first == "" {
		first = d.First("pod_image", "bol_image", "ticket_image")
	}
	if first == "" {
		return "", ""
	}

	joined := strings.TrimRight(dir, `/\`) + "/" + strings.TrimLeft(first, `/\`)
	return joined, shipment.BOLType(joined)
}
