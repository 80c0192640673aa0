// Package payload normalizes raw vendor import records into match candidates.
//
// Vendor payloads are loosely structured JSON with several spellings for the
// same field. Structured columns on the record win over payload keys; the
// free-text original payload is the last resort for carrier and truck text.
package payload

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/example/loadmatch/internal/core/stage"
	"github.com/example/loadmatch/internal/core/text"
	"github.com/example/loadmatch/internal/ports/secondary"
)

// Normalizer implements secondary.ImportNormalizer.
type Normalizer struct{}

// NewNormalizer creates a new payload normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize extracts a candidate from rec. It never fails: a payload that is
// not a JSON object contributes no keys.
func (n *Normalizer) Normalize(rec *secondary.ImportRecord) *secondary.Candidate {
	doc := Decode(rec.PayloadJSON)

	carrierText := text.FirstNonEmpty(rec.Carrier, doc.String("carrier"), rec.PayloadOriginal)
	truckText := text.FirstNonEmpty(rec.Truck, doc.String("truck_trailer"), doc.String("truck_number"), doc.String("truck"), rec.PayloadOriginal)

	trailer := TrailerNumber(truckText)
	if trailer == "" && rec.Truck != "" {
		// A structured truck column holds the bare number; the trailer is
		// still in the payload text.
		trailer = TrailerNumber(text.FirstNonEmpty(doc.String("truck_trailer"), doc.String("truck_number"), doc.String("truck")))
	}
	if explicit := doc.First("trailer_number", "trailer", "trailer_no"); explicit != "" {
		trailer = explicit
	}

	c := &secondary.Candidate{
		ImportID:       rec.ID,
		DriverName:     text.FirstNonEmpty(doc.First("driver_name", "driver"), DriverName(carrierText)),
		TruckNumber:    TruckNumber(truckText),
		TrailerNumber:  trailer,
		Terminal:       text.FirstNonEmpty(rec.Terminal, doc.String("terminal")),
		JobName:        text.FirstNonEmpty(rec.JobName, doc.String("jobname")),
		ShipmentNumber: text.FirstNonEmpty(rec.ShipmentNumber, doc.First("shipment_number", "loadnumber", "load_number")),
		TicketNumber:   text.FirstNonEmpty(rec.TicketNumber, doc.First("ticket_no", "ticket_number")),
		StatusText:     text.FirstNonEmpty(rec.Status, doc.First("status", "state")),
		ReconcileFlag:  stage.NormalizeReconcileFlag(doc.First("reconcile_status", "reconcileStatus")),
		LoadDate:       LoadDate(doc.String("datetime_at_terminal"), rec.CreatedAt),
		DeliveredAt:    DateTime(CleanDeliveryTime(doc.First("datetime_delivered", "datetime_at_destination", "delivery_time"))),
		DeliveryAt: DateTime(CleanDeliveryTime(text.FirstNonEmpty(
			doc.First("datetime_delivered", "datetime_at_destination", "delivery_time", "status_time"),
			rec.DeliveryTime,
		))),
		ReviewDate: DateTime(doc.String("review_date")),
	}

	w := ExtractWeights(doc)
	c.NetLbs = w.NetLbs
	c.Boxes = w.Boxes

	c.BOLPath, c.BOLType = ExtractBOL(rec.ImagePath, rec.PayloadPath, doc)
	return c
}

// Doc is a decoded payload object. A nil Doc answers every lookup with "".
type Doc map[string]any

// Decode parses a JSON object payload. Anything else yields nil.
func Decode(raw string) Doc {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var d Doc
	if err := dec.Decode(&d); err != nil {
		return nil
	}
	return d
}

// String returns the trimmed scalar value of key. Numbers are rendered
// verbatim; objects, arrays, booleans and nulls read as "".
func (d Doc) String(key string) string {
	return scalar(d[key])
}

// First returns the first key with a non-empty scalar value.
func (d Doc) First(keys ...string) string {
	for _, k := range keys {
		if v := d.String(k); v != "" {
			return v
		}
	}
	return ""
}

// Strings returns the scalar elements of an array value.
func (d Doc) Strings(key string) []string {
	arr, ok := d[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, scalar(v))
	}
	return out
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}
