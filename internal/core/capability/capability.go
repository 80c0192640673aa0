// Package capability enumerates the optional columns the engine knows how to
// use. Deployments differ in which of these exist; the engine asks a Set
// instead of probing the database ad hoc.
package capability

import "sort"

// Table names the engine reads or writes.
const (
	TableShipments       = "shipments"
	TableShipmentDetails = "shipment_details"
	TableImportRecords   = "import_records"
)

// Field is one optional (table, column) pair.
type Field struct {
	Table  string
	Column string
}

func (f Field) String() string {
	return f.Table + "." + f.Column
}

// Shipment columns.
var (
	ShipmentIsFinished   = Field{TableShipments, "is_finished"}
	ShipmentDeliveryDate = Field{TableShipments, "delivery_date"}
	ShipmentDeliveryTime = Field{TableShipments, "delivery_time"}
	ShipmentDeliveredAt  = Field{TableShipments, "delivered_at"}
)

// Shipment detail columns.
var (
	DetailNotes        = Field{TableShipmentDetails, "notes"}
	DetailTicketNumber = Field{TableShipmentDetails, "ticket_number"}
	DetailNetLbs       = Field{TableShipmentDetails, "net_lbs"}
	DetailTotalLbs     = Field{TableShipmentDetails, "total_lbs"}
	DetailWeightLbs    = Field{TableShipmentDetails, "weight_lbs"}
	DetailTons         = Field{TableShipmentDetails, "tons"}
	DetailBOLPath      = Field{TableShipmentDetails, "bol_path"}
	DetailBOLType      = Field{TableShipmentDetails, "bol_type"}
	DetailReviewDate   = Field{TableShipmentDetails, "review_date"}
)

// Import record columns: tracking fields plus optional structured columns.
var (
	ImportIsProcessed      = Field{TableImportRecords, "is_processed"}
	ImportShipmentID       = Field{TableImportRecords, "shipment_id"}
	ImportShipmentDetailID = Field{TableImportRecords, "shipment_detail_id"}
	ImportProcessedAt      = Field{TableImportRecords, "processed_at"}
	ImportImagePath        = Field{TableImportRecords, "image_path"}
	ImportImageOriginal    = Field{TableImportRecords, "image_original"}
	ImportPayloadPath      = Field{TableImportRecords, "payload_path"}
	ImportPayloadJSON      = Field{TableImportRecords, "payload_json"}
	ImportPayloadOriginal  = Field{TableImportRecords, "payload_original"}
	ImportJobName          = Field{TableImportRecords, "jobname"}
	ImportTerminal         = Field{TableImportRecords, "terminal"}
	ImportStatus           = Field{TableImportRecords, "status"}
	ImportCarrier          = Field{TableImportRecords, "carrier"}
	ImportTruck            = Field{TableImportRecords, "truck"}
	ImportDeliveryTime     = Field{TableImportRecords, "delivery_time"}
	ImportShipmentNumber   = Field{TableImportRecords, "shipment_number"}
	ImportTicketNumber     = Field{TableImportRecords, "ticket_number"}
)

// All lists every optional field, in a stable order.
var All = []Field{
	ShipmentIsFinished, ShipmentDeliveryDate, ShipmentDeliveryTime, ShipmentDeliveredAt,
	DetailNotes, DetailTicketNumber, DetailNetLbs, DetailTotalLbs, DetailWeightLbs,
	DetailTons, DetailBOLPath, DetailBOLType, DetailReviewDate,
	ImportIsProcessed, ImportShipmentID, ImportShipmentDetailID, ImportProcessedAt,
	ImportImagePath, ImportImageOriginal, ImportPayloadPath, ImportPayloadJSON, ImportPayloadOriginal,
	ImportJobName, ImportTerminal, ImportStatus, ImportCarrier, ImportTruck,
	ImportDeliveryTime, ImportShipmentNumber, ImportTicketNumber,
}

// DeliveryFields are the shipment columns that mark a delivery, in write order.
var DeliveryFields = []Field{ShipmentDeliveryDate, ShipmentDeliveryTime, ShipmentDeliveredAt}

// WeightFields are the detail columns that mark a weighed (in transit) load.
var WeightFields = []Field{DetailNetLbs, DetailTotalLbs, DetailWeightLbs, DetailTons}

// TrackingFields are the import record columns the engine backfills.
var TrackingFields = []Field{ImportIsProcessed, ImportShipmentID, ImportShipmentDetailID, ImportProcessedAt}

// Set is an immutable snapshot of which tables and fields exist.
type Set struct {
	tables map[string]bool
	fields map[Field]bool
}

// NewSet builds a Set from the given tables and fields.
func NewSet(tables []string, fields []Field) Set {
	s := Set{tables: make(map[string]bool), fields: make(map[Field]bool)}
	for _, t := range tables {
		s.tables[t] = true
	}
	for _, f := range fields {
		s.fields[f] = true
		s.tables[f.Table] = true
	}
	return s
}

// Full returns a Set where every known table and field exists.
func Full() Set {
	return NewSet([]string{TableShipments, TableShipmentDetails, TableImportRecords}, All)
}

// Without returns a copy of s with the given fields removed.
func (s Set) Without(fields ...Field) Set {
	out := Set{tables: make(map[string]bool, len(s.tables)), fields: make(map[Field]bool, len(s.fields))}
	for t := range s.tables {
		out.tables[t] = true
	}
	for f := range s.fields {
		out.fields[f] = true
	}
	for _, f := range fields {
		delete(out.fields, f)
	}
	return out
}

// Has reports whether the field exists.
func (s Set) Has(f Field) bool {
	return s.fields[f]
}

// HasTable reports whether the table exists.
func (s Set) HasTable(table string) bool {
	return s.tables[table]
}

// Present filters fields down to the ones that exist, preserving order.
func (s Set) Present(fields []Field) []Field {
	var out []Field
	for _, f := range fields {
		if s.fields[f] {
			out = append(out, f)
		}
	}
	return out
}

// Missing lists known fields that do not exist, sorted.
func (s Set) Missing() []Field {
	var out []Field
	for _, f := range All {
		if !s.fields[f] {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
