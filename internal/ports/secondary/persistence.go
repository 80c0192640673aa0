// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"

	"github.com/example/loadmatch/internal/core/capability"
	"github.com/example/loadmatch/internal/core/stage"
)

// ErrNotFound is wrapped by repositories when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// Transactor runs fn inside one database transaction. Repository calls made
// with the ctx passed to fn join that transaction. fn's error rolls it back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SchemaCapability answers whether optional tables and columns exist.
// Implementations are snapshotted once; answers never change at runtime.
type SchemaCapability interface {
	Has(f capability.Field) bool
	HasTable(table string) bool
	// Present filters fields down to the existing ones, preserving order.
	Present(fields []capability.Field) []capability.Field
}

// ImportNormalizer turns a raw import record into a structured candidate.
// Normalization never fails; unparseable payloads yield empty fields.
type ImportNormalizer interface {
	Normalize(rec *ImportRecord) *Candidate
}

// ImportRecord is one ingested vendor event as stored in persistence.
// Zero values stand for NULL columns.
type ImportRecord struct {
	ID               int64
	PayloadJSON      string
	PayloadOriginal  string
	PayloadPath      string
	ImagePath        string
	ImageOriginal    string
	JobName          string
	Terminal         string
	Status           string
	Carrier          string
	Truck            string
	DeliveryTime     string
	ShipmentNumber   string
	TicketNumber     string
	IsProcessed      bool
	ShipmentID       int64
	ShipmentDetailID int64
	ProcessedAt      string
	CreatedAt        string
}

// Candidate is the structured view of an import record used for matching.
type Candidate struct {
	ImportID       int64    `json:"import_id"`
	DriverName     string   `json:"driver_name,omitempty"`
	TruckNumber    string   `json:"truck_number,omitempty"`
	TrailerNumber  string   `json:"trailer_number,omitempty"`
	Terminal       string   `json:"terminal,omitempty"`
	JobName        string   `json:"jobname,omitempty"`
	ShipmentNumber string   `json:"shipment_number,omitempty"`
	TicketNumber   string   `json:"ticket_number,omitempty"`
	StatusText     string   `json:"status,omitempty"`
	ReconcileFlag  string   `json:"reconcile_status,omitempty"`
	LoadDate       string   `json:"load_date,omitempty"`
	DeliveredAt    string   `json:"delivered_at,omitempty"`
	DeliveryAt     string   `json:"delivery_at,omitempty"`
	ReviewDate     string   `json:"review_date,omitempty"`
	NetLbs         *float64 `json:"net_lbs,omitempty"`
	Boxes          []int    `json:"boxes,omitempty"`
	BOLPath        string   `json:"bol_path,omitempty"`
	BOLType        string   `json:"bol_type,omitempty"`
}

// ImportRepository defines the secondary port for import record persistence.
type ImportRepository interface {
	// Create stores a new import record and returns its id.
	Create(ctx context.Context, rec *ImportRecord) (int64, error)

	// GetByID retrieves an import record. Missing ids wrap ErrNotFound.
	GetByID(ctx context.Context, id int64) (*ImportRecord, error)

	// GetByIDs retrieves the records that exist among ids, ordered by id.
	GetByIDs(ctx context.Context, ids []int64) ([]*ImportRecord, error)

	// List retrieves records newest first.
	List(ctx context.Context, filters ImportFilters) ([]*ImportRecord, error)

	// UpdateTracking overwrites the tracking fields of a record.
	UpdateTracking(ctx context.Context, importID, shipmentID, detailID int64) error

	// BackfillTracking fills only the tracking fields that are still unset.
	BackfillTracking(ctx context.Context, importID, shipmentID, detailID int64) error

	// FindSupersedable returns the attachment references of every other
	// record matching the key, excluding excludeID.
	FindSupersedable(ctx context.Context, key SupersessionKey, excludeID int64) ([]*AttachmentRecord, error)

	// UpdateAttachments writes new attachment references for one record.
	UpdateAttachments(ctx context.Context, rec *AttachmentRecord) error
}

// ImportFilters contains filter options for listing import records.
type ImportFilters struct {
	Limit int
}

// SupersessionKey scopes which import records share an attachment.
// ShipmentNumber is required; the other keys narrow when non-empty.
type SupersessionKey struct {
	ShipmentNumber string
	JobName        string
	Truck          string
	Terminal       string
}

// AttachmentRecord is the attachment reference pair of one import record.
type AttachmentRecord struct {
	ImportID      int64
	ImagePath     string
	ImageOriginal string
}

// ContactRecord is a person who may drive.
type ContactRecord struct {
	ID        int64
	FirstName string
	LastName  string
}

// DriverRecord is a driver identity row.
type DriverRecord struct {
	ID        int64
	ContactID int64
	VehicleID int64
	CarrierID int64
}

// VehicleRecord is a truck.
type VehicleRecord struct {
	ID     int64
	Number string
	Name   string
}

// DirectoryRepository defines the secondary port for driver identity lookups.
// Nothing here creates rows. Single-row lookups return nil when absent.
type DirectoryRepository interface {
	FindContactByFullName(ctx context.Context, normFull string) (*ContactRecord, error)
	FindContactsLike(ctx context.Context, normFull string, limit int) ([]*ContactRecord, error)
	FindContactsByLastNameSoundex(ctx context.Context, lastName string, limit int) ([]*ContactRecord, error)
	FindContactsByFirstNameSoundex(ctx context.Context, firstName string, limit int) ([]*ContactRecord, error)
	FindContactsByFirstNamePrefix(ctx context.Context, prefix string, limit int) ([]*ContactRecord, error)
	GetDriverByContact(ctx context.Context, contactID int64) (*DriverRecord, error)
	FindVehicleByNumber(ctx context.Context, truckNorm string) (*VehicleRecord, error)
	GetDriverByVehicle(ctx context.Context, vehicleID int64) (*DriverRecord, error)
}

// LocationRecord is a pull point or pad location row.
type LocationRecord struct {
	ID   int64
	Name string
}

// JoinRecord is a route leg row.
type JoinRecord struct {
	ID    int64
	Miles *int64
}

// LocationRepository defines the secondary port for route leg lookups.
type LocationRepository interface {
	ListPullPoints(ctx context.Context) ([]*LocationRecord, error)
	ListPadLocations(ctx context.Context) ([]*LocationRecord, error)
	// FindJoin returns the active join for the exact pair, or nil.
	FindJoin(ctx context.Context, pullPointID, padLocationID int64) (*JoinRecord, error)
}

// ShipmentRecord is a shipment row to create.
type ShipmentRecord struct {
	CarrierID   int64
	RouteJoinID int64
	ContactID   int64
	VehicleID   int64
	LoadDate    string
}

// ShipmentDetailRecord is a shipment detail row to create.
type ShipmentDetailRecord struct {
	ShipmentID     int64
	ImportID       int64
	ShipmentNumber string
	TruckNumber    string
	TrailerNumber  string
	Miles          *int64
	Notes          string
}

// GroupRecord identifies the rows of one shipment group.
type GroupRecord struct {
	ShipmentID int64
	DetailID   int64
	Notes      string
}

// FieldValue is one capability-gated column write.
type FieldValue struct {
	Field capability.Field
	Value any
}

// ShipmentRepository defines the secondary port for shipment persistence.
type ShipmentRepository interface {
	// FindByImport returns the group back-referencing importID, or nil.
	FindByImport(ctx context.Context, importID int64) (*GroupRecord, error)

	// FindByImports maps each back-referenced import id to its group.
	FindByImports(ctx context.Context, importIDs []int64) (map[int64]*GroupRecord, error)

	// FindGroup returns the most recent active group for the pair, or nil.
	FindGroup(ctx context.Context, joinID int64, shipmentNumber string) (*GroupRecord, error)

	// Snapshot reads the live state used to infer the group's rank.
	Snapshot(ctx context.Context, joinID int64, shipmentNumber string) (stage.GroupSnapshot, error)

	// Create inserts a shipment and its detail and returns both ids.
	Create(ctx context.Context, shipment *ShipmentRecord, detail *ShipmentDetailRecord) (*GroupRecord, error)

	// UpdateShipment writes the given fields on a shipment row.
	UpdateShipment(ctx context.Context, shipmentID int64, fields []FieldValue) error

	// UpdateDetail writes the given fields on a shipment detail row.
	UpdateDetail(ctx context.Context, detailID int64, fields []FieldValue) error
}
