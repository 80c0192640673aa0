// Package primary defines the primary ports (driving adapters) for the application.
package primary

import (
	"context"

	"github.com/example/loadmatch/internal/core/driver"
	"github.com/example/loadmatch/internal/core/failure"
	"github.com/example/loadmatch/internal/core/route"
	"github.com/example/loadmatch/internal/core/stage"
)

// InboundService defines the primary port for import reconciliation.
// Recoverable domain failures are reported inside results; the error return
// is reserved for infrastructure problems.
type InboundService interface {
	// ListQueue evaluates import records for review without writing shipments.
	ListQueue(ctx context.Context, req QueueRequest) (*QueueResponse, error)

	// Evaluate runs matching for a single import record.
	Evaluate(ctx context.Context, importID int64) (*Evaluation, error)

	// ProcessImport applies the stage declared by one import record.
	ProcessImport(ctx context.Context, importID int64) (*ProcessResult, error)

	// ProcessBatch groups and replays many import records in stage order.
	ProcessBatch(ctx context.Context, importIDs []int64) (*BatchResult, error)
}

// Queue filters.
const (
	OnlyUnprocessed = "unprocessed"
	OnlyProcessed   = "processed"
	OnlyAll         = "all"
)

// QueueRequest contains parameters for listing the review queue.
type QueueRequest struct {
	Only  string // unprocessed (default), processed, all
	Query string // free text over parsed fields and payload
	Match string // GREEN, YELLOW, RED or empty
	Limit int
}

// QueueResponse contains the evaluated queue.
type QueueResponse struct {
	Items   []*QueueItem `json:"items"`
	Scanned int          `json:"scanned"`
	Limit   int          `json:"limit"`
}

// QueueItem is one evaluated import record in the queue.
type QueueItem struct {
	*Evaluation
	CreatedAt  string  `json:"created_at,omitempty"`
	Processed  bool    `json:"processed"`
	ShipmentID int64   `json:"shipment_id,omitempty"`
	DetailID   int64   `json:"shipment_detail_id,omitempty"`
	Preview    Preview `json:"preview"`
}

// Preview shows what processing the record would write.
type Preview struct {
	BoxesNote  string   `json:"boxes_note,omitempty"`
	NetLbs     *int64   `json:"net_lbs,omitempty"`
	Tons       *float64 `json:"tons,omitempty"`
	Miles      *int64   `json:"miles,omitempty"`
	BOLPath    string   `json:"bol_path,omitempty"`
	BOLType    string   `json:"bol_type,omitempty"`
	DeliveryAt string   `json:"delivery_at,omitempty"`
}

// ParsedFields are the candidate fields extracted from an import record.
type ParsedFields struct {
	DriverName     string `json:"driver_name,omitempty"`
	TruckNumber    string `json:"truck_number,omitempty"`
	TrailerNumber  string `json:"trailer_number,omitempty"`
	Terminal       string `json:"terminal,omitempty"`
	JobName        string `json:"jobname,omitempty"`
	ShipmentNumber string `json:"shipment_number,omitempty"`
	TicketNumber   string `json:"ticket_number,omitempty"`
	StatusText     string `json:"status,omitempty"`
	ReconcileFlag  string `json:"reconcile_status,omitempty"`
}

// Readiness explains whether a record can be processed and why not.
type Readiness struct {
	CanProcess bool         `json:"can_process"`
	Code       failure.Code `json:"code,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}

// Evaluation is the match outcome for one import record.
type Evaluation struct {
	ImportID    int64             `json:"import_id"`
	Parsed      ParsedFields      `json:"parsed"`
	Driver      driver.Result     `json:"driver"`
	Confidence  driver.Confidence `json:"confidence"`
	PullPoint   route.Match       `json:"pull_point"`
	PadLocation route.Match       `json:"pad_location"`
	Journey     route.Journey     `json:"journey"`
	Stage       stage.Stage       `json:"stage"`
	DesiredRank int               `json:"desired_rank"`
	CurrentRank int               `json:"current_rank"`
	Readiness   Readiness         `json:"readiness"`
}

// UpdatedFields lists the columns a stage write touched.
type UpdatedFields struct {
	Shipment []string `json:"shipment,omitempty"`
	Detail   []string `json:"detail,omitempty"`
}

// ProcessResult is the outcome of one strict stage application.
type ProcessResult struct {
	OK            bool          `json:"ok"`
	ImportID      int64         `json:"import_id"`
	Stage         stage.Stage   `json:"stage,omitempty"`
	Code          failure.Code  `json:"code,omitempty"`
	Error         string        `json:"error,omitempty"`
	CurrentRank   int           `json:"current_rank"`
	DesiredRank   int           `json:"desired_rank"`
	ShipmentID    int64         `json:"shipment_id,omitempty"`
	DetailID      int64         `json:"shipment_detail_id,omitempty"`
	AlreadyExists bool          `json:"already_exists,omitempty"`
	Updated       UpdatedFields `json:"updated,omitempty"`
	Superseded    []int64       `json:"superseded_import_ids,omitempty"`
}

// BatchResult is the outcome of a batch replay.
type BatchResult struct {
	RunID      string        `json:"run_id"`
	OK         bool          `json:"ok"`
	Error      string        `json:"error,omitempty"`
	Code       failure.Code  `json:"code,omitempty"`
	Groups     int           `json:"groups"`
	OKGroups   int           `json:"ok_groups"`
	FailGroups int           `json:"fail_groups"`
	Results    []*GroupTrace `json:"results"`
}

// GroupTrace reports the replay of one group, or one orphan record.
type GroupTrace struct {
	GroupKey       string       `json:"group_key,omitempty"`
	JoinID         int64        `json:"join_id,omitempty"`
	ShipmentNumber string       `json:"shipment_number,omitempty"`
	CurrentRank    int          `json:"current_rank"`
	SelectedRanks  []int        `json:"selected_ranks,omitempty"`
	OK             bool         `json:"ok"`
	Steps          []*StepTrace `json:"steps,omitempty"`
	Orphan         *OrphanTrace `json:"orphan,omitempty"`
}

// StepTrace reports one stage step inside a group.
type StepTrace struct {
	Rank     int            `json:"rank"`
	Stage    stage.Stage    `json:"stage"`
	ImportID int64          `json:"import_id_used"`
	OK       bool           `json:"ok"`
	Result   *ProcessResult `json:"result"`
}

// OrphanTrace reports a record that could not be grouped.
type OrphanTrace struct {
	ImportID int64        `json:"import_id"`
	Code     failure.Code `json:"code"`
	Error    string       `json:"error"`
}
