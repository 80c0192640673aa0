package primary

import "context"

// IntakeService defines the primary port for storing raw vendor drops as
// import records.
type IntakeService interface {
	// Ingest stores the records contained in data. A JSON object yields one
	// record, a JSON array one record per element, anything else one record
	// holding the raw text.
	Ingest(ctx context.Context, req IngestRequest) (*IngestResponse, error)
}

// IngestRequest carries one vendor drop.
type IngestRequest struct {
	Source string // file path of the drop; its directory is stored as payload_path
	Data   []byte
}

// IngestResponse lists the created import record ids.
type IngestResponse struct {
	ImportIDs []int64
}
