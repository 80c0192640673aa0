package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/example/loadmatch/internal/core/failure"
	"github.com/example/loadmatch/internal/ports/primary"
	"github.com/example/loadmatch/internal/ports/secondary"
)

// IntakeServiceImpl implements the IntakeService interface.
type IntakeServiceImpl struct {
	imports    secondary.ImportRepository
	normalizer secondary.ImportNormalizer
	tx         secondary.Transactor
	logger     *zap.Logger
}

// NewIntakeService creates a new IntakeService with injected dependencies.
func NewIntakeService(
	imports secondary.ImportRepository,
	normalizer secondary.ImportNormalizer,
	tx secondary.Transactor,
	logger *zap.Logger,
) *IntakeServiceImpl {
	return &IntakeServiceImpl{
		imports:    imports,
		normalizer: normalizer,
		tx:         tx,
		logger:     logger,
	}
}

// Ingest stores the records contained in one vendor drop. All records of
// the drop are created in one transaction.
func (s *IntakeServiceImpl) Ingest(ctx context.Context, req primary.IngestRequest) (*primary.IngestResponse, error) {
	raw := bytes.TrimSpace(req.Data)
	if len(raw) == 0 {
		return nil, failure.New(failure.InvalidRequest, "%s is empty", sourceName(req.Source))
	}

	records, err := splitDrop(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sourceName(req.Source), err)
	}

	resp := &primary.IngestResponse{}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, rec := range records {
			rec.PayloadPath = dropDir(req.Source)
			s.fillColumns(rec)
			id, err := s.imports.Create(ctx, rec)
			if err != nil {
				return err
			}
			resp.ImportIDs = append(resp.ImportIDs, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", sourceName(req.Source), err)
	}

	s.logger.Info("vendor drop ingested",
		zap.String("source", req.Source),
		zap.Int("records", len(resp.ImportIDs)),
	)
	return resp, nil
}

// splitDrop turns a drop into unsaved records: one per object for JSON, a
// single free-text record otherwise.
func splitDrop(raw []byte) ([]*secondary.ImportRecord, error) {
	switch raw[0] {
	case '{':
		if !json.Valid(raw) {
			break
		}
		return []*secondary.ImportRecord{{PayloadJSON: string(raw)}}, nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			break
		}
		records := make([]*secondary.ImportRecord, 0, len(elems))
		for i, elem := range elems {
			elem = bytes.TrimSpace(elem)
			if len(elem) == 0 || elem[0] != '{' {
				return nil, fmt.Errorf("element %d is not a JSON object", i)
			}
			records = append(records, &secondary.ImportRecord{PayloadJSON: string(elem)})
		}
		return records, nil
	}
	return []*secondary.ImportRecord{{PayloadOriginal: string(raw)}}, nil
}

// fillColumns copies the normalized keys into the structured columns so
// lookups by column see them.
func (s *IntakeServiceImpl) fillColumns(rec *secondary.ImportRecord) {
	c := s.normalizer.Normalize(rec)
	rec.ShipmentNumber = c.ShipmentNumber
	rec.TicketNumber = c.TicketNumber
	rec.JobName = c.JobName
	rec.Terminal = c.Terminal
	rec.Status = c.StatusText
	rec.Truck = c.TruckNumber
	if rec.ImagePath == "" {
		rec.ImagePath = c.BOLPath
	}
}

// dropDir is the directory attachments named in a payload are relative to.
func dropDir(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	return filepath.Dir(source)
}

func sourceName(source string) string {
	if strings.TrimSpace(source) == "" {
		return "input"
	}
	return source
}
