package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/example/loadmatch/internal/ports/primary"
)

// IntakeAdapter reads vendor drop files and hands them to the IntakeService.
type IntakeAdapter struct {
	service primary.IntakeService
	out     io.Writer
	logger  *zap.Logger
}

// NewIntakeAdapter creates a new IntakeAdapter with the given service.
func NewIntakeAdapter(service primary.IntakeService, out io.Writer, logger *zap.Logger) *IntakeAdapter {
	return &IntakeAdapter{
		service: service,
		out:     out,
		logger:  logger,
	}
}

// Import ingests each file in order and stops at the first failure.
func (a *IntakeAdapter) Import(ctx context.Context, paths []string) error {
	total := 0
	for _, path := range paths {
		ids, err := a.ingest(ctx, path)
		if err != nil {
			return err
		}
		total += len(ids)
		fmt.Fprintf(a.out, "%s %s: %d record(s) %s\n", okMark, path, len(ids), joinIDs(ids))
	}
	if len(paths) > 1 {
		fmt.Fprintf(a.out, "Imported %d record(s) from %d file(s)\n", total, len(paths))
	}
	return nil
}

// HandleDrop ingests one file seen by the inbox watcher. Failures are
// reported and logged so the watcher keeps running.
func (a *IntakeAdapter) HandleDrop(ctx context.Context, path string) {
	ids, err := a.ingest(ctx, path)
	if err != nil {
		a.logger.Warn("drop rejected", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(a.out, "%s %s: %v\n", failMark, path, err)
		return
	}
	fmt.Fprintf(a.out, "%s %s: %d record(s) %s\n", okMark, path, len(ids), joinIDs(ids))
}

func (a *IntakeAdapter) ingest(ctx context.Context, path string) ([]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	resp, err := a.service.Ingest(ctx, primary.IngestRequest{Source: path, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	return resp.ImportIDs, nil
}
