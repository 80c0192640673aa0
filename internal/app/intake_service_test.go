package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/loadmatch/internal/core/failure"
	"github.com/example/loadmatch/internal/ports/primary"
)

func TestIntakeService_Ingest(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCount int
		wantJSON  bool
	}{
		{"single object", `{"shipment_number": "741", "status": "At Terminal"}`, 1, true},
		{"array of objects", `[{"shipment_number": "1"}, {"shipment_number": "2"}, {"shipment_number": "3"}]`, 3, true},
		{"free text", "Prairie Haulers\nJohn Smith\nTruck #: 2512", 1, false},
		{"broken json kept as text", `{"shipment_number":`, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, InboundOptions{})

			resp, err := f.intake.Ingest(context.Background(), primary.IngestRequest{
				Source: "/drops/2025-01-16/batch.json",
				Data:   []byte("  " + tt.data + "\n"),
			})
			require.NoError(t, err)
			require.Len(t, resp.ImportIDs, tt.wantCount)

			for _, id := range resp.ImportIDs {
				rec, err := f.imports.GetByID(context.Background(), id)
				require.NoError(t, err)
				assert.Equal(t, "/drops/2025-01-16", rec.PayloadPath)
				if tt.wantJSON {
					assert.NotEmpty(t, rec.PayloadJSON)
					assert.Empty(t, rec.PayloadOriginal)
				} else {
					assert.Empty(t, rec.PayloadJSON)
					assert.Equal(t, tt.data, rec.PayloadOriginal)
				}
			}
		})
	}
}

func TestIntakeService_FillsColumns(t *testing.T) {
	f := newFixture(t, InboundOptions{})

	id := f.ingest(t, `{
		"loadnumber": " 741 ",
		"ticket_no": "T-9",
		"jobname": "Site 9",
		"terminal": "Yard A",
		"state": "In Transit",
		"truck_trailer": "2512/88",
		"pod_images": ["scan.PNG"]
	}`)

	rec, err := f.imports.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "741", rec.ShipmentNumber)
	assert.Equal(t, "T-9", rec.TicketNumber)
	assert.Equal(t, "Site 9", rec.JobName)
	assert.Equal(t, "Yard A", rec.Terminal)
	assert.Equal(t, "In Transit", rec.Status)
	assert.Equal(t, "2512", rec.Truck)
	assert.Equal(t, "/inbox/scan.PNG", rec.ImagePath)
	assert.False(t, rec.IsProcessed)

	// The trailer survives the round trip through the structured truck column.
	c := f.inbound.engine.Candidate(rec)
	assert.Equal(t, "2512", c.TruckNumber)
	assert.Equal(t, "88", c.TrailerNumber)
}

func TestIntakeService_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantCode failure.Code
	}{
		{"empty", "   \n", failure.InvalidRequest},
		{"array with a scalar", `[{"a": 1}, 7]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, InboundOptions{})

			_, err := f.intake.Ingest(context.Background(), primary.IngestRequest{Source: "x.json", Data: []byte(tt.data)})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.CodeOf(err))
			assert.Equal(t, 0, f.count(t, "SELECT COUNT(*) FROM import_records"))
		})
	}
}
