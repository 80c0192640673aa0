package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/loadmatch/internal/core/capability"
	"github.com/example/loadmatch/internal/core/stage"
)

func TestShipmentWriter_SkipsMissingColumns(t *testing.T) {
	f := newFixtureWithout(t, InboundOptions{},
		capability.DetailBOLPath, capability.DetailTons, capability.ShipmentIsFinished)

	a := f.ingest(t, vendor(t, "At Terminal", map[string]any{"pod_images": []string{"ticket-a.jpg"}}))
	b := f.ingest(t, vendor(t, "In Transit", map[string]any{"total_weight": "42780", "ticket_no": "T-55"}))
	c := f.ingest(t, vendor(t, "Delivered", map[string]any{"datetime_delivered": "2025-01-16 14:30:00"}))
	d := f.ingest(t, vendor(t, "Delivered", map[string]any{
		"reconcile_status": "CONFIRMED",
		"review_date":      "2025-01-17 09:00:00",
		"pod_images":       []string{"bol-d.pdf"},
	}))

	resA := f.process(t, a)
	require.True(t, resA.OK, resA.Error)

	resB := f.process(t, b)
	require.True(t, resB.OK, resB.Error)
	assert.Equal(t, 1, resB.CurrentRank)
	assert.ElementsMatch(t, []string{"ticket_number", "net_lbs"}, resB.Updated.Detail)
	assert.Empty(t, f.text(t, "SELECT tons FROM shipment_details WHERE id = ?", resA.DetailID))

	resC := f.process(t, c)
	require.True(t, resC.OK, resC.Error)
	assert.Equal(t, stage.DeliveredPending, resC.Stage)
	assert.Equal(t, 2, resC.CurrentRank)
	assert.Equal(t, []string{"delivery_date"}, resC.Updated.Shipment)
	assert.Equal(t, 0, f.count(t, "SELECT is_finished FROM shipments WHERE id = ?", resA.ShipmentID))

	resD := f.process(t, d)
	require.True(t, resD.OK, resD.Error)
	assert.Equal(t, stage.DeliveredConfirmed, resD.Stage)
	assert.Equal(t, 3, resD.CurrentRank)
	assert.Contains(t, resD.Updated.Detail, "review_date")
	assert.NotContains(t, resD.Updated.Detail, "bol_path")
	assert.NotContains(t, resD.Updated.Shipment, "is_finished")
	assert.Empty(t, resD.Superseded)
	assert.Empty(t, f.text(t, "SELECT bol_path FROM shipment_details WHERE id = ?", resA.DetailID))
	assert.Empty(t, f.text(t, "SELECT bol_type FROM shipment_details WHERE id = ?", resA.DetailID))
	assert.Equal(t, "/inbox/ticket-a.jpg", f.text(t, "SELECT image_path FROM import_records WHERE id = ?", a))
	assert.Equal(t, "/inbox/bol-d.pdf", f.text(t, "SELECT image_path FROM import_records WHERE id = ?", d))
}
