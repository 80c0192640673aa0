package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/loadmatch/internal/core/capability"
	"github.com/example/loadmatch/internal/core/driver"
	"github.com/example/loadmatch/internal/core/route"
	"github.com/example/loadmatch/internal/core/shipment"
	"github.com/example/loadmatch/internal/core/stage"
	"github.com/example/loadmatch/internal/core/text"
	"github.com/example/loadmatch/internal/ctxutil"
	"github.com/example/loadmatch/internal/ports/primary"
	"github.com/example/loadmatch/internal/ports/secondary"
)

// WriteRequest is one stage application for one import record.
type WriteRequest struct {
	ImportID  int64
	Stage     stage.Stage
	Candidate *secondary.Candidate
	Identity  driver.Identity
	Journey   route.Journey
}

// WriteResult is what a stage application did. CurrentRank is set even when
// the write is rejected.
type WriteResult struct {
	Stage         stage.Stage
	CurrentRank   int
	ShipmentID    int64
	DetailID      int64
	AlreadyExists bool
	Updated       primary.UpdatedFields
	Superseded    []int64
}

// ShipmentWriter applies stage writes to the shipment tables. Apply must run
// inside a transaction with the group lock held.
type ShipmentWriter struct {
	caps      secondary.SchemaCapability
	shipments secondary.ShipmentRepository
	imports   secondary.ImportRepository
	logger    *zap.Logger
}

// NewShipmentWriter creates a new ShipmentWriter with injected dependencies.
func NewShipmentWriter(
	caps secondary.SchemaCapability,
	shipments secondary.ShipmentRepository,
	imports secondary.ImportRepository,
	logger *zap.Logger,
) *ShipmentWriter {
	return &ShipmentWriter{
		caps:      caps,
		shipments: shipments,
		imports:   imports,
		logger:    logger,
	}
}

// Apply checks the live rank and performs the write. Guard rejections are
// returned as *failure.Failure errors alongside a populated result.
func (w *ShipmentWriter) Apply(ctx context.Context, req WriteRequest) (*WriteResult, error) {
	res := &WriteResult{Stage: req.Stage}
	number := strings.TrimSpace(req.Candidate.ShipmentNumber)

	snap, err := w.shipments.Snapshot(ctx, req.Journey.JoinID, number)
	if err != nil {
		return res, err
	}
	res.CurrentRank = stage.InferRank(snap)

	// Stage 1 is idempotent per import record, whatever the group rank is now.
	if req.Stage == stage.AtTerminal {
		existing, err := w.shipments.FindByImport(ctx, req.ImportID)
		if err != nil {
			return res, err
		}
		if existing != nil {
			if err := w.imports.BackfillTracking(ctx, req.ImportID, existing.ShipmentID, existing.DetailID); err != nil {
				return res, err
			}
			res.AlreadyExists = true
			res.ShipmentID = existing.ShipmentID
			res.DetailID = existing.DetailID
			return res, nil
		}
	}

	guard := stage.CanAdvance(stage.TransitionContext{
		JoinID:         req.Journey.JoinID,
		ShipmentNumber: number,
		CurrentRank:    res.CurrentRank,
		Desired:        req.Stage,
	})
	if err := guard.Error(); err != nil {
		w.logger.Debug("stage rejected",
			zap.Int64("import_id", req.ImportID),
			zap.String("stage", string(req.Stage)),
			zap.Int("current_rank", res.CurrentRank),
			zap.String("reason", guard.Reason),
		)
		return res, err
	}

	if req.Stage == stage.AtTerminal {
		err = w.create(ctx, req, number, res)
	} else {
		err = w.update(ctx, req, number, res)
	}
	if err != nil {
		return res, err
	}

	if err := w.imports.UpdateTracking(ctx, req.ImportID, res.ShipmentID, res.DetailID); err != nil {
		return res, err
	}

	w.logger.Info("stage applied",
		zap.String("run_id", ctxutil.RunIDFromContext(ctx)),
		zap.Int64("import_id", req.ImportID),
		zap.String("stage", string(req.Stage)),
		zap.Int64("shipment_id", res.ShipmentID),
		zap.Int64("shipment_detail_id", res.DetailID),
	)
	return res, nil
}

func (w *ShipmentWriter) create(ctx context.Context, req WriteRequest, number string, res *WriteResult) error {
	c := req.Candidate
	group, err := w.shipments.Create(ctx,
		&secondary.ShipmentRecord{
			CarrierID:   req.Identity.CarrierID,
			RouteJoinID: req.Journey.JoinID,
			ContactID:   req.Identity.ContactID,
			VehicleID:   req.Identity.VehicleID,
			LoadDate:    c.LoadDate,
		},
		&secondary.ShipmentDetailRecord{
			ImportID:       req.ImportID,
			ShipmentNumber: number,
			TruckNumber:    c.TruckNumber,
			TrailerNumber:  c.TrailerNumber,
			Miles:          req.Journey.Miles,
			Notes:          shipment.BuildBoxesNote(c.Boxes),
		},
	)
	if err != nil {
		return err
	}
	res.ShipmentID = group.ShipmentID
	res.DetailID = group.DetailID
	return nil
}

func (w *ShipmentWriter) update(ctx context.Context, req WriteRequest, number string, res *WriteResult) error {
	group, err := w.shipments.FindGroup(ctx, req.Journey.JoinID, number)
	if err != nil {
		return err
	}
	guard := shipment.CanUpdateGroup(shipment.UpdateContext{
		Stage:          req.Stage,
		JoinID:         req.Journey.JoinID,
		ShipmentNumber: number,
		GroupExists:    group != nil,
	})
	if err := guard.Error(); err != nil {
		return err
	}
	res.ShipmentID = group.ShipmentID
	res.DetailID = group.DetailID

	policy, _ := stage.PolicyFor(req.Stage)
	c := req.Candidate
	var shipFields, detailFields []secondary.FieldValue

	if policy.MergeBoxes && w.caps.Has(capability.DetailNotes) {
		if note := shipment.BuildBoxesNote(c.Boxes); note != "" {
			cur := strings.TrimSpace(group.Notes)
			if merged := shipment.MergeBoxes(cur, note); merged != cur {
				detailFields = append(detailFields, secondary.FieldValue{Field: capability.DetailNotes, Value: merged})
			}
		}
	}

	if policy.TicketNumber && c.TicketNumber != "" && w.caps.Has(capability.DetailTicketNumber) {
		detailFields = append(detailFields, secondary.FieldValue{Field: capability.DetailTicketNumber, Value: c.TicketNumber})
	}

	if policy.Weights && c.NetLbs != nil {
		if w.caps.Has(capability.DetailNetLbs) {
			detailFields = append(detailFields, secondary.FieldValue{Field: capability.DetailNetLbs, Value: shipment.NetLbs(*c.NetLbs)})
		}
		if w.caps.Has(capability.DetailTons) {
			detailFields = append(detailFields, secondary.FieldValue{Field: capability.DetailTons, Value: shipment.Tons(*c.NetLbs)})
		}
	}

	if policy.Delivery {
		if at := text.FirstNonEmpty(c.DeliveredAt, c.DeliveryAt); at != "" {
			for _, f := range w.caps.Present(capability.DeliveryFields) {
				shipFields = append(shipFields, secondary.FieldValue{Field: f, Value: at})
			}
		}
	}
	if policy.MarkFinished && w.caps.Has(capability.ShipmentIsFinished) {
		shipFields = append(shipFields, secondary.FieldValue{Field: capability.ShipmentIsFinished, Value: 1})
	}

	bol := shipment.CanAttachBOL(shipment.BOLContext{
		Stage:         req.Stage,
		Path:          c.BOLPath,
		Type:          c.BOLType,
		ColumnsExist:  w.caps.Has(capability.DetailBOLPath) && w.caps.Has(capability.DetailBOLType),
		ShipmentKnown: number != "",
	})
	if bol.Allowed {
		detailFields = append(detailFields,
			secondary.FieldValue{Field: capability.DetailBOLPath, Value: c.BOLPath},
			secondary.FieldValue{Field: capability.DetailBOLType, Value: c.BOLType},
		)
		superseded, err := w.supersede(ctx, req.ImportID, secondary.SupersessionKey{
			ShipmentNumber: number,
			JobName:        c.JobName,
			Truck:          c.TruckNumber,
			Terminal:       c.Terminal,
		})
		if err != nil {
			return err
		}
		res.Superseded = superseded
	} else if c.BOLPath != "" {
		w.logger.Debug("bill of lading skipped", zap.Int64("import_id", req.ImportID), zap.String("reason", bol.Reason))
	}

	if policy.ReviewDate && c.ReviewDate != "" && w.caps.Has(capability.DetailReviewDate) {
		detailFields = append(detailFields, secondary.FieldValue{Field: capability.DetailReviewDate, Value: c.ReviewDate})
	}

	if err := w.shipments.UpdateShipment(ctx, group.ShipmentID, shipFields); err != nil {
		return err
	}
	if err := w.shipments.UpdateDetail(ctx, group.DetailID, detailFields); err != nil {
		return err
	}
	res.Updated = primary.UpdatedFields{Shipment: columns(shipFields), Detail: columns(detailFields)}
	return nil
}

// supersede marks the attachments of every other matching import record and
// returns the ids it changed. The acting record is never touched.
func (w *ShipmentWriter) supersede(ctx context.Context, actingID int64, key secondary.SupersessionKey) ([]int64, error) {
	others, err := w.imports.FindSupersedable(ctx, key, actingID)
	if err != nil {
		return nil, err
	}
	var changed []int64
	for _, rec := range others {
		update := &secondary.AttachmentRecord{ImportID: rec.ImportID}
		if p, ok := shipment.Supersede(rec.ImagePath); ok {
			update.ImagePath = p
		}
		if p, ok := shipment.Supersede(rec.ImageOriginal); ok {
			update.ImageOriginal = p
		}
		if update.ImagePath == "" && update.ImageOriginal == "" {
			continue
		}
		if err := w.imports.UpdateAttachments(ctx, update); err != nil {
			return nil, fmt.Errorf("failed to supersede attachments of import %d: %w", rec.ImportID, err)
		}
		changed = append(changed, rec.ImportID)
	}
	return changed, nil
}

func columns(fields []secondary.FieldValue) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Field.Column
	}
	return out
}
