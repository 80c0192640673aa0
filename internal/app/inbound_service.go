package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/loadmatch/internal/core/batch"
	"github.com/example/loadmatch/internal/core/driver"
	"github.com/example/loadmatch/internal/core/failure"
	"github.com/example/loadmatch/internal/core/shipment"
	"github.com/example/loadmatch/internal/core/stage"
	"github.com/example/loadmatch/internal/core/text"
	"github.com/example/loadmatch/internal/ctxutil"
	"github.com/example/loadmatch/internal/ports/primary"
	"github.com/example/loadmatch/internal/ports/secondary"
)

// Queue limits applied when options leave them unset.
const (
	DefaultQueueLimit = 200
	MaxQueueLimit     = 500
)

// InboundOptions tunes listing and batch processing.
type InboundOptions struct {
	QueueDefaultLimit int
	QueueMaxLimit     int
	BatchCap          int
	Workers           int
}

func (o InboundOptions) withDefaults() InboundOptions {
	if o.QueueMaxLimit <= 0 {
		o.QueueMaxLimit = MaxQueueLimit
	}
	if o.QueueDefaultLimit <= 0 || o.QueueDefaultLimit > o.QueueMaxLimit {
		o.QueueDefaultLimit = min(DefaultQueueLimit, o.QueueMaxLimit)
	}
	if o.BatchCap <= 0 || o.BatchCap > batch.DefaultCap {
		o.BatchCap = batch.DefaultCap
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}

// InboundServiceImpl implements the InboundService interface.
type InboundServiceImpl struct {
	imports   secondary.ImportRepository
	shipments secondary.ShipmentRepository
	tx        secondary.Transactor
	engine    *MatchEngine
	writer    *ShipmentWriter
	locker    *GroupLocker
	opts      InboundOptions
	logger    *zap.Logger
	newRunID  func() string
}

// NewInboundService creates a new InboundService with injected dependencies.
func NewInboundService(
	imports secondary.ImportRepository,
	shipments secondary.ShipmentRepository,
	tx secondary.Transactor,
	engine *MatchEngine,
	writer *ShipmentWriter,
	locker *GroupLocker,
	opts InboundOptions,
	logger *zap.Logger,
) *InboundServiceImpl {
	return &InboundServiceImpl{
		imports:   imports,
		shipments: shipments,
		tx:        tx,
		engine:    engine,
		writer:    writer,
		locker:    locker,
		opts:      opts.withDefaults(),
		logger:    logger,
		newRunID:  uuid.NewString,
	}
}

// ListQueue evaluates the newest import records for review.
func (s *InboundServiceImpl) ListQueue(ctx context.Context, req primary.QueueRequest) (*primary.QueueResponse, error) {
	only := strings.ToLower(strings.TrimSpace(req.Only))
	switch only {
	case "":
		only = primary.OnlyUnprocessed
	case primary.OnlyUnprocessed, primary.OnlyProcessed, primary.OnlyAll:
	default:
		return nil, failure.New(failure.InvalidRequest, "only must be one of %s, %s, %s", primary.OnlyUnprocessed, primary.OnlyProcessed, primary.OnlyAll)
	}

	match := driver.Confidence(strings.ToUpper(strings.TrimSpace(req.Match)))
	switch match {
	case "", driver.Green, driver.Yellow, driver.Red:
	default:
		return nil, failure.New(failure.InvalidRequest, "match must be GREEN, YELLOW or RED")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.opts.QueueDefaultLimit
	}
	limit = min(limit, s.opts.QueueMaxLimit)

	records, err := s.imports.List(ctx, secondary.ImportFilters{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list import records: %w", err)
	}

	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	backrefs, err := s.shipments.FindByImports(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find processed imports: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	resp := &primary.QueueResponse{Items: []*primary.QueueItem{}, Scanned: len(records), Limit: limit}

	for _, rec := range records {
		group := backrefs[rec.ID]
		processed := group != nil || rec.IsProcessed || rec.ShipmentID > 0

		if group != nil && (!rec.IsProcessed || rec.ShipmentID == 0 || rec.ShipmentDetailID == 0) {
			if err := s.imports.BackfillTracking(ctx, rec.ID, group.ShipmentID, group.DetailID); err != nil {
				s.logger.Warn("tracking backfill failed", zap.Int64("import_id", rec.ID), zap.Error(err))
			}
		}

		if (only == primary.OnlyUnprocessed && processed) || (only == primary.OnlyProcessed && !processed) {
			continue
		}

		cand := s.engine.Candidate(rec)
		if query != "" && !matchesQuery(query, rec, cand) {
			continue
		}

		ev, err := s.engine.Evaluate(ctx, cand)
		if err != nil {
			return nil, err
		}
		if match != "" && ev.Confidence != match {
			continue
		}
		if ev.Readiness, err = s.readiness(ctx, ev, group != nil); err != nil {
			return nil, err
		}

		item := &primary.QueueItem{
			Evaluation: ev,
			CreatedAt:  rec.CreatedAt,
			Processed:  processed,
			ShipmentID: rec.ShipmentID,
			DetailID:   rec.ShipmentDetailID,
			Preview:    preview(ev, cand),
		}
		if group != nil {
			item.ShipmentID, item.DetailID = group.ShipmentID, group.DetailID
		}
		resp.Items = append(resp.Items, item)
	}

	return resp, nil
}

func matchesQuery(query string, rec *secondary.ImportRecord, c *secondary.Candidate) bool {
	hay := strings.ToLower(strings.Join([]string{
		c.DriverName, c.TruckNumber, c.TrailerNumber, c.Terminal, c.JobName,
		c.ShipmentNumber, c.TicketNumber, c.StatusText,
		rec.PayloadJSON, rec.PayloadOriginal,
	}, "\n"))
	return strings.Contains(hay, query)
}

// preview shows the values processing would write. Weights are hidden for
// AT_TERMINAL since stage 1 never writes them.
func preview(ev *primary.Evaluation, c *secondary.Candidate) primary.Preview {
	p := primary.Preview{
		BoxesNote:  shipment.BuildBoxesNote(c.Boxes),
		Miles:      ev.Journey.Miles,
		DeliveryAt: text.FirstNonEmpty(c.DeliveredAt, c.DeliveryAt),
	}
	if c.BOLType != "" {
		p.BOLPath, p.BOLType = c.BOLPath, c.BOLType
	}
	if c.NetLbs != nil && ev.Stage != stage.AtTerminal {
		net := shipment.NetLbs(*c.NetLbs)
		tons := shipment.Tons(*c.NetLbs)
		p.NetLbs, p.Tons = &net, &tons
	}
	return p
}

// readiness fills CurrentRank from a live read and explains whether the
// record's stage could be applied right now.
func (s *InboundServiceImpl) readiness(ctx context.Context, ev *primary.Evaluation, processed bool) (primary.Readiness, error) {
	if f := precheck(ev); f != nil {
		return primary.Readiness{Code: f.Code, Reason: f.Message}, nil
	}

	snap, err := s.shipments.Snapshot(ctx, ev.Journey.JoinID, shipmentNumber(ev))
	if err != nil {
		return primary.Readiness{}, fmt.Errorf("failed to read group state: %w", err)
	}
	ev.CurrentRank = stage.InferRank(snap)

	if ev.Stage == stage.AtTerminal && processed {
		return primary.Readiness{CanProcess: true, Reason: "already processed; processing again returns the existing shipment"}, nil
	}
	guard := stage.CanAdvance(stage.TransitionContext{
		JoinID:         ev.Journey.JoinID,
		ShipmentNumber: shipmentNumber(ev),
		CurrentRank:    ev.CurrentRank,
		Desired:        ev.Stage,
	})
	if !guard.Allowed {
		return primary.Readiness{Code: guard.Code, Reason: guard.Reason}, nil
	}
	return primary.Readiness{CanProcess: true}, nil
}

// Evaluate runs matching and readiness for one import record.
func (s *InboundServiceImpl) Evaluate(ctx context.Context, importID int64) (*primary.Evaluation, error) {
	rec, err := s.imports.GetByID(ctx, importID)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return nil, failure.New(failure.NotFound, "import record %d not found", importID)
		}
		return nil, err
	}

	ev, err := s.engine.Evaluate(ctx, s.engine.Candidate(rec))
	if err != nil {
		return nil, err
	}
	group, err := s.shipments.FindByImport(ctx, importID)
	if err != nil {
		return nil, err
	}
	if ev.Readiness, err = s.readiness(ctx, ev, group != nil); err != nil {
		return nil, err
	}
	return ev, nil
}

// ProcessImport applies the stage declared by one import record.
func (s *InboundServiceImpl) ProcessImport(ctx context.Context, importID int64) (*primary.ProcessResult, error) {
	rec, err := s.imports.GetByID(ctx, importID)
	if err != nil {
		if errors.Is(err, secondary.ErrNotFound) {
			return &primary.ProcessResult{
				ImportID: importID,
				Code:     failure.NotFound,
				Error:    fmt.Sprintf("import record %d not found", importID),
			}, nil
		}
		return nil, err
	}

	cand := s.engine.Candidate(rec)
	ev, err := s.engine.Evaluate(ctx, cand)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, ev, cand, ev.Stage)
}

// process runs the locked check-then-write for one record at stage st.
func (s *InboundServiceImpl) process(ctx context.Context, ev *primary.Evaluation, cand *secondary.Candidate, st stage.Stage) (*primary.ProcessResult, error) {
	res := &primary.ProcessResult{
		ImportID:    ev.ImportID,
		Stage:       st,
		DesiredRank: stage.Rank(st),
	}
	if f := precheck(ev); f != nil {
		res.Code, res.Error = f.Code, f.Message
		return res, nil
	}

	unlock := s.locker.Lock(batch.GroupKey(ev.Journey.JoinID, shipmentNumber(ev)))
	defer unlock()

	var wr *WriteResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		wr, err = s.writer.Apply(ctx, WriteRequest{
			ImportID:  ev.ImportID,
			Stage:     st,
			Candidate: cand,
			Identity:  ev.Driver.Resolved.Identity,
			Journey:   ev.Journey,
		})
		return err
	})
	if wr != nil {
		res.CurrentRank = wr.CurrentRank
	}
	if err != nil {
		if f, ok := failure.As(err); ok {
			res.Code, res.Error = f.Code, f.Message
			return res, nil
		}
		return nil, fmt.Errorf("failed to apply %s to import %d: %w", st, ev.ImportID, err)
	}

	res.OK = true
	res.ShipmentID = wr.ShipmentID
	res.DetailID = wr.DetailID
	res.AlreadyExists = wr.AlreadyExists
	res.Updated = wr.Updated
	res.Superseded = wr.Superseded
	return res, nil
}

// prepared is an evaluated batch member.
type prepared struct {
	eval *primary.Evaluation
	cand *secondary.Candidate
}

// ProcessBatch groups records by (route join, shipment number) and replays
// each group in rank order. Independent groups never block each other.
func (s *InboundServiceImpl) ProcessBatch(ctx context.Context, importIDs []int64) (*primary.BatchResult, error) {
	result := &primary.BatchResult{RunID: s.newRunID(), Results: []*primary.GroupTrace{}}
	logger := s.logger.With(zap.String("run_id", result.RunID))
	ctx = ctxutil.WithRunID(ctx, result.RunID)

	ids := batch.NormalizeIDs(importIDs, s.opts.BatchCap)
	if len(ids) == 0 {
		result.Code = failure.InvalidRequest
		result.Error = "import ids must contain at least one valid id"
		return result, nil
	}

	records, err := s.imports.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load import records: %w", err)
	}
	byID := make(map[int64]*secondary.ImportRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	var (
		members []batch.Member
		orphans []*primary.GroupTrace
	)
	ready := make(map[int64]prepared, len(records))
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok {
			orphans = append(orphans, orphan(id, failure.New(failure.NotFound, "import record %d not found", id)))
			continue
		}
		cand := s.engine.Candidate(rec)
		ev, err := s.engine.Evaluate(ctx, cand)
		if err != nil {
			return nil, err
		}
		if f := groupCheck(ev); f != nil {
			orphans = append(orphans, orphan(id, f))
			continue
		}
		ready[id] = prepared{eval: ev, cand: cand}
		members = append(members, batch.Member{
			ImportID:       id,
			JoinID:         ev.Journey.JoinID,
			ShipmentNumber: shipmentNumber(ev),
			Rank:           ev.DesiredRank,
		})
	}

	plans := batch.Plan(members)
	traces := make([]*primary.GroupTrace, len(plans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, plan := range plans {
		g.Go(func() error {
			trace, err := s.replay(gctx, plan, ready)
			traces[i] = trace
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, t := range traces {
		if t.OK {
			result.OKGroups++
		} else {
			result.FailGroups++
		}
	}
	result.Groups = len(traces)
	result.FailGroups += len(orphans)
	result.Results = append(append(result.Results, traces...), orphans...)
	result.OK = result.FailGroups == 0

	logger.Info("batch processed",
		zap.Int("ids", len(ids)),
		zap.Int("groups", result.Groups),
		zap.Int("ok_groups", result.OKGroups),
		zap.Int("fail_groups", result.FailGroups),
	)
	return result, nil
}

// replay drives one group through its steps, stopping at the first failure.
func (s *InboundServiceImpl) replay(ctx context.Context, plan batch.Group, ready map[int64]prepared) (*primary.GroupTrace, error) {
	trace := &primary.GroupTrace{
		GroupKey:       plan.Key,
		JoinID:         plan.JoinID,
		ShipmentNumber: plan.ShipmentNumber,
		SelectedRanks:  plan.Ranks(),
		OK:             true,
	}

	snap, err := s.shipments.Snapshot(ctx, plan.JoinID, plan.ShipmentNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to read group %s: %w", plan.Key, err)
	}
	trace.CurrentRank = stage.InferRank(snap)

	for _, step := range plan.Steps {
		p := ready[step.ImportID]
		res, err := s.process(ctx, p.eval, p.cand, step.Stage)
		if err != nil {
			return nil, err
		}
		trace.Steps = append(trace.Steps, &primary.StepTrace{
			Rank:     step.Rank,
			Stage:    step.Stage,
			ImportID: step.ImportID,
			OK:       res.OK,
			Result:   res,
		})
		if !res.OK {
			trace.OK = false
			break
		}
	}
	return trace, nil
}

func orphan(importID int64, f *failure.Failure) *primary.GroupTrace {
	return &primary.GroupTrace{
		Orphan: &primary.OrphanTrace{ImportID: importID, Code: f.Code, Error: f.Message},
	}
}
