// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// matching and writes to services.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/loadmatch/internal/core/driver"
	"github.com/example/loadmatch/internal/core/route"
	"github.com/example/loadmatch/internal/ports/primary"
)

const rule = "────────────────────────────────────────────────────────────────────────────────"

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// InboundAdapter translates CLI operations to InboundService calls.
// With asJSON set every result is written as indented JSON instead of text.
type InboundAdapter struct {
	service primary.InboundService
	out     io.Writer
	asJSON  bool
}

// NewInboundAdapter creates a new InboundAdapter with the given service.
func NewInboundAdapter(service primary.InboundService, out io.Writer, asJSON bool) *InboundAdapter {
	return &InboundAdapter{
		service: service,
		out:     out,
		asJSON:  asJSON,
	}
}

func (a *InboundAdapter) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Queue prints the evaluated review queue.
func (a *InboundAdapter) Queue(ctx context.Context, req primary.QueueRequest) error {
	resp, err := a.service.ListQueue(ctx, req)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.writeJSON(resp)
	}

	if len(resp.Items) == 0 {
		fmt.Fprintf(a.out, "No import records found (scanned %d)\n", resp.Scanned)
		return nil
	}

	fmt.Fprintf(a.out, "\n%-7s %-7s %-20s %-5s %-12s %-20s %s\n", "ID", "MATCH", "STAGE", "RANK", "SHIPMENT", "DRIVER", "READY")
	fmt.Fprintln(a.out, rule)
	for _, item := range resp.Items {
		fmt.Fprintf(a.out, "%-7d %s %-20s %d→%d   %-12s %-20s %s\n",
			item.ImportID,
			confidenceLabel(item.Confidence),
			orDash(string(item.Stage)),
			item.CurrentRank, item.DesiredRank,
			orDash(truncate(item.Parsed.ShipmentNumber, 12)),
			orDash(truncate(item.Parsed.DriverName, 20)),
			readinessLabel(item.Processed, item.Readiness),
		)
	}
	fmt.Fprintf(a.out, "\n%d of %d scanned (limit %d)\n", len(resp.Items), resp.Scanned, resp.Limit)
	return nil
}

// Show prints the full evaluation of one import record.
func (a *InboundAdapter) Show(ctx context.Context, importID int64) error {
	ev, err := a.service.Evaluate(ctx, importID)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.writeJSON(ev)
	}

	p := ev.Parsed
	fmt.Fprintf(a.out, "\nImport:     %d\n", ev.ImportID)
	fmt.Fprintf(a.out, "Confidence: %s\n", confidenceLabel(ev.Confidence))
	fmt.Fprintf(a.out, "Stage:      %s (rank %d, group at %d)\n", orDash(string(ev.Stage)), ev.DesiredRank, ev.CurrentRank)
	fmt.Fprintf(a.out, "Shipment:   %s\n", orDash(p.ShipmentNumber))
	if p.TicketNumber != "" {
		fmt.Fprintf(a.out, "Ticket:     %s\n", p.TicketNumber)
	}
	fmt.Fprintf(a.out, "Driver:     %s (%s)\n", orDash(p.DriverName), driverSummary(ev.Driver))
	fmt.Fprintf(a.out, "Truck:      %s", orDash(p.TruckNumber))
	if p.TrailerNumber != "" {
		fmt.Fprintf(a.out, " / trailer %s", p.TrailerNumber)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Terminal:   %s (%s)\n", orDash(p.Terminal), routeSummary(ev.PullPoint))
	fmt.Fprintf(a.out, "Job:        %s (%s)\n", orDash(p.JobName), routeSummary(ev.PadLocation))
	fmt.Fprintf(a.out, "Journey:    %s", ev.Journey.Status)
	if ev.Journey.JoinID != 0 {
		fmt.Fprintf(a.out, " join %d", ev.Journey.JoinID)
	}
	if ev.Journey.Miles != nil {
		fmt.Fprintf(a.out, " (%d mi)", *ev.Journey.Miles)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Ready:      %s\n\n", readinessLabel(false, ev.Readiness))
	return nil
}

// Process applies one import record and prints the outcome. A rejected
// record is reported, not returned as an error.
func (a *InboundAdapter) Process(ctx context.Context, importID int64) error {
	res, err := a.service.ProcessImport(ctx, importID)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.writeJSON(res)
	}
	a.printProcess(res, "")
	return nil
}

func (a *InboundAdapter) printProcess(res *primary.ProcessResult, indent string) {
	if !res.OK {
		fmt.Fprintf(a.out, "%s%s Import %d rejected: %s (%s)\n", indent, failMark, res.ImportID, res.Error, res.Code)
		return
	}
	switch {
	case res.AlreadyExists:
		fmt.Fprintf(a.out, "%s%s Import %d already applied to shipment %d\n", indent, okMark, res.ImportID, res.ShipmentID)
	default:
		fmt.Fprintf(a.out, "%s%s Import %d applied %s to shipment %d (detail %d)\n",
			indent, okMark, res.ImportID, res.Stage, res.ShipmentID, res.DetailID)
	}
	var cols []string
	cols = append(cols, res.Updated.Shipment...)
	cols = append(cols, res.Updated.Detail...)
	if len(cols) > 0 {
		fmt.Fprintf(a.out, "%s  updated: %s\n", indent, strings.Join(cols, ", "))
	}
	if len(res.Superseded) > 0 {
		fmt.Fprintf(a.out, "%s  superseded attachments on: %s\n", indent, joinIDs(res.Superseded))
	}
}

// Batch replays the given import records and prints one block per group.
func (a *InboundAdapter) Batch(ctx context.Context, importIDs []int64) error {
	res, err := a.service.ProcessBatch(ctx, importIDs)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.writeJSON(res)
	}

	if res.Code != "" {
		fmt.Fprintf(a.out, "%s Batch rejected: %s (%s)\n", failMark, res.Error, res.Code)
		return nil
	}

	fmt.Fprintf(a.out, "\nRun %s: %d groups, %d ok, %d failed\n", res.RunID, res.Groups, res.OKGroups, res.FailGroups)
	fmt.Fprintln(a.out, rule)
	for _, g := range res.Results {
		if g.Orphan != nil {
			fmt.Fprintf(a.out, "%s Import %d not grouped: %s (%s)\n", failMark, g.Orphan.ImportID, g.Orphan.Error, g.Orphan.Code)
			continue
		}
		mark := okMark
		if !g.OK {
			mark = failMark
		}
		fmt.Fprintf(a.out, "%s Shipment %s on join %d (from rank %d)\n", mark, g.ShipmentNumber, g.JoinID, g.CurrentRank)
		for _, step := range g.Steps {
			a.printProcess(step.Result, "    ")
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

func confidenceLabel(c driver.Confidence) string {
	label := fmt.Sprintf("%-7s", c)
	switch c {
	case driver.Green:
		return color.New(color.FgGreen).Sprint(label)
	case driver.Yellow:
		return color.New(color.FgYellow).Sprint(label)
	default:
		return color.New(color.FgRed).Sprint(label)
	}
}

func readinessLabel(processed bool, r primary.Readiness) string {
	switch {
	case processed:
		return color.New(color.FgCyan).Sprint("processed")
	case r.CanProcess:
		return okMark + " ready"
	default:
		return fmt.Sprintf("%s %s", failMark, r.Code)
	}
}

func driverSummary(r driver.Result) string {
	parts := []string{string(r.Status)}
	if r.Resolved != nil {
		parts = append(parts, fmt.Sprintf("driver %d via %s", r.Resolved.DriverID, r.Resolved.Method))
	}
	if r.Notes != "" {
		parts = append(parts, r.Notes)
	}
	return strings.Join(parts, ", ")
}

func routeSummary(m route.Match) string {
	if m.Resolved != nil {
		return fmt.Sprintf("%s #%d via %s", m.Resolved.Name, m.Resolved.ID, m.Resolved.Method)
	}
	if len(m.Candidates) > 0 {
		names := make([]string, len(m.Candidates))
		for i, c := range m.Candidates {
			names[i] = c.Name
		}
		return fmt.Sprintf("%s: %s", m.Status, strings.Join(names, " | "))
	}
	return string(m.Status)
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
