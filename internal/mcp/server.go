package mcp

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/haulstat/fleet-dashboard/internal/config"
	"github.com/haulstat/fleet-dashboard/internal/dashboard"
	"github.com/haulstat/fleet-dashboard/internal/fleet"
	"github.com/haulstat/fleet-dashboard/internal/report"
)

// Server exposes the dashboard session over MCP stdio
type Server struct {
	config    *config.Config
	session   *dashboard.Session
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, session *dashboard.Session) (*Server, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.AppName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		session:   session,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	importTool := mcp.NewTool(
		"fleet_import_report",
		mcp.WithDescription("Import a PDF payload report into the fleet collection, replacing its contents"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF report"),
		),
		mcp.WithString("format",
			mcp.Description("Numeric format of the report: 'comma' or 'dot' (uses the configured default if empty)"),
		),
	)
	s.mcpServer.AddTool(importTool, s.handleImportReport)

	sampleTool := mcp.NewTool(
		"fleet_load_sample",
		mcp.WithDescription("Load the built-in sample fleet dataset, replacing the collection"),
	)
	s.mcpServer.AddTool(sampleTool, s.handleLoadSample)

	recordsTool := mcp.NewTool(
		"fleet_records",
		mcp.WithDescription("List the fleet collection grouped by excavator, with optional filters"),
		mcp.WithString("query",
			mcp.Description("Case-insensitive substring match on equipment number or supervisor"),
		),
		mcp.WithString("status",
			mcp.Description("Keep only records with this status: 'under', 'optimal' or 'overload'"),
		),
		mcp.WithString("equipment",
			mcp.Description("Narrow to one equipment number and its group"),
		),
		mcp.WithString("supervisor",
			mcp.Description("Keep only records assigned to this supervisor"),
		),
	)
	s.mcpServer.AddTool(recordsTool, s.handleRecords)

	summaryTool := mcp.NewTool(
		"fleet_summary",
		mcp.WithDescription("Get summary statistics for the current fleet collection"),
	)
	s.mcpServer.AddTool(summaryTool, s.handleSummary)

	supervisorTool := mcp.NewTool(
		"fleet_set_supervisor",
		mcp.WithDescription("Assign a supervisor to a piece of equipment; assigning to an excavator covers its dump trucks"),
		mcp.WithString("equipment",
			mcp.Required(),
			mcp.Description("Equipment number, e.g. EX2046 or DT2080"),
		),
		mcp.WithString("supervisor",
			mcp.Required(),
			mcp.Description("Supervisor name"),
		),
	)
	s.mcpServer.AddTool(supervisorTool, s.handleSetSupervisor)

	payloadTool := mcp.NewTool(
		"fleet_set_payload",
		mcp.WithDescription("Edit the payload of a record; its status reclassifies unless overridden"),
		mcp.WithString("equipment",
			mcp.Required(),
			mcp.Description("Equipment number"),
		),
		mcp.WithNumber("payload",
			mcp.Required(),
			mcp.Description("Payload in tonnes"),
		),
	)
	s.mcpServer.AddTool(payloadTool, s.handleSetPayload)

	statusTool := mcp.NewTool(
		"fleet_set_status",
		mcp.WithDescription("Override the classified status of a record, or clear the override"),
		mcp.WithString("equipment",
			mcp.Required(),
			mcp.Description("Equipment number"),
		),
		mcp.WithString("status",
			mcp.Description("'under', 'optimal' or 'overload'; empty clears the override"),
		),
	)
	s.mcpServer.AddTool(statusTool, s.handleSetStatus)

	exportTool := mcp.NewTool(
		"fleet_export_xlsx",
		mcp.WithDescription("Export the fleet collection and its summary to an Excel workbook"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Destination path for the .xlsx file"),
		),
	)
	s.mcpServer.AddTool(exportTool, s.handleExportXLSX)
}

// Handler functions
func (s *Server) handleImportReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	format := s.config.Format() // default
	if raw, ok := args["format"].(string); ok && raw != "" {
		parsed, ok := report.ParseNumericFormat(raw)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown numeric format: %s", raw)), nil
		}
		format = parsed
	}

	summary, err := s.session.ImportFile(ctx, path, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatImportSummary(path, summary)), nil
}

func (s *Server) handleLoadSample(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.session.Store().LoadSample()
	return mcp.NewToolResultText(fmt.Sprintf("Loaded sample dataset: %d records", s.session.Store().Len())), nil
}

func (s *Server) handleRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var filter fleet.Filter
	if q, ok := args["query"].(string); ok {
		filter.Query = q
	}
	if eq, ok := args["equipment"].(string); ok {
		filter.Equipment = eq
	}
	if sup, ok := args["supervisor"].(string); ok {
		filter.Supervisor = sup
	}
	if raw, ok := args["status"].(string); ok && raw != "" {
		status, ok := fleet.ParseStatus(raw)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown status: %s", raw)), nil
		}
		filter.Status = &status
	}

	groups := s.session.FilteredGroups(filter)
	if len(groups) == 0 {
		if filter.IsZero() {
			return mcp.NewToolResultText("The fleet collection is empty. Import a report or load the sample dataset."), nil
		}
		return mcp.NewToolResultText("No records match the given filters."), nil
	}

	return mcp.NewToolResultText(s.formatGroups(groups)), nil
}

func (s *Server) handleSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary := s.session.Summary()
	return mcp.NewToolResultText(s.formatSummary(summary)), nil
}

func (s *Server) handleSetSupervisor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	equipment, err := request.RequireString("equipment")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	supervisor, err := request.RequireString("supervisor")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.session.Store().SetSupervisor(equipment, supervisor); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Assigned %s to %s", supervisor, equipment)), nil
}

func (s *Server) handleSetPayload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	equipment, err := request.RequireString("equipment")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	payload, ok := args["payload"].(float64)
	if !ok {
		return mcp.NewToolResultError("payload must be a number"), nil
	}

	if err := s.session.Store().SetPayload(equipment, payload); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, _ := s.session.Store().Find(equipment)
	status := rec.Status(s.session.Rules())
	return mcp.NewToolResultText(fmt.Sprintf("Set %s payload to %.1f t (%s)",
		equipment, payload, status.Info().Label)), nil
}

func (s *Server) handleSetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	equipment, err := request.RequireString("equipment")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	raw, _ := args["status"].(string)

	if raw == "" {
		if err := s.session.Store().SetOverride(equipment, nil); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Cleared status override on %s", equipment)), nil
	}

	status, ok := fleet.ParseStatus(raw)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown status: %s", raw)), nil
	}
	if err := s.session.Store().SetOverride(equipment, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Overrode %s status to %s", equipment, status.Info().Label)), nil
}

func (s *Server) handleExportXLSX(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.session.ExportXLSX(path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Exported %d records to %s", s.session.Store().Len(), path)), nil
}

// Formatting methods
func (s *Server) formatImportSummary(path string, summary *dashboard.ImportSummary) string {
	text := fmt.Sprintf("Imported report: %s\n", path)
	text += fmt.Sprintf("Pages: %d\n", summary.Pages)
	text += fmt.Sprintf("Records imported: %d\n", summary.Imported)
	if summary.Aggregate != nil {
		text += fmt.Sprintf("Report average payload: %.1f t\n", *summary.Aggregate)
	}

	if len(summary.Invalid) > 0 {
		text += fmt.Sprintf("\nRejected %d record(s):\n", len(summary.Invalid))
		for _, inv := range summary.Invalid {
			text += fmt.Sprintf("  %s: %s\n", inv.Record.EquipmentNumber, strings.Join(inv.Issues, "; "))
		}
	}

	return text
}

func (s *Server) formatGroups(groups []fleet.Group) string {
	rules := s.session.Rules()

	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		if g.Excavator != nil {
			b.WriteString(s.formatRecord(*g.Excavator, rules))
		} else {
			b.WriteString("(no excavator)\n")
		}
		for _, dt := range g.DumpTrucks {
			b.WriteString("  ")
			b.WriteString(s.formatRecord(dt, rules))
		}
	}
	return b.String()
}

func (s *Server) formatRecord(rec fleet.Record, rules fleet.Rules) string {
	info := rec.Status(rules).Info()
	line := fmt.Sprintf("%s %s  %.1f t  %s %s", rec.EquipmentNumber, info.Symbol, rec.Payload, info.Label, supervisorLabel(rec))
	if rec.StatusOverride != nil {
		line += "  (manual override)"
	}
	return line + "\n"
}

func (s *Server) formatSummary(summary fleet.Summary) string {
	if summary.TotalRecords == 0 {
		return "The fleet collection is empty."
	}

	text := "Fleet Summary\n"
	text += fmt.Sprintf("Total records: %d\n", summary.TotalRecords)
	text += fmt.Sprintf("Average payload: %.1f t\n", summary.AveragePayload)
	text += fmt.Sprintf("Min payload: %.1f t\n", summary.MinPayload)
	text += fmt.Sprintf("Max payload: %.1f t\n", summary.MaxPayload)
	text += fmt.Sprintf("Excavators: %d\n", summary.ExcavatorCount)
	text += fmt.Sprintf("Dump trucks: %d\n", summary.DumpTruckCount)
	return text
}

func supervisorLabel(rec fleet.Record) string {
	if rec.Supervisor == "" {
		return "(unassigned)"
	}
	return rec.Supervisor
}

// Run serves the MCP tool surface over stdio until the client
// disconnects or the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
