// Package mcp implements a Model Context Protocol server exposing the gitpulse
// activity scan as an MCP tool over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gitpulse/pkg/config"
	"github.com/Sumatoshi-tech/gitpulse/pkg/observability"
	"github.com/Sumatoshi-tech/gitpulse/pkg/scan"
	"github.com/Sumatoshi-tech/gitpulse/pkg/version"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "gitpulse"

	// toolCount is the expected number of registered tools.
	toolCount = 1
)

// Defaults fills tool inputs the client left out.
type Defaults struct {
	Days            int
	MaxRepos        int
	ExcludePatterns []string
	Workers         int
}

// DefaultsFromConfig takes the scan settings of cfg.
func DefaultsFromConfig(cfg *config.Config) Defaults {
	return Defaults{
		Days:            cfg.DefaultDays,
		MaxRepos:        cfg.MaxRepos,
		ExcludePatterns: cfg.ExcludePatterns,
		Workers:         cfg.Workers,
	}
}

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil discards.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// ScanMetrics records discovery and extraction counters. Nil disables them.
	ScanMetrics *observability.ScanMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// Defaults apply to omitted tool arguments. Zero fields use the
	// config package defaults.
	Defaults Defaults

	// Scanner replaces the scanner built from the fields above.
	Scanner *scan.Scanner
}

// Server wraps the MCP SDK server with the gitpulse tool registrations.
type Server struct {
	inner    *mcpsdk.Server
	mu       sync.RWMutex
	tools    []string
	metrics  *observability.REDMetrics
	tracer   trace.Tracer
	scanner  *scan.Scanner
	defaults Defaults
}

// NewServer creates a new MCP server with all gitpulse tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		opts,
	)

	scanner := deps.Scanner
	if scanner == nil {
		scanOpts := []scan.Option{scan.WithMetrics(deps.ScanMetrics)}

		if deps.Logger != nil {
			scanOpts = append(scanOpts, scan.WithLogger(deps.Logger))
		}

		if deps.Tracer != nil {
			scanOpts = append(scanOpts, scan.WithTracer(deps.Tracer))
		}

		scanner = scan.New(scanOpts...)
	}

	srv := &Server{
		inner:    inner,
		tools:    make([]string, 0, toolCount),
		metrics:  deps.Metrics,
		tracer:   deps.Tracer,
		scanner:  scanner,
		defaults: withFallbacks(deps.Defaults),
	}

	srv.registerTools()

	return srv
}

func withFallbacks(d Defaults) Defaults {
	if d.Days <= 0 {
		d.Days = config.DefaultDays
	}

	if d.MaxRepos <= 0 {
		d.MaxRepos = config.DefaultMaxRepos
	}

	if d.ExcludePatterns == nil {
		d.ExcludePatterns = config.DefaultExcludePatterns()
	}

	return d
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameActivity,
		Description: activityToolDescription,
	}, withMetrics(s.metrics, ToolNameActivity, withTracing(s.tracer, ToolNameActivity, s.handleActivity)))

	s.trackTool(ToolNameActivity)
}

// mcpSpanPrefix is the prefix for MCP tool span names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps an MCP tool handler to create an OTel span per invocation
// and include trace_id in the response content when sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps an MCP tool handler to record RED metrics per invocation.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, mcpSpanPrefix+toolName)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := "ok"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
		}

		metrics.RecordRequest(ctx, mcpSpanPrefix+toolName, status, time.Since(start))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

const activityToolDescription = "Scan a directory tree for Git repositories and report recent commit activity: " +
	"summary counters, daily commit histogram, per-repository breakdown sorted by commits " +
	"and up to 10 recent commits per repository. Accepts an absolute scan path and optional window."
