package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/gitpulse/pkg/report"
	"github.com/Sumatoshi-tech/gitpulse/pkg/scan"
	"github.com/Sumatoshi-tech/gitpulse/pkg/version"
)

// ToolNameActivity is the name of the activity scan tool.
const ToolNameActivity = "gitpulse_activity"

// Sentinel errors for tool input validation.
var (
	// ErrEmptyScanPath indicates the scan_path parameter is empty.
	ErrEmptyScanPath = errors.New("scan_path parameter is required and must not be empty")
	// ErrScanPathNotAbsolute indicates the scan_path is not an absolute path.
	ErrScanPathNotAbsolute = errors.New("scan_path must be an absolute path")
	// ErrNegativeDays indicates a negative lookback window.
	ErrNegativeDays = errors.New("days must not be negative")
	// ErrNegativeMaxRepos indicates a negative repository limit.
	ErrNegativeMaxRepos = errors.New("max_repos must not be negative")
)

// ActivityInput is the input schema for the gitpulse_activity tool.
type ActivityInput struct {
	Days            *int     `json:"days,omitempty"             jsonschema:"lookback window in days, 0 keeps only commits since this moment (default: 30)"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty" jsonschema:"path segments to skip, matched exactly or as substrings (default: .git node_modules venv __pycache__)"`
	MaxRepos        int      `json:"max_repos,omitempty"        jsonschema:"maximum number of repositories to scan (default: 50)"`
	ScanPath        string   `json:"scan_path"                  jsonschema:"absolute path of the directory tree to scan"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func validateActivityInput(input ActivityInput) error {
	if input.ScanPath == "" {
		return ErrEmptyScanPath
	}

	if !filepath.IsAbs(input.ScanPath) {
		return fmt.Errorf("%w: %s", ErrScanPathNotAbsolute, input.ScanPath)
	}

	if input.Days != nil && *input.Days < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeDays, *input.Days)
	}

	if input.MaxRepos < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeMaxRepos, input.MaxRepos)
	}

	return nil
}

// handleActivity processes gitpulse_activity tool calls.
func (s *Server) handleActivity(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ActivityInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateActivityInput(input)
	if err != nil {
		return errorResult(err)
	}

	req := s.requestFor(input)

	res, err := s.scanner.Run(ctx, req)
	if err != nil {
		return errorResult(fmt.Errorf("scan %s: %w", input.ScanPath, err))
	}

	doc := report.Build(res.Report, report.Metadata{
		GeneratedAt: time.Now(),
		Days:        req.Days,
		Version:     version.Version,
		ScanRoots:   req.Roots,
	})

	return jsonResult(doc)
}

func (s *Server) requestFor(input ActivityInput) scan.Request {
	req := scan.Request{
		Roots:    []string{filepath.Clean(input.ScanPath)},
		Days:     s.defaults.Days,
		MaxRepos: input.MaxRepos,
		Exclude:  input.ExcludePatterns,
		Workers:  s.defaults.Workers,
	}

	if input.Days != nil {
		req.Days = *input.Days
	}

	if req.MaxRepos == 0 {
		req.MaxRepos = s.defaults.MaxRepos
	}

	if req.Exclude == nil {
		req.Exclude = s.defaults.ExcludePatterns
	}

	return req
}
