package mcp_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/gitpulse/pkg/gitlib/gitlibtest"
	"github.com/Sumatoshi-tech/gitpulse/pkg/mcp"
	"github.com/Sumatoshi-tech/gitpulse/pkg/observability"
	"github.com/Sumatoshi-tech/gitpulse/pkg/report"
)

// connect starts srv on in-memory transports and returns a client session.
func connect(t *testing.T, srv *mcp.Server) (context.Context, *mcpsdk.ClientSession) {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return ctx, session
}

func resultText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestMCPServer_ListToolNames(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})

	assert.Equal(t, []string{mcp.ToolNameActivity}, srv.ListToolNames())
}

func TestMCPServer_InMemoryTransport_ToolsList(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, toolsResult.Tools, 1)

	tool := toolsResult.Tools[0]
	assert.Equal(t, "gitpulse_activity", tool.Name)
	assert.NotNil(t, tool.InputSchema)
	assert.NotEmpty(t, tool.Description)
}

func TestMCPServer_InMemoryTransport_CallActivity(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	repo := gitlibtest.InitAt(t, filepath.Join(root, "service"))
	repo.WriteFile("main.go", "package main\n")
	repo.CommitAt("init", time.Now().Add(-3*time.Hour))
	repo.WriteFile("main.go", "package main\n\nfunc main() {}\n")
	repo.CommitAt("add main", time.Now().Add(-time.Hour))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{Metrics: red}))

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: mcp.ToolNameActivity,
		Arguments: map[string]any{
			"scan_path": root,
			"days":      7,
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &doc))

	assert.Equal(t, 7, doc.Metadata.Days)
	assert.Equal(t, []string{root}, doc.Metadata.ScanRoots)
	assert.Equal(t, 1, doc.Summary.TotalRepositories)
	assert.Equal(t, 2, doc.Summary.TotalCommits)
	require.Len(t, doc.Repositories, 1)
	assert.Equal(t, "service", doc.Repositories[0].Name)
	assert.Len(t, doc.Repositories[0].RecentCommits, 2)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var requests int64

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "gitpulse.requests.total" {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, dp := range sum.DataPoints {
				requests += dp.Value
			}
		}
	}

	assert.Equal(t, int64(1), requests)
}

func TestMCPServer_InMemoryTransport_CallActivity_DaysWindow(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	repo := gitlibtest.InitAt(t, filepath.Join(root, "service"))
	repo.WriteFile("main.go", "package main\n")
	repo.CommitAt("init", time.Now().Add(-time.Hour))

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{
		Defaults: mcp.Defaults{Days: 30, MaxRepos: 50},
	}))

	tests := []struct {
		name     string
		args     map[string]any
		wantDays int
		commits  int
	}{
		{"zero days is honored", map[string]any{"scan_path": root, "days": 0}, 0, 0},
		{"omitted days uses default", map[string]any{"scan_path": root}, 30, 1},
	}

	for _, tt := range tests {
		result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
			Name:      mcp.ToolNameActivity,
			Arguments: tt.args,
		})
		require.NoError(t, err, tt.name)
		require.False(t, result.IsError, resultText(t, result))

		var doc report.Document
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &doc), tt.name)

		assert.Equal(t, tt.wantDays, doc.Metadata.Days, tt.name)
		assert.Equal(t, 1, doc.Summary.TotalRepositories, tt.name)
		assert.Equal(t, tt.commits, doc.Summary.TotalCommits, tt.name)
	}
}

func TestMCPServer_InMemoryTransport_CallActivity_Errors(t *testing.T) {
	t.Parallel()

	empty := t.TempDir()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"empty path", map[string]any{"scan_path": ""}, mcp.ErrEmptyScanPath.Error()},
		{"relative path", map[string]any{"scan_path": "src/projects"}, "must be an absolute path"},
		{"negative days", map[string]any{"scan_path": empty, "days": -1}, "days must not be negative"},
		{"no repositories", map[string]any{"scan_path": empty}, "no git repositories found"},
	}

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	for _, tt := range tests {
		result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
			Name:      mcp.ToolNameActivity,
			Arguments: tt.args,
		})
		require.NoError(t, err, tt.name)
		assert.True(t, result.IsError, tt.name)
		assert.Contains(t, resultText(t, result), tt.want, tt.name)
	}
}
