package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/armlaunch/internal/app"
	"github.com/aki/armlaunch/internal/core/config"
	"github.com/aki/armlaunch/internal/descriptions/panda"
	"github.com/aki/armlaunch/internal/launch"
	"github.com/aki/armlaunch/internal/launch/ament"
	"github.com/aki/armlaunch/internal/runstate"
)

// setupTestServer creates a server over a project whose ament prefix holds
// the franka packages
func setupTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv(ament.PrefixPathEnv, "")

	prefix := t.TempDir()
	for _, pkg := range []string{"franka_description", "franka_gripper", "franka_moveit_config"} {
		_, err := ament.Install(prefix, pkg)
		require.NoError(t, err)
	}

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, config.Dir), 0o755))
	content := "ament_prefix_paths:\n  - " + prefix + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, config.Dir, config.File), []byte(content), 0o644))

	container, err := app.NewContainer(context.Background(), app.Options{
		ProjectRoot:    root,
		ManagerOptions: []config.ManagerOption{config.WithLookuper(envconfig.MapLookuper(map[string]string{}))},
	})
	require.NoError(t, err)

	s, err := NewServer(container, "test")
	require.NoError(t, err)
	return s
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// decodeResult unmarshals the result and metadata of an enhanced result
func decodeResult(t *testing.T, result *mcp.CallToolResult, v interface{}) ToolResultMetadata {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var envelope struct {
		Result   json.RawMessage    `json:"result"`
		Metadata ToolResultMetadata `json:"_metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Result, v))
	return envelope.Metadata
}

func TestNewServer_RequiresContainer(t *testing.T) {
	_, err := NewServer(nil, "test")
	assert.Error(t, err)
}

func TestLaunchDescribe(t *testing.T) {
	s := setupTestServer(t)

	result, err := s.handleLaunchDescribe(context.Background(), callTool("launch_describe", map[string]interface{}{
		"arguments": map[string]interface{}{
			"robot_ip": "172.16.0.2",
			"db":       true,
		},
	}))
	require.NoError(t, err)

	var plan launch.Plan
	metadata := decodeResult(t, result, &plan)

	assert.Equal(t, panda.Source, plan.Description)
	robotIP, ok := plan.Argument("robot_ip")
	require.True(t, ok)
	assert.Equal(t, "172.16.0.2", robotIP.Value)

	db, ok := plan.Entity(panda.DatabaseNode)
	require.True(t, ok)
	assert.True(t, db.Enabled)

	assert.Equal(t, "launch_describe", metadata.ToolUsed)
	assert.Equal(t, "false", metadata.InferredParameters["run_commands"])
	require.NotEmpty(t, metadata.SuggestedNextTools)
	assert.Equal(t, NextTool{Tool: "launch_arguments", Reason: "See which arguments can be overridden"}, metadata.SuggestedNextTools[0])
}

func TestLaunchDescribe_Errors(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantErr string
	}{
		{
			name:    "unknown description",
			args:    map[string]interface{}{"description": "nope/missing.launch", "arguments": map[string]interface{}{"robot_ip": "x"}},
			wantErr: "launch description not found: nope/missing.launch",
		},
		{
			name:    "missing required argument",
			args:    map[string]interface{}{},
			wantErr: "robot_ip",
		},
		{
			name:    "arguments not an object",
			args:    map[string]interface{}{"arguments": "robot_ip:=x"},
			wantErr: "expected an object",
		},
		{
			name:    "nested argument value",
			args:    map[string]interface{}{"arguments": map[string]interface{}{"robot_ip": []interface{}{"a"}}},
			wantErr: "invalid value for argument robot_ip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleLaunchDescribe(context.Background(), callTool("launch_describe", tt.args))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLaunchDescribe_UnknownDescriptionSuggestions(t *testing.T) {
	s := setupTestServer(t)

	_, err := s.handleLaunchDescribe(context.Background(), callTool("launch_describe", map[string]interface{}{
		"description": "nope/missing.launch",
	}))
	var withSuggestions *ErrorWithSuggestions
	require.ErrorAs(t, err, &withSuggestions)
	assert.Contains(t, withSuggestions.Error(), panda.Source)
}

func TestLaunchArguments(t *testing.T) {
	s := setupTestServer(t)

	result, err := s.handleLaunchArguments(context.Background(), callTool("launch_arguments", nil))
	require.NoError(t, err)

	var out struct {
		Description string         `json:"description"`
		Arguments   []argumentInfo `json:"arguments"`
	}
	decodeResult(t, result, &out)

	assert.Equal(t, panda.Source, out.Description)
	require.Len(t, out.Arguments, 4)
	assert.Equal(t, "robot_ip", out.Arguments[0].Name)
	assert.True(t, out.Arguments[0].Required)
	assert.Nil(t, out.Arguments[0].Default)

	db := out.Arguments[3]
	assert.Equal(t, "db", db.Name)
	assert.False(t, db.Required)
	require.NotNil(t, db.Default)
	assert.Equal(t, "False", *db.Default)
}

func TestLaunchStatus(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	_, err := s.handleLaunchStatus(ctx, callTool("launch_status", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no launch runs recorded")

	require.NoError(t, s.container.Store.Create(ctx, &runstate.Run{
		ID:          "5d1e0c2a-1111",
		Description: panda.Source,
		Runtime:     "dryrun",
		Entities: []*runstate.EntityState{
			{Name: "robot_state_publisher", Kind: "node", Status: runstate.StatusRunning, PID: 4242},
		},
	}))

	t.Run("newest run", func(t *testing.T) {
		result, err := s.handleLaunchStatus(ctx, callTool("launch_status", nil))
		require.NoError(t, err)

		var run runstate.Run
		metadata := decodeResult(t, result, &run)
		assert.Equal(t, "5d1e0c2a-1111", run.ID)
		assert.Equal(t, "5d1e0c2a-1111", metadata.InferredParameters["run_id"])
		require.Len(t, run.Entities, 1)
		assert.Equal(t, 4242, run.Entities[0].PID)
	})

	t.Run("by prefix", func(t *testing.T) {
		result, err := s.handleLaunchStatus(ctx, callTool("launch_status", map[string]interface{}{"run_id": "5d1e"}))
		require.NoError(t, err)

		var run runstate.Run
		decodeResult(t, result, &run)
		assert.Equal(t, "5d1e0c2a-1111", run.ID)
	})

	t.Run("unknown run", func(t *testing.T) {
		_, err := s.handleLaunchStatus(ctx, callTool("launch_status", map[string]interface{}{"run_id": "ffff"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "launch run not found: ffff")
	})
}

func TestResources(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	require.NoError(t, s.container.Store.Create(ctx, &runstate.Run{
		ID:          "7a7a0000-2222",
		Description: panda.Source,
		Runtime:     "local",
	}))

	read := func(uri string) string {
		var request mcp.ReadResourceRequest
		request.Params.URI = uri

		var contents []mcp.ResourceContents
		var err error
		switch {
		case uri == descriptionsURI:
			contents, err = s.handleDescriptionsResource(ctx, request)
		case uri == runsURI:
			contents, err = s.handleRunsResource(ctx, request)
		default:
			contents, err = s.handleRunResource(ctx, request)
		}
		require.NoError(t, err)
		require.Len(t, contents, 1)

		text, ok := contents[0].(*mcp.TextResourceContents)
		require.True(t, ok)
		assert.Equal(t, uri, text.URI)
		assert.Equal(t, "application/json", text.MIMEType)
		return text.Text
	}

	var descs []descriptionInfo
	require.NoError(t, json.Unmarshal([]byte(read(descriptionsURI)), &descs))
	sources := make([]string, 0, len(descs))
	for _, d := range descs {
		sources = append(sources, d.Source)
	}
	assert.Contains(t, sources, panda.Source)

	var runs []runSummary
	require.NoError(t, json.Unmarshal([]byte(read(runsURI)), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, runsURI+"/7a7a0000-2222", runs[0].Resource)

	var run runstate.Run
	require.NoError(t, json.Unmarshal([]byte(read(runsURI+"/7a7a")), &run))
	assert.Equal(t, "local", run.Runtime)
}

func TestStringMap(t *testing.T) {
	got, err := stringMap(map[string]interface{}{
		"robot_ip":          "172.16.0.2",
		"use_fake_hardware": true,
		"rate":              float64(30),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"robot_ip":          "172.16.0.2",
		"use_fake_hardware": "true",
		"rate":              "30",
	}, got)

	got, err = stringMap(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestErrorWithSuggestions(t *testing.T) {
	err := RunNotFoundError("")
	assert.Contains(t, err.Error(), "no launch runs recorded")
	assert.Contains(t, err.Error(), "Try one of these instead:")

	plain := NewErrorWithSuggestions("boom")
	assert.Equal(t, "boom", plain.Error())
}
