package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aki/armlaunch/internal/descriptions"
	"github.com/aki/armlaunch/internal/runstate"
)

const (
	descriptionsURI = "armlaunch://descriptions"
	runsURI         = "armlaunch://runs"
)

// registerResources registers all MCP resources
func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		descriptionsURI,
		"Launch Descriptions",
		mcp.WithResourceDescription("Launch descriptions known to armlaunch"),
		mcp.WithMIMEType("application/json"),
	), s.handleDescriptionsResource)

	s.mcpServer.AddResource(mcp.NewResource(
		runsURI,
		"Launch Runs",
		mcp.WithResourceDescription("Recorded launch runs, newest first"),
		mcp.WithMIMEType("application/json"),
	), s.handleRunsResource)

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(
		runsURI+"/{id}",
		"Launch Run",
		mcp.WithTemplateDescription("State of one launch run by ID or unique prefix"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.handleRunResource)
}

type descriptionInfo struct {
	Source  string `json:"source"`
	Summary string `json:"summary"`
}

// runSummary is the list view of a run
type runSummary struct {
	ID          string                  `json:"id"`
	Description string                  `json:"description"`
	Status      runstate.Status         `json:"status"`
	Runtime     string                  `json:"runtime"`
	StartedAt   string                  `json:"startedAt"`
	Counts      map[runstate.Status]int `json:"counts"`
	Resource    string                  `json:"resource"`
}

func (s *Server) handleDescriptionsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var infos []descriptionInfo
	for _, e := range descriptions.List() {
		infos = append(infos, descriptionInfo{Source: e.Source, Summary: e.Summary})
	}
	return jsonResource(request.Params.URI, infos)
}

func (s *Server) handleRunsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	runs, err := s.container.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	summaries := make([]runSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, runSummary{
			ID:          r.ID,
			Description: r.Description,
			Status:      r.Status,
			Runtime:     r.Runtime,
			StartedAt:   r.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
			Counts:      r.Counts(),
			Resource:    runsURI + "/" + r.ID,
		})
	}
	return jsonResource(request.Params.URI, summaries)
}

func (s *Server) handleRunResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(request.Params.URI, runsURI+"/")
	if id == "" || id == request.Params.URI {
		return nil, fmt.Errorf("invalid run URI: %s", request.Params.URI)
	}

	run, err := s.container.Run(ctx, id)
	if err != nil {
		if errors.Is(err, runstate.ErrRunNotFound) {
			return nil, RunNotFoundError(id)
		}
		return nil, err
	}
	return jsonResource(request.Params.URI, run)
}

func jsonResource(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
