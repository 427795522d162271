package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dazzie/quoted/internal/analyzer"
	"github.com/dazzie/quoted/internal/completeness"
	"github.com/dazzie/quoted/internal/coverage"
	"github.com/dazzie/quoted/internal/extract"
	"github.com/dazzie/quoted/internal/pipeline"
	"github.com/dazzie/quoted/internal/profile"
	"github.com/dazzie/quoted/internal/rules"
)

// MCPDeps holds dependencies for the MCP server. All tools are stateless:
// the caller passes the accumulated profile in and gets the updated one back,
// so the server needs no storage handle.
type MCPDeps struct {
	Pipeline *pipeline.Pipeline
	Analyzer *analyzer.Analyzer
	Rules    rules.Set
}

// NewMCPServer creates an MCP server with all quoted tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"quoted",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("quoted — insurance quote profile engine: extract facts from conversation turns, track profile completeness, and analyze coverage for gaps."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("extract_profile",
			mcp.WithDescription("Extract insurance facts from conversation turns, merge them into the quote profile, and return the updated profile with its completeness score and the next question to ask."),
			mcp.WithString("turns", mcp.Description("JSON array of {role, text} conversation turns"), mcp.Required()),
			mcp.WithString("profile", mcp.Description("Current quote profile as JSON (omit to start a fresh profile)")),
			mcp.WithString("hint", mcp.Description("Optional customer record hint as JSON, used to prefill defaults such as the primary driver's age")),
		),
		mcpExtractProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("next_question",
			mcp.WithDescription("Score a quote profile for completeness and return the single highest-priority missing field to ask about next."),
			mcp.WithString("profile", mcp.Description("Quote profile as JSON"), mcp.Required()),
		),
		mcpNextQuestion(deps),
	)

	s.AddTool(
		mcp.NewTool("analyze_policy",
			mcp.WithDescription("Run gap analysis on existing coverage documents against the customer's quote profile. Returns prioritized gaps, a health score, and legal citations."),
			mcp.WithString("documents", mcp.Description("JSON array of coverage documents"), mcp.Required()),
			mcp.WithString("profile", mcp.Description("Quote profile as JSON, used for state minimums and risk context")),
		),
		mcpAnalyzePolicy(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"quoted://state-minimums",
			"State Minimum Coverage Requirements",
			mcp.WithResourceDescription("Per-state auto liability minimums and mandates used by the gap analyzer"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceStateMinimums(deps),
	)

	return s
}

func mcpExtractProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		turnsJSON, err := req.RequireString("turns")
		if err != nil {
			return mcpError("turns is required"), nil
		}

		var turns []extract.Turn
		if err := json.Unmarshal([]byte(turnsJSON), &turns); err != nil {
			return mcpError(fmt.Sprintf("invalid turns JSON: %v", err)), nil
		}
		if len(turns) == 0 {
			return mcpError("turns must contain at least one conversation turn"), nil
		}

		var current profile.QuoteProfile
		if raw := req.GetString("profile", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &current); err != nil {
				return mcpError(fmt.Sprintf("invalid profile JSON: %v", err)), nil
			}
		}

		var hint *profile.CustomerHint
		if raw := req.GetString("hint", ""); raw != "" {
			hint = &profile.CustomerHint{}
			if err := json.Unmarshal([]byte(raw), hint); err != nil {
				return mcpError(fmt.Sprintf("invalid hint JSON: %v", err)), nil
			}
		}

		result, err := deps.Pipeline.ProcessTurns(current, turns, hint)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to process turns: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpNextQuestion(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profileJSON, err := req.RequireString("profile")
		if err != nil {
			return mcpError("profile is required"), nil
		}

		var p profile.QuoteProfile
		if err := json.Unmarshal([]byte(profileJSON), &p); err != nil {
			return mcpError(fmt.Sprintf("invalid profile JSON: %v", err)), nil
		}

		c := completeness.Evaluate(p)
		next, _ := completeness.Next(c)

		out := struct {
			Completeness completeness.Completeness `json:"completeness"`
			NextQuestion completeness.FieldID      `json:"next_question,omitempty"`
		}{Completeness: c, NextQuestion: next}

		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpAnalyzePolicy(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docsJSON, err := req.RequireString("documents")
		if err != nil {
			return mcpError("documents is required"), nil
		}

		var docs []coverage.Document
		if err := json.Unmarshal([]byte(docsJSON), &docs); err != nil {
			return mcpError(fmt.Sprintf("invalid documents JSON: %v", err)), nil
		}
		if len(docs) == 0 {
			return mcpError("documents must contain at least one coverage document"), nil
		}

		var p profile.QuoteProfile
		if raw := req.GetString("profile", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &p); err != nil {
				return mcpError(fmt.Sprintf("invalid profile JSON: %v", err)), nil
			}
		}

		analysis := deps.Analyzer.Analyze(p, docs)

		b, err := json.Marshal(analysis)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal analysis: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpResourceStateMinimums(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Rules.StateMinimums)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal state minimums: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
