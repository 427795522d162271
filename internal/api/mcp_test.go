package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dazzie/quoted/internal/analyzer"
	"github.com/dazzie/quoted/internal/completeness"
	"github.com/dazzie/quoted/internal/extract"
	"github.com/dazzie/quoted/internal/pipeline"
	"github.com/dazzie/quoted/internal/rules"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) MCPDeps {
	t.Helper()
	rs := rules.Default()
	return MCPDeps{
		Pipeline: pipeline.New(extract.NewWithYear(2025)),
		Analyzer: analyzer.NewWithClock(rs, func() time.Time {
			return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		}),
		Rules: rs,
	}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling fixture: %v", err)
	}
	return string(b)
}

// --- tests ---

func TestMCPTool_ExtractProfile(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpExtractProfile(deps)

	turns := mustJSON(t, []extract.Turn{
		{Role: "user", Text: "Just me and one car, I'm 35"},
		{Role: "user", Text: "I drive a 2019 Honda Civic"},
	})

	req := makeCallToolRequest("extract_profile", map[string]interface{}{
		"turns": turns,
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var res pipeline.TurnResult
	if err := json.Unmarshal([]byte(toolText(t, result)), &res); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if res.Profile.Basics.DriverCount != 1 || res.Profile.Basics.VehicleCount != 1 {
		t.Fatalf("expected 1 driver / 1 vehicle, got %d/%d",
			res.Profile.Basics.DriverCount, res.Profile.Basics.VehicleCount)
	}
	if len(res.Profile.Drivers) != 1 || res.Profile.Drivers[0].Age != 35 {
		t.Fatalf("expected driver age 35, got %+v", res.Profile.Drivers)
	}
	if len(res.Profile.Vehicles) != 1 || res.Profile.Vehicles[0].Make != "honda" {
		t.Fatalf("expected honda, got %+v", res.Profile.Vehicles)
	}
	if res.NextQuestion != completeness.FieldZIPCode {
		t.Fatalf("expected next question %s, got %s", completeness.FieldZIPCode, res.NextQuestion)
	}
}

func TestMCPTool_ExtractProfile_AccumulatesAcrossCalls(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpExtractProfile(deps)

	first, err := handler(context.Background(), makeCallToolRequest("extract_profile", map[string]interface{}{
		"turns": mustJSON(t, []extract.Turn{{Role: "user", Text: "2 drivers, 2 cars, zip 94105"}}),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, first))
	}

	var firstRes pipeline.TurnResult
	if err := json.Unmarshal([]byte(toolText(t, first)), &firstRes); err != nil {
		t.Fatalf("failed to parse first response: %v", err)
	}

	second, err := handler(context.Background(), makeCallToolRequest("extract_profile", map[string]interface{}{
		"turns": mustJSON(t, []extract.Turn{
			{Role: "user", Text: "I'm 42"},
			{Role: "user", Text: "my wife is 40"},
		}),
		"profile": mustJSON(t, firstRes.Profile),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, second))
	}

	var secondRes pipeline.TurnResult
	if err := json.Unmarshal([]byte(toolText(t, second)), &secondRes); err != nil {
		t.Fatalf("failed to parse second response: %v", err)
	}
	if secondRes.Profile.Basics.ZIPCode != "94105" {
		t.Fatalf("prior fact lost: zip = %q", secondRes.Profile.Basics.ZIPCode)
	}
	if len(secondRes.Profile.Drivers) != 2 {
		t.Fatalf("expected 2 drivers, got %d", len(secondRes.Profile.Drivers))
	}
	if secondRes.Profile.Drivers[0].Age != 42 || secondRes.Profile.Drivers[1].Age != 40 {
		t.Fatalf("unexpected driver ages: %+v", secondRes.Profile.Drivers)
	}
	if secondRes.Completeness.Score <= firstRes.Completeness.Score {
		t.Fatalf("score did not increase: %d -> %d",
			firstRes.Completeness.Score, secondRes.Completeness.Score)
	}
}

func TestMCPTool_ExtractProfile_InvalidInput(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpExtractProfile(deps)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing turns", map[string]interface{}{}},
		{"malformed turns", map[string]interface{}{"turns": "{not json"}},
		{"empty turns", map[string]interface{}{"turns": "[]"}},
		{"malformed profile", map[string]interface{}{
			"turns":   mustJSON(t, []extract.Turn{{Role: "user", Text: "hi"}}),
			"profile": "nope",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler(context.Background(), makeCallToolRequest("extract_profile", tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Fatalf("expected tool error, got: %s", toolText(t, result))
			}
		})
	}
}

func TestMCPTool_NextQuestion(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpNextQuestion(deps)

	req := makeCallToolRequest("next_question", map[string]interface{}{
		"profile": `{"basics":{"driverCount":1,"vehicleCount":1,"zipCode":"94105"}}`,
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var out struct {
		Completeness completeness.Completeness `json:"completeness"`
		NextQuestion completeness.FieldID      `json:"next_question"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &out); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if out.NextQuestion != completeness.DriverAge(0) {
		t.Fatalf("expected %s, got %s", completeness.DriverAge(0), out.NextQuestion)
	}
	if out.Completeness.ReadyForQuote {
		t.Fatal("profile with missing required fields marked ready")
	}
}

func TestMCPTool_AnalyzePolicy(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpAnalyzePolicy(deps)

	req := makeCallToolRequest("analyze_policy", map[string]interface{}{
		"documents": `[{"kind":"auto","carrier":"GEICO","auto":{"liabilityLimits":"10/20/3","collision":true,"comprehensive":true}}]`,
		"profile":   `{"basics":{"state":"CA"}}`,
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var analysis analyzer.Analysis
	if err := json.Unmarshal([]byte(toolText(t, result)), &analysis); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(analysis.Gaps) == 0 {
		t.Fatal("expected gaps for below-minimum liability")
	}
	if analysis.Gaps[0].Severity != analyzer.SeverityCritical {
		t.Fatalf("expected critical first, got %s", analysis.Gaps[0].Severity)
	}
	if analysis.HealthScore >= 100 {
		t.Fatalf("expected reduced health score, got %d", analysis.HealthScore)
	}
}

func TestMCPTool_AnalyzePolicy_RequiresDocuments(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpAnalyzePolicy(deps)

	result, err := handler(context.Background(), makeCallToolRequest("analyze_policy", map[string]interface{}{
		"documents": "[]",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for empty documents")
	}
}

func TestMCPResource_StateMinimums(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpResourceStateMinimums(deps)

	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "quoted://state-minimums"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if !strings.Contains(tc.Text, "CA") {
		t.Fatal("expected CA in state minimum table")
	}

	var table map[string]rules.StateMinimum
	if err := json.Unmarshal([]byte(tc.Text), &table); err != nil {
		t.Fatalf("failed to parse resource JSON: %v", err)
	}
	if table["CA"].BodilyInjuryPerPerson != 15000 {
		t.Fatalf("unexpected CA minimum: %+v", table["CA"])
	}
}

func TestNewMCPServer(t *testing.T) {
	s := NewMCPServer(newTestMCPDeps(t))
	if s == nil {
		t.Fatal("expected server")
	}
}
