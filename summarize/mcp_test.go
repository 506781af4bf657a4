package summarize

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testMCPImpl = &mcp.Implementation{Name: "summarize-test", Version: "0.1.0"}

func mcpSession(t *testing.T, m Model) *mcp.ClientSession {
	t.Helper()
	c := NewWithModel(Config{}, m)
	srv := mcp.NewServer(testMCPImpl, nil)
	c.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, s *mcp.ClientSession, name string, args any) *mcp.CallToolResult {
	t.Helper()
	res, err := s.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result content")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", res.Content[0])
	}
	return tc.Text
}

func TestMCP_Summarize(t *testing.T) {
	s := mcpSession(t, &fakeModel{text: "Overview."})

	res := callTool(t, s, "docsum_summarize", map[string]any{"content": "Hello world"})
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var out struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Summary != "Overview." {
		t.Errorf("summary = %q", out.Summary)
	}
}

func TestMCP_SummarizeTooLarge(t *testing.T) {
	m := &fakeModel{text: "x"}
	s := mcpSession(t, m)

	res := callTool(t, s, "docsum_summarize", map[string]any{"content": strings.Repeat("a", MaxContentChars+1)})
	if !res.IsError {
		t.Fatal("expected tool error for oversized content")
	}
	if m.calls != 0 {
		t.Error("model called for rejected input")
	}
}

func TestMCP_Prompt(t *testing.T) {
	m := &fakeModel{}
	s := mcpSession(t, m)

	res := callTool(t, s, "docsum_prompt", map[string]any{"content": "abc"})
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var out struct {
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Prompt != BuildPrompt("abc") {
		t.Error("prompt mismatch")
	}
	if m.calls != 0 {
		t.Error("prompt tool must not call the model")
	}
}
