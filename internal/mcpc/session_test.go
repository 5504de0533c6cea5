package mcpc

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/run-bigpig/stockai/internal/config"
)

// TestParseResult 工具载荷解析的三种形态
func TestParseResult(t *testing.T) {
	t.Run("JSON 载荷", func(t *testing.T) {
		res := &mcp.CallToolResult{Content: []mcp.Content{
			&mcp.TextContent{Text: `{"items": [{"id": 1}]}`},
		}}
		got := ParseResult(res)
		items, ok := got["items"].([]any)
		if !ok || len(items) != 1 {
			t.Fatalf("解析不符: %v", got)
		}
	})

	t.Run("非 JSON 降级", func(t *testing.T) {
		res := &mcp.CallToolResult{Content: []mcp.Content{
			&mcp.TextContent{Text: "plain text"},
		}}
		got := ParseResult(res)
		if got["raw"] != "plain text" {
			t.Fatalf("应降级为 raw: %v", got)
		}
	})

	t.Run("无文本内容", func(t *testing.T) {
		got := ParseResult(&mcp.CallToolResult{})
		if got == nil || len(got) != 0 {
			t.Fatalf("应返回空 map: %v", got)
		}
		if got = ParseResult(nil); got == nil || len(got) != 0 {
			t.Fatalf("nil 结果应返回空 map: %v", got)
		}
	})

	t.Run("取第一段非空文本", func(t *testing.T) {
		res := &mcp.CallToolResult{Content: []mcp.Content{
			&mcp.TextContent{Text: ""},
			&mcp.TextContent{Text: `{"ok": true}`},
		}}
		got := ParseResult(res)
		if got["ok"] != true {
			t.Fatalf("应跳过空文本段: %v", got)
		}
	})
}

// TestCreateTransport 传输层选择
func TestCreateTransport(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.Config
		wantSSE bool
	}{
		{"默认 streamable", config.Config{MCPURL: "http://127.0.0.1:9000/mcp"}, false},
		{"显式 sse", config.Config{MCPURL: "http://127.0.0.1:9000/mcp", MCPTransport: "sse"}, true},
		{"URL 后缀 sse", config.Config{MCPURL: "http://127.0.0.1:9000/sse"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := createTransport(tc.cfg)
			_, isSSE := tr.(*mcp.SSEClientTransport)
			if isSSE != tc.wantSSE {
				t.Fatalf("传输层不符: %T", tr)
			}
		})
	}
}

// TestOpenWithoutURL 未配置地址直接报错
func TestOpenWithoutURL(t *testing.T) {
	if _, err := Open(t.Context(), config.Config{}); err == nil {
		t.Fatal("未配置地址应报错")
	}
}
