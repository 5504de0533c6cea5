// Package mcpc MCP (Model Context Protocol) 客户端会话
// 每个对话轮次独立开启一个会话，用完即关，不做池化
package mcpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/run-bigpig/stockai/internal/config"
	"github.com/run-bigpig/stockai/internal/logger"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var log = logger.New("mcpc")

// clientInfo 握手时上报的客户端标识
var clientInfo = &mcp.Implementation{Name: "stockai-backend", Version: "1.0.0"}

// Session 单轮次 MCP 会话，Close 必须在所有退出路径上执行
type Session struct {
	cs *mcp.ClientSession
}

// Open 按配置选择传输层建立连接并完成协议握手
// MCP_TRANSPORT=sse 或 URL 以 /sse 结尾时走 SSE，否则走 streamable http
func Open(ctx context.Context, cfg config.Config) (*Session, error) {
	if cfg.MCPURL == "" {
		return nil, fmt.Errorf("未配置 MCP 服务地址")
	}

	client := mcp.NewClient(clientInfo, nil)
	cs, err := client.Connect(ctx, createTransport(cfg), nil)
	if err != nil {
		return nil, fmt.Errorf("连接 MCP 服务失败: %w", err)
	}
	return &Session{cs: cs}, nil
}

// createTransport 根据配置创建 MCP 传输层
func createTransport(cfg config.Config) mcp.Transport {
	if cfg.MCPTransport == "sse" || strings.HasSuffix(cfg.MCPURL, "/sse") {
		return &mcp.SSEClientTransport{Endpoint: cfg.MCPURL}
	}
	return &mcp.StreamableClientTransport{Endpoint: cfg.MCPURL}
}

// Call 同步调用远端工具并解析其文本载荷
// 非 JSON 载荷降级为 {"raw": <text>}，不视为调用失败
func (s *Session) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	res, err := s.cs.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("调用工具 %s 失败: %w", name, err)
	}
	return ParseResult(res), nil
}

// Close 释放会话
func (s *Session) Close() error {
	if s.cs == nil {
		return nil
	}
	return s.cs.Close()
}

// ParseResult 提取结果中第一个文本内容并按 JSON 解析
// 无文本内容返回空 map，解析失败返回 {"raw": <text>}
func ParseResult(res *mcp.CallToolResult) map[string]any {
	raw := contentText(res)
	if raw == "" {
		return map[string]any{}
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Debug("工具载荷非 JSON，保留原文: %v", err)
		return map[string]any{"raw": raw}
	}
	return parsed
}

// contentText 取第一段非空文本内容
func contentText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok && tc.Text != "" {
			return tc.Text
		}
	}
	return ""
}
