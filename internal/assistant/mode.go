package assistant

import "github.com/run-bigpig/stockai/internal/config"

// Mode 应答模式
type Mode int

const (
	// ModeRule 规则应答：本地执行工具查询并拼装结构化响应
	ModeRule Mode = iota
	// ModeLLM LLM 应答：模型生成，工具由服务端按需调用
	ModeLLM
)

// SelectMode 根据配置确定应答模式，纯函数无副作用
// 顺序：无密钥或强制规则模式 → 规则；有密钥但无 MCP 地址 → 规则（LLM 路径依赖在线工具）；其余 → LLM
func SelectMode(cfg config.Config) Mode {
	if cfg.OpenAIAPIKey == "" || cfg.AIMode == "rule" {
		return ModeRule
	}
	if cfg.MCPURL == "" {
		return ModeRule
	}
	return ModeLLM
}
