// Package assistant 对话编排核心
// 按配置在规则应答与 LLM 应答之间选择，两条路径汇聚到同一结构化契约，
// 经护栏过滤后渲染，并始终携带本轮完整的工具调用记录
package assistant

import (
	"context"
	"strings"

	"github.com/run-bigpig/stockai/internal/config"
	"github.com/run-bigpig/stockai/internal/logger"
	"github.com/run-bigpig/stockai/internal/mcpc"
	"github.com/run-bigpig/stockai/internal/models"
	"github.com/run-bigpig/stockai/internal/openai"
)

var log = logger.New("assistant")

// msgEmptyInput 空消息短路文案，此时不发起任何工具或模型调用
const msgEmptyInput = "메시지를 입력해 주세요."

// ToolCaller 执行单次具名工具调用
type ToolCaller interface {
	Call(ctx context.Context, name string, args map[string]any) (map[string]any, error)
}

// ToolSession 带生命周期的工具会话
type ToolSession interface {
	ToolCaller
	Close() error
}

// SessionOpener 建立新工具会话
type SessionOpener func(ctx context.Context) (ToolSession, error)

// Service 对话编排服务
// 配置在构造时固化，轮次之间无共享可变状态
type Service struct {
	cfg         config.Config
	oai         *openai.Client
	openSession SessionOpener
}

// New 创建编排服务，接入默认的 MCP 会话与 OpenAI 客户端
func New(cfg config.Config) *Service {
	return &Service{
		cfg: cfg,
		oai: openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, nil),
		openSession: func(ctx context.Context) (ToolSession, error) {
			return mcpc.Open(ctx, cfg)
		},
	}
}

// NewWithDeps 创建编排服务并注入依赖，测试用
func NewWithDeps(cfg config.Config, oai *openai.Client, opener SessionOpener) *Service {
	return &Service{cfg: cfg, oai: oai, openSession: opener}
}

// Chat 处理一轮对话
// 空消息直接返回提示；其余按模式分派，响应统一过护栏后渲染
func (s *Service) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResult, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return &models.ChatResult{
			AssistantMessage: msgEmptyInput,
			Trace:            []models.ToolCall{},
		}, nil
	}

	if SelectMode(s.cfg) == ModeLLM {
		return s.llmResponse(ctx, msg, req.PreviousResponseID)
	}

	data, trace, err := s.ruleBasedResponse(ctx, msg)
	if err != nil {
		return nil, err
	}
	EnforceGuardrails(data)
	payload := &models.ChatPayload{Response: data}
	return &models.ChatResult{
		Data:             payload,
		AssistantMessage: RenderMessage(payload),
		Trace:            trace,
	}, nil
}
