package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/run-bigpig/stockai/internal/models"
	"github.com/run-bigpig/stockai/internal/openai"
)

// systemPrompt 固定系统指令：仅教育用途，禁止买卖指令，必须说明风险
const systemPrompt = `You are a stock investing assistant for beginners.
- Provide educational guidance, not personalized financial advice.
- Avoid buy/sell instructions.
- Always explain risks and uncertainty.
- When data is needed, use the connected MCP tools.
`

// trustedContextNote 预取工具结果注入说明
const trustedContextNote = "These are trusted MCP tool results. Use them in the response."

// maxContextPrices 注入可信上下文的价格点上限
const maxContextPrices = 10

// llmResponse LLM 应答：组装输入、授权远程工具、约束输出 schema
// 续聊令牌被服务端拒绝时不带令牌重试一次（按新对话处理），其余错误原样上抛
func (s *Service) llmResponse(ctx context.Context, msg, prevResponseID string) (*models.ChatResult, error) {
	trace := []models.ToolCall{}

	var toolContext map[string]any
	if s.cfg.ForceMCP {
		lk, err := s.toolLookup(ctx, msg)
		if err != nil {
			return nil, err
		}
		trace = lk.trace
		prices := lk.prices
		if len(prices) > maxContextPrices {
			prices = prices[:maxContextPrices]
		}
		toolContext = map[string]any{
			"instrument": lk.instrument,
			"prices":     prices,
			"note":       trustedContextNote,
		}
	}

	apiReq := s.buildRequest(msg, prevResponseID, toolContext)
	resp, err := s.oai.CreateResponse(ctx, apiReq)
	if err != nil {
		if prevResponseID == "" || !isInvalidContinuation(err) {
			return nil, err
		}
		log.Warn("续聊令牌被拒绝，按新对话重试一次")
		apiReq.PreviousResponseID = ""
		resp, err = s.oai.CreateResponse(ctx, apiReq)
		if err != nil {
			return nil, err
		}
	}

	payload := parsePayload(resp.Text())
	EnforceGuardrails(payload.Response)

	return &models.ChatResult{
		ResponseID:       resp.ID,
		Data:             payload,
		AssistantMessage: RenderMessage(payload),
		Trace:            trace,
	}, nil
}

// buildRequest 组装 Responses API 请求
// 可信工具上下文以第二条 system 消息注入，模型视其为事实而非自行推导
func (s *Service) buildRequest(msg, prevResponseID string, toolContext map[string]any) *openai.CreateResponseRequest {
	input := []openai.Message{{Role: "system", Content: systemPrompt}}
	if toolContext != nil {
		if ctxJSON, err := json.Marshal(toolContext); err == nil {
			input = append(input, openai.Message{
				Role:    "system",
				Content: "Tool context JSON: " + string(ctxJSON),
			})
		}
	}
	input = append(input, openai.Message{Role: "user", Content: msg})

	return &openai.CreateResponseRequest{
		Model:              s.cfg.OpenAIModel,
		Input:              input,
		PreviousResponseID: prevResponseID,
		Tools: []openai.MCPTool{{
			Type:              "mcp",
			ServerLabel:       "market",
			ServerDescription: "Market data & analytics tools for stocks.",
			ServerURL:         s.cfg.MCPURL,
			RequireApproval:   "never",
		}},
		Text: &openai.TextConfig{Format: &openai.JSONSchemaFormat{
			Type:   "json_schema",
			Name:   "assistant_response",
			Strict: true,
			Schema: responseSchema(),
		}},
		Store: false,
	}
}

// isInvalidContinuation 识别"续聊令牌无效"这一类错误
// 显式分类后做一次性重试，不做通用重试循环
func isInvalidContinuation(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == 400 && strings.Contains(apiErr.Body, "previous_response_id")
}

// parsePayload 解析模型文本输出
// 非 JSON 输出降级为 Raw 载荷，不让本轮失败
func parsePayload(text string) *models.ChatPayload {
	if text == "" {
		return &models.ChatPayload{Response: &models.AssistantResponse{}}
	}
	var data models.AssistantResponse
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return &models.ChatPayload{Raw: text}
	}
	return &models.ChatPayload{Response: &data}
}
