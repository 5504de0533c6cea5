package models

import "encoding/json"

// ChatRequest 对话请求
type ChatRequest struct {
	Message string `json:"message"`
	// PreviousResponseID 多轮续聊令牌，由 LLM 服务端持有
	PreviousResponseID string `json:"previous_response_id,omitempty"`
}

// InstrumentRef 响应中引用的证券，构建后不再修改
type InstrumentRef struct {
	ID     int64  `json:"id"`
	Market string `json:"market"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// PriceSummary 价格变动摘要，派生数据不落库
// 缺失值用指针表示 null
type PriceSummary struct {
	LastClose *float64 `json:"last_close"`
	Change    *float64 `json:"change"`
	ChangePct *float64 `json:"change_pct"`
	Window    string   `json:"window"`
}

// AssistantResponse 助手结构化响应，封闭契约
// LLM 侧由 strict json_schema 保证，规则侧由构造保证
type AssistantResponse struct {
	ResolvedInstrument *InstrumentRef  `json:"resolved_instrument"`
	Candidates         []InstrumentRef `json:"candidates"`
	PriceSummary       PriceSummary    `json:"price_summary"`
	Summary            string          `json:"summary"`
	KeyPoints          []string        `json:"key_points"`
	Explanations       []string        `json:"explanations"`
	DataUsed           []string        `json:"data_used"`
	RiskNotes          []string        `json:"risk_notes"`
	NextActions        []string        `json:"next_actions"`
	Disclaimer         string          `json:"disclaimer"`
}

// ToolCall 单次工具调用记录，按实际调用顺序追加
type ToolCall struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args"`
	Result map[string]any `json:"result"`
}

// ChatPayload 对话结果载荷：结构化响应或原始文本二选一
// LLM 输出非 JSON 时降级为 Raw，下游（护栏/渲染）按变体分支处理
type ChatPayload struct {
	Response *AssistantResponse
	Raw      string
}

// IsRaw 是否为原始文本降级载荷
func (p *ChatPayload) IsRaw() bool {
	return p != nil && p.Response == nil
}

// MarshalJSON Raw 变体序列化为 {"raw": <text>}，与工具结果降级格式一致
func (p ChatPayload) MarshalJSON() ([]byte, error) {
	if p.Response != nil {
		return json.Marshal(p.Response)
	}
	return json.Marshal(map[string]string{"raw": p.Raw})
}

// ChatResult 对话端点返回值
type ChatResult struct {
	ResponseID       string       `json:"response_id,omitempty"`
	Data             *ChatPayload `json:"data,omitempty"`
	AssistantMessage string       `json:"assistant_message"`
	Trace            []ToolCall   `json:"mcp_trace"`
}
